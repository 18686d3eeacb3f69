package handlers

import (
	"go.uber.org/zap"

	"github.com/jmpark/outageboard/internal/cache"
	"github.com/jmpark/outageboard/internal/metrics"
	"github.com/jmpark/outageboard/internal/newsbot"
	"github.com/jmpark/outageboard/internal/registry"
	"github.com/jmpark/outageboard/internal/storage/postgres"
)

type Handler struct {
	cache      *cache.StatusCache
	registry   *registry.Registry
	feed       *newsbot.FeedClient
	translator *newsbot.Translator
	geocoder   *newsbot.Geocoder
	history    *postgres.HistoryRepo
	metrics    *metrics.Collector
	logger     *zap.Logger
}

func NewHandler(
	statusCache *cache.StatusCache,
	reg *registry.Registry,
	feed *newsbot.FeedClient,
	translator *newsbot.Translator,
	geocoder *newsbot.Geocoder,
	history *postgres.HistoryRepo,
	collector *metrics.Collector,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		cache:      statusCache,
		registry:   reg,
		feed:       feed,
		translator: translator,
		geocoder:   geocoder,
		history:    history,
		metrics:    collector,
		logger:     logger,
	}
}
