package alerts

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/jmpark/outageboard/internal/core"
)

// Publisher pushes alarm transition events onto NATS so anything
// downstream (chat bots, pagers) can react without polling the API.
type Publisher struct {
	conn          *nats.Conn
	subjectPrefix string
	logger        *zap.Logger
}

func NewPublisher(url, subjectPrefix string, logger *zap.Logger) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("outageboard-worker"),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &Publisher{
		conn:          conn,
		subjectPrefix: subjectPrefix,
		logger:        logger,
	}, nil
}

// PublishEvents sends each event on <prefix>.<region>. Publish
// failures are logged only; alerting is best-effort.
func (p *Publisher) PublishEvents(region core.Region, events []Event) {
	subject := fmt.Sprintf("%s.%s", p.subjectPrefix, region)

	for _, ev := range events {
		data, err := json.Marshal(ev)
		if err != nil {
			p.logger.Error("Failed to encode alarm event", zap.Error(err))
			continue
		}
		if err := p.conn.Publish(subject, data); err != nil {
			p.logger.Warn("Failed to publish alarm event",
				zap.String("subject", subject),
				zap.String("name", ev.Name),
				zap.Error(err),
			)
		}
	}
}

func (p *Publisher) Close() {
	p.conn.Drain()
}
