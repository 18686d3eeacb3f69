package newsbot

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jmpark/outageboard/internal/config"
)

const transCacheLimit = 100

type transPair struct {
	Source     string `json:"source"`
	Translated string `json:"translated"`
}

// Translator wraps the translation API behind a bounded FIFO cache.
// Missing the credential file is not an error: translation silently
// degrades to an empty string so the surrounding flow never aborts.
type Translator struct {
	mu     sync.Mutex
	cfg    config.NewsConfig
	client *http.Client
	cache  []transPair
	logger *zap.Logger
}

func NewTranslator(cfg config.NewsConfig, logger *zap.Logger) *Translator {
	t := &Translator{
		cfg:    cfg,
		client: &http.Client{Timeout: 15 * time.Second},
		logger: logger,
	}
	t.loadCache()
	return t
}

func (t *Translator) loadCache() {
	data, err := os.ReadFile(t.cfg.CachePath)
	if err != nil {
		if !os.IsNotExist(err) {
			t.logger.Warn("Failed to read translation cache", zap.Error(err))
		}
		return
	}
	if err := json.Unmarshal(data, &t.cache); err != nil {
		t.logger.Warn("Translation cache is corrupt, starting empty", zap.Error(err))
		t.cache = nil
	}
}

// Translate returns text in the configured target language, serving
// repeats from the cache. Every failure mode yields "".
func (t *Translator) Translate(ctx context.Context, text string) string {
	t.mu.Lock()
	for _, p := range t.cache {
		if p.Source == text {
			t.mu.Unlock()
			t.logger.Debug("Translation cache hit", zap.String("text", text))
			return p.Translated
		}
	}
	t.mu.Unlock()

	key, err := t.apiKey()
	if err != nil {
		// No credential file present: run untranslated.
		return ""
	}

	translated, err := t.callAPI(ctx, text, key)
	if err != nil {
		t.logger.Warn("Translation request failed", zap.Error(err))
		return ""
	}

	t.store(text, translated)
	return translated
}

func (t *Translator) apiKey() (string, error) {
	data, err := os.ReadFile(t.cfg.CredentialFile)
	if err != nil {
		return "", err
	}

	var cred struct {
		APIKey string `json:"api_key"`
	}
	if err := json.Unmarshal(data, &cred); err != nil {
		return "", err
	}
	return cred.APIKey, nil
}

func (t *Translator) callAPI(ctx context.Context, text, key string) (string, error) {
	body, err := json.Marshal(map[string]string{
		"q":      text,
		"target": t.cfg.TargetLanguage,
		"format": "text",
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.cfg.TranslateEndpoint+"?key="+key, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out struct {
		Data struct {
			Translations []struct {
				TranslatedText string `json:"translatedText"`
			} `json:"translations"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out.Data.Translations) == 0 {
		return "", nil
	}

	return strings.ReplaceAll(out.Data.Translations[0].TranslatedText, "&amp;", "&"), nil
}

// store appends to the FIFO cache, evicting the oldest pair once the
// cap is reached, and rewrites the cache file. Write failures are
// logged only.
func (t *Translator) store(source, translated string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.cache) >= transCacheLimit {
		t.cache = t.cache[1:]
	}
	t.cache = append(t.cache, transPair{Source: source, Translated: translated})

	data, err := json.Marshal(t.cache)
	if err != nil {
		t.logger.Error("Failed to encode translation cache", zap.Error(err))
		return
	}
	if err := os.WriteFile(t.cfg.CachePath, data, 0o644); err != nil {
		t.logger.Error("Failed to persist translation cache", zap.Error(err))
	}
}

// CacheLen reports the current number of cached pairs.
func (t *Translator) CacheLen() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.cache)
}

// Cached returns the cached translation for source, if present.
func (t *Translator) Cached(source string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, p := range t.cache {
		if p.Source == source {
			return p.Translated, true
		}
	}
	return "", false
}
