package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// DefaultScriptURL — адрес скрипта внешнего платёжного шлюза.
const DefaultScriptURL = "https://checkout.razorpay.com/v1/checkout.js"

// HTTPScriptLoader загружает скрипт шлюза по HTTP. Load идемпотентен:
// после первого успеха повторные вызовы завершаются сразу, без сети.
// Неудачная загрузка не кэшируется и может быть повторена.
type HTTPScriptLoader struct {
	url    string
	httpc  *http.Client
	logger *log.Entry

	mu     sync.Mutex
	loaded bool
}

// NewScriptLoader создаёт загрузчик скрипта шлюза. Пустой url и nil httpc
// заменяются значениями по умолчанию.
func NewScriptLoader(url string, httpc *http.Client, logger *log.Entry) *HTTPScriptLoader {
	if url == "" {
		url = DefaultScriptURL
	}
	if httpc == nil {
		httpc = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = log.New().WithField("component", "script-loader")
	}
	return &HTTPScriptLoader{
		url:    url,
		httpc:  httpc,
		logger: logger,
	}
}

// Load скачивает скрипт шлюза, если он ещё не загружен.
func (l *HTTPScriptLoader) Load(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.loaded {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrGatewayScriptLoad, err)
	}

	resp, err := l.httpc.Do(req)
	if err != nil {
		l.logger.WithError(err).WithField("url", l.url).Warn("gateway script fetch failed")
		return fmt.Errorf("%w: %v", domain.ErrGatewayScriptLoad, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		l.logger.WithFields(log.Fields{
			"url":    l.url,
			"status": resp.StatusCode,
		}).Warn("gateway script fetch rejected")
		return fmt.Errorf("%w: unexpected status %d", domain.ErrGatewayScriptLoad, resp.StatusCode)
	}

	l.loaded = true
	l.logger.WithField("url", l.url).Debug("gateway script loaded")
	return nil
}

var _ domain.ScriptLoader = (*HTTPScriptLoader)(nil)
