package validation

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/imroc/req/v3"
)

const DefaultProbeTimeout = 5 * time.Second

// HTTPProber checks liveness with a single GET request.
type HTTPProber struct {
	client *req.Client
	logger *slog.Logger
}

func NewHTTPProber(timeout time.Duration, logger *slog.Logger) *HTTPProber {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	client := req.C().
		SetTimeout(timeout).
		SetUserAgent("link-shortener-probe").
		DisableAutoReadResponse()

	return &HTTPProber{
		client: client,
		logger: logger,
	}
}

// IsReachable reports whether rawURL answered with a 2xx status. Network
// errors, timeouts and any other status yield false.
func (p *HTTPProber) IsReachable(ctx context.Context, rawURL string) bool {
	const op = "validation.HTTPProber.IsReachable"

	resp, err := p.client.R().SetContext(ctx).Get(rawURL)
	if err != nil {
		p.logger.Debug("url probe failed", slog.String("op", op), slog.String("url", rawURL), slog.Any("err", err))
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		p.logger.Debug("url probe got non-success status",
			slog.String("op", op),
			slog.String("url", rawURL),
			slog.Int("status", resp.StatusCode),
		)
		return false
	}

	return true
}

// NoopProber treats every URL as reachable.
type NoopProber struct{}

func (NoopProber) IsReachable(context.Context, string) bool {
	return true
}
