package fetch

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"tendorai/internal/domain"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	fetchTimeout = 15 * time.Second
	maxRedirects = 5
	maxBodyBytes = 2 << 20 // audits analyse at most 2 MB of HTML
)

// PageFetcher retrieves a single homepage for static analysis. It never
// follows more than five redirects and never executes scripts.
type PageFetcher struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

func NewPageFetcher(logger *zap.Logger) *PageFetcher {
	client := resty.New().
		SetTimeout(fetchTimeout).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(maxRedirects)).
		SetHeader("User-Agent", "TendorAI-AEO-Audit/1.0 (+https://tendorai.com)").
		SetHeader("Accept", "text/html,application/xhtml+xml")
	return &PageFetcher{httpClient: client, logger: logger}
}

// Fetch validates and retrieves the URL, returning the raw HTML and the URL
// actually analysed (scheme-normalised, post-validation).
func (f *PageFetcher) Fetch(ctx context.Context, rawURL string) (html string, finalURL string, err error) {
	normalized, err := NormalizeURL(rawURL)
	if err != nil {
		return "", "", err
	}

	resp, err := f.httpClient.R().
		SetContext(ctx).
		Get(normalized)
	if err != nil {
		if ctx.Err() != nil {
			return "", "", fmt.Errorf("%w: %v", domain.ErrCancelled, ctx.Err())
		}
		return "", "", fmt.Errorf("%w: fetch %s: %v", domain.ErrUpstreamTemporary, normalized, err)
	}
	if resp.StatusCode() >= 400 {
		return "", "", fmt.Errorf("%w: fetch %s: status %d", domain.ErrUpstreamPermanent, normalized, resp.StatusCode())
	}

	body := resp.Body()
	if len(body) > maxBodyBytes {
		body = body[:maxBodyBytes]
	}
	f.logger.Debug("page fetched",
		zap.String("url", normalized),
		zap.Int("bytes", len(body)),
	)
	return string(body), normalized, nil
}

// NormalizeURL validates the audited URL, defaulting a missing scheme to
// https.
func NormalizeURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("%w: website url is required", domain.ErrValidation)
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Host == "" {
		return "", fmt.Errorf("%w: invalid website url %q", domain.ErrValidation, raw)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("%w: unsupported scheme %q", domain.ErrValidation, parsed.Scheme)
	}
	return parsed.String(), nil
}
