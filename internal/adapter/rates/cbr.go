// Package rates fetches current exchange rates from the Central Bank of Russia
// daily JSON feed.
package rates

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	apperrors "currencies-app/pkg/errors"
)

// DefaultURL is the public CBR daily feed.
const DefaultURL = "https://www.cbr-xml-daily.ru/daily_json.js"

const sourceName = "cbr rates"

// Source looks up current rates for a set of char codes.
// Codes the source does not know are left out of the result.
type Source interface {
	Rates(ctx context.Context, codes []string) (map[string]float64, error)
}

// CBRClient reads Valute.<CODE>.Value from the CBR daily feed.
type CBRClient struct {
	url    string
	client *http.Client
	log    *zap.Logger
}

var _ Source = (*CBRClient)(nil)

// NewCBRClient creates a client for url. A non-positive timeout means no timeout.
func NewCBRClient(url string, timeout time.Duration, log *zap.Logger) *CBRClient {
	if url == "" {
		url = DefaultURL
	}
	return &CBRClient{
		url:    url,
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

// Rates fetches the feed once and returns the value for every requested code
// present in it. Transport failures, non-200 answers and malformed bodies are
// reported as ExternalError.
func (c *CBRClient) Rates(ctx context.Context, codes []string) (map[string]float64, error) {
	body, err := c.fetch(ctx)
	if err != nil {
		c.log.Warn("failed to fetch rates", zap.String("url", c.url), zap.Error(err))
		return nil, apperrors.NewExternalError(sourceName, err)
	}

	if !gjson.ValidBytes(body) {
		c.log.Warn("rates feed is not valid json", zap.String("url", c.url))
		return nil, apperrors.NewExternalError(sourceName, errors.New("malformed response"))
	}

	valute := gjson.GetBytes(body, "Valute")
	if !valute.IsObject() {
		return nil, apperrors.NewExternalError(sourceName, errors.New("response has no Valute section"))
	}

	result := make(map[string]float64, len(codes))
	for _, code := range codes {
		code = strings.ToUpper(code)
		value := valute.Get(code + ".Value")
		if value.Type != gjson.Number {
			c.log.Debug("code missing from rates feed", zap.String("char_code", code))
			continue
		}
		result[code] = value.Float()
	}

	c.log.Debug("rates fetched", zap.Int("requested", len(codes)), zap.Int("found", len(result)))
	return result, nil
}

func (c *CBRClient) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}
