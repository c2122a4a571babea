package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"
	"gomarketplace_ingest/metrics"
	"gomarketplace_ingest/pkg/logger"
	"gomarketplace_ingest/pkg/middleware"
)

var (
	ErrUnexpectedStatus = errors.New("unexpected http status")
	ErrStatusNotOK      = errors.New("api status is not ok")
	ErrMalformed        = errors.New("malformed response")
)

const statusOK = "ok"

// envelope - общая обертка ответов партнерского API.
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

type BaseClient struct {
	ApiURL  string
	auth    AuthEngine
	log     logger.Logger
	client  *http.Client
	limiter *rate.Limiter
	request middleware.RequestFunc
}

func NewBaseClient(apiURL string, auth AuthEngine, timeout time.Duration, limiter *rate.Limiter, log logger.Logger) *BaseClient {
	c := &BaseClient{
		ApiURL:  apiURL,
		auth:    auth,
		log:     log,
		client:  &http.Client{Timeout: timeout},
		limiter: limiter,
	}
	c.request = middleware.Chain(c.doRequest, middleware.Logging(log))
	return c
}

// Use добавляет middleware поверх уже установленных.
func (c *BaseClient) Use(mws ...middleware.Middleware) {
	c.request = middleware.Chain(c.request, mws...)
}

func (c *BaseClient) doRequest(ctx context.Context, method, endpoint string, requestBody interface{}, response interface{}) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
	}

	var body io.Reader
	if requestBody != nil {
		bodyBytes, err := json.Marshal(requestBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.ApiURL+endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.auth != nil {
		c.auth.SetApiKey(req)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		metrics.RecordAPIRequest(metricEndpoint(endpoint), 0, time.Since(start))
		select {
		case <-ctx.Done():
			return fmt.Errorf("request was cancelled: %w", ctx.Err())
		default:
			return fmt.Errorf("failed to execute request: %w", err)
		}
	}
	defer resp.Body.Close()
	metrics.RecordAPIRequest(metricEndpoint(endpoint), resp.StatusCode, time.Since(start))

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %d %s", ErrUnexpectedStatus, resp.StatusCode, truncate(raw, 256))
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Status != statusOK {
		return fmt.Errorf("%w: %q %s", ErrStatusNotOK, env.Status, env.Message)
	}
	if response == nil || len(env.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Result, response); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

// metricEndpoint отрезает query, чтобы не плодить метки.
func metricEndpoint(endpoint string) string {
	path, _, _ := strings.Cut(endpoint, "?")
	return path
}

// truncate режет тело ответа для лога, не разрывая UTF-8 символ.
func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	for n > 0 && !utf8.RuneStart(b[n]) {
		n--
	}
	return string(b[:n]) + "..."
}
