package opentdb

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	errs "triviafetch/pkg/errors"
	"triviafetch/pkg/logger"
	"triviafetch/pkg/ratelimit"
)

// Client is the request gateway to the OpenTDB API. Every call acquires
// the shared rate limiter first, decodes the JSON response, and maps
// failures to typed errors. The client never retries; retry policy lives
// with the caller because it differs between token and question endpoints.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	limiter     ratelimit.Limiter
	logger      logger.Logger
	failedCount atomic.Int64
}

// NewClient creates a new OpenTDB API client
func NewClient(baseURL string, timeout time.Duration, limiter ratelimit.Limiter, log logger.Logger) *Client {
	if baseURL == "" {
		baseURL = BaseURL
	}
	if log == nil {
		log = logger.GetLogger()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		limiter: limiter,
		logger:  log,
	}
}

// FailedRequests returns the number of requests that failed at the
// transport or parse level since the client was created
func (c *Client) FailedRequests() int64 {
	return c.failedCount.Load()
}

// getJSON performs a rate-limited GET and decodes the JSON response into target
func (c *Client) getJSON(ctx context.Context, url string, target interface{}) error {
	if c.limiter != nil {
		c.limiter.Wait()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errs.New(errs.ErrorTypeUnknown, 0, "failed to create request: %v", err)
	}

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"url": url,
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.failedCount.Add(1)
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"url":      url,
			"error":    err.Error(),
			"duration": duration,
		})
		return errs.New(errs.ErrorTypeNetwork, 0, "network error: %v", err)
	}
	defer resp.Body.Close()

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"url":      url,
		"status":   resp.StatusCode,
		"duration": duration,
	})

	if err := c.checkResponseStatus(resp); err != nil {
		c.failedCount.Add(1)
		return err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.failedCount.Add(1)
		return errs.New(errs.ErrorTypeNetwork, resp.StatusCode,
			"failed to read response body: %v", err)
	}

	if err := json.Unmarshal(body, target); err != nil {
		c.failedCount.Add(1)

		bodyPreview := string(body)
		if len(bodyPreview) > 200 {
			bodyPreview = bodyPreview[:200] + "..."
		}
		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"url":          url,
			"status":       resp.StatusCode,
			"error":        err.Error(),
			"body_preview": bodyPreview,
		})
		return errs.New(errs.ErrorTypeParsing, resp.StatusCode,
			"failed to parse JSON: %v", err)
	}

	return nil
}

// checkResponseStatus maps HTTP status codes to typed errors
func (c *Client) checkResponseStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		c.logger.WarnWithFields("rate limit exceeded", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    resp.Request.URL.String(),
		})
		return errs.New(errs.ErrorTypeRateLimit, resp.StatusCode, "rate limit exceeded")
	case resp.StatusCode == http.StatusNotFound:
		return errs.New(errs.ErrorTypeNotFound, resp.StatusCode, "resource not found")
	case resp.StatusCode >= 500:
		c.logger.ErrorWithFields("server error", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    resp.Request.URL.String(),
		})
		return errs.New(errs.ErrorTypeServerError, resp.StatusCode, "server error")
	default:
		return errs.New(errs.ErrorTypeUnknown, resp.StatusCode,
			"unexpected status code: %d", resp.StatusCode)
	}
}

// Categories fetches the remote category list
func (c *Client) Categories(ctx context.Context) ([]CategoryInfo, error) {
	var response CategoriesResponse
	if err := c.getJSON(ctx, CategoriesURL(c.baseURL), &response); err != nil {
		return nil, err
	}
	return response.TriviaCategories, nil
}

// QuestionCount fetches the remote-reported question counts for a category
func (c *Client) QuestionCount(ctx context.Context, categoryID int) (*QuestionCount, error) {
	var response CountResponse
	if err := c.getJSON(ctx, CountURL(c.baseURL, categoryID), &response); err != nil {
		return nil, err
	}
	return &response.CategoryQuestionCount, nil
}

// Questions fetches one batch of questions. A nil error means a real
// remote response code was obtained; its interpretation is the caller's.
func (c *Client) Questions(ctx context.Context, q QuestionsQuery) (*QuestionsResponse, error) {
	var response QuestionsResponse
	if err := c.getJSON(ctx, QuestionsURL(c.baseURL, q), &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// RequestToken asks the API for a fresh session token
func (c *Client) RequestToken(ctx context.Context) (*TokenResponse, error) {
	var response TokenResponse
	if err := c.getJSON(ctx, TokenRequestURL(c.baseURL), &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// ResetToken asks the API to wipe the server-side memory of a token.
// The token value itself survives a reset.
func (c *Client) ResetToken(ctx context.Context, token string) (*TokenResponse, error) {
	var response TokenResponse
	if err := c.getJSON(ctx, TokenResetURL(c.baseURL, token), &response); err != nil {
		return nil, err
	}
	return &response, nil
}
