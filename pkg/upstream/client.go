package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"
	"github.com/tb0hdan/shodan-mcp/pkg/config"
)

const (
	hostShodan = "shodan"
	hostCVEDB  = "cvedb"

	maxErrorBody = 64 << 10
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client issues GET requests against the Shodan API and CVEDB hosts.
// It is safe for concurrent use.
type Client struct {
	cfg        config.Config
	httpClient *http.Client
	logger     zerolog.Logger
}

// failure is an unsuccessful call before it is turned into a caller-facing *Error.
type failure struct {
	status   int
	detail   string
	timedOut bool
	err      error
}

func New(cfg config.Config, logger zerolog.Logger) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{},
		logger:     logger.With().Str("component", "upstream").Logger(),
	}
}

// queryShodan calls the Shodan API host with the API key attached.
func (c *Client) queryShodan(ctx context.Context, endpoint string, params url.Values, out any) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("key", c.cfg.APIKey)

	f := c.get(ctx, c.cfg.ShodanURL, endpoint, params, c.cfg.ShodanTimeout, out)
	if f == nil {
		return nil
	}

	upErr := &Error{
		Host:       hostShodan,
		Endpoint:   endpoint,
		StatusCode: f.status,
		Kind:       KindStatus,
		Detail:     f.detail,
		Err:        f.err,
	}
	switch {
	case f.timedOut:
		upErr.Kind = KindTimeout
		upErr.Message = fmt.Sprintf("Shodan API error: request timed out after %s", c.cfg.ShodanTimeout)
	case f.status == 0:
		upErr.Kind = KindTransport
		upErr.Message = "Shodan API error: " + f.detail
	default:
		upErr.Message = "Shodan API error: " + f.detail
	}
	c.logFailure(ctx, upErr)
	return upErr
}

// queryCVEDB calls the CVEDB host. translate may claim specific status codes
// by returning a non-empty message and kind.
func (c *Client) queryCVEDB(ctx context.Context, endpoint string, params url.Values, out any,
	translate func(f *failure) (Kind, string),
) error {
	f := c.get(ctx, c.cfg.CVEDBURL, endpoint, params, c.cfg.CVEDBTimeout, out)
	if f == nil {
		return nil
	}

	upErr := &Error{
		Host:       hostCVEDB,
		Endpoint:   endpoint,
		StatusCode: f.status,
		Kind:       KindStatus,
		Detail:     f.detail,
		Err:        f.err,
	}
	if translate != nil && f.status != 0 {
		if kind, msg := translate(f); msg != "" {
			upErr.Kind = kind
			upErr.Message = msg
		}
	}
	if upErr.Message == "" {
		switch {
		case f.timedOut:
			upErr.Kind = KindTimeout
			upErr.Message = fmt.Sprintf("CVEDB API error: request timed out after %s", c.cfg.CVEDBTimeout)
		case f.status == 0:
			upErr.Kind = KindTransport
			upErr.Message = "CVEDB API error: " + f.detail
		default:
			upErr.Message = "CVEDB API error: " + f.detail
		}
	}
	c.logFailure(ctx, upErr)
	return upErr
}

func (c *Client) get(ctx context.Context, baseURL, endpoint string, params url.Values, timeout time.Duration, out any) *failure {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	reqURL, err := url.Parse(baseURL + endpoint)
	if err != nil {
		return &failure{detail: fmt.Sprintf("invalid request url: %v", err), err: err}
	}
	if len(params) > 0 {
		reqURL.RawQuery = params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return &failure{detail: fmt.Sprintf("failed to create request: %v", err), err: err}
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &failure{
			detail:   transportDetail(err),
			timedOut: isTimeout(ctx, err),
			err:      err,
		}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	c.loggerFor(ctx).Debug().
		Str("endpoint", endpoint).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("upstream request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &failure{
			status: resp.StatusCode,
			detail: errorDetail(resp, body),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &failure{
			detail:   fmt.Sprintf("failed to decode response: %v", err),
			timedOut: isTimeout(ctx, err),
			err:      err,
		}
	}

	return nil
}

func (c *Client) loggerFor(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		scoped := l.With().Str("component", "upstream").Logger()
		return &scoped
	}
	return &c.logger
}

func (c *Client) logFailure(ctx context.Context, upErr *Error) {
	c.loggerFor(ctx).Error().
		Err(upErr.Err).
		Str("host", upErr.Host).
		Str("endpoint", upErr.Endpoint).
		Int("status", upErr.StatusCode).
		Str("detail", upErr.Detail).
		Msg(upErr.Message)
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// transportDetail strips the request url from the message so the API key never reaches the caller.
func transportDetail(err error) string {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err.Error()
	}
	return err.Error()
}

// errorDetail prefers the upstream explanation: Shodan's "error" field or
// FastAPI's "detail" field, falling back to the status line.
func errorDetail(resp *http.Response, body []byte) string {
	var payload struct {
		Error  string              `json:"error"`
		Detail jsoniter.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if detail := strings.TrimSpace(string(payload.Detail)); detail != "" && detail != "null" {
			var text string
			if err := json.Unmarshal(payload.Detail, &text); err == nil {
				return text
			}
			return detail
		}
	}
	return "Request failed with status code " + strconv.Itoa(resp.StatusCode)
}
