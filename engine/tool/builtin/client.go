package builtin

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"github.com/howzat/howzat/engine/core"
	"github.com/howzat/howzat/engine/tool"
)

// ClientConfig carries the HTTP settings for one upstream collaborator.
type ClientConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// client wraps resty with the error classification the orchestrator's retry
// policy relies on: network and 5xx failures are transient, 4xx are not.
type client struct {
	http *resty.Client
}

func newClient(cfg ClientConfig) *client {
	c := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Accept", "application/json")
	if cfg.Timeout > 0 {
		c.SetTimeout(cfg.Timeout)
	}
	if cfg.APIKey != "" {
		c.SetAuthToken(cfg.APIKey)
	}
	return &client{http: c}
}

func (c *client) getJSON(ctx context.Context, path string, params map[string]string) (core.Payload, error) {
	resp, err := c.http.R().SetContext(ctx).SetQueryParams(params).Get(path)
	return c.decode(path, resp, err)
}

func (c *client) postJSON(ctx context.Context, path string, body any) (core.Payload, error) {
	resp, err := c.http.R().SetContext(ctx).SetBody(body).Post(path)
	return c.decode(path, resp, err)
}

func (c *client) decode(path string, resp *resty.Response, err error) (core.Payload, error) {
	if err != nil {
		return nil, tool.Transient(fmt.Errorf("calling %s: %w", path, err))
	}
	code := resp.StatusCode()
	switch {
	case code >= 500:
		return nil, tool.Transient(fmt.Errorf("upstream %s returned %d", path, code))
	case code >= 400:
		return nil, fmt.Errorf("%w: upstream %s returned %d", tool.ErrInvalidInput, path, code)
	}
	body := resp.Body()
	if !gjson.ValidBytes(body) {
		return nil, tool.Transient(fmt.Errorf("upstream %s returned malformed JSON", path))
	}
	payload, perr := core.PayloadFromJSON(string(body))
	if perr != nil {
		return nil, tool.Transient(fmt.Errorf("decoding %s response: %w", path, perr))
	}
	return payload, nil
}
