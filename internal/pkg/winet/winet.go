package winet

import (
	"context"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/guileb/circular-integration/internal/pkg/config"
)

const (
	getRegistersEndpoint = "/ajax/get-registers"
	setRegisterEndpoint  = "/ajax/set-register"

	setRegisterKey    = "002"
	setRegisterMemory = 1
)

// ajaxHeaders are required by the stove firmware on every register call,
// JSON content type included even though the body is form encoded.
var ajaxHeaders = map[string]string{
	"Content-Type":     "application/json; charset=utf-8",
	"X-Requested-With": "XMLHttpRequest",
	"Accept":           "application/json, text/javascript, */*; q=0.01",
}

func defaultHeaders() map[string]string {
	return map[string]string{
		"User-Agent": "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
			"AppleWebKit/537.36 (KHTML, like Gecko) " +
			"Chrome/141.0.0.0 Safari/537.36",
		"Accept-Language": "fr-FR,fr;q=0.6",
	}
}

// Client speaks the stove's local register protocol over http.
type Client struct {
	builder  *RequestBuilder
	executor *Executor
	logger   *zap.Logger
}

func WithExecutor(e *Executor) func(*Client) {
	return func(c *Client) {
		c.executor = e
	}
}

func New(cfg *config.StoveConfig, opts ...func(*Client)) *Client {
	c := &Client{
		builder: NewRequestBuilder("http://"+cfg.Host, defaultHeaders()),
		logger:  zap.L(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.executor == nil {
		c.executor = NewExecutor(nil)
	}
	return c
}

// Close releases any connections the client's executor owns.
func (c *Client) Close() error {
	return c.executor.Close()
}

// GetRegisters polls one category of registers. A reply whose "result" key is
// present is an action acknowledgement rather than state data: false is a
// soft rejection (logged, nil result, no error), true carries no registers.
func (c *Client) GetRegisters(ctx context.Context, key RegisterKey, category RegisterCategory) (*GetRegistersResult, error) {
	body := url.Values{"key": {key.String()}}
	if category != CategoryNone {
		body.Set("category", category.String())
	}

	res, err := c.executor.Execute(ctx, c.builder.Post(getRegistersEndpoint, body, ajaxHeaders))
	if err != nil {
		return nil, err
	}
	if !res.IsJSON() {
		c.logger.Debug("get-registers reply is not json",
			zap.String("key", key.String()),
			zap.Int("bytes", len(res.Text())))
		return nil, nil
	}
	if value, present := res.Result(); present {
		if !value {
			c.logger.Warn("get-registers rejected by device",
				zap.String("key", key.String()),
				zap.String("category", category.String()))
		}
		return nil, nil
	}

	result := &GetRegistersResult{}
	if err := res.Decode(result); err != nil {
		c.logger.Error("decoding get-registers reply", zap.Error(err))
		return nil, err
	}
	return result, nil
}

// SetRegister writes one register with the default key and memory bank. The
// device acknowledges without echoing state; callers observe the effect on
// the next poll.
func (c *Client) SetRegister(ctx context.Context, reg Register, value int) error {
	return c.SetRegisterKeyed(ctx, reg, value, setRegisterKey, setRegisterMemory)
}

func (c *Client) SetRegisterKeyed(ctx context.Context, reg Register, value int, key string, memory int) error {
	body := url.Values{
		"key":    {key},
		"memory": {strconv.Itoa(memory)},
		"regId":  {strconv.Itoa(reg.Int())},
		"value":  {strconv.Itoa(value)},
	}

	res, err := c.executor.Execute(ctx, c.builder.Post(setRegisterEndpoint, body, ajaxHeaders))
	if err != nil {
		return err
	}
	if ack, present := res.Result(); !present || !ack {
		c.logger.Debug("set-register not acknowledged",
			zap.Int("register", reg.Int()),
			zap.Int("value", value),
			zap.String("body", res.Text()))
	}
	return nil
}
