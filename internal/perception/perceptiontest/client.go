// Package perceptiontest provides a scripted perception.Client for tests.
package perceptiontest

import (
	"context"
	"errors"
	"sync"

	"github.com/RUBESHR7/compass-qa/internal/perception"
)

// Reply is one scripted response.
type Reply struct {
	Text string
	Err  error
}

// Client replays scripted replies in order. When the script is exhausted
// it returns an error.
type Client struct {
	mu       sync.Mutex
	replies  []Reply
	requests []perception.Request
	models   []perception.ModelInfo

	// Gate, when non-nil, blocks every Generate until a value is received
	// or ctx is done.
	Gate chan struct{}
	// Started, when non-nil, receives a value as each Generate begins.
	Started chan struct{}
}

// New returns a client that answers with replies in order.
func New(replies ...Reply) *Client {
	return &Client{replies: replies}
}

// Text is shorthand for a successful reply.
func Text(s string) Reply { return Reply{Text: s} }

// Fail is shorthand for a failing reply.
func Fail(err error) Reply { return Reply{Err: err} }

// Push appends replies to the script.
func (c *Client) Push(replies ...Reply) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.replies = append(c.replies, replies...)
}

// WithModels sets the models returned by ListModels.
func (c *Client) WithModels(models ...perception.ModelInfo) *Client {
	c.models = models
	return c
}

// Model implements perception.Client.
func (c *Client) Model() string { return "scripted" }

// Generate implements perception.Client.
func (c *Client) Generate(ctx context.Context, req perception.Request) (string, error) {
	if c.Started != nil {
		c.Started <- struct{}{}
	}
	if c.Gate != nil {
		select {
		case <-c.Gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, req)
	if len(c.replies) == 0 {
		return "", &perception.TransportError{Provider: "scripted", Err: errors.New("no scripted reply")}
	}
	r := c.replies[0]
	c.replies = c.replies[1:]
	return r.Text, r.Err
}

// ListModels implements perception.ModelLister.
func (c *Client) ListModels(ctx context.Context) ([]perception.ModelInfo, error) {
	return c.models, nil
}

// Requests returns every request received so far.
func (c *Client) Requests() []perception.Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]perception.Request, len(c.requests))
	copy(out, c.requests)
	return out
}

// Calls returns the number of requests received.
func (c *Client) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.requests)
}
