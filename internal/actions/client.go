// Package actions holds the action creators and thunks. Thunks perform
// backend calls through an api.Fetcher and report their outcome by
// dispatching store actions.
package actions

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/studiowebux/tokenctl/internal/api"
	"github.com/studiowebux/tokenctl/internal/config"
	"github.com/studiowebux/tokenctl/internal/storage"
	"github.com/studiowebux/tokenctl/internal/store"
)

// Thunk is an asynchronous action creator
type Thunk func(ctx context.Context, d store.Dispatcher)

// Client builds thunks bound to a fetcher and durable storage
type Client struct {
	fetcher   api.Fetcher
	storage   storage.Storage
	tableRows int
	log       zerolog.Logger

	wg sync.WaitGroup
}

// Option configures a Client
type Option func(*Client)

// WithTableRows sets the page size used by the count thunk
func WithTableRows(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.tableRows = n
		}
	}
}

// WithLogger sets the client logger
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient creates a Client. A FixtureFetcher puts every thunk in mocked
// mode.
func NewClient(f api.Fetcher, st storage.Storage, opts ...Option) *Client {
	c := &Client{
		fetcher:   f,
		storage:   st,
		tableRows: config.DefaultTableRows,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Mocked reports whether the client answers from fixtures
func (c *Client) Mocked() bool {
	return api.IsStub(c.fetcher)
}

// Run executes t on its own goroutine
func (c *Client) Run(ctx context.Context, d store.Dispatcher, t Thunk) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		t(ctx, d)
	}()
}

// Wait blocks until every thunk started with Run has returned
func (c *Client) Wait() {
	c.wg.Wait()
}
