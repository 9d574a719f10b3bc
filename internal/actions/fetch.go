package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/studiowebux/tokenctl/internal/api"
	"github.com/studiowebux/tokenctl/internal/store"
	"github.com/studiowebux/tokenctl/internal/types"
)

type fetchParams struct {
	Request          api.Request
	SuccessMessageID string
	FailedMessageID  string
	OnSuccess        func(body []byte) error
	OnFailed         func()
}

// fetchWrapper performs one backend call and turns the outcome into
// loader, connectivity, home org and notification actions. An error from
// OnSuccess is handled like a transport failure. Stub fetchers skip all of
// that and hand the body straight to OnSuccess.
func (c *Client) fetchWrapper(ctx context.Context, d store.Dispatcher, p fetchParams) {
	if api.IsStub(c.fetcher) {
		c.fetchStub(ctx, p)
		return
	}

	d.Dispatch(store.ActivateProgressIndicator{})
	defer d.Dispatch(store.DeactivateProgressIndicator{})

	// unreachable clears connectivity and shows the caller's failure id.
	// Transport errors and unreadable bodies both end here.
	unreachable := func(err error) {
		c.log.Error().Err(err).Str("path", p.Request.Path).Msg(api.Describe(err))
		d.Dispatch(store.ConnectionCheck{Reachable: false})
		if p.FailedMessageID != "" {
			notifyIfValid(d, types.NotificationError, p.FailedMessageID)
		}
		if p.OnFailed != nil {
			p.OnFailed()
		}
	}

	resp, err := c.fetcher.Fetch(ctx, p.Request)
	if err != nil {
		unreachable(err)
		return
	}

	d.Dispatch(store.NewSetHomeOrg(resp.Header.Get(api.HeaderOrgUID)))

	if resp.OK() {
		d.Dispatch(store.ConnectionCheck{Reachable: true})
		if p.SuccessMessageID != "" {
			notifyIfValid(d, types.NotificationSuccess, p.SuccessMessageID)
		}
		if p.OnSuccess == nil {
			return
		}
		if !json.Valid(resp.Body) {
			unreachable(fmt.Errorf("response from %s is not JSON", p.Request.Path))
			return
		}
		if err := p.OnSuccess(resp.Body); err != nil {
			unreachable(err)
		}
		return
	}

	if !json.Valid(resp.Body) {
		unreachable(fmt.Errorf("%w: body is not JSON", api.StatusError(resp)))
		return
	}

	c.log.Warn().
		Err(api.StatusError(resp)).
		Str("path", p.Request.Path).
		Msg("request rejected")
	if p.FailedMessageID != "" {
		notifyIfValid(d, types.NotificationError, FormatAPIError(resp.Body, p.FailedMessageID))
	}
	if p.OnFailed != nil {
		p.OnFailed()
	}
}

func (c *Client) fetchStub(ctx context.Context, p fetchParams) {
	resp, err := c.fetcher.Fetch(ctx, p.Request)
	if err == nil {
		err = api.StatusError(resp)
	}
	if err != nil {
		c.log.Debug().Err(err).Str("path", p.Request.Path).Msg("stub request failed")
		if p.OnFailed != nil {
			p.OnFailed()
		}
		return
	}
	if p.OnSuccess == nil {
		return
	}
	if err := p.OnSuccess(resp.Body); err != nil {
		c.log.Debug().Err(err).Str("path", p.Request.Path).Msg("stub response rejected")
		if p.OnFailed != nil {
			p.OnFailed()
		}
	}
}

// FormatAPIError derives a notification message from an error body:
// "message: e1 ; e2 ; " when both message and errors are present, else the
// error field, else fallback.
func FormatAPIError(body []byte, fallback string) string {
	var apiErr types.APIError
	if err := json.Unmarshal(body, &apiErr); err != nil {
		return fallback
	}

	if apiErr.Message != "" && len(apiErr.Errors) > 0 {
		var b strings.Builder
		b.WriteString(apiErr.Message)
		b.WriteString(": ")
		for _, e := range apiErr.Errors {
			b.WriteString(e)
			b.WriteString(" ; ")
		}
		return b.String()
	}
	if apiErr.Err != "" {
		return apiErr.Err
	}
	return fallback
}
