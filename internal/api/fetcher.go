package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// HeaderOrgUID carries the home organization on every backend response
const HeaderOrgUID = "x-org-uid"

// HeaderAPIKey authenticates requests once the user has signed in
const HeaderAPIKey = "x-api-key"

// Param is a single query parameter
type Param struct {
	Key   string
	Value string
}

// Query is an ordered list of query parameters; keys may repeat
type Query []Param

// Add appends a parameter
func (q Query) Add(key, value string) Query {
	return append(q, Param{Key: key, Value: value})
}

// Get returns the first value for key
func (q Query) Get(key string) string {
	for _, p := range q {
		if p.Key == key {
			return p.Value
		}
	}
	return ""
}

// Values returns every value for key, in order
func (q Query) Values(key string) []string {
	var out []string
	for _, p := range q {
		if p.Key == key {
			out = append(out, p.Value)
		}
	}
	return out
}

// Encode renders the query in insertion order
func (q Query) Encode() string {
	parts := make([]string, 0, len(q))
	for _, p := range q {
		parts = append(parts, url.QueryEscape(p.Key)+"="+url.QueryEscape(p.Value))
	}
	return strings.Join(parts, "&")
}

// Request describes one backend call relative to the API host
type Request struct {
	Method string
	Path   string
	Query  Query
	// Body is JSON encoded when non-nil
	Body any
}

// Get builds a GET request
func Get(path string, query Query) Request {
	return Request{Method: http.MethodGet, Path: path, Query: query}
}

// Post builds a POST request with a JSON body
func Post(path string, body any) Request {
	return Request{Method: http.MethodPost, Path: path, Body: body}
}

// Response is a fully read backend response
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// OK reports a 2xx status
func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Fetcher performs backend requests. A transport failure is returned as
// an error; any HTTP status, including errors, is a Response.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) (*Response, error)
}

// Stub marks fetchers that answer from local fixtures. Callers skip loading
// indicators and notifications for them.
type Stub interface {
	Fetcher
	Stubbed() bool
}

// IsStub reports whether f answers from fixtures
func IsStub(f Fetcher) bool {
	s, ok := f.(Stub)
	return ok && s.Stubbed()
}
