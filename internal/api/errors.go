package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"
)

// Describe turns a transport error into a short, actionable sentence for
// logs and CLI output. It never sees HTTP status errors; those arrive as
// responses.
func Describe(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, context.Canceled) {
		return "Request cancelled"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "Request timeout - the tokenization server did not answer in time"
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return "Request timeout - the tokenization server did not answer in time"
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		switch {
		case errors.Is(opErr.Err, syscall.ECONNREFUSED):
			return "Connection refused - check that the server address is correct and the server is running"
		case errors.Is(opErr.Err, syscall.ECONNRESET):
			return "Connection reset by server"
		case errors.Is(opErr.Err, syscall.ENETUNREACH), errors.Is(opErr.Err, syscall.EHOSTUNREACH):
			return "Network unreachable - check network connection and firewall settings"
		}
	}

	return describeString(err.Error())
}

func describeString(errStr string) string {
	errLower := strings.ToLower(errStr)

	switch {
	case strings.Contains(errLower, "no such host"), strings.Contains(errLower, "dial tcp: lookup"):
		return "DNS resolution failed - verify the server address"
	case strings.Contains(errLower, "connection refused"):
		return "Connection refused - check that the server address is correct and the server is running"
	case strings.Contains(errLower, "x509"), strings.Contains(errLower, "certificate"), strings.Contains(errLower, "tls"):
		return "TLS error - the server certificate could not be verified: " + errStr
	case strings.Contains(errLower, "unsupported protocol"), strings.Contains(errLower, "invalid url"):
		return "Invalid server address - include the scheme (http:// or https://)"
	case strings.Contains(errLower, "eof"):
		return "Connection closed unexpectedly by the server"
	}

	return "Request failed: " + errStr
}

// ErrStatus is wrapped by StatusError for non-2xx responses
var ErrStatus = errors.New("unexpected status")

// StatusError returns an error for a non-2xx response, or nil
func StatusError(resp *Response) error {
	if resp == nil || resp.OK() {
		return nil
	}
	return fmt.Errorf("%w: %d", ErrStatus, resp.Status)
}
