package xtid

import (
	"log/slog"
	"net/http"
)

// HeaderName is the request header the transaction id travels in.
const HeaderName = "x-client-transaction-id"

// Transport decorates an http.RoundTripper so every outgoing request carries
// a freshly generated x-client-transaction-id header. When generation fails
// the request proceeds without the header; the server's rejection is the
// caller's cue to refresh.
type Transport struct {
	// Base is the wrapped round tripper; http.DefaultTransport when nil.
	Base http.RoundTripper

	// Manager supplies the transaction ids.
	Manager *Manager
}

// RoundTrip injects the header and delegates to the base transport.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if id, err := t.Manager.GenerateID(req.Context(), req.Method, req.URL.Path); err == nil {
		req = req.Clone(req.Context())
		req.Header.Set(HeaderName, id)
	} else {
		slog.Debug("xtid: failed to generate transaction id", slog.Any("error", err))
	}

	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}
