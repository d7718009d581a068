package clienttransport

import (
	"io"
	"net/http"
)

// LimitedTransport caps how much of every response body a managed client
// delivers. The configurator installs it as the outermost round tripper with
// Limit set to MaxBufferedResponseSize; a client customizer that needs a
// different cap can type-assert the client's Transport and adjust Limit.
type LimitedTransport struct {
	// Base is the next round tripper in the chain.
	Base http.RoundTripper

	// Limit is the maximum number of body bytes delivered per response.
	// Reading past it fails with ErrResponseTooLarge.
	Limit int64

	// primary is the certificate-capable transport at the bottom of the
	// chain, kept reachable through any opaque policy wrapper in Base.
	primary *http.Transport
}

func (t *LimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.Base.RoundTrip(req)
	if err != nil || resp == nil || resp.Body == nil {
		return resp, err
	}
	resp.Body = &limitedBody{body: resp.Body, remaining: t.Limit}
	return resp, nil
}

// CloseIdleConnections forwards to the underlying transport so the client's
// idle-connection management keeps working through the wrapper.
func (t *LimitedTransport) CloseIdleConnections() {
	if t.primary != nil {
		t.primary.CloseIdleConnections()
		return
	}
	type closeIdler interface{ CloseIdleConnections() }
	if ci, ok := t.Base.(closeIdler); ok {
		ci.CloseIdleConnections()
	}
}

// limitedBody delivers at most `remaining` bytes. One extra byte is requested
// from the underlying body so oversize is detected on the read that crosses
// the cap rather than on the next one.
type limitedBody struct {
	body      io.ReadCloser
	remaining int64
}

func (b *limitedBody) Read(p []byte) (int, error) {
	if b.remaining < 0 {
		return 0, ErrResponseTooLarge
	}
	if int64(len(p)) > b.remaining+1 {
		p = p[:b.remaining+1]
	}
	n, err := b.body.Read(p)
	if int64(n) > b.remaining {
		n = int(b.remaining)
		b.remaining = -1
		return n, ErrResponseTooLarge
	}
	b.remaining -= int64(n)
	return n, err
}

func (b *limitedBody) Close() error {
	return b.body.Close()
}
