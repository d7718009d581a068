package clienttransport

import "net/http"

// RetryPolicy is the legacy-style resilience hook: a delegate that decorates
// the transport chain with retry behavior. The policy itself is opaque to this
// package; it is attached, never interpreted.
type RetryPolicy func(next http.RoundTripper) http.RoundTripper

// ResiliencePipeline is the newer pipeline-style resilience hook. Like
// RetryPolicy it is opaque to this package. A Config carries at most one of
// the two; NewConfig rejects both being set.
type ResiliencePipeline interface {
	// Apply wraps next with the pipeline's behavior and returns the
	// decorated round tripper.
	Apply(next http.RoundTripper) http.RoundTripper
}
