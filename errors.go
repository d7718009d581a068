package clienttransport

import "errors"

var (
	// ErrRegistrationNotFound is returned by resolvers when no registration
	// matches the requested identifier. During Configure it is fatal: a
	// managed name that names a missing registration is a configuration
	// error.
	ErrRegistrationNotFound = errors.New("client registration not found")

	// ErrTransportNotCertCapable is returned by Configure when the client's
	// primary transport is not a *http.Transport. Without one the
	// configurator cannot attach TLS client certificates or control
	// compression, so this is a host misconfiguration rather than something
	// to silently work around.
	ErrTransportNotCertCapable = errors.New("client transport is not a *http.Transport")

	// ErrResponseTooLarge is surfaced while reading a response body that
	// exceeds the buffered response cap.
	ErrResponseTooLarge = errors.New("response body exceeds configured limit")
)
