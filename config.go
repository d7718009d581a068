package clienttransport

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"github.com/oidckit/go-client-transport/certselect"
	"github.com/oidckit/go-client-transport/namecodec"
)

const (
	// DefaultNamePrefix marks transport names managed by this package.
	// Override with WithNamePrefix when the default could collide with an
	// existing naming scheme.
	DefaultNamePrefix = "clienttransport"

	// MaxBufferedResponseSize caps how much response body a managed client
	// delivers before failing the read: 10 MiB. A remote endpoint must not
	// be able to exhaust memory on a pooled client.
	MaxBufferedResponseSize int64 = 10 << 20

	// DefaultTimeout bounds every request made through a managed client.
	// It replaces the framework default because a slow endpoint must not
	// hold a pooled connection open indefinitely.
	DefaultTimeout = time.Minute
)

// CertificateSelector picks the TLS client certificate to present for a
// registration. Returning a nil certificate with a nil error means no eligible
// certificate was found, which is a valid outcome: the transport simply
// proceeds without a client certificate.
type CertificateSelector func(reg *Registration) (*tls.Certificate, error)

// ClientCustomizer adjusts a managed client after the security defaults are
// applied, so it may relax or tighten them.
type ClientCustomizer func(reg *Registration, client *http.Client)

// TransportCustomizer adjusts the managed client's primary transport after
// certificates are attached.
type TransportCustomizer func(reg *Registration, transport *http.Transport)

// Config is an immutable snapshot of the transport configurator. Build one
// with NewConfig; all defaulting is resolved there, never lazily at first use.
// A Config is safe for concurrent use by any number of transport builds.
type Config struct {
	prefix   string
	resolver RegistrationResolver

	standardSelector   CertificateSelector
	selfSignedSelector CertificateSelector

	clientCustomizers    []ClientCustomizer
	transportCustomizers []TransportCustomizer

	retryPolicy        RetryPolicy
	resiliencePipeline ResiliencePipeline

	logger  Logger
	metrics Metrics
	tracer  Tracer
}

// NewConfig builds a configurator snapshot from the supplied options.
//
// Example:
//
//	cfg, err := clienttransport.NewConfig(
//	    clienttransport.WithResolver(resolver),
//	    clienttransport.WithClientCustomizer(func(reg *clienttransport.Registration, c *http.Client) {
//	        c.Timeout = 2 * time.Minute
//	    }),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{
		prefix: DefaultNamePrefix,
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	c.applyDefaults()
	return c, nil
}

// NamePrefix returns the prefix that marks managed transport names.
func (c *Config) NamePrefix() string {
	return c.prefix
}

// ClientName builds a managed transport name for a registration under this
// configuration's prefix.
func (c *Config) ClientName(registrationID string, opts ...namecodec.NameOption) string {
	return namecodec.ClientName(c.prefix, registrationID, opts...)
}

func (c *Config) validate() error {
	if c.resolver == nil {
		return ErrResolverNil
	}
	if c.retryPolicy != nil && c.resiliencePipeline != nil {
		return ErrPolicyConflict
	}
	return nil
}

// applyDefaults resolves every optional collaborator once, at build time.
func (c *Config) applyDefaults() {
	if c.standardSelector == nil {
		c.standardSelector = func(reg *Registration) (*tls.Certificate, error) {
			return certselect.SelectStandard(reg.Keys), nil
		}
	}
	if c.selfSignedSelector == nil {
		c.selfSignedSelector = func(reg *Registration) (*tls.Certificate, error) {
			return certselect.SelectSelfSigned(reg.Keys), nil
		}
	}
	if c.logger == nil {
		c.logger = noopLogger{}
	}
	if c.metrics == nil {
		c.metrics = &NoopMetrics{}
	}
	if c.tracer == nil {
		c.tracer = &NoopTracer{}
	}
}
