package clienttransport

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"

	"github.com/oidckit/go-client-transport/namecodec"
)

// Configure is the pre-construction hook of the transport pipeline. The host
// mechanism calls it while building the named client, before the client is
// handed to anyone.
//
// Names without the managed prefix, and managed names that carry no
// registration identifier, are left untouched; neither is an error. For a
// recognized name the configurator resolves the registration, applies the
// security defaults, runs the client customizers, puts the transport into
// manual certificate mode, attaches the certificates the name's properties
// request, runs the transport customizers, and finally attaches at most one
// resilience policy.
//
// A registration identifier that the resolver cannot find is fatal and
// propagates to the caller of the build.
func (c *Config) Configure(ctx context.Context, name string, client *http.Client) error {
	props := namecodec.Decode(name, c.prefix)
	id := props.RegistrationID()
	if id == "" {
		return nil
	}

	ctx, span := c.tracer.StartSpan(ctx, "clienttransport.Configure")
	defer span.Finish()
	span.SetTag("registration_id", id)

	reg, err := c.resolver.GetRegistrationByID(ctx, id)
	if err != nil {
		span.SetError(err)
		c.metrics.IncCounter(metricResolveFailed, map[string]string{"registration_id": id})
		return fmt.Errorf("resolving registration %q: %w", id, err)
	}

	c.applySecurityDefaults(client)

	for _, customize := range c.clientCustomizers {
		customize(reg, client)
	}

	transport, err := c.primaryTransport(client)
	if err != nil {
		span.SetError(err)
		return err
	}

	tlsCfg := manualCertificateMode(transport)

	if props.Bool(namecodec.KeyAttachClientCertificate) {
		if err := c.attachCertificate(span, tlsCfg, reg, c.standardSelector, "standard"); err != nil {
			return err
		}
	}
	if props.Bool(namecodec.KeyAttachSelfSignedClientCertificate) {
		if err := c.attachCertificate(span, tlsCfg, reg, c.selfSignedSelector, "self-signed"); err != nil {
			return err
		}
	}

	for _, customize := range c.transportCustomizers {
		customize(reg, transport)
	}

	c.attachPolicy(client)

	c.metrics.IncCounter(metricTransportConfigured, map[string]string{"registration_id": id})
	c.logger.Debugf("configured managed transport for registration %q", id)
	return nil
}

// PostConfigure is the post-construction hardening pass. It applies to every
// managed name, whether or not Configure resolved a registration, and is
// idempotent.
//
// Two invariants are enforced unconditionally:
//
//   - Automatic content decompression is off. Decoding compressed responses
//     belongs to a content-layer component; doing it in the transport would
//     implicitly send Accept-Encoding, which carries compression-oracle risk
//     when secrets can appear in reflected responses.
//   - Cookie handling is off. Pooled clients are shared between logically
//     distinct callers, and a jar would leak cookies across them.
//
// When the client's primary transport is not certificate-capable at this
// point, it is force-replaced with a fresh *http.Transport first.
func (c *Config) PostConfigure(name string, client *http.Client) {
	if !namecodec.IsManaged(name, c.prefix) {
		return
	}

	transport := c.forcePrimaryTransport(client)
	transport.DisableCompression = true
	client.Jar = nil
}

// applySecurityDefaults caps the buffered response size and the request
// timeout. It runs before any user customization so delegates can still
// override both.
func (c *Config) applySecurityDefaults(client *http.Client) {
	client.Timeout = DefaultTimeout

	if _, ok := client.Transport.(*LimitedTransport); ok {
		return
	}

	base := client.Transport
	primary, _ := base.(*http.Transport)
	if base == nil {
		primary = defaultTransport()
		base = primary
	}
	client.Transport = &LimitedTransport{
		Base:    base,
		Limit:   MaxBufferedResponseSize,
		primary: primary,
	}
}

// primaryTransport locates the certificate-capable transport at the bottom of
// the client's round-tripper chain.
func (c *Config) primaryTransport(client *http.Client) (*http.Transport, error) {
	rt := client.Transport
	if lt, ok := rt.(*LimitedTransport); ok {
		if transport, ok := lt.Base.(*http.Transport); ok {
			return transport, nil
		}
		if lt.primary != nil {
			return lt.primary, nil
		}
		rt = lt.Base
	}
	transport, ok := rt.(*http.Transport)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrTransportNotCertCapable, rt)
	}
	return transport, nil
}

// forcePrimaryTransport is the replace-then-harden variant used by
// PostConfigure: a missing or non-certificate-capable primary transport is
// swapped for a fresh one instead of failing.
func (c *Config) forcePrimaryTransport(client *http.Client) *http.Transport {
	if transport, err := c.primaryTransport(client); err == nil {
		return transport
	}

	transport := defaultTransport()
	if lt, ok := client.Transport.(*LimitedTransport); ok {
		lt.Base = transport
		lt.primary = transport
	} else {
		client.Transport = transport
	}
	c.logger.Warnf("replaced non certificate-capable primary transport on managed client")
	return transport
}

// manualCertificateMode puts the transport's TLS config into explicit
// certificate selection: only certificates attached by this configurator land
// in Certificates, and crypto/tls picks among them against the server's
// CertificateRequest. Absent any, the handshake proceeds without one. No
// ambient discovery happens; GetClientCertificate is left to the host.
// Idempotent.
func manualCertificateMode(transport *http.Transport) *tls.Config {
	if transport.TLSClientConfig == nil {
		transport.TLSClientConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return transport.TLSClientConfig
}

func (c *Config) attachCertificate(span Span, tlsCfg *tls.Config, reg *Registration, selector CertificateSelector, method string) error {
	crt, err := selector(reg)
	if err != nil {
		err = fmt.Errorf("selecting %s TLS client certificate for registration %q: %w", method, reg.ID, err)
		span.SetError(err)
		return err
	}
	if crt == nil {
		// A valid outcome: the request proceeds without a client
		// certificate.
		span.SetTag("certificate."+method, "no_match")
		c.metrics.IncCounter(metricCertificateNoMatch, map[string]string{"method": method})
		c.logger.Debugf("no eligible %s TLS client certificate for registration %q", method, reg.ID)
		return nil
	}

	tlsCfg.Certificates = append(tlsCfg.Certificates, *crt)
	span.SetTag("certificate."+method, "attached")
	c.metrics.IncCounter(metricCertificateAttached, map[string]string{"method": method})
	return nil
}

// attachPolicy wraps the chain below the response limiter with at most one
// resilience policy. Mutual exclusion of the two policy kinds is enforced at
// NewConfig time.
func (c *Config) attachPolicy(client *http.Client) {
	var wrap func(http.RoundTripper) http.RoundTripper
	switch {
	case c.retryPolicy != nil:
		wrap = c.retryPolicy
	case c.resiliencePipeline != nil:
		wrap = c.resiliencePipeline.Apply
	default:
		return
	}

	if lt, ok := client.Transport.(*LimitedTransport); ok {
		if transport, ok := lt.Base.(*http.Transport); ok {
			lt.primary = transport
		}
		lt.Base = wrap(lt.Base)
		return
	}
	client.Transport = wrap(client.Transport)
}

// defaultTransport clones http.DefaultTransport so managed clients never
// share TLS state with the process-wide default.
func defaultTransport() *http.Transport {
	if transport, ok := http.DefaultTransport.(*http.Transport); ok {
		return transport.Clone()
	}
	return &http.Transport{}
}
