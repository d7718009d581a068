package clienttransport

import "errors"

// Option configures a Config under construction.
// Returns error for validation failures.
type Option func(*Config) error

// WithResolver sets the registration resolver (REQUIRED). The resolver is
// consulted once per transport build to look up the registration named by the
// transport's encoded properties.
func WithResolver(r RegistrationResolver) Option {
	return func(c *Config) error {
		if r == nil {
			return ErrResolverNil
		}
		c.resolver = r
		return nil
	}
}

// WithNamePrefix sets the prefix that marks transport names as managed by
// this configurator. Names without the prefix are left untouched.
//
// Default: DefaultNamePrefix
func WithNamePrefix(prefix string) Option {
	return func(c *Config) error {
		if prefix == "" {
			return ErrPrefixEmpty
		}
		c.prefix = prefix
		return nil
	}
}

// WithCertificateSelector overrides the selector used for standard TLS client
// authentication. The override always takes precedence over the built-in
// selection algorithm, which is never invoked alongside it.
//
// Default: certselect.SelectStandard over the registration's keys
func WithCertificateSelector(s CertificateSelector) Option {
	return func(c *Config) error {
		if s == nil {
			return ErrSelectorNil
		}
		c.standardSelector = s
		return nil
	}
}

// WithSelfSignedCertificateSelector overrides the selector used for
// self-signed TLS client authentication.
//
// Default: certselect.SelectSelfSigned over the registration's keys
func WithSelfSignedCertificateSelector(s CertificateSelector) Option {
	return func(c *Config) error {
		if s == nil {
			return ErrSelectorNil
		}
		c.selfSignedSelector = s
		return nil
	}
}

// WithClientCustomizer appends a client-level customization delegate.
// Delegates run in registration order, after the security defaults are
// applied, so they may override them.
func WithClientCustomizer(f ClientCustomizer) Option {
	return func(c *Config) error {
		if f == nil {
			return ErrCustomizerNil
		}
		c.clientCustomizers = append(c.clientCustomizers, f)
		return nil
	}
}

// WithTransportCustomizer appends a transport-level customization delegate.
// Delegates run in registration order, after certificates are attached.
func WithTransportCustomizer(f TransportCustomizer) Option {
	return func(c *Config) error {
		if f == nil {
			return ErrCustomizerNil
		}
		c.transportCustomizers = append(c.transportCustomizers, f)
		return nil
	}
}

// WithRetryPolicy attaches the legacy-style retry policy to every managed
// transport. Mutually exclusive with WithResiliencePipeline; NewConfig fails
// when both are supplied.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Config) error {
		if p == nil {
			return ErrPolicyNil
		}
		c.retryPolicy = p
		return nil
	}
}

// WithResiliencePipeline attaches the pipeline-style resilience policy to
// every managed transport. Mutually exclusive with WithRetryPolicy.
func WithResiliencePipeline(p ResiliencePipeline) Option {
	return func(c *Config) error {
		if p == nil {
			return ErrPolicyNil
		}
		c.resiliencePipeline = p
		return nil
	}
}

// WithLogger sets an optional logger used throughout the configuration flow.
//
// Example:
//
//	cfg, err := clienttransport.NewConfig(
//	    clienttransport.WithResolver(resolver),
//	    clienttransport.WithLogger(clienttransport.NewLogrusLogger(logrus.StandardLogger())),
//	)
func WithLogger(logger Logger) Option {
	return func(c *Config) error {
		if logger == nil {
			return ErrLoggerNil
		}
		c.logger = logger
		return nil
	}
}

// WithMetrics sets an optional metrics sink.
func WithMetrics(m Metrics) Option {
	return func(c *Config) error {
		if m == nil {
			return ErrMetricsNil
		}
		c.metrics = m
		return nil
	}
}

// WithTracer sets an optional tracer spanning each configuration call.
func WithTracer(t Tracer) Option {
	return func(c *Config) error {
		if t == nil {
			return ErrTracerNil
		}
		c.tracer = t
		return nil
	}
}

// Sentinel errors for configuration validation
var (
	ErrResolverNil    = errors.New("resolver cannot be nil (use WithResolver)")
	ErrPrefixEmpty    = errors.New("name prefix cannot be empty")
	ErrSelectorNil    = errors.New("certificate selector cannot be nil")
	ErrCustomizerNil  = errors.New("customizer cannot be nil")
	ErrPolicyNil      = errors.New("policy cannot be nil")
	ErrPolicyConflict = errors.New("retry policy and resilience pipeline are mutually exclusive")
	ErrLoggerNil      = errors.New("logger cannot be nil")
	ErrMetricsNil     = errors.New("metrics cannot be nil")
	ErrTracerNil      = errors.New("tracer cannot be nil")
)
