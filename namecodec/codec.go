// Package namecodec encodes per-client properties into pooled transport names.
//
// Connection pools key cached HTTP clients by a flat name string and offer no
// side channel for passing per-instance context to the code that builds a new
// client. This package smuggles a small string property bag through the name
// itself: Encode folds the properties into the name, Decode recovers them at
// build time. The delimiters are two ASCII control characters, so they can
// never collide with legitimate registration identifiers.
//
// Names without the expected prefix belong to transports this system does not
// manage; Decode returns an empty bag for them and callers must leave such
// transports untouched.
package namecodec

import (
	"sort"
	"strconv"
	"strings"
)

const (
	// entrySep separates key/value entries inside an encoded name (ASCII
	// unit separator).
	entrySep = "\x1f"

	// pairSep separates a key from its value inside an entry (ASCII record
	// separator).
	pairSep = "\x1e"
)

// Property keys recognized by the transport configurator. Unknown keys are
// carried through Decode but otherwise ignored.
const (
	// KeyRegistrationID names the client registration a pooled transport
	// belongs to. Without it a managed name triggers no configuration.
	KeyRegistrationID = "RegistrationId"

	// KeyAttachClientCertificate requests a standard (CA-issued) TLS client
	// certificate. Boolean string.
	KeyAttachClientCertificate = "AttachTlsClientCertificate"

	// KeyAttachSelfSignedClientCertificate requests a self-signed TLS client
	// certificate. Boolean string.
	KeyAttachSelfSignedClientCertificate = "AttachSelfSignedTlsClientCertificate"
)

// Properties is a flat property bag decoded from a transport name. It is
// scoped to a single transport build and never shared across builds.
type Properties map[string]string

// RegistrationID returns the registration identifier carried by the bag, or
// the empty string when none is present.
func (p Properties) RegistrationID() string {
	return p[KeyRegistrationID]
}

// Bool interprets the named property as a boolean string. Absent or
// unparseable values are false.
func (p Properties) Bool(key string) bool {
	v, ok := p[key]
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false
	}
	return b
}

// Encode folds props into a single transport name under the given prefix.
// Entries are emitted in sorted key order so equal property bags always yield
// equal names, which is what keeps the pool cache effective.
//
// Entries with an empty key or value survive encoding but are dropped again
// by Decode; callers that care must reject them before encoding.
func Encode(prefix string, props map[string]string) string {
	var sb strings.Builder
	sb.WriteString(prefix)
	sb.WriteString(":")

	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for i, k := range keys {
		if i > 0 {
			sb.WriteString(entrySep)
		}
		sb.WriteString(k)
		sb.WriteString(pairSep)
		sb.WriteString(props[k])
	}
	return sb.String()
}

// Decode recovers the property bag encoded into name. Names that do not start
// with prefix + ":" are not managed by this system and decode to an empty bag.
// Malformed entries (missing the pair separator, empty key or value, or more
// than one pair separator) are dropped silently; decoding never fails. When a
// key repeats, the last occurrence wins.
func Decode(name, prefix string) Properties {
	props := Properties{}

	marker := prefix + ":"
	if !strings.HasPrefix(name, marker) {
		return props
	}

	payload := name[len(marker):]
	if payload == "" {
		return props
	}

	for _, entry := range strings.Split(payload, entrySep) {
		key, value, ok := strings.Cut(entry, pairSep)
		if !ok || key == "" || value == "" {
			continue
		}
		if strings.Contains(value, pairSep) {
			continue
		}
		props[key] = value
	}
	return props
}

// IsManaged reports whether name carries the managed-transport prefix. The
// post-construction hardening pass uses this to decide whether a transport
// belongs to this system at all, independent of any decoded properties.
func IsManaged(name, prefix string) bool {
	return strings.HasPrefix(name, prefix+":")
}

// NameOption adds a property to a name built by ClientName.
type NameOption func(Properties)

// WithClientCertificate requests a standard TLS client certificate for the
// transport named by ClientName.
func WithClientCertificate() NameOption {
	return func(p Properties) {
		p[KeyAttachClientCertificate] = "true"
	}
}

// WithSelfSignedClientCertificate requests a self-signed TLS client
// certificate for the transport named by ClientName.
func WithSelfSignedClientCertificate() NameOption {
	return func(p Properties) {
		p[KeyAttachSelfSignedClientCertificate] = "true"
	}
}

// WithProperty attaches an arbitrary key/value pair to the name. Keys and
// values must be non-empty and must not contain the reserved delimiter
// characters; violations make the entry lossy (it is dropped on decode).
func WithProperty(key, value string) NameOption {
	return func(p Properties) {
		p[key] = value
	}
}

// ClientName builds a well-formed managed transport name for a registration.
// It is the encoding counterpart of the configurator's Decode step:
//
//	name := namecodec.ClientName("pfx", "reg-1", namecodec.WithClientCertificate())
//	client, err := pool.Get(ctx, name)
func ClientName(prefix, registrationID string, opts ...NameOption) string {
	props := Properties{KeyRegistrationID: registrationID}
	for _, opt := range opts {
		opt(props)
	}
	return Encode(prefix, props)
}
