// Package certselect picks the TLS client certificate to present for a client
// registration's signing credentials.
//
// Two client-authentication methods are supported: self-signed TLS client
// authentication and standard (CA-issued) TLS client authentication. The
// selectors scan a registration's JWKs in order and return the first
// certificate whose structural X.509 attributes fit the requested method.
// No chain validation or trust evaluation happens here; selection looks at a
// single certificate's attributes only.
package certselect

import (
	"bytes"
	"crypto/x509"
	"encoding/asn1"
)

// oidClientAuth is id-kp-clientAuth from RFC 5280, the extended key usage
// required for TLS client authentication.
var oidClientAuth = asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 3, 2}

// IsSelfIssued reports whether the certificate's subject and issuer names are
// byte-for-byte identical.
//
// This is an approximation of "self-signed" that skips signature verification.
// A full self-signature check would need the public key operation on every
// candidate during selection; comparing the raw encoded names is a structural
// test that holds for every self-signed certificate in practice.
func IsSelfIssued(c *x509.Certificate) bool {
	return bytes.Equal(c.RawSubject, c.RawIssuer)
}

// HasDigitalSignatureUsage reports whether the certificate carries a Key Usage
// extension with the Digital Signature bit set. A certificate without a Key
// Usage extension does not qualify.
func HasDigitalSignatureUsage(c *x509.Certificate) bool {
	return c.KeyUsage&x509.KeyUsageDigitalSignature != 0
}

// HasClientAuthEKU reports whether the certificate's Extended Key Usage
// extension lists TLS client authentication (1.3.6.1.5.5.7.3.2).
func HasClientAuthEKU(c *x509.Certificate) bool {
	for _, eku := range c.ExtKeyUsage {
		if eku == x509.ExtKeyUsageClientAuth {
			return true
		}
	}
	for _, oid := range c.UnknownExtKeyUsage {
		if oid.Equal(oidClientAuth) {
			return true
		}
	}
	return false
}

// eligible reports whether the certificate qualifies for the authentication
// method indicated by selfIssued. Extensions are only meaningful on X.509v3,
// so older versions never qualify.
func eligible(c *x509.Certificate, selfIssued bool) bool {
	if c.Version < 3 {
		return false
	}
	if IsSelfIssued(c) != selfIssued {
		return false
	}
	return HasDigitalSignatureUsage(c) && HasClientAuthEKU(c)
}
