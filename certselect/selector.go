package certselect

import (
	"crypto"
	"crypto/tls"
	"crypto/x509"

	"github.com/lestrrat-go/jwx/v2/cert"
	"github.com/lestrrat-go/jwx/v2/jwk"
)

// SelectSelfSigned returns the first credential in keys that wraps an X.509
// certificate eligible for self-signed TLS client authentication, or nil when
// none qualifies.
//
// Selection is deterministic: it depends only on key order and certificate
// content. Results are never cached because a registration's credentials may
// rotate between calls.
func SelectSelfSigned(keys jwk.Set) *tls.Certificate {
	return selectFirst(keys, true)
}

// SelectStandard returns the first credential in keys that wraps an X.509
// certificate eligible for standard TLS client authentication, meaning a
// CA-issued certificate whose subject differs from its issuer. Returns nil
// when none qualifies.
func SelectStandard(keys jwk.Set) *tls.Certificate {
	return selectFirst(keys, false)
}

func selectFirst(keys jwk.Set, selfIssued bool) *tls.Certificate {
	if keys == nil {
		return nil
	}
	for i := 0; i < keys.Len(); i++ {
		key, ok := keys.Key(i)
		if !ok {
			continue
		}
		leaf := leafCertificate(key)
		if leaf == nil {
			continue
		}
		if !eligible(leaf, selfIssued) {
			continue
		}
		return tlsCertificate(key, leaf)
	}
	return nil
}

// leafCertificate extracts the leaf of the key's x5c chain. Keys without a
// chain, or with an unparseable leaf, carry no usable certificate and are
// skipped by the selectors.
func leafCertificate(key jwk.Key) *x509.Certificate {
	chain := key.X509CertChain()
	if chain == nil || chain.Len() == 0 {
		return nil
	}
	entry, ok := chain.Get(0)
	if !ok {
		return nil
	}
	leaf, err := cert.Parse(entry)
	if err != nil {
		return nil
	}
	return leaf
}

// tlsCertificate pairs the selected leaf with the JWK's private key material
// when the key carries one, so the result can be presented in a handshake.
// Public-only keys yield a certificate without a signer.
func tlsCertificate(key jwk.Key, leaf *x509.Certificate) *tls.Certificate {
	tc := &tls.Certificate{
		Certificate: [][]byte{leaf.Raw},
		Leaf:        leaf,
	}

	var raw interface{}
	if err := key.Raw(&raw); err == nil {
		if signer, ok := raw.(crypto.Signer); ok {
			tc.PrivateKey = signer
		}
	}
	return tc
}
