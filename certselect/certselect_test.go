package certselect

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/base64"
	"math/big"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/cert"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// certSpec describes a test certificate. When selfIssued is false the
// certificate is signed by a per-call throwaway CA so that subject and issuer
// differ.
type certSpec struct {
	commonName  string
	selfIssued  bool
	keyUsage    x509.KeyUsage
	extKeyUsage []x509.ExtKeyUsage
}

func makeCertificate(t *testing.T, spec certSpec) (*x509.Certificate, *ecdsa.PrivateKey) {
	t.Helper()

	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	template := &x509.Certificate{
		SerialNumber:          big.NewInt(time.Now().UnixNano()),
		Subject:               pkix.Name{CommonName: spec.commonName},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              spec.keyUsage,
		ExtKeyUsage:           spec.extKeyUsage,
		BasicConstraintsValid: true,
	}

	parent := template
	signerKey := priv

	if !spec.selfIssued {
		caKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		require.NoError(t, err)

		parent = &x509.Certificate{
			SerialNumber:          big.NewInt(1),
			Subject:               pkix.Name{CommonName: "test-issuing-ca"},
			NotBefore:             time.Now().Add(-time.Hour),
			NotAfter:              time.Now().Add(24 * time.Hour),
			KeyUsage:              x509.KeyUsageCertSign,
			IsCA:                  true,
			BasicConstraintsValid: true,
		}
		signerKey = caKey
	}

	der, err := x509.CreateCertificate(rand.Reader, template, parent, &priv.PublicKey, signerKey)
	require.NoError(t, err)

	parsed, err := x509.ParseCertificate(der)
	require.NoError(t, err)

	return parsed, priv
}

// makeCredential wraps a test certificate into a JWK carrying an x5c chain,
// the shape signing credentials arrive in on a registration.
func makeCredential(t *testing.T, spec certSpec) jwk.Key {
	t.Helper()

	parsed, priv := makeCertificate(t, spec)

	key, err := jwk.FromRaw(priv)
	require.NoError(t, err)

	chain := &cert.Chain{}
	require.NoError(t, chain.AddString(base64.StdEncoding.EncodeToString(parsed.Raw)))
	require.NoError(t, key.Set(jwk.X509CertChainKey, chain))

	return key
}

func eligibleSpec(commonName string, selfIssued bool) certSpec {
	return certSpec{
		commonName:  commonName,
		selfIssued:  selfIssued,
		keyUsage:    x509.KeyUsageDigitalSignature,
		extKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
	}
}

func keySet(keys ...jwk.Key) jwk.Set {
	set := jwk.NewSet()
	for _, k := range keys {
		if err := set.AddKey(k); err != nil {
			panic(err)
		}
	}
	return set
}

func leafOf(t *testing.T, key jwk.Key) *x509.Certificate {
	t.Helper()
	leaf := leafCertificate(key)
	require.NotNil(t, leaf)
	return leaf
}

func Test_Selectors_Polarity(t *testing.T) {
	selfSigned := makeCredential(t, eligibleSpec("self", true))
	standard := makeCredential(t, eligibleSpec("standard", false))
	keys := keySet(selfSigned, standard)

	gotSelf := SelectSelfSigned(keys)
	require.NotNil(t, gotSelf)
	assert.Equal(t, leafOf(t, selfSigned).Raw, gotSelf.Leaf.Raw)

	gotStandard := SelectStandard(keys)
	require.NotNil(t, gotStandard)
	assert.Equal(t, leafOf(t, standard).Raw, gotStandard.Leaf.Raw)
}

func Test_Selectors_ExcludeMissingDigitalSignature(t *testing.T) {
	noDS := makeCredential(t, certSpec{
		commonName:  "no-ds",
		selfIssued:  true,
		keyUsage:    x509.KeyUsageKeyEncipherment,
		extKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
	})
	keys := keySet(noDS)

	assert.Nil(t, SelectSelfSigned(keys))
	assert.Nil(t, SelectStandard(keys))
}

func Test_Selectors_ExcludeMissingClientAuthEKU(t *testing.T) {
	noEKU := makeCredential(t, certSpec{
		commonName: "no-eku",
		selfIssued: true,
		keyUsage:   x509.KeyUsageDigitalSignature,
	})
	serverOnly := makeCredential(t, certSpec{
		commonName:  "server-only",
		selfIssued:  false,
		keyUsage:    x509.KeyUsageDigitalSignature,
		extKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	})
	keys := keySet(noEKU, serverOnly)

	assert.Nil(t, SelectSelfSigned(keys))
	assert.Nil(t, SelectStandard(keys))
}

func Test_Selectors_FirstMatchWins(t *testing.T) {
	first := makeCredential(t, eligibleSpec("first", true))
	second := makeCredential(t, eligibleSpec("second", true))
	keys := keySet(first, second)

	got := SelectSelfSigned(keys)
	require.NotNil(t, got)
	assert.Equal(t, leafOf(t, first).Raw, got.Leaf.Raw)
}

func Test_Selectors_SkipNonCertificateKeys(t *testing.T) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	bareKey, err := jwk.FromRaw(priv)
	require.NoError(t, err)

	garbled, err := jwk.FromRaw(priv)
	require.NoError(t, err)
	garbledChain := &cert.Chain{}
	require.NoError(t, garbledChain.AddString(base64.StdEncoding.EncodeToString([]byte("not-a-certificate"))))
	require.NoError(t, garbled.Set(jwk.X509CertChainKey, garbledChain))

	eligibleKey := makeCredential(t, eligibleSpec("good", true))

	got := SelectSelfSigned(keySet(bareKey, garbled, eligibleKey))
	require.NotNil(t, got)
	assert.Equal(t, leafOf(t, eligibleKey).Raw, got.Leaf.Raw)
}

func Test_Selectors_EmptySet(t *testing.T) {
	assert.Nil(t, SelectSelfSigned(nil))
	assert.Nil(t, SelectStandard(nil))
	assert.Nil(t, SelectSelfSigned(jwk.NewSet()))
	assert.Nil(t, SelectStandard(jwk.NewSet()))
}

func Test_Selectors_CarryPrivateKey(t *testing.T) {
	key := makeCredential(t, eligibleSpec("with-key", true))

	got := SelectSelfSigned(keySet(key))
	require.NotNil(t, got)
	require.NotNil(t, got.PrivateKey)

	_, ok := got.PrivateKey.(*ecdsa.PrivateKey)
	assert.True(t, ok)
	assert.Len(t, got.Certificate, 1)
}

func Test_IsSelfIssued(t *testing.T) {
	self, _ := makeCertificate(t, eligibleSpec("self", true))
	issued, _ := makeCertificate(t, eligibleSpec("issued", false))

	assert.True(t, IsSelfIssued(self))
	assert.False(t, IsSelfIssued(issued))
}

func Test_HasDigitalSignatureUsage_FailsClosed(t *testing.T) {
	// No Key Usage extension at all must not qualify.
	assert.False(t, HasDigitalSignatureUsage(&x509.Certificate{}))
	assert.True(t, HasDigitalSignatureUsage(&x509.Certificate{KeyUsage: x509.KeyUsageDigitalSignature}))
	assert.False(t, HasDigitalSignatureUsage(&x509.Certificate{KeyUsage: x509.KeyUsageKeyEncipherment}))
}

func Test_HasClientAuthEKU(t *testing.T) {
	assert.False(t, HasClientAuthEKU(&x509.Certificate{}))
	assert.True(t, HasClientAuthEKU(&x509.Certificate{
		ExtKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
	}))
	assert.True(t, HasClientAuthEKU(&x509.Certificate{
		UnknownExtKeyUsage: []asn1.ObjectIdentifier{{1, 3, 6, 1, 5, 5, 7, 3, 2}},
	}))
	assert.False(t, HasClientAuthEKU(&x509.Certificate{
		ExtKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}))
}

func Test_Eligible_RequiresV3(t *testing.T) {
	old := &x509.Certificate{
		Version:     1,
		KeyUsage:    x509.KeyUsageDigitalSignature,
		ExtKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
	}

	assert.False(t, eligible(old, true))
	assert.False(t, eligible(old, false))
}
