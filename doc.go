/*
Package clienttransport configures pooled outbound HTTP clients per OAuth/OIDC
client registration.

Connection pools key cached clients by a flat name string and offer no side
channel for per-instance context. This package works around that: per-client
properties are encoded into the transport name itself (see the namecodec
subpackage), decoded when the pool builds the client, and turned into concrete
configuration: security defaults, customization delegates, a resilience
policy, and optionally a TLS client certificate picked from the registration's
signing credentials (see the certselect subpackage).

# Quick Start

	import (
	    "github.com/oidckit/go-client-transport"
	    "github.com/oidckit/go-client-transport/namecodec"
	)

	func main() {
	    resolver := clienttransport.NewStaticResolver(&clienttransport.Registration{
	        ID:   "reg-1",
	        Keys: signingKeys, // jwk.Set carrying x5c chains
	    })

	    cfg, err := clienttransport.NewConfig(
	        clienttransport.WithResolver(resolver),
	    )
	    if err != nil {
	        log.Fatal(err)
	    }

	    pool := clienttransport.NewPool(cfg)

	    client, err := pool.GetForRegistration(context.Background(), "reg-1",
	        namecodec.WithClientCertificate(),
	    )
	    if err != nil {
	        log.Fatal(err)
	    }

	    resp, err := client.Get("https://idp.example.com/token")
	    // ...
	}

# Bring Your Own Pool

The Pool type is optional. A host with its own caching mechanism calls the two
hooks directly: Configure while building a named client and PostConfigure once
the client exists. Both are no-ops for names without the managed prefix, so
they can be wired unconditionally into a pool shared with unmanaged clients.

# Security Defaults

Every managed client gets a 60 second request timeout and a 10 MiB cap on
response bodies before any user customization runs, so customizers may relax
either. The hardening pass additionally disables automatic content
decompression (a content-layer concern; transports that opt in also send
Accept-Encoding, a known compression-oracle side channel) and cookie handling
(pooled clients are shared across logically distinct callers).

# Certificate Selection

When a name requests a TLS client certificate, the registration's signing
credentials are scanned in order for the first X.509v3 certificate with the
Digital Signature key usage and the client-authentication extended key usage,
self-issued or not depending on the requested authentication method. Selection
is structural only; no chain validation happens here. Both selectors can be
replaced wholesale with WithCertificateSelector and
WithSelfSignedCertificateSelector.
*/
package clienttransport
