package clienttransport

import (
	"context"
	"net/http"
	"sync"

	"github.com/oidckit/go-client-transport/namecodec"
)

// Pool is a name-keyed cache of managed HTTP clients. It plays the role of
// the host transport-construction mechanism: on a cache miss it builds a
// fresh client, runs the configuration and hardening hooks, and caches the
// result under the name. Builds for different names may run concurrently;
// for the same name at most one build is in flight at a time.
//
// Clients are cached for the lifetime of the Pool. Registration data is read
// once, at build time; rotate credentials by using a new name or a new Pool.
type Pool struct {
	cfg *Config

	mu      sync.RWMutex
	clients map[string]*poolEntry
}

type poolEntry struct {
	// buildMu serializes builds for one name.
	buildMu sync.Mutex
	client  *http.Client
}

// NewPool returns a Pool that builds clients with the given configuration.
func NewPool(cfg *Config) *Pool {
	return &Pool{
		cfg:     cfg,
		clients: make(map[string]*poolEntry),
	}
}

// Get returns the client cached under name, building it first when needed.
// Build errors are not cached; a later Get retries the build.
func (p *Pool) Get(ctx context.Context, name string) (*http.Client, error) {
	// Fast path: already built.
	p.mu.RLock()
	entry, ok := p.clients[name]
	if ok && entry.client != nil {
		client := entry.client
		p.mu.RUnlock()
		p.cfg.metrics.IncCounter(metricPoolHit, map[string]string{})
		return client, nil
	}
	p.mu.RUnlock()

	if !ok {
		p.mu.Lock()
		entry, ok = p.clients[name]
		if !ok {
			entry = &poolEntry{}
			p.clients[name] = entry
		}
		p.mu.Unlock()
	}

	entry.buildMu.Lock()
	defer entry.buildMu.Unlock()

	// Another goroutine may have finished the build while we waited.
	p.mu.RLock()
	built := entry.client
	p.mu.RUnlock()
	if built != nil {
		p.cfg.metrics.IncCounter(metricPoolHit, map[string]string{})
		return built, nil
	}

	client := &http.Client{}
	if err := p.cfg.Configure(ctx, name, client); err != nil {
		return nil, err
	}
	p.cfg.PostConfigure(name, client)

	p.mu.Lock()
	entry.client = client
	p.mu.Unlock()

	p.cfg.metrics.IncCounter(metricPoolBuild, map[string]string{})
	return client, nil
}

// GetForRegistration builds the managed name for a registration under the
// pool's prefix and returns the corresponding client.
//
//	client, err := pool.GetForRegistration(ctx, "reg-1",
//	    namecodec.WithClientCertificate(),
//	)
func (p *Pool) GetForRegistration(ctx context.Context, registrationID string, opts ...namecodec.NameOption) (*http.Client, error) {
	return p.Get(ctx, p.cfg.ClientName(registrationID, opts...))
}

// Forget drops the client cached under name. In-flight requests on the old
// client are unaffected; the next Get rebuilds from the current registration
// state.
func (p *Pool) Forget(name string) {
	p.mu.Lock()
	delete(p.clients, name)
	p.mu.Unlock()
}

// CloseIdleConnections closes idle connections on every cached client.
func (p *Pool) CloseIdleConnections() {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, entry := range p.clients {
		if entry.client != nil {
			entry.client.CloseIdleConnections()
		}
	}
}
