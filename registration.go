package clienttransport

import (
	"context"
	"fmt"
	"sync"

	"github.com/lestrrat-go/jwx/v2/jwk"
)

// Registration describes one OAuth/OIDC client registration as far as this
// package needs to see it: an identifier and the client's signing credentials.
// The registration is owned by the resolver; the configurator only borrows a
// reference for the duration of one transport build.
type Registration struct {
	// ID is the registration identifier carried in managed transport names.
	ID string

	// Keys holds the registration's signing credentials. Credentials that
	// wrap an X.509 certificate (via an x5c chain) are candidates for TLS
	// client authentication; other key types are ignored by the selectors.
	Keys jwk.Set

	// TokenEndpoint is the registration's token endpoint, when known. The
	// configurator does not use it; it is carried for customization
	// delegates that do.
	TokenEndpoint string
}

// RegistrationResolver looks up a registration by its identifier. Resolution
// may involve network or storage I/O; implementations must honor ctx.
//
// A missing registration is reported with an error matching
// ErrRegistrationNotFound. The configurator treats that as fatal: a transport
// name that explicitly names a registration which does not exist is a
// configuration error, not a transient condition.
type RegistrationResolver interface {
	GetRegistrationByID(ctx context.Context, id string) (*Registration, error)
}

// notFoundError wraps the missing registration's identifier while staying
// comparable to ErrRegistrationNotFound through errors.Is.
type notFoundError struct {
	id string
}

func (e *notFoundError) Is(target error) bool {
	return target == ErrRegistrationNotFound
}

func (e *notFoundError) Error() string {
	return fmt.Sprintf("%s: %q", ErrRegistrationNotFound, e.id)
}

func (e *notFoundError) Unwrap() error {
	return ErrRegistrationNotFound
}

// StaticResolver is an in-memory RegistrationResolver backed by a map. It
// serves tests and deployments whose registrations are fixed at startup.
// Safe for concurrent use.
type StaticResolver struct {
	mu   sync.RWMutex
	regs map[string]*Registration
}

// NewStaticResolver builds a resolver holding the given registrations.
// Registrations without an ID are dropped.
func NewStaticResolver(regs ...*Registration) *StaticResolver {
	r := &StaticResolver{regs: make(map[string]*Registration, len(regs))}
	for _, reg := range regs {
		if reg != nil && reg.ID != "" {
			r.regs[reg.ID] = reg
		}
	}
	return r
}

// Add registers or replaces a registration.
func (r *StaticResolver) Add(reg *Registration) {
	if reg == nil || reg.ID == "" {
		return
	}
	r.mu.Lock()
	r.regs[reg.ID] = reg
	r.mu.Unlock()
}

// GetRegistrationByID implements RegistrationResolver.
func (r *StaticResolver) GetRegistrationByID(ctx context.Context, id string) (*Registration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	reg, ok := r.regs[id]
	r.mu.RUnlock()

	if !ok {
		return nil, &notFoundError{id: id}
	}
	return reg, nil
}
