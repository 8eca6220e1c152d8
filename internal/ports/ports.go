// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application layer
// to depend on abstractions rather than concrete implementations.
//
// Port Design Principles:
//   - Context as first parameter (always) for cancellation and deadlines
//   - Return domain types, never external DTOs or infrastructure types
//   - Error returns use domain error types (ErrServer, ErrConnection, etc.)
//   - Keep interfaces small and focused (Interface Segregation Principle)
package ports

import (
	"context"

	"github.com/jsamuelsen/go-brain-sdk/internal/domain"
)

// TokenProvider acquires access tokens through the federated-identity
// fallback scheme. The request dispatcher consults it at most once per call,
// when the server reports that legacy key authentication is no longer
// accepted for the workspace.
type TokenProvider interface {
	// FederatedToken returns a fresh access token for the given tenant.
	// Implementations should respect context deadlines and cancellation.
	FederatedToken(ctx context.Context, tenantID string) (string, error)
}

// TokenProviderFunc adapts a plain function to the TokenProvider interface.
type TokenProviderFunc func(ctx context.Context, tenantID string) (string, error)

// FederatedToken calls f.
func (f TokenProviderFunc) FederatedToken(ctx context.Context, tenantID string) (string, error) {
	return f(ctx, tenantID)
}

// SimulatorSessions is the application layer's view of simulator session
// management. The brainapi adapter implements it against the gateway origin.
type SimulatorSessions interface {
	// ListUnmanaged returns the workspace's unmanaged simulator sessions.
	// An empty workspace selects the client's default workspace.
	ListUnmanaged(ctx context.Context, workspace string) ([]domain.SimulatorSession, error)

	// SetPurpose rebinds a session to a brain version concept.
	// Returns domain.ErrServer if the platform rejects the binding.
	SetPurpose(ctx context.Context, workspace, sessionID string, purpose domain.Purpose) error
}
