// Package app contains application services that orchestrate use cases.
// This is the application layer in Clean Architecture - it coordinates
// domain logic and infrastructure through ports.
//
// Application Layer Responsibilities:
//   - Orchestrate use cases (business workflows)
//   - Coordinate between domain and infrastructure
//   - Handle cross-cutting concerns (logging)
//   - Enforce business rules that span multiple entities
//
// What does NOT belong here:
//   - HTTP specifics (that's the clients adapters)
//   - Wire payload construction (that's brainapi)
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jsamuelsen/go-brain-sdk/internal/domain"
	"github.com/jsamuelsen/go-brain-sdk/internal/platform/logging"
	"github.com/jsamuelsen/go-brain-sdk/internal/ports"
)

// SessionService orchestrates simulator session use cases.
// It depends on port interfaces, not concrete implementations.
type SessionService struct {
	sessions ports.SimulatorSessions
	logger   *slog.Logger
}

// SessionServiceConfig contains configuration for the session service.
type SessionServiceConfig struct {
	Sessions ports.SimulatorSessions
	Logger   *slog.Logger
}

// NewSessionService creates a new session service with the provided
// dependencies. Panics if Sessions is nil. Defaults logger to
// slog.Default() if nil.
func NewSessionService(cfg SessionServiceConfig) *SessionService {
	if cfg.Sessions == nil {
		panic("SessionService: Sessions is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &SessionService{
		sessions: cfg.Sessions,
		logger:   logger.With(slog.String("component", "app.SessionService")),
	}
}

// ConnectRequest selects unmanaged simulator sessions and the brain version
// concept to bind them to. Sessions are selected by SessionID when set,
// otherwise by SimulatorName.
type ConnectRequest struct {
	// SimulatorName selects every session registered under this name.
	SimulatorName string

	// SessionID selects one specific session. Takes precedence over
	// SimulatorName.
	SessionID string

	// Action is the purpose to bind, Train or Assess.
	Action domain.PurposeAction

	// BrainName, BrainVersion, and ConceptName identify the binding target.
	BrainName    string
	BrainVersion int
	ConceptName  string

	// Workspace overrides the client's default workspace when set.
	Workspace string
}

// SessionOutcome records the result of one session connection attempt.
type SessionOutcome struct {
	Session domain.SimulatorSession
	Err     error
}

// ConnectReport summarizes a connect run over the matching sessions.
type ConnectReport struct {
	// Matched is the number of sessions the request selected.
	Matched int

	// Connected is the number of sessions successfully bound.
	Connected int

	// Outcomes holds the per-session results in listing order.
	Outcomes []SessionOutcome
}

// Failed returns the number of sessions that could not be bound.
func (r *ConnectReport) Failed() int {
	return r.Matched - r.Connected
}

// Connect lists the workspace's unmanaged simulator sessions, selects those
// matching the request, and binds each to the requested brain version
// concept. Per-session failures are recorded in the report rather than
// aborting the run; a zero-match run returns an empty report.
func (s *SessionService) Connect(ctx context.Context, req ConnectRequest) (*ConnectReport, error) {
	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = s.logger
	}

	logger = logger.With(
		slog.String("method", "Connect"),
		slog.String("brain", req.BrainName),
		slog.Int("version", req.BrainVersion),
	)

	if err := req.validate(); err != nil {
		return nil, fmt.Errorf("validating input: %w", err)
	}

	sessions, err := s.sessions.ListUnmanaged(ctx, req.Workspace)
	if err != nil {
		return nil, fmt.Errorf("listing unmanaged sessions: %w", err)
	}

	matches := req.match(sessions)
	if len(matches) == 0 {
		logger.InfoContext(ctx, "no matching simulator sessions",
			slog.String("simulator", req.SimulatorName),
			slog.String("session_id", req.SessionID),
		)
		return &ConnectReport{}, nil
	}

	purpose := domain.Purpose{
		Action:       req.Action,
		BrainName:    req.BrainName,
		BrainVersion: req.BrainVersion,
		ConceptName:  req.ConceptName,
	}

	report := &ConnectReport{Matched: len(matches)}
	for _, session := range matches {
		err := s.sessions.SetPurpose(ctx, req.Workspace, session.SessionID, purpose)
		report.Outcomes = append(report.Outcomes, SessionOutcome{Session: session, Err: err})

		if err != nil {
			logger.ErrorContext(ctx, "failed to connect session",
				slog.String("session_id", session.SessionID),
				slog.String("simulator", session.SimulatorName),
				slog.Any("error", err),
			)
			continue
		}

		report.Connected++
		logger.InfoContext(ctx, "session connected",
			slog.String("session_id", session.SessionID),
			slog.String("simulator", session.SimulatorName),
		)
	}

	return report, nil
}

// validate checks the request names a bindable purpose and a session
// selector.
func (r ConnectRequest) validate() error {
	if r.Action != domain.PurposeActionTrain && r.Action != domain.PurposeActionAssess {
		return domain.NewUsageError("purpose action must be Train or Assess")
	}
	if r.BrainName == "" {
		return domain.NewUsageError("brain name is required")
	}
	if r.BrainVersion < 1 {
		return domain.NewUsageError("brain version must be positive")
	}
	if r.ConceptName == "" {
		return domain.NewUsageError("concept name is required")
	}
	if r.SimulatorName == "" && r.SessionID == "" {
		return domain.NewUsageError("simulator name or session id is required")
	}
	return nil
}

// match selects the sessions the request addresses.
func (r ConnectRequest) match(sessions []domain.SimulatorSession) []domain.SimulatorSession {
	var matches []domain.SimulatorSession
	for _, session := range sessions {
		if r.SessionID != "" {
			if session.SessionID == r.SessionID {
				matches = append(matches, session)
			}
			continue
		}
		if session.SimulatorName == r.SimulatorName {
			matches = append(matches, session)
		}
	}
	return matches
}
