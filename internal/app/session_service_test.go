package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/go-brain-sdk/internal/domain"
)

// discardLogger returns a logger that discards all output.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// sessionsFake implements ports.SimulatorSessions with function fields.
type sessionsFake struct {
	list func(ctx context.Context, workspace string) ([]domain.SimulatorSession, error)
	set  func(ctx context.Context, workspace, sessionID string, purpose domain.Purpose) error
}

func (f *sessionsFake) ListUnmanaged(ctx context.Context, workspace string) ([]domain.SimulatorSession, error) {
	return f.list(ctx, workspace)
}

func (f *sessionsFake) SetPurpose(ctx context.Context, workspace, sessionID string, purpose domain.Purpose) error {
	if f.set == nil {
		return nil
	}
	return f.set(ctx, workspace, sessionID, purpose)
}

func unmanagedSession(id, simulator string) domain.SimulatorSession {
	return domain.SimulatorSession{
		SessionID:     id,
		SimulatorName: simulator,
		Purpose:       domain.Purpose{Action: domain.PurposeActionInactive},
	}
}

func validConnectRequest() ConnectRequest {
	return ConnectRequest{
		SimulatorName: "cartpole",
		Action:        domain.PurposeActionTrain,
		BrainName:     "b1",
		BrainVersion:  4,
		ConceptName:   "Reach",
		Workspace:     "acme",
	}
}

func TestNewSessionService_PanicsWithoutSessions(t *testing.T) {
	assert.Panics(t, func() {
		NewSessionService(SessionServiceConfig{Logger: discardLogger()})
	})
}

func TestNewSessionService_DefaultsLogger(t *testing.T) {
	svc := NewSessionService(SessionServiceConfig{Sessions: &sessionsFake{}})
	require.NotNil(t, svc)
}

// TestSessionService_Connect_ValidatesRequest verifies invalid requests
// fail as usage errors before any session listing.
func TestSessionService_Connect_ValidatesRequest(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ConnectRequest)
		wantMsg string
	}{
		{
			name:    "inactive action",
			mutate:  func(r *ConnectRequest) { r.Action = domain.PurposeActionInactive },
			wantMsg: "purpose action must be Train or Assess",
		},
		{
			name:    "missing brain name",
			mutate:  func(r *ConnectRequest) { r.BrainName = "" },
			wantMsg: "brain name is required",
		},
		{
			name:    "zero version",
			mutate:  func(r *ConnectRequest) { r.BrainVersion = 0 },
			wantMsg: "brain version must be positive",
		},
		{
			name:    "missing concept",
			mutate:  func(r *ConnectRequest) { r.ConceptName = "" },
			wantMsg: "concept name is required",
		},
		{
			name: "no selector",
			mutate: func(r *ConnectRequest) {
				r.SimulatorName = ""
				r.SessionID = ""
			},
			wantMsg: "simulator name or session id is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewSessionService(SessionServiceConfig{
				Sessions: &sessionsFake{
					list: func(context.Context, string) ([]domain.SimulatorSession, error) {
						t.Fatal("sessions must not be listed for an invalid request")
						return nil, nil
					},
				},
				Logger: discardLogger(),
			})

			req := validConnectRequest()
			tt.mutate(&req)

			report, err := svc.Connect(context.Background(), req)

			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrUsage)
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.Nil(t, report)
		})
	}
}

// TestSessionService_Connect_BySimulatorName verifies every session
// registered under the simulator name is bound with the requested purpose.
func TestSessionService_Connect_BySimulatorName(t *testing.T) {
	var patched []string
	var gotPurpose domain.Purpose
	var gotWorkspace string

	svc := NewSessionService(SessionServiceConfig{
		Sessions: &sessionsFake{
			list: func(_ context.Context, workspace string) ([]domain.SimulatorSession, error) {
				assert.Equal(t, "acme", workspace)
				return []domain.SimulatorSession{
					unmanagedSession("s-1", "cartpole"),
					unmanagedSession("s-2", "lunar-lander"),
					unmanagedSession("s-3", "cartpole"),
				}, nil
			},
			set: func(_ context.Context, workspace, sessionID string, purpose domain.Purpose) error {
				patched = append(patched, sessionID)
				gotPurpose = purpose
				gotWorkspace = workspace
				return nil
			},
		},
		Logger: discardLogger(),
	})

	report, err := svc.Connect(context.Background(), validConnectRequest())

	require.NoError(t, err)
	assert.Equal(t, []string{"s-1", "s-3"}, patched)
	assert.Equal(t, "acme", gotWorkspace)
	assert.Equal(t, domain.Purpose{
		Action:       domain.PurposeActionTrain,
		BrainName:    "b1",
		BrainVersion: 4,
		ConceptName:  "Reach",
	}, gotPurpose)

	assert.Equal(t, 2, report.Matched)
	assert.Equal(t, 2, report.Connected)
	assert.Equal(t, 0, report.Failed())
	require.Len(t, report.Outcomes, 2)
	assert.NoError(t, report.Outcomes[0].Err)
	assert.NoError(t, report.Outcomes[1].Err)
}

// TestSessionService_Connect_BySessionID verifies an explicit session id
// takes precedence over the simulator name.
func TestSessionService_Connect_BySessionID(t *testing.T) {
	var patched []string

	svc := NewSessionService(SessionServiceConfig{
		Sessions: &sessionsFake{
			list: func(context.Context, string) ([]domain.SimulatorSession, error) {
				return []domain.SimulatorSession{
					unmanagedSession("s-1", "cartpole"),
					unmanagedSession("s-2", "cartpole"),
				}, nil
			},
			set: func(_ context.Context, _, sessionID string, _ domain.Purpose) error {
				patched = append(patched, sessionID)
				return nil
			},
		},
		Logger: discardLogger(),
	})

	req := validConnectRequest()
	req.SessionID = "s-2"

	report, err := svc.Connect(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, []string{"s-2"}, patched)
	assert.Equal(t, 1, report.Matched)
	assert.Equal(t, 1, report.Connected)
}

// TestSessionService_Connect_NoMatches verifies a zero-match run returns an
// empty report without binding anything.
func TestSessionService_Connect_NoMatches(t *testing.T) {
	svc := NewSessionService(SessionServiceConfig{
		Sessions: &sessionsFake{
			list: func(context.Context, string) ([]domain.SimulatorSession, error) {
				return []domain.SimulatorSession{unmanagedSession("s-1", "lunar-lander")}, nil
			},
			set: func(context.Context, string, string, domain.Purpose) error {
				t.Fatal("no session should be bound")
				return nil
			},
		},
		Logger: discardLogger(),
	})

	report, err := svc.Connect(context.Background(), validConnectRequest())

	require.NoError(t, err)
	assert.Equal(t, 0, report.Matched)
	assert.Equal(t, 0, report.Connected)
	assert.Empty(t, report.Outcomes)
}

// TestSessionService_Connect_ListError verifies listing failures abort the
// run with a wrapped error.
func TestSessionService_Connect_ListError(t *testing.T) {
	svc := NewSessionService(SessionServiceConfig{
		Sessions: &sessionsFake{
			list: func(context.Context, string) ([]domain.SimulatorSession, error) {
				return nil, domain.NewConnectionError("https://api.brains.dev", "corr-1", errors.New("connection refused"))
			},
		},
		Logger: discardLogger(),
	})

	report, err := svc.Connect(context.Background(), validConnectRequest())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConnection)
	assert.Contains(t, err.Error(), "listing unmanaged sessions")
	assert.Nil(t, report)
}

// TestSessionService_Connect_PartialFailure verifies a failed binding is
// recorded without aborting the remaining sessions.
func TestSessionService_Connect_PartialFailure(t *testing.T) {
	svc := NewSessionService(SessionServiceConfig{
		Sessions: &sessionsFake{
			list: func(context.Context, string) ([]domain.SimulatorSession, error) {
				return []domain.SimulatorSession{
					unmanagedSession("s-1", "cartpole"),
					unmanagedSession("s-2", "cartpole"),
				}, nil
			},
			set: func(_ context.Context, _, sessionID string, _ domain.Purpose) error {
				if sessionID == "s-1" {
					return &domain.ServerError{StatusCode: 409, Message: "session is mid-episode"}
				}
				return nil
			},
		},
		Logger: discardLogger(),
	})

	report, err := svc.Connect(context.Background(), validConnectRequest())

	require.NoError(t, err)
	assert.Equal(t, 2, report.Matched)
	assert.Equal(t, 1, report.Connected)
	assert.Equal(t, 1, report.Failed())

	require.Len(t, report.Outcomes, 2)
	assert.Error(t, report.Outcomes[0].Err)
	assert.NoError(t, report.Outcomes[1].Err)
}
