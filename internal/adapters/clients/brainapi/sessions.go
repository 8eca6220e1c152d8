package brainapi

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/jsamuelsen/go-brain-sdk/internal/adapters/clients"
	"github.com/jsamuelsen/go-brain-sdk/internal/domain"
	"github.com/jsamuelsen/go-brain-sdk/internal/platform/logging"
)

// patchSessionRequest is the wire payload for rebinding a session's purpose.
type patchSessionRequest struct {
	PurposeOperation string         `json:"purposeOperation"`
	Purpose          purposePayload `json:"purpose"`
}

// ListUnmanagedSimulatorSessions returns the raw records of simulator
// sessions not managed by the platform. Served by the gateway origin.
func (c *Client) ListUnmanagedSimulatorSessions(ctx context.Context, workspace string) (clients.Result, error) {
	path := fmt.Sprintf("/v2/workspaces/%s/simulatorsessions?deployment_mode=neq:Hosted", c.workspaceOr(workspace))
	return c.gateway(ctx, "ListUnmanagedSimulatorSessions", clients.VerbGet, path, nil)
}

// GetSimulatorSession returns a simulator session's raw record.
func (c *Client) GetSimulatorSession(ctx context.Context, sessionID, workspace string) (clients.Result, error) {
	path := fmt.Sprintf("/v2/workspaces/%s/simulatorsessions/%s", c.workspaceOr(workspace), sessionID)
	return c.gateway(ctx, "GetSimulatorSession", clients.VerbGet, path, nil)
}

// PatchSimulatorSession rebinds a session's purpose to a brain version
// concept. The gateway expects the mixed-case path segment on this endpoint
// only.
func (c *Client) PatchSimulatorSession(ctx context.Context, sessionID, brainName string, version int, action domain.PurposeAction, conceptName, workspace string) (clients.Result, error) {
	path := fmt.Sprintf("/v2/workspaces/%s/simulatorSessions/%s", c.workspaceOr(workspace), sessionID)
	payload := patchSessionRequest{
		PurposeOperation: "SetValue",
		Purpose:          c.purposeFor(action, brainName, version, conceptName),
	}
	return c.gateway(ctx, "PatchSimulatorSession", clients.VerbPatch, path, payload)
}

// ListUnmanaged returns the workspace's unmanaged simulator sessions as
// domain entities. Implements ports.SimulatorSessions.
func (c *Client) ListUnmanaged(ctx context.Context, workspace string) ([]domain.SimulatorSession, error) {
	result, err := c.ListUnmanagedSimulatorSessions(ctx, workspace)
	if err != nil {
		return nil, err
	}

	sessions := translateSessions(result)

	c.logger.Log(ctx, logging.LevelTrace, "translated session records",
		slog.Int("count", len(sessions)))

	return sessions, nil
}

// SetPurpose rebinds a simulator session to a brain version concept.
// Implements ports.SimulatorSessions.
func (c *Client) SetPurpose(ctx context.Context, workspace, sessionID string, purpose domain.Purpose) error {
	_, err := c.PatchSimulatorSession(ctx, sessionID, purpose.BrainName, purpose.BrainVersion, purpose.Action, purpose.ConceptName, workspace)
	return err
}

// translateSessions converts raw session records to domain entities.
// Records that are not objects are skipped.
func translateSessions(result clients.Result) []domain.SimulatorSession {
	raw, _ := result.Value().([]any)

	sessions := make([]domain.SimulatorSession, 0, len(raw))
	for _, entry := range raw {
		record, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		sessions = append(sessions, translateSession(record))
	}
	return sessions
}

// translateSession converts one raw session record to a domain entity.
// Missing fields yield zero values rather than errors.
func translateSession(record map[string]any) domain.SimulatorSession {
	simContext, _ := record["simulatorContext"].(map[string]any)
	purpose, _ := simContext["purpose"].(map[string]any)
	target, _ := purpose["target"].(map[string]any)

	return domain.SimulatorSession{
		SessionID:     stringField(record, "sessionId"),
		SimulatorName: stringField(record, "simulatorName"),
		Purpose: domain.Purpose{
			Action:       domain.PurposeAction(stringField(purpose, "action")),
			BrainName:    stringField(target, "brainName"),
			BrainVersion: versionField(target, "brainVersion"),
			ConceptName:  stringField(target, "conceptName"),
		},
	}
}

func stringField(record map[string]any, key string) string {
	s, _ := record[key].(string)
	return s
}

// versionField reads a brain version that the gateway reports either as a
// string or as a number, depending on how the binding was written.
func versionField(record map[string]any, key string) int {
	switch v := record[key].(type) {
	case string:
		n, _ := strconv.Atoi(v)
		return n
	case float64:
		return int(v)
	default:
		return 0
	}
}
