package brainapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/go-brain-sdk/internal/domain"
)

// TestListUnmanagedSimulatorSessions verifies the listing carries the
// deployment mode filter in the query string.
func TestListUnmanagedSimulatorSessions(t *testing.T) {
	var cp capture
	api := setupAPI(t, okHandler(&cp, `{"value":[]}`))

	_, err := api.ListUnmanagedSimulatorSessions(context.Background(), "acme")

	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, cp.Method)
	assert.Equal(t, "/v2/workspaces/acme/simulatorsessions", cp.Path)
	assert.Equal(t, "deployment_mode=neq:Hosted", cp.Query)
}

// TestSessionOperationsUseGatewayOrigin verifies session operations are
// routed to the gateway origin while resource operations stay on the API
// origin.
func TestSessionOperationsUseGatewayOrigin(t *testing.T) {
	var apiHits, gatewayHits atomic.Int32

	apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiHits.Add(1)
		_, _ = w.Write([]byte(`{"value":[]}`))
	}))
	t.Cleanup(apiServer.Close)

	gatewayServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gatewayHits.Add(1)
		_, _ = w.Write([]byte(`{"value":[]}`))
	}))
	t.Cleanup(gatewayServer.Close)

	api := newTestClient(t, apiServer.URL, gatewayServer.URL)

	_, err := api.ListUnmanagedSimulatorSessions(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, int32(0), apiHits.Load())
	assert.Equal(t, int32(1), gatewayHits.Load())

	_, err = api.ListBrains(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, int32(1), apiHits.Load())
	assert.Equal(t, int32(1), gatewayHits.Load())
}

// TestGetSimulatorSession verifies the session detail request shape.
func TestGetSimulatorSession(t *testing.T) {
	var cp capture
	api := setupAPI(t, okHandler(&cp, `{"sessionId":"s-1"}`))

	_, err := api.GetSimulatorSession(context.Background(), "s-1", "acme")

	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, cp.Method)
	assert.Equal(t, "/v2/workspaces/acme/simulatorsessions/s-1", cp.Path)
}

// TestPatchSimulatorSession verifies the rebind payload: a SetValue
// operation wrapping a purpose whose target names the configured workspace
// and carries the version as a string. The endpoint path segment is mixed
// case.
func TestPatchSimulatorSession(t *testing.T) {
	var cp capture
	api := setupAPI(t, okHandler(&cp, `{}`))

	_, err := api.PatchSimulatorSession(context.Background(), "s-1", "b1", 4, domain.PurposeActionTrain, "Reach", "acme")

	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, cp.Method)
	assert.Equal(t, "/v2/workspaces/acme/simulatorSessions/s-1", cp.Path)
	assert.Equal(t, map[string]any{
		"purposeOperation": "SetValue",
		"purpose": map[string]any{
			"action": "Train",
			"target": map[string]any{
				"workspaceName": "ws-default",
				"brainName":     "b1",
				"brainVersion":  "4",
				"conceptName":   "Reach",
			},
		},
	}, cp.json(t))
}

// TestListUnmanaged_TranslatesRecords verifies raw session records become
// domain entities, tolerating both string and numeric version fields.
func TestListUnmanaged_TranslatesRecords(t *testing.T) {
	body := `{"value":[
		{"sessionId":"s-1","simulatorName":"cartpole","simulatorContext":{"purpose":{"action":"Train","target":{"workspaceName":"acme","brainName":"b1","brainVersion":"4","conceptName":"Reach"}}}},
		{"sessionId":"s-2","simulatorName":"cartpole","simulatorContext":{"purpose":{"action":"Inactive","target":{"brainVersion":7}}}},
		"not a record"
	]}`

	var cp capture
	api := setupAPI(t, okHandler(&cp, body))

	sessions, err := api.ListUnmanaged(context.Background(), "acme")

	require.NoError(t, err)
	require.Len(t, sessions, 2)

	assert.Equal(t, domain.SimulatorSession{
		SessionID:     "s-1",
		SimulatorName: "cartpole",
		Purpose: domain.Purpose{
			Action:       domain.PurposeActionTrain,
			BrainName:    "b1",
			BrainVersion: 4,
			ConceptName:  "Reach",
		},
	}, sessions[0])
	assert.False(t, sessions[0].Unbound())

	assert.Equal(t, "s-2", sessions[1].SessionID)
	assert.Equal(t, 7, sessions[1].Purpose.BrainVersion)
	assert.True(t, sessions[1].Unbound())
}

// TestListUnmanaged_EmptyWorkspaceRecords verifies an empty listing yields
// an empty slice rather than nil dereferences.
func TestListUnmanaged_EmptyWorkspaceRecords(t *testing.T) {
	var cp capture
	api := setupAPI(t, okHandler(&cp, `{"value":[]}`))

	sessions, err := api.ListUnmanaged(context.Background(), "acme")

	require.NoError(t, err)
	assert.Empty(t, sessions)
}

// TestSetPurpose verifies the port method delegates to the session patch.
func TestSetPurpose(t *testing.T) {
	var cp capture
	api := setupAPI(t, okHandler(&cp, `{}`))

	err := api.SetPurpose(context.Background(), "acme", "s-1", domain.Purpose{
		Action:       domain.PurposeActionAssess,
		BrainName:    "b1",
		BrainVersion: 2,
		ConceptName:  "Reach",
	})

	require.NoError(t, err)
	assert.Equal(t, "/v2/workspaces/acme/simulatorSessions/s-1", cp.Path)

	payload := cp.json(t)
	purpose, ok := payload["purpose"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Assess", purpose["action"])
}

// TestSetPurpose_PropagatesServerError verifies binding rejections surface
// as server errors.
func TestSetPurpose_PropagatesServerError(t *testing.T) {
	api := setupAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":{"code":"SessionBusy","message":"session is mid-episode"}}`))
	})

	err := api.SetPurpose(context.Background(), "acme", "s-1", domain.Purpose{
		Action:       domain.PurposeActionTrain,
		BrainName:    "b1",
		BrainVersion: 1,
		ConceptName:  "Reach",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrServer)
}

// TestVersionField verifies version parsing across the wire encodings the
// gateway produces.
func TestVersionField(t *testing.T) {
	tests := []struct {
		name   string
		record map[string]any
		want   int
	}{
		{name: "string version", record: map[string]any{"brainVersion": "4"}, want: 4},
		{name: "numeric version", record: map[string]any{"brainVersion": float64(7)}, want: 7},
		{name: "missing version", record: map[string]any{}, want: 0},
		{name: "unparseable version", record: map[string]any{"brainVersion": "latest"}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, versionField(tt.record, "brainVersion"))
		})
	}
}
