package brainapi

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCreateExportedBrain verifies the export payload carries the brain
// version as an integer and blank deployment placeholders.
func TestCreateExportedBrain(t *testing.T) {
	var cp capture
	api := setupAPI(t, okHandler(&cp, `{"name":"b1-export"}`))

	_, err := api.CreateExportedBrain(context.Background(), CreateExportedBrainParams{
		Name:                  "b1-export",
		ProcessorArchitecture: "x64",
		BrainName:             "b1",
		BrainVersion:          4,
		DisplayName:           strPtr("Brain One Export"),
	}, "acme")

	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, cp.Method)
	assert.Equal(t, "/v2/workspaces/acme/exportedBrains", cp.Path)
	assert.Equal(t, map[string]any{
		"name":                  "b1-export",
		"subscription":          "",
		"resourceGroup":         "",
		"processorArchitecture": "x64",
		"brainName":             "b1",
		"brainVersion":          float64(4),
		"displayName":           "Brain One Export",
		"description":           nil,
	}, cp.json(t))
}

// TestListExportedBrains verifies the export listing request shape.
func TestListExportedBrains(t *testing.T) {
	var cp capture
	api := setupAPI(t, okHandler(&cp, `{"value":[]}`))

	_, err := api.ListExportedBrains(context.Background(), "acme")

	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, cp.Method)
	assert.Equal(t, "/v2/workspaces/acme/exportedBrains", cp.Path)
}

// TestGetExportedBrain verifies the export detail request shape.
func TestGetExportedBrain(t *testing.T) {
	var cp capture
	api := setupAPI(t, okHandler(&cp, `{"name":"b1-export"}`))

	_, err := api.GetExportedBrain(context.Background(), "b1-export", "acme")

	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, cp.Method)
	assert.Equal(t, "/v2/workspaces/acme/exportedBrains/b1-export", cp.Path)
}

// TestUpdateExportedBrain verifies export updates use PUT with nullable
// display fields.
func TestUpdateExportedBrain(t *testing.T) {
	var cp capture
	api := setupAPI(t, okHandler(&cp, `{}`))

	_, err := api.UpdateExportedBrain(context.Background(), "b1-export", strPtr("Renamed"), nil, "acme")

	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, cp.Method)
	assert.Equal(t, "/v2/workspaces/acme/exportedBrains/b1-export", cp.Path)
	assert.Equal(t, map[string]any{
		"displayName": "Renamed",
		"description": nil,
	}, cp.json(t))
}

// TestDeleteExportedBrain verifies the export deletion request shape.
func TestDeleteExportedBrain(t *testing.T) {
	var cp capture
	api := setupAPI(t, okHandler(&cp, `{}`))

	_, err := api.DeleteExportedBrain(context.Background(), "b1-export", "acme")

	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, cp.Method)
	assert.Equal(t, "/v2/workspaces/acme/exportedBrains/b1-export", cp.Path)
}
