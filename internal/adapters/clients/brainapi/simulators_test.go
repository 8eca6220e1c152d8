package brainapi

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/go-brain-sdk/internal/domain"
)

func strPtr(s string) *string { return &s }

// TestCreateSimulatorPackage verifies package creation PUTs the full wire
// payload, with unset optional fields as explicit nulls.
func TestCreateSimulatorPackage(t *testing.T) {
	var cp capture
	api := setupAPI(t, okHandler(&cp, `{"name":"cartpole-sim"}`))

	_, err := api.CreateSimulatorPackage(context.Background(), "cartpole-sim", CreateSimulatorPackageParams{
		ImagePath:             "ws.azurecr.io/sims/cartpole:latest",
		StartInstanceCount:    2,
		CoresPerInstance:      1.5,
		MemoryInGBPerInstance: 2,
		DisplayName:           strPtr("Cartpole"),
		OSType:                strPtr("Linux"),
		PackageType:           strPtr("container"),
		MinInstanceCount:      1,
		MaxInstanceCount:      4,
		AutoScale:             true,
		AutoTerminate:         true,
	}, "acme")

	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, cp.Method)
	assert.Equal(t, "/v2/workspaces/acme/simulatorpackages/cartpole-sim", cp.Path)
	assert.Equal(t, map[string]any{
		"startInstanceCount": float64(2),
		"coresPerInstance":   1.5,
		"memInGbPerInstance": float64(2),
		"displayName":        "Cartpole",
		"description":        nil,
		"osType":             "Linux",
		"packageType":        "container",
		"imagePath":          "ws.azurecr.io/sims/cartpole:latest",
		"minInstanceCount":   float64(1),
		"maxInstanceCount":   float64(4),
		"autoScale":          true,
		"autoTerminate":      true,
	}, cp.json(t))
}

// TestUpdateSimulatorPackage verifies the update payload carries only the
// mutable fields.
func TestUpdateSimulatorPackage(t *testing.T) {
	var cp capture
	api := setupAPI(t, okHandler(&cp, `{}`))

	_, err := api.UpdateSimulatorPackage(context.Background(), "cartpole-sim", UpdateSimulatorPackageParams{
		StartInstanceCount:    3,
		CoresPerInstance:      2,
		MemoryInGBPerInstance: 4,
		Description:           strPtr("scaled up"),
		MinInstanceCount:      1,
		MaxInstanceCount:      8,
	}, "acme")

	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, cp.Method)
	assert.Equal(t, "/v2/workspaces/acme/simulatorpackages/cartpole-sim", cp.Path)

	payload := cp.json(t)
	assert.Equal(t, "scaled up", payload["description"])
	assert.NotContains(t, payload, "imagePath")
	assert.NotContains(t, payload, "osType")
	assert.NotContains(t, payload, "packageType")
}

// TestListSimulatorPackages verifies the package listing request shape.
func TestListSimulatorPackages(t *testing.T) {
	var cp capture
	api := setupAPI(t, okHandler(&cp, `{"value":[]}`))

	_, err := api.ListSimulatorPackages(context.Background(), "")

	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, cp.Method)
	assert.Equal(t, "/v2/workspaces/ws-default/simulatorpackages", cp.Path)
}

// TestGetSimulatorPackage verifies the package detail request shape.
func TestGetSimulatorPackage(t *testing.T) {
	var cp capture
	api := setupAPI(t, okHandler(&cp, `{"name":"cartpole-sim"}`))

	_, err := api.GetSimulatorPackage(context.Background(), "cartpole-sim", "acme")

	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, cp.Method)
	assert.Equal(t, "/v2/workspaces/acme/simulatorpackages/cartpole-sim", cp.Path)
}

// TestDeleteSimulatorPackage verifies the package deletion request shape.
func TestDeleteSimulatorPackage(t *testing.T) {
	var cp capture
	api := setupAPI(t, okHandler(&cp, `{}`))

	_, err := api.DeleteSimulatorPackage(context.Background(), "cartpole-sim", "acme")

	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, cp.Method)
	assert.Equal(t, "/v2/workspaces/acme/simulatorpackages/cartpole-sim", cp.Path)
}

// TestCreateSimulatorCollection verifies the collection payload quirks: the
// purpose target names the configured workspace even when the call
// overrides it, the version is a string, the Subscription key is
// capitalized, and the scaling fields are string-or-null.
func TestCreateSimulatorCollection(t *testing.T) {
	var cp capture
	api := setupAPI(t, okHandler(&cp, `{"collectionId":"c-1"}`))

	_, err := api.CreateSimulatorCollection(context.Background(), "cartpole-sim", CreateSimulatorCollectionParams{
		BrainName:             "b1",
		BrainVersion:          4,
		ConceptName:           "Reach",
		PurposeAction:         domain.PurposeActionTrain,
		CoresPerInstance:      strPtr("2"),
		MemoryInGBPerInstance: strPtr("4"),
		StartInstanceCount:    strPtr("3"),
	}, "acme")

	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, cp.Method)
	assert.Equal(t, "/v2/workspaces/acme/simulatorpackages/cartpole-sim/simulatorcollections", cp.Path)
	assert.Equal(t, map[string]any{
		"purpose": map[string]any{
			"action": "Train",
			"target": map[string]any{
				"workspaceName": "ws-default",
				"brainName":     "b1",
				"brainVersion":  "4",
				"conceptName":   "Reach",
			},
		},
		"description":        nil,
		"resourceGroupName":  "",
		"Subscription":       "",
		"coresPerInstance":   "2",
		"memInGBPerInstance": "4",
		"startInstanceCount": "3",
		"minInstanceCount":   nil,
		"maxInstanceCount":   nil,
		"autoScaling":        nil,
		"autoTermination":    nil,
	}, cp.json(t))
}

// TestListSimulatorCollections verifies the collection listing request
// shape.
func TestListSimulatorCollections(t *testing.T) {
	var cp capture
	api := setupAPI(t, okHandler(&cp, `{"value":[]}`))

	_, err := api.ListSimulatorCollections(context.Background(), "cartpole-sim", "acme")

	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, cp.Method)
	assert.Equal(t, "/v2/workspaces/acme/simulatorpackages/cartpole-sim/simulatorcollections", cp.Path)
}

// TestGetSimulatorCollection verifies the collection detail request shape.
func TestGetSimulatorCollection(t *testing.T) {
	var cp capture
	api := setupAPI(t, okHandler(&cp, `{"collectionId":"c-1"}`))

	_, err := api.GetSimulatorCollection(context.Background(), "cartpole-sim", "c-1", "acme")

	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, cp.Method)
	assert.Equal(t, "/v2/workspaces/acme/simulatorpackages/cartpole-sim/simulatorcollections/c-1", cp.Path)
}

// TestUpdateSimulatorCollection verifies the description patch.
func TestUpdateSimulatorCollection(t *testing.T) {
	var cp capture
	api := setupAPI(t, okHandler(&cp, `{}`))

	_, err := api.UpdateSimulatorCollection(context.Background(), "cartpole-sim", "c-1", strPtr("relabeled"), "acme")

	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, cp.Method)
	assert.Equal(t, map[string]any{"description": "relabeled"}, cp.json(t))
}

// TestDeleteSimulatorCollection verifies the collection deletion request
// shape.
func TestDeleteSimulatorCollection(t *testing.T) {
	var cp capture
	api := setupAPI(t, okHandler(&cp, `{}`))

	_, err := api.DeleteSimulatorCollection(context.Background(), "cartpole-sim", "c-1", "acme")

	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, cp.Method)
	assert.Equal(t, "/v2/workspaces/acme/simulatorpackages/cartpole-sim/simulatorcollections/c-1", cp.Path)
}

// TestListSimulatorBaseImages verifies the base image listing request
// shape.
func TestListSimulatorBaseImages(t *testing.T) {
	var cp capture
	api := setupAPI(t, okHandler(&cp, `{"value":[]}`))

	_, err := api.ListSimulatorBaseImages(context.Background(), "acme")

	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, cp.Method)
	assert.Equal(t, "/v2/workspaces/acme/simulatorbaseimages", cp.Path)
}

// TestGetSimulatorBaseImage verifies the base image detail request shape.
func TestGetSimulatorBaseImage(t *testing.T) {
	var cp capture
	api := setupAPI(t, okHandler(&cp, `{"imageIdentifier":"77"}`))

	_, err := api.GetSimulatorBaseImage(context.Background(), "77", "acme")

	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, cp.Method)
	assert.Equal(t, "/v2/workspaces/acme/simulatorbaseimages/77", cp.Path)
}
