package brainapi

import (
	"context"
	"fmt"

	"github.com/jsamuelsen/go-brain-sdk/internal/adapters/clients"
	"github.com/jsamuelsen/go-brain-sdk/internal/domain"
)

// CreateSimulatorPackageParams holds the fields of a new simulator package.
// Pointer fields are serialized as explicit null when unset.
type CreateSimulatorPackageParams struct {
	// ImagePath is the container registry path of the simulator image.
	ImagePath string

	// StartInstanceCount is the number of instances started initially.
	StartInstanceCount int

	// CoresPerInstance is the CPU core allocation per instance.
	CoresPerInstance float64

	// MemoryInGBPerInstance is the memory allocation per instance.
	MemoryInGBPerInstance float64

	// DisplayName is the human-readable package name.
	DisplayName *string

	// Description describes the package.
	Description *string

	// OSType is the image operating system, such as Linux or Windows.
	OSType *string

	// PackageType distinguishes container packages from uploaded models.
	PackageType *string

	// MinInstanceCount and MaxInstanceCount bound automatic scaling.
	MinInstanceCount int
	MaxInstanceCount int

	// AutoScale enables automatic instance scaling.
	AutoScale bool

	// AutoTerminate shuts instances down when training stops.
	AutoTerminate bool
}

// UpdateSimulatorPackageParams holds the mutable fields of a simulator
// package.
type UpdateSimulatorPackageParams struct {
	StartInstanceCount    int
	CoresPerInstance      float64
	MemoryInGBPerInstance float64
	DisplayName           *string
	Description           *string
	MinInstanceCount      int
	MaxInstanceCount      int
	AutoScale             bool
	AutoTerminate         bool
}

// CreateSimulatorCollectionParams holds the fields of a new simulator
// collection. The scaling fields are string-or-null on this endpoint.
type CreateSimulatorCollectionParams struct {
	// BrainName, BrainVersion, and ConceptName identify the concept the
	// collection's sessions serve.
	BrainName    string
	BrainVersion int
	ConceptName  string

	// PurposeAction is what the collection's sessions do for the concept.
	PurposeAction domain.PurposeAction

	// Description describes the collection.
	Description *string

	CoresPerInstance      *string
	MemoryInGBPerInstance *string
	StartInstanceCount    *string
	MinInstanceCount      *string
	MaxInstanceCount      *string
	AutoScaling           *string
	AutoTermination       *string
}

type createSimulatorPackageRequest struct {
	StartInstanceCount int     `json:"startInstanceCount"`
	CoresPerInstance   float64 `json:"coresPerInstance"`
	MemInGBPerInstance float64 `json:"memInGbPerInstance"`
	DisplayName        *string `json:"displayName"`
	Description        *string `json:"description"`
	OSType             *string `json:"osType"`
	PackageType        *string `json:"packageType"`
	ImagePath          string  `json:"imagePath"`
	MinInstanceCount   int     `json:"minInstanceCount"`
	MaxInstanceCount   int     `json:"maxInstanceCount"`
	AutoScale          bool    `json:"autoScale"`
	AutoTerminate      bool    `json:"autoTerminate"`
}

type updateSimulatorPackageRequest struct {
	StartInstanceCount int     `json:"startInstanceCount"`
	CoresPerInstance   float64 `json:"coresPerInstance"`
	MemInGBPerInstance float64 `json:"memInGbPerInstance"`
	DisplayName        *string `json:"displayName"`
	Description        *string `json:"description"`
	MinInstanceCount   int     `json:"minInstanceCount"`
	MaxInstanceCount   int     `json:"maxInstanceCount"`
	AutoScale          bool    `json:"autoScale"`
	AutoTerminate      bool    `json:"autoTerminate"`
}

// createSimulatorCollectionRequest is the wire payload for collection
// creation. Key casing differs from the package endpoint: Subscription is
// capitalized and the memory key spells GB in upper case. The scaling
// fields are strings rather than numbers.
type createSimulatorCollectionRequest struct {
	Purpose            purposePayload `json:"purpose"`
	Description        *string        `json:"description"`
	ResourceGroupName  string         `json:"resourceGroupName"`
	Subscription       string         `json:"Subscription"`
	CoresPerInstance   *string        `json:"coresPerInstance"`
	MemInGBPerInstance *string        `json:"memInGBPerInstance"`
	StartInstanceCount *string        `json:"startInstanceCount"`
	MinInstanceCount   *string        `json:"minInstanceCount"`
	MaxInstanceCount   *string        `json:"maxInstanceCount"`
	AutoScaling        *string        `json:"autoScaling"`
	AutoTermination    *string        `json:"autoTermination"`
}

type updateSimulatorCollectionRequest struct {
	Description *string `json:"description"`
}

// CreateSimulatorPackage registers a simulator package under the given name.
func (c *Client) CreateSimulatorPackage(ctx context.Context, name string, params CreateSimulatorPackageParams, workspace string) (clients.Result, error) {
	path := fmt.Sprintf("/v2/workspaces/%s/simulatorpackages/%s", c.workspaceOr(workspace), name)
	payload := createSimulatorPackageRequest{
		StartInstanceCount: params.StartInstanceCount,
		CoresPerInstance:   params.CoresPerInstance,
		MemInGBPerInstance: params.MemoryInGBPerInstance,
		DisplayName:        params.DisplayName,
		Description:        params.Description,
		OSType:             params.OSType,
		PackageType:        params.PackageType,
		ImagePath:          params.ImagePath,
		MinInstanceCount:   params.MinInstanceCount,
		MaxInstanceCount:   params.MaxInstanceCount,
		AutoScale:          params.AutoScale,
		AutoTerminate:      params.AutoTerminate,
	}
	return c.api(ctx, "CreateSimulatorPackage", clients.VerbPut, path, payload)
}

// ListSimulatorPackages returns the workspace's simulator packages.
func (c *Client) ListSimulatorPackages(ctx context.Context, workspace string) (clients.Result, error) {
	path := fmt.Sprintf("/v2/workspaces/%s/simulatorpackages", c.workspaceOr(workspace))
	return c.api(ctx, "ListSimulatorPackages", clients.VerbGet, path, nil)
}

// GetSimulatorPackage returns a simulator package's details.
func (c *Client) GetSimulatorPackage(ctx context.Context, name, workspace string) (clients.Result, error) {
	path := fmt.Sprintf("/v2/workspaces/%s/simulatorpackages/%s", c.workspaceOr(workspace), name)
	return c.api(ctx, "GetSimulatorPackage", clients.VerbGet, path, nil)
}

// UpdateSimulatorPackage updates a simulator package's scaling and display
// fields.
func (c *Client) UpdateSimulatorPackage(ctx context.Context, name string, params UpdateSimulatorPackageParams, workspace string) (clients.Result, error) {
	path := fmt.Sprintf("/v2/workspaces/%s/simulatorpackages/%s", c.workspaceOr(workspace), name)
	payload := updateSimulatorPackageRequest{
		StartInstanceCount: params.StartInstanceCount,
		CoresPerInstance:   params.CoresPerInstance,
		MemInGBPerInstance: params.MemoryInGBPerInstance,
		DisplayName:        params.DisplayName,
		Description:        params.Description,
		MinInstanceCount:   params.MinInstanceCount,
		MaxInstanceCount:   params.MaxInstanceCount,
		AutoScale:          params.AutoScale,
		AutoTerminate:      params.AutoTerminate,
	}
	return c.api(ctx, "UpdateSimulatorPackage", clients.VerbPatch, path, payload)
}

// DeleteSimulatorPackage deletes a simulator package.
func (c *Client) DeleteSimulatorPackage(ctx context.Context, name, workspace string) (clients.Result, error) {
	path := fmt.Sprintf("/v2/workspaces/%s/simulatorpackages/%s", c.workspaceOr(workspace), name)
	return c.api(ctx, "DeleteSimulatorPackage", clients.VerbDelete, path, nil)
}

// CreateSimulatorCollection creates a collection of managed sessions of a
// simulator package, bound to a brain version concept.
func (c *Client) CreateSimulatorCollection(ctx context.Context, packageName string, params CreateSimulatorCollectionParams, workspace string) (clients.Result, error) {
	path := fmt.Sprintf("/v2/workspaces/%s/simulatorpackages/%s/simulatorcollections", c.workspaceOr(workspace), packageName)
	payload := createSimulatorCollectionRequest{
		Purpose:            c.purposeFor(params.PurposeAction, params.BrainName, params.BrainVersion, params.ConceptName),
		Description:        params.Description,
		CoresPerInstance:   params.CoresPerInstance,
		MemInGBPerInstance: params.MemoryInGBPerInstance,
		StartInstanceCount: params.StartInstanceCount,
		MinInstanceCount:   params.MinInstanceCount,
		MaxInstanceCount:   params.MaxInstanceCount,
		AutoScaling:        params.AutoScaling,
		AutoTermination:    params.AutoTermination,
	}
	return c.api(ctx, "CreateSimulatorCollection", clients.VerbPost, path, payload)
}

// ListSimulatorCollections returns a simulator package's collections.
func (c *Client) ListSimulatorCollections(ctx context.Context, packageName, workspace string) (clients.Result, error) {
	path := fmt.Sprintf("/v2/workspaces/%s/simulatorpackages/%s/simulatorcollections", c.workspaceOr(workspace), packageName)
	return c.api(ctx, "ListSimulatorCollections", clients.VerbGet, path, nil)
}

// GetSimulatorCollection returns a simulator collection's details.
func (c *Client) GetSimulatorCollection(ctx context.Context, packageName, collectionID, workspace string) (clients.Result, error) {
	path := fmt.Sprintf("/v2/workspaces/%s/simulatorpackages/%s/simulatorcollections/%s", c.workspaceOr(workspace), packageName, collectionID)
	return c.api(ctx, "GetSimulatorCollection", clients.VerbGet, path, nil)
}

// UpdateSimulatorCollection updates a simulator collection's description.
func (c *Client) UpdateSimulatorCollection(ctx context.Context, packageName, collectionID string, description *string, workspace string) (clients.Result, error) {
	path := fmt.Sprintf("/v2/workspaces/%s/simulatorpackages/%s/simulatorcollections/%s", c.workspaceOr(workspace), packageName, collectionID)
	payload := updateSimulatorCollectionRequest{Description: description}
	return c.api(ctx, "UpdateSimulatorCollection", clients.VerbPatch, path, payload)
}

// DeleteSimulatorCollection deletes a simulator collection.
func (c *Client) DeleteSimulatorCollection(ctx context.Context, packageName, collectionID, workspace string) (clients.Result, error) {
	path := fmt.Sprintf("/v2/workspaces/%s/simulatorpackages/%s/simulatorcollections/%s", c.workspaceOr(workspace), packageName, collectionID)
	return c.api(ctx, "DeleteSimulatorCollection", clients.VerbDelete, path, nil)
}

// ListSimulatorBaseImages returns the platform's simulator base images.
func (c *Client) ListSimulatorBaseImages(ctx context.Context, workspace string) (clients.Result, error) {
	path := fmt.Sprintf("/v2/workspaces/%s/simulatorbaseimages", c.workspaceOr(workspace))
	return c.api(ctx, "ListSimulatorBaseImages", clients.VerbGet, path, nil)
}

// GetSimulatorBaseImage returns a simulator base image's details.
func (c *Client) GetSimulatorBaseImage(ctx context.Context, imageID, workspace string) (clients.Result, error) {
	path := fmt.Sprintf("/v2/workspaces/%s/simulatorbaseimages/%s", c.workspaceOr(workspace), imageID)
	return c.api(ctx, "GetSimulatorBaseImage", clients.VerbGet, path, nil)
}
