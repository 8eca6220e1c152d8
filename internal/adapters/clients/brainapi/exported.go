package brainapi

import (
	"context"
	"fmt"

	"github.com/jsamuelsen/go-brain-sdk/internal/adapters/clients"
)

// CreateExportedBrainParams holds the fields of a new brain export.
type CreateExportedBrainParams struct {
	// Name is the exported brain's name.
	Name string

	// ProcessorArchitecture selects the target architecture of the export,
	// such as x64 or arm64.
	ProcessorArchitecture string

	// BrainName and BrainVersion identify the trained version to export.
	BrainName    string
	BrainVersion int

	// DisplayName is the human-readable export name.
	DisplayName *string

	// Description describes the export.
	Description *string
}

// createExportedBrainRequest is the wire payload for brain exports. Unlike
// the purpose target, the version travels as an integer here.
type createExportedBrainRequest struct {
	Name                  string  `json:"name"`
	Subscription          string  `json:"subscription"`
	ResourceGroup         string  `json:"resourceGroup"`
	ProcessorArchitecture string  `json:"processorArchitecture"`
	BrainName             string  `json:"brainName"`
	BrainVersion          int     `json:"brainVersion"`
	DisplayName           *string `json:"displayName"`
	Description           *string `json:"description"`
}

type updateExportedBrainRequest struct {
	DisplayName *string `json:"displayName"`
	Description *string `json:"description"`
}

// CreateExportedBrain exports a trained brain version as a deployable
// artifact.
func (c *Client) CreateExportedBrain(ctx context.Context, params CreateExportedBrainParams, workspace string) (clients.Result, error) {
	path := fmt.Sprintf("/v2/workspaces/%s/exportedBrains", c.workspaceOr(workspace))
	payload := createExportedBrainRequest{
		Name:                  params.Name,
		ProcessorArchitecture: params.ProcessorArchitecture,
		BrainName:             params.BrainName,
		BrainVersion:          params.BrainVersion,
		DisplayName:           params.DisplayName,
		Description:           params.Description,
	}
	return c.api(ctx, "CreateExportedBrain", clients.VerbPost, path, payload)
}

// ListExportedBrains returns the workspace's exported brains.
func (c *Client) ListExportedBrains(ctx context.Context, workspace string) (clients.Result, error) {
	path := fmt.Sprintf("/v2/workspaces/%s/exportedBrains", c.workspaceOr(workspace))
	return c.api(ctx, "ListExportedBrains", clients.VerbGet, path, nil)
}

// GetExportedBrain returns an exported brain's details.
func (c *Client) GetExportedBrain(ctx context.Context, name, workspace string) (clients.Result, error) {
	path := fmt.Sprintf("/v2/workspaces/%s/exportedBrains/%s", c.workspaceOr(workspace), name)
	return c.api(ctx, "GetExportedBrain", clients.VerbGet, path, nil)
}

// UpdateExportedBrain updates an exported brain's display name and
// description.
func (c *Client) UpdateExportedBrain(ctx context.Context, name string, displayName, description *string, workspace string) (clients.Result, error) {
	path := fmt.Sprintf("/v2/workspaces/%s/exportedBrains/%s", c.workspaceOr(workspace), name)
	payload := updateExportedBrainRequest{
		DisplayName: displayName,
		Description: description,
	}
	return c.api(ctx, "UpdateExportedBrain", clients.VerbPut, path, payload)
}

// DeleteExportedBrain deletes an exported brain.
func (c *Client) DeleteExportedBrain(ctx context.Context, name, workspace string) (clients.Result, error) {
	path := fmt.Sprintf("/v2/workspaces/%s/exportedBrains/%s", c.workspaceOr(workspace), name)
	return c.api(ctx, "DeleteExportedBrain", clients.VerbDelete, path, nil)
}
