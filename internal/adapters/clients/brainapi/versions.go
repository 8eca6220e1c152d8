package brainapi

import (
	"context"
	"fmt"

	"github.com/jsamuelsen/go-brain-sdk/internal/adapters/clients"
)

// createBrainVersionRequest is the wire payload for copying a brain version.
type createBrainVersionRequest struct {
	SourceVersion int    `json:"sourceVersion"`
	Description   string `json:"description"`
}

type updateBrainVersionDetailsRequest struct {
	Description string `json:"description"`
}

type updateBrainVersionInklingRequest struct {
	Inkling string `json:"inkling"`
}

// CreateBrainVersion creates a new version of a brain by copying an
// existing source version.
func (c *Client) CreateBrainVersion(ctx context.Context, name string, sourceVersion int, description, workspace string) (clients.Result, error) {
	path := fmt.Sprintf("/v2/workspaces/%s/brains/%s/versions", c.workspaceOr(workspace), name)
	payload := createBrainVersionRequest{
		SourceVersion: sourceVersion,
		Description:   description,
	}
	return c.api(ctx, "CreateBrainVersion", clients.VerbPost, path, payload)
}

// ListBrainVersions returns all versions of a brain.
func (c *Client) ListBrainVersions(ctx context.Context, name, workspace string) (clients.Result, error) {
	path := fmt.Sprintf("/v2/workspaces/%s/brains/%s/versions", c.workspaceOr(workspace), name)
	return c.api(ctx, "ListBrainVersions", clients.VerbGet, path, nil)
}

// GetBrainVersion returns a brain version's details.
func (c *Client) GetBrainVersion(ctx context.Context, name string, version int, workspace string) (clients.Result, error) {
	path := fmt.Sprintf("/v2/workspaces/%s/brains/%s/versions/%d", c.workspaceOr(workspace), name, version)
	return c.api(ctx, "GetBrainVersion", clients.VerbGet, path, nil)
}

// UpdateBrainVersionDetails updates a brain version's description.
func (c *Client) UpdateBrainVersionDetails(ctx context.Context, name string, version int, description, workspace string) (clients.Result, error) {
	path := fmt.Sprintf("/v2/workspaces/%s/brains/%s/versions/%d", c.workspaceOr(workspace), name, version)
	payload := updateBrainVersionDetailsRequest{Description: description}
	return c.api(ctx, "UpdateBrainVersionDetails", clients.VerbPatch, path, payload)
}

// UpdateBrainVersionInkling replaces a brain version's inkling source.
func (c *Client) UpdateBrainVersionInkling(ctx context.Context, name string, version int, inkling, workspace string) (clients.Result, error) {
	path := fmt.Sprintf("/v2/workspaces/%s/brains/%s/versions/%d", c.workspaceOr(workspace), name, version)
	payload := updateBrainVersionInklingRequest{Inkling: inkling}
	return c.api(ctx, "UpdateBrainVersionInkling", clients.VerbPatch, path, payload)
}

// DeleteBrainVersion deletes a brain version.
func (c *Client) DeleteBrainVersion(ctx context.Context, name string, version int, workspace string) (clients.Result, error) {
	path := fmt.Sprintf("/v2/workspaces/%s/brains/%s/versions/%d", c.workspaceOr(workspace), name, version)
	return c.api(ctx, "DeleteBrainVersion", clients.VerbDelete, path, nil)
}
