package brainapi

import (
	"context"
	"fmt"

	"github.com/jsamuelsen/go-brain-sdk/internal/adapters/clients"
)

// createBrainRequest is the wire payload for brain creation. Description is
// serialized as an explicit null when unset.
type createBrainRequest struct {
	Name        string  `json:"name"`
	DisplayName string  `json:"displayName"`
	Description *string `json:"description"`
}

// updateBrainRequest is the wire payload for brain detail updates.
type updateBrainRequest struct {
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
}

// ListBrains returns the workspace's brains.
func (c *Client) ListBrains(ctx context.Context, workspace string) (clients.Result, error) {
	path := fmt.Sprintf("/v2/workspaces/%s/brains", c.workspaceOr(workspace))
	return c.api(ctx, "ListBrains", clients.VerbGet, path, nil)
}

// CreateBrain creates a brain with the given name.
func (c *Client) CreateBrain(ctx context.Context, name, displayName string, description *string, workspace string) (clients.Result, error) {
	path := fmt.Sprintf("/v2/workspaces/%s/brains/%s", c.workspaceOr(workspace), name)
	payload := createBrainRequest{
		Name:        name,
		DisplayName: displayName,
		Description: description,
	}
	return c.api(ctx, "CreateBrain", clients.VerbPut, path, payload)
}

// UpdateBrain updates a brain's display name and description.
func (c *Client) UpdateBrain(ctx context.Context, name, displayName, description, workspace string) (clients.Result, error) {
	path := fmt.Sprintf("/v2/workspaces/%s/brains/%s", c.workspaceOr(workspace), name)
	payload := updateBrainRequest{
		DisplayName: displayName,
		Description: description,
	}
	return c.api(ctx, "UpdateBrain", clients.VerbPatch, path, payload)
}

// GetBrain returns a brain's details.
func (c *Client) GetBrain(ctx context.Context, name, workspace string) (clients.Result, error) {
	path := fmt.Sprintf("/v2/workspaces/%s/brains/%s", c.workspaceOr(workspace), name)
	return c.api(ctx, "GetBrain", clients.VerbGet, path, nil)
}

// DeleteBrain deletes a brain.
func (c *Client) DeleteBrain(ctx context.Context, name, workspace string) (clients.Result, error) {
	path := fmt.Sprintf("/v2/workspaces/%s/brains/%s", c.workspaceOr(workspace), name)
	return c.api(ctx, "DeleteBrain", clients.VerbDelete, path, nil)
}
