package brainapi

import (
	"context"
	"fmt"

	"github.com/jsamuelsen/go-brain-sdk/internal/adapters/clients"
)

// resetTrainingConcept selects a concept lesson to reset. The lesson index
// travels as a string.
type resetTrainingConcept struct {
	Name        string `json:"name"`
	LessonIndex string `json:"lessonIndex"`
}

type resetTrainingRequest struct {
	ResetAll bool                   `json:"resetAll"`
	Concepts []resetTrainingConcept `json:"concepts"`
}

// StartTraining starts training a brain version.
func (c *Client) StartTraining(ctx context.Context, name string, version int, workspace string) (clients.Result, error) {
	path := fmt.Sprintf("/v2/workspaces/%s/brains/%s/versions/%d/startTraining", c.workspaceOr(workspace), name, version)
	return c.api(ctx, "StartTraining", clients.VerbPost, path, nil)
}

// StopTraining stops training a brain version.
func (c *Client) StopTraining(ctx context.Context, name string, version int, workspace string) (clients.Result, error) {
	path := fmt.Sprintf("/v2/workspaces/%s/brains/%s/versions/%d/stopTraining", c.workspaceOr(workspace), name, version)
	return c.api(ctx, "StopTraining", clients.VerbPost, path, nil)
}

// ResetTraining discards the training progress of one concept lesson of a
// brain version.
func (c *Client) ResetTraining(ctx context.Context, name string, version int, conceptName, lessonIndex, workspace string) (clients.Result, error) {
	path := fmt.Sprintf("/v2/workspaces/%s/brains/%s/versions/%d/resetTraining", c.workspaceOr(workspace), name, version)
	payload := resetTrainingRequest{
		ResetAll: false,
		Concepts: []resetTrainingConcept{{Name: conceptName, LessonIndex: lessonIndex}},
	}
	return c.api(ctx, "ResetTraining", clients.VerbPost, path, payload)
}

// StartAssessment starts assessing a brain version.
func (c *Client) StartAssessment(ctx context.Context, name string, version int, workspace string) (clients.Result, error) {
	path := fmt.Sprintf("/v2/workspaces/%s/brains/%s/versions/%d/startAssessment", c.workspaceOr(workspace), name, version)
	return c.api(ctx, "StartAssessment", clients.VerbPost, path, nil)
}

// StopAssessment stops assessing a brain version.
func (c *Client) StopAssessment(ctx context.Context, name string, version int, workspace string) (clients.Result, error) {
	path := fmt.Sprintf("/v2/workspaces/%s/brains/%s/versions/%d/stopAssessment", c.workspaceOr(workspace), name, version)
	return c.api(ctx, "StopAssessment", clients.VerbPost, path, nil)
}
