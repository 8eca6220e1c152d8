// Package brainapi exposes the brain management service's resource catalog
// as typed method calls. It is an anti-corruption layer: each method builds
// an endpoint path and wire payload, delegates to the request dispatcher,
// and translates raw records into domain types where callers need them.
package brainapi

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/jsamuelsen/go-brain-sdk/internal/adapters/clients"
	"github.com/jsamuelsen/go-brain-sdk/internal/domain"
	"github.com/jsamuelsen/go-brain-sdk/internal/platform/logging"
	"github.com/jsamuelsen/go-brain-sdk/internal/platform/telemetry"
)

// Config contains configuration for the brain API client.
type Config struct {
	// Client is the request dispatcher used for every call.
	Client *clients.Client

	// Workspace is the default workspace for operations that do not name one.
	Workspace string

	// APIURL is the base origin of the management API.
	APIURL string

	// GatewayURL is the base origin of the simulator gateway, which serves
	// the simulator session operations.
	GatewayURL string

	// Logger is the structured logger.
	Logger *slog.Logger

	// Events records per-operation telemetry. Optional.
	Events *telemetry.Events
}

// Client exposes the management API's resources:
//
//   - Brains and brain versions, including inkling updates
//   - Training and assessment control for a brain version
//   - Simulator packages, collections, and base images
//   - Exported brains
//   - Simulator sessions on the gateway origin
//
// Operations take the target workspace as their final parameter; an empty
// workspace selects the configured default.
type Client struct {
	client      *clients.Client
	workspace   string
	apiBase     *url.URL
	gatewayBase *url.URL
	logger      *slog.Logger
	events      *telemetry.Events
}

// New creates a brain API client.
// Panics if Client is nil. Defaults logger to slog.Default() if nil.
func New(cfg Config) (*Client, error) {
	if cfg.Client == nil {
		panic("brainapi: Client is required")
	}

	if cfg.Workspace == "" {
		return nil, domain.NewConfigurationErrorWithReason("workspace", "Workspace name is missing")
	}
	if cfg.APIURL == "" {
		return nil, domain.NewConfigurationErrorWithReason("apiUrl", "API url is missing")
	}
	if cfg.GatewayURL == "" {
		return nil, domain.NewConfigurationErrorWithReason("gatewayUrl", "Gateway url is missing")
	}

	apiBase, err := url.Parse(cfg.APIURL)
	if err != nil {
		return nil, domain.NewConfigurationErrorWithReason("apiUrl", err.Error())
	}

	gatewayBase, err := url.Parse(cfg.GatewayURL)
	if err != nil {
		return nil, domain.NewConfigurationErrorWithReason("gatewayUrl", err.Error())
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		client:      cfg.Client,
		workspace:   cfg.Workspace,
		apiBase:     apiBase,
		gatewayBase: gatewayBase,
		logger:      logger,
		events:      cfg.Events,
	}, nil
}

// Workspace returns the configured default workspace.
func (c *Client) Workspace() string {
	return c.workspace
}

// workspaceOr returns the explicit workspace when given, the configured
// default otherwise.
func (c *Client) workspaceOr(workspace string) string {
	if workspace != "" {
		return workspace
	}
	return c.workspace
}

// api dispatches a request against the management API origin.
func (c *Client) api(ctx context.Context, operation string, verb clients.Verb, path string, payload any) (clients.Result, error) {
	return c.call(ctx, operation, verb, c.apiBase, path, payload)
}

// gateway dispatches a request against the simulator gateway origin.
func (c *Client) gateway(ctx context.Context, operation string, verb clients.Verb, path string, payload any) (clients.Result, error) {
	return c.call(ctx, operation, verb, c.gatewayBase, path, payload)
}

func (c *Client) call(ctx context.Context, operation string, verb clients.Verb, base *url.URL, path string, payload any) (clients.Result, error) {
	c.logger.Log(ctx, logging.LevelTrace, "starting request",
		slog.String("operation", operation),
		slog.String("path", path))

	start := time.Now()
	result, err := c.client.Dispatch(ctx, verb, joinURL(base, path), payload, nil)
	c.events.RecordOperation(ctx, operation, time.Since(start), err)

	if err != nil {
		return nil, err
	}

	c.logger.Log(ctx, logging.LevelTrace, "request complete",
		slog.String("operation", operation),
		slog.Int("status", result.StatusCode()))

	return result, nil
}

// joinURL resolves a path, optionally carrying a query string, against a
// base origin. An absolute path replaces any path component of the base.
func joinURL(base *url.URL, pathAndQuery string) string {
	ref, err := url.Parse(pathAndQuery)
	if err != nil {
		ref = &url.URL{Path: pathAndQuery}
	}
	return base.ResolveReference(ref).String()
}

// purposeTarget binds a purpose to a brain version concept. The version
// travels as a string on this part of the wire.
type purposeTarget struct {
	WorkspaceName string `json:"workspaceName"`
	BrainName     string `json:"brainName"`
	BrainVersion  string `json:"brainVersion"`
	ConceptName   string `json:"conceptName"`
}

// purposePayload is the wire form of a simulator purpose.
type purposePayload struct {
	Action string        `json:"action"`
	Target purposeTarget `json:"target"`
}

// purposeFor builds the wire purpose for a brain version concept. The target
// always names the configured workspace, even when the request path carries
// an override.
func (c *Client) purposeFor(action domain.PurposeAction, brainName string, brainVersion int, conceptName string) purposePayload {
	return purposePayload{
		Action: string(action),
		Target: purposeTarget{
			WorkspaceName: c.workspace,
			BrainName:     brainName,
			BrainVersion:  strconv.Itoa(brainVersion),
			ConceptName:   conceptName,
		},
	}
}
