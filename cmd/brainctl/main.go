// Package main is the entry point for brainctl, a thin command-line
// front end over the brain SDK. Its one verb connects unmanaged simulator
// sessions to a brain version for training or assessment.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jsamuelsen/go-brain-sdk/internal/adapters/clients"
	"github.com/jsamuelsen/go-brain-sdk/internal/adapters/clients/brainapi"
	"github.com/jsamuelsen/go-brain-sdk/internal/app"
	"github.com/jsamuelsen/go-brain-sdk/internal/domain"
	"github.com/jsamuelsen/go-brain-sdk/internal/platform/config"
	"github.com/jsamuelsen/go-brain-sdk/internal/platform/logging"
	"github.com/jsamuelsen/go-brain-sdk/internal/platform/telemetry"
	"github.com/jsamuelsen/go-brain-sdk/internal/ports"
)

// Build-time variables, injected via ldflags.
// Example: go build -ldflags "-X main.Version=1.0.0 -X main.Commit=$(git rev-parse HEAD) -X main.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	// Version is the semantic version of the build.
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "unknown"

	// BuildTime is the timestamp when the binary was built.
	BuildTime = "unknown"
)

// connectFlags carries the parsed command line.
type connectFlags struct {
	simulator string
	sessionID string
	brain     string
	version   int
	concept   string
	action    string
	workspace string
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags, err := parseFlags(args)
	if err != nil {
		return err
	}

	// Ctrl-C cancels the in-flight call instead of killing the process.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Determine profile from environment
	profile := os.Getenv("BRAIN_ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	// 2. Load and validate configuration (fail fast)
	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// 3. Initialize logging
	logger := logging.New(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	// Route both slog.Default and context-less logging.FromContext lookups
	// through the configured logger.
	logging.SetDefault(logger)
	ctx = logging.WithContext(ctx, logger)

	logger.Info("starting brainctl",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("build_time", BuildTime),
		slog.String("environment", cfg.App.Environment),
	)

	// 4. Initialize telemetry (noop if disabled)
	telProvider, err := telemetry.New(ctx, &telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		ServiceName:  cfg.Telemetry.ServiceName,
		Version:      cfg.App.Version,
		Environment:  cfg.App.Environment,
		SamplingRate: cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	defer func() {
		if shutdownErr := telProvider.Shutdown(context.Background()); shutdownErr != nil {
			logger.Error("telemetry shutdown error", slog.Any("error", shutdownErr))
		}
	}()

	// 5. Create the request dispatcher. Token acquisition is external
	// tooling's job; a pre-acquired federated token can be supplied via
	// BRAIN_FEDERATED_TOKEN for the legacy-key fallback.
	dispatcher, err := clients.New(&clients.Config{
		BaseURL:    cfg.API.URL,
		Timeout:    cfg.API.Timeout,
		UserAgent:  clients.UserAgent(Version),
		Credential: cfg.API.AccessKey,
		TenantID:   cfg.API.TenantID,
		Tokens:     tokenProviderFromEnv(),
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("creating dispatcher: %w", err)
	}

	// 6. Operation events (disabled toggle honored by NewEvents)
	events, err := telemetry.NewEvents(cfg.API.Workspace, cfg.Telemetry.Enabled)
	if err != nil {
		return fmt.Errorf("creating operation events: %w", err)
	}

	// 7. Create the resource method layer
	api, err := brainapi.New(brainapi.Config{
		Client:     dispatcher,
		Workspace:  cfg.API.Workspace,
		APIURL:     cfg.API.URL,
		GatewayURL: cfg.API.GatewayURL,
		Logger:     logger,
		Events:     events,
	})
	if err != nil {
		return fmt.Errorf("creating brain API client: %w", err)
	}

	// 8. Create the session-connect service (application layer)
	sessions := app.NewSessionService(app.SessionServiceConfig{
		Sessions: api,
		Logger:   logger,
	})

	return connect(ctx, sessions, flags)
}

// parseFlags parses the connect command line.
func parseFlags(args []string) (connectFlags, error) {
	var flags connectFlags

	fs := flag.NewFlagSet("brainctl", flag.ContinueOnError)
	fs.StringVar(&flags.simulator, "simulator", "", "simulator name to match against unmanaged sessions")
	fs.StringVar(&flags.sessionID, "session-id", "", "connect one specific session instead of matching by name")
	fs.StringVar(&flags.brain, "brain", "", "brain name the sessions train or assess")
	fs.IntVar(&flags.version, "version", 1, "brain version number")
	fs.StringVar(&flags.concept, "concept", "", "concept name within the brain version")
	fs.StringVar(&flags.action, "action", "Train", "purpose action: Train or Assess")
	fs.StringVar(&flags.workspace, "workspace", "", "workspace override (defaults to the configured workspace)")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: brainctl [flags]\n\nConnects unmanaged simulator sessions to a brain version.\n\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return connectFlags{}, err
	}

	return flags, nil
}

// tokenProviderFromEnv returns a provider serving the pre-acquired token
// from BRAIN_FEDERATED_TOKEN, or nil when none is set.
func tokenProviderFromEnv() ports.TokenProvider {
	token := os.Getenv("BRAIN_FEDERATED_TOKEN")
	if token == "" {
		return nil
	}

	return ports.TokenProviderFunc(func(context.Context, string) (string, error) {
		return token, nil
	})
}

// connect runs the session-connect flow and prints the per-session report.
func connect(ctx context.Context, sessions *app.SessionService, flags connectFlags) error {
	report, err := sessions.Connect(ctx, app.ConnectRequest{
		SimulatorName: flags.simulator,
		SessionID:     flags.sessionID,
		Action:        domain.PurposeAction(flags.action),
		BrainName:     flags.brain,
		BrainVersion:  flags.version,
		ConceptName:   flags.concept,
		Workspace:     flags.workspace,
	})
	if err != nil {
		return fmt.Errorf("connecting sessions: %w", err)
	}

	if report.Matched == 0 {
		fmt.Println("No matching simulator sessions found.")
		return nil
	}

	for _, outcome := range report.Outcomes {
		if outcome.Err != nil {
			fmt.Printf("%s (%s): %v\n", outcome.Session.SessionID, outcome.Session.SimulatorName, outcome.Err)
			continue
		}

		fmt.Printf("%s (%s): connected\n", outcome.Session.SessionID, outcome.Session.SimulatorName)
	}

	fmt.Printf("Connected %d of %d matching sessions.\n", report.Connected, report.Matched)

	if failed := report.Failed(); failed > 0 {
		return fmt.Errorf("%d of %d sessions failed to connect", failed, report.Matched)
	}

	return nil
}
