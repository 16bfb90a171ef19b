package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/podfix/internal/ledger"
	"github.com/desertthunder/podfix/internal/repositories"
	"github.com/desertthunder/podfix/internal/services"
	"github.com/desertthunder/podfix/internal/shared"
	"github.com/desertthunder/podfix/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	service    services.Service
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	input      io.Reader
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Service and Input are injectable for testing; in production the provider
// client is built lazily from the loaded config.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Service    services.Service
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Input      io.Reader
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		service:    opts.Service,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		input:      opts.Input,
	}
}

// SetLogger swaps the runner's logger, used when the TUI takes over stderr.
func (r *Runner) SetLogger(l *log.Logger) { r.logger = l }

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		runCommand, resumeCommand, resetCommand, statusCommand, searchCommand, cacheCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// loadConfig resolves the effective configuration, preferring an injected
// config, then the --config flag path, then defaults.
func (r *Runner) loadConfig(cmd *cli.Command) *shared.Config {
	if r.config != nil {
		return r.config
	}

	path := cmd.String("config")
	if path == "" {
		path = r.configPath
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			config, err := shared.LoadConfig(path)
			if err == nil {
				r.config = config
				return config
			}
			r.logger.Warn("failed to load config, using defaults", "path", path, "error", err)
		}
	}

	r.config = shared.DefaultConfig()
	return r.config
}

// provider returns the injected service or builds an authenticated provider
// client from the config.
func (r *Runner) provider(ctx context.Context, config *shared.Config) (services.Service, error) {
	if r.service != nil {
		return r.service, nil
	}

	if !config.HasCredentials() {
		return nil, fmt.Errorf("%w: set credentials in config.toml (run 'podfix setup config')", shared.ErrMissingCredentials)
	}

	svc := services.NewProviderService(services.ProviderOpts{
		BaseURL:   config.Credentials.BaseURL,
		Client:    r.httpClient,
		RateLimit: config.Run.RateLimit,
		Retry: services.RetryConfig{
			Attempts:  config.Run.RetryAttempts,
			BaseDelay: time.Duration(config.Run.RetryDelayMS) * time.Millisecond,
		},
	})

	if err := svc.Authenticate(ctx, map[string]string{
		"api_key":       config.Credentials.APIKey,
		"client_id":     config.Credentials.ClientID,
		"client_secret": config.Credentials.ClientSecret,
		"token_url":     config.Credentials.TokenURL,
	}); err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}

	r.service = svc
	return svc, nil
}

// openLedger creates and loads the progress ledger. A corrupt ledger file is
// fatal; the operator must reset or repair it by hand.
func (r *Runner) openLedger(config *shared.Config) (*ledger.Ledger, error) {
	led := ledger.New(config.Ledger.Path)
	if _, err := led.Load(); err != nil {
		return nil, err
	}
	return led, nil
}

// openCache opens the episode cache database, running migrations as needed.
// The caller owns the returned handle.
func (r *Runner) openCache(config *shared.Config) (*sql.DB, tasks.EpisodeCacher, error) {
	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open episode cache: %w", err)
	}

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	adapter := repositories.NewEpisodeCacheAdapter(repositories.NewEpisodeRepository(db))
	return db, adapter, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
