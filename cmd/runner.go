package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/gabrielcarfora/emby-letterboxd-sync/internal/repositories"
	"github.com/gabrielcarfora/emby-letterboxd-sync/internal/services"
	"github.com/gabrielcarfora/emby-letterboxd-sync/internal/shared"
	"github.com/gabrielcarfora/emby-letterboxd-sync/internal/tasks"
	"github.com/urfave/cli/v3"
)

// linkService is the slice of the Emby client used when creating links:
// resolving a username to its id and finding or creating the target playlist.
type linkService interface {
	UserIDByName(ctx context.Context, username string) (string, error)
	EnsurePlaylist(ctx context.Context, userID, name string) (string, error)
}

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config    *shared.Config
	watchlist services.WatchlistSource
	media     services.MediaLibrary
	accounts  linkService
	repo      *repositories.LinkRepository
	logger    *log.Logger
	output    io.Writer
	engine    *tasks.SyncEngine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config    *shared.Config
	Watchlist services.WatchlistSource
	Media     services.MediaLibrary
	Accounts  linkService
	Repo      *repositories.LinkRepository
	Logger    *log.Logger
	Output    io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	engine := tasks.NewSyncEngine(tasks.SyncEngineOpts{
		Watchlist: opts.Watchlist,
		Media:     opts.Media,
		Workers:   opts.Config.Sync.Workers,
		Logger:    opts.Logger,
	})

	return &Runner{
		config:    opts.Config,
		watchlist: opts.Watchlist,
		media:     opts.Media,
		accounts:  opts.Accounts,
		repo:      opts.Repo,
		logger:    opts.Logger,
		output:    opts.Output,
		engine:    engine,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, linkCommand, syncCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// openLinks returns the link repository, opening the configured database
// on demand when the Runner was not constructed with one. Migrations run
// on open so commands work against a fresh database.
func (r *Runner) openLinks() (*repositories.LinkRepository, func(), error) {
	if r.repo != nil {
		return r.repo, func() {}, nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repositories.NewLinkRepository(db), func() { db.Close() }, nil
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
