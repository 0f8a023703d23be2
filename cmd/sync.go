package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gabrielcarfora/emby-letterboxd-sync/internal/formatter"
	"github.com/gabrielcarfora/emby-letterboxd-sync/internal/models"
	"github.com/gabrielcarfora/emby-letterboxd-sync/internal/tasks"
	"github.com/urfave/cli/v3"
)

// SyncRun runs one sync pass over all linked users, or a single user when
// --user is given.
func (r *Runner) SyncRun(ctx context.Context, cmd *cli.Command) error {
	user := cmd.String("user")

	repo, closeRepo, err := r.openLinks()
	if err != nil {
		return err
	}
	defer closeRepo()

	var links []*models.UserLink
	if user != "" {
		link, err := repo.GetByLetterboxdUsername(user)
		if err != nil {
			return err
		}
		links = []*models.UserLink{link}
	} else {
		if links, err = repo.List(); err != nil {
			return err
		}
	}

	if len(links) == 0 {
		r.writePlain("No linked users. Run 'lbsync link add' first.\n")
		return nil
	}

	r.logger.Info("starting sync pass", "users", len(links))

	progressCh := make(chan tasks.ProgressUpdate, 50)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for update := range progressCh {
			r.writePlain("%s\n", update.Message)
		}
	}()

	result, err := r.engine.RunAll(ctx, links, progressCh)
	close(progressCh)
	<-drained

	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		if err := r.writeJSON(syncRunView(result), cmd.Bool("pretty")); err != nil {
			return err
		}
	} else {
		r.writePlain("\n%s", formatter.SummaryStyled(result))
	}

	if reportPath := cmd.String("report"); reportPath != "" {
		written, err := formatter.WriteUnmatchedReport(result, reportPath)
		if err != nil {
			return err
		}
		r.writePlainln("Unmatched titles written to %s", written)
	}

	return nil
}

// SyncDaemon runs sync passes continuously until interrupted.
func (r *Runner) SyncDaemon(ctx context.Context, cmd *cli.Command) error {
	interval := r.config.Sync.Interval()
	if ms := cmd.Int("interval"); ms > 0 {
		interval = time.Duration(ms) * time.Millisecond
	}

	repo, closeRepo, err := r.openLinks()
	if err != nil {
		return err
	}
	defer closeRepo()

	daemon := tasks.NewDaemon(r.engine, repo, interval, r.logger)
	daemon.OnPass = func(result *tasks.SyncRunResult) {
		r.writePlain("%s", formatter.SummaryStyled(result))
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := daemon.Run(ctx); err != context.Canceled {
		return err
	}
	return nil
}

// userSyncView is the JSON shape of one user's pass outcome.
type userSyncView struct {
	Letterboxd string   `json:"letterboxd"`
	Emby       string   `json:"emby"`
	Status     string   `json:"status"`
	Watchlist  int      `json:"watchlist"`
	Added      int      `json:"added"`
	Duplicates int      `json:"duplicates"`
	NoMatch    []string `json:"no_match,omitempty"`
	Error      string   `json:"error,omitempty"`
}

type syncRunViewData struct {
	Users     []userSyncView `json:"users"`
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
	Skipped   int            `json:"skipped"`
}

func syncRunView(result *tasks.SyncRunResult) syncRunViewData {
	view := syncRunViewData{
		Users:     make([]userSyncView, len(result.Users)),
		Succeeded: result.Succeeded,
		Failed:    result.Failed,
		Skipped:   result.Skipped,
	}

	for i, user := range result.Users {
		status := "ok"
		errText := ""
		switch {
		case user.Skipped:
			status = "skipped"
		case user.Err != nil:
			status = "failed"
			errText = user.Err.Error()
		}

		view.Users[i] = userSyncView{
			Letterboxd: user.LetterboxdUsername,
			Emby:       user.EmbyUsername,
			Status:     status,
			Watchlist:  user.WatchlistCount,
			Added:      user.Added,
			Duplicates: user.Duplicates,
			NoMatch:    user.NoMatch,
			Error:      errText,
		}
	}

	return view
}
