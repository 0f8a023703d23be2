package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gabrielcarfora/emby-letterboxd-sync/internal/models"
	"github.com/gabrielcarfora/emby-letterboxd-sync/internal/services"
	"github.com/gabrielcarfora/emby-letterboxd-sync/internal/shared"
)

// UserSyncResult records the outcome of one user's sync within a pass.
type UserSyncResult struct {
	LetterboxdUsername string
	EmbyUsername       string
	WatchlistCount     int      // Titles fetched from the watchlist
	Added              int      // Items committed to the playlist
	Duplicates         int      // Watchlist entries suppressed as already present
	NoMatch            []string // Watchlist titles with no library match
	Skipped            bool     // Link missing resolved identifiers
	Err                error    // Upstream failure, nil on success
}

// SyncRunResult aggregates one full pass over all links.
type SyncRunResult struct {
	Users     []UserSyncResult
	Succeeded int
	Failed    int
	Skipped   int
}

// SyncEngine drives watchlist-to-playlist reconciliation for linked
// users. The movie library is fetched once per pass and shared
// read-only across users; each user's upstream failures are isolated.
type SyncEngine struct {
	watchlist services.WatchlistSource
	media     services.MediaLibrary
	workers   int
	logger    *log.Logger
}

// SyncEngineOpts contains dependencies for creating a SyncEngine.
type SyncEngineOpts struct {
	Watchlist services.WatchlistSource
	Media     services.MediaLibrary
	Workers   int // Concurrent per-user syncs; <=1 is sequential
	Logger    *log.Logger
}

// NewSyncEngine creates a SyncEngine with the provided dependencies.
func NewSyncEngine(opts SyncEngineOpts) *SyncEngine {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &SyncEngine{
		watchlist: opts.Watchlist,
		media:     opts.Media,
		workers:   opts.Workers,
		logger:    opts.Logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *SyncEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// RunAll performs one sync pass over the given links.
//
// The library listing is fetched first; if that fails no user can be
// matched, so the pass aborts with the error. Everything after that is
// isolated per user: a link missing its identifiers is skipped with a
// warning, and one user's playlist read or write failure never stops the
// remaining users.
func (e *SyncEngine) RunAll(ctx context.Context, links []*models.UserLink, progress chan<- ProgressUpdate) (*SyncRunResult, error) {
	if e.watchlist == nil || e.media == nil {
		return nil, fmt.Errorf("%w: sync engine not fully initialized", shared.ErrInvalidConfig)
	}

	e.sendProgress(progress, fetchLibraryUpdate())

	movies, err := e.media.MovieLibrary(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch movie library: %w", err)
	}
	index := BuildLibraryIndex(movies, e.logger)
	e.logger.Info("built library index", "movies", len(movies), "titles", len(index))

	result := &SyncRunResult{Users: make([]UserSyncResult, len(links))}

	if e.workers == 1 || len(links) <= 1 {
		for i, link := range links {
			result.Users[i] = e.syncUser(ctx, link, index, i+1, len(links), progress)
		}
	} else {
		e.syncUsersParallel(ctx, links, index, result, progress)
	}

	for _, user := range result.Users {
		switch {
		case user.Skipped:
			result.Skipped++
		case user.Err != nil:
			result.Failed++
		default:
			result.Succeeded++
		}
	}

	return result, nil
}

// syncUsersParallel fans links out to a bounded worker pool. Results land
// at their link's index so output order matches input order.
func (e *SyncEngine) syncUsersParallel(ctx context.Context, links []*models.UserLink, index LibraryIndex, result *SyncRunResult, progress chan<- ProgressUpdate) {
	type job struct {
		pos  int
		link *models.UserLink
	}

	jobs := make(chan job)

	var wg sync.WaitGroup
	workers := e.workers
	if workers > len(links) {
		workers = len(links)
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				result.Users[j.pos] = e.syncUser(ctx, j.link, index, j.pos+1, len(links), progress)
			}
		}()
	}

	for i, link := range links {
		select {
		case <-ctx.Done():
		case jobs <- job{pos: i, link: link}:
			continue
		}
		break
	}
	close(jobs)

	wg.Wait()
}

// syncUser runs the per-user pipeline: fetch watchlist, snapshot the
// playlist, reconcile, commit. Upstream errors are recorded on the
// result, not returned.
func (e *SyncEngine) syncUser(ctx context.Context, link *models.UserLink, index LibraryIndex, step, total int, progress chan<- ProgressUpdate) UserSyncResult {
	result := UserSyncResult{
		LetterboxdUsername: link.LetterboxdUsername(),
		EmbyUsername:       link.EmbyUsername(),
	}

	logger := shared.WithLogger(e.logger, "letterboxd", link.LetterboxdUsername(), "emby", link.EmbyUsername())

	if !link.Resolved() {
		logger.Warn("link missing user id or playlist id, skipping")
		result.Skipped = true
		return result
	}

	e.sendProgress(progress, fetchWatchlistUpdate(link.LetterboxdUsername(), step, total))

	watchlist := e.watchlist.Watchlist(ctx, link.LetterboxdUsername())
	result.WatchlistCount = len(watchlist)
	logger.Info("fetched watchlist", "titles", len(watchlist))

	e.sendProgress(progress, readPlaylistUpdate(link.LetterboxdUsername(), step, total))

	playlistItems, err := e.media.PlaylistItems(ctx, link.PlaylistID())
	if err != nil {
		logger.Error("failed to read playlist", "error", err)
		result.Err = err
		return result
	}
	snapshot := BuildPlaylistSnapshot(playlistItems, logger)

	rec := Reconcile(watchlist, index, snapshot)
	result.Duplicates = rec.Duplicates
	result.NoMatch = rec.NoMatch

	for _, title := range rec.NoMatch {
		logger.Warn("no matching library entry for movie", "title", title)
	}

	e.sendProgress(progress, planUpdate(link.LetterboxdUsername(), step, total, len(rec.Plan)))
	logger.Info("reconciled watchlist",
		"additions", len(rec.Plan), "duplicates", rec.Duplicates, "unmatched", len(rec.NoMatch))

	added, err := e.media.AddToPlaylist(ctx, link.PlaylistID(), link.EmbyUserID(), rec.Plan)
	if err != nil {
		logger.Error("failed to add items to playlist", "error", err)
		result.Err = err
		return result
	}
	result.Added = added

	if added > 0 {
		e.sendProgress(progress, commitUpdate(link.LetterboxdUsername(), step, total, added))
		logger.Info("added items to playlist", "count", added)
	} else {
		logger.Info("no new movies to add")
	}

	return result
}
