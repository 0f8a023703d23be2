package tasks

import "fmt"

// ProgressUpdate represents a progress event during a sync pass.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	User    string // Letterboxd username the update concerns, if any
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
}

// Operation phase enumeration
type Phase int

const (
	FetchLibrary Phase = iota
	FetchWatchlist
	ReadPlaylist
	Plan
	Commit
)

func (p Phase) String() string {
	switch p {
	case FetchLibrary:
		return "fetch_library"
	case FetchWatchlist:
		return "fetch_watchlist"
	case ReadPlaylist:
		return "read_playlist"
	case Plan:
		return "plan"
	case Commit:
		return "commit"
	default:
		return ""
	}
}

func fetchLibraryUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchLibrary,
		Step:    1,
		Total:   1,
		Message: "Fetching movie library from Emby...",
	}
}

func fetchWatchlistUpdate(user string, step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchWatchlist,
		User:    user,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Fetching watchlist for %s...", step, total, user),
	}
}

func readPlaylistUpdate(user string, step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ReadPlaylist,
		User:    user,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Reading playlist for %s...", step, total, user),
	}
}

func planUpdate(user string, step, total, additions int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Plan,
		User:    user,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s: %d new movies to add", step, total, user, additions),
	}
}

func commitUpdate(user string, step, total, added int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Commit,
		User:    user,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s: added %d items to playlist", step, total, user, added),
	}
}
