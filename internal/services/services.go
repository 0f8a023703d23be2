package services

import (
	"context"
)

// WatchlistSource fetches a user's remote watchlist as an ordered list of
// display titles. Implementations never return an error: page-level
// failures truncate the list at the last page fetched successfully.
type WatchlistSource interface {
	Watchlist(ctx context.Context, username string) []string
}

// MediaLibrary is the slice of the media server API consumed during a
// sync pass. Link-time operations (user and playlist resolution) live on
// the concrete client only.
type MediaLibrary interface {
	// MovieLibrary lists every movie in the server library.
	MovieLibrary(ctx context.Context) ([]MediaItem, error)

	// PlaylistItems lists the items currently in a playlist.
	PlaylistItems(ctx context.Context, playlistID string) ([]MediaItem, error)

	// AddToPlaylist appends items to a playlist in one batch call and
	// returns the number of items sent. An empty id list is a no-op that
	// performs no network calls.
	AddToPlaylist(ctx context.Context, playlistID, userID string, itemIDs []string) (int, error)
}

// MediaItem is one library or playlist entry as returned by the media
// server. RunTimeTicks is nil when the server has no runtime for the
// item; such items cannot participate in duplicate detection.
type MediaItem struct {
	ID           string
	Name         string
	RunTimeTicks *int64
}
