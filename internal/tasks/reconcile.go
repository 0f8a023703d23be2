package tasks

import (
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gabrielcarfora/emby-letterboxd-sync/internal/services"
)

// TicksPerMinute converts the media server's runtime unit (1 tick =
// 100ns) to whole minutes.
const TicksPerMinute = 10_000_000 * 60

// NormalizeTitle folds a display title to the join key used across the
// watchlist, library, and playlist: trimmed and lowercased.
func NormalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// MinutesFromTicks derives a whole-minute duration from raw runtime
// ticks, truncating toward zero. The truncation is lossy on purpose: it
// must be applied identically on both sides of a key comparison.
func MinutesFromTicks(ticks int64) int64 {
	return ticks / TicksPerMinute
}

// PlaylistKey is the composite identity used to decide whether a movie
// is already present in the playlist. Two library items with the same
// title but different truncated durations are distinct.
type PlaylistKey struct {
	Title   string // normalized title
	Minutes int64
}

// LibraryCandidate is one library movie that could satisfy a watchlist
// entry for its normalized title.
type LibraryCandidate struct {
	ItemID  string
	Minutes int64
}

// Key returns the candidate's playlist membership key.
func (c LibraryCandidate) Key(title string) PlaylistKey {
	return PlaylistKey{Title: title, Minutes: c.Minutes}
}

// LibraryIndex maps a normalized title to its candidates in server
// return order. Server order is the tie-break: the first candidate is
// the only one ever proposed for addition.
type LibraryIndex map[string][]LibraryCandidate

// PlaylistSnapshot is the set of keys already present in the playlist at
// the start of a sync pass. It is not updated as additions are planned.
type PlaylistSnapshot map[PlaylistKey]struct{}

// BuildLibraryIndex converts the movie catalog into a lookup structure
// keyed by normalized title. Items without a runtime are unmatchable and
// excluded with a warning.
func BuildLibraryIndex(items []services.MediaItem, logger *log.Logger) LibraryIndex {
	index := make(LibraryIndex, len(items))

	for _, item := range items {
		if item.RunTimeTicks == nil {
			if logger != nil {
				logger.Warn("movie has no runtime, excluding from index", "title", item.Name)
			}
			continue
		}

		title := NormalizeTitle(item.Name)
		index[title] = append(index[title], LibraryCandidate{
			ItemID:  item.ID,
			Minutes: MinutesFromTicks(*item.RunTimeTicks),
		})
	}

	return index
}

// BuildPlaylistSnapshot converts current playlist items into the
// membership key set. Items without a runtime cannot form a key and are
// excluded with a warning, mirroring BuildLibraryIndex so both sides of
// the comparison see the same truncation.
func BuildPlaylistSnapshot(items []services.MediaItem, logger *log.Logger) PlaylistSnapshot {
	snapshot := make(PlaylistSnapshot, len(items))

	for _, item := range items {
		if item.RunTimeTicks == nil {
			if logger != nil {
				logger.Warn("playlist item has no runtime, excluding from snapshot", "title", item.Name)
			}
			continue
		}

		snapshot[PlaylistKey{
			Title:   NormalizeTitle(item.Name),
			Minutes: MinutesFromTicks(*item.RunTimeTicks),
		}] = struct{}{}
	}

	return snapshot
}

// ReconcileResult is the outcome of one reconciliation: the ordered
// addition plan plus the watchlist titles with no library match.
type ReconcileResult struct {
	// Plan holds item ids to append, one per accepted watchlist entry,
	// in watchlist order. The watchlist is not deduplicated, so a title
	// repeated there repeats its item id here.
	Plan []string

	// NoMatch holds watchlist titles absent from the library index, in
	// encounter order.
	NoMatch []string

	// Duplicates counts watchlist entries skipped because their first
	// candidate was already in the playlist.
	Duplicates int
}

// Reconcile computes which library items to append to the playlist for
// the given watchlist. Pure and deterministic: identical inputs always
// produce identical output, order included.
//
// Policy: only the first candidate (server order) for a title is ever
// considered. If its key is already in the snapshot the entry is skipped
// outright; later candidates are never tried, even when they would not
// be duplicates.
func Reconcile(watchlist []string, index LibraryIndex, snapshot PlaylistSnapshot) ReconcileResult {
	var result ReconcileResult

	for _, title := range watchlist {
		normalized := NormalizeTitle(title)

		candidates, ok := index[normalized]
		if !ok || len(candidates) == 0 {
			result.NoMatch = append(result.NoMatch, title)
			continue
		}

		first := candidates[0]
		if _, present := snapshot[first.Key(normalized)]; present {
			result.Duplicates++
			continue
		}

		result.Plan = append(result.Plan, first.ItemID)
	}

	return result
}
