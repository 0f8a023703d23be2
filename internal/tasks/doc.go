// package tasks implements the watchlist-to-playlist reconciliation engine.
//
// The core is a pure pipeline: build a library index and a playlist
// snapshot from media server items, then reconcile a scraped watchlist
// against both to produce the ordered list of item ids to append.
// SyncEngine drives that pipeline per linked user with per-user failure
// isolation, and Daemon repeats passes with a fixed idle delay.
// Long-running operations emit progress updates via channels for
// non-blocking status reporting to the CLI layer.
package tasks
