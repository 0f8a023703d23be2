// package services contains the clients for the two upstream systems:
// the Letterboxd website (watchlist scraping over HTML) and the Emby
// REST API (library, playlists, users).
//
// Both clients are constructed once with configuration and an
// *http.Client and are safe for reuse across sync passes. Failure
// semantics differ deliberately: watchlist page errors truncate the
// result and are never returned, while Emby request failures are
// reported to the caller wrapped in shared.ErrUpstream.
package services
