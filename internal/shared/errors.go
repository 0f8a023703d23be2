package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Upstream errors. ErrUpstream marks a failed Emby library read,
	// playlist read, or playlist write. Fatal to the affected user's
	// sync pass only, never to the whole run.
	ErrUpstream         = fmt.Errorf("upstream request failed")
	ErrUserNotFound     = fmt.Errorf("emby user not found")
	ErrPlaylistNotFound = fmt.Errorf("playlist not found")
	ErrLinkNotFound     = fmt.Errorf("user link not found")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
