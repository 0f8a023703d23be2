// Emby REST API client implementing [MediaLibrary]
//
// Every request carries the server API key as the api_key query
// parameter. Responses follow the Emby item envelope: lists come back as
// {"Items": [...]}.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gabrielcarfora/emby-letterboxd-sync/internal/shared"
)

// EmbyClient talks to a single Emby server with a static API key.
type EmbyClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewEmbyClient creates a client for the given server. A nil httpClient
// falls back to [http.DefaultClient].
func NewEmbyClient(baseURL, apiKey string, httpClient *http.Client) *EmbyClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &EmbyClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// embyUser is a user record from GET /Users.
type embyUser struct {
	ID   string `json:"Id"`
	Name string `json:"Name"`
}

// embyItem is one entry of an Emby item list. RunTimeTicks is the
// server's high-resolution runtime unit (1 tick = 100ns) and is absent
// for items with no known runtime.
type embyItem struct {
	ID           string `json:"Id"`
	Name         string `json:"Name"`
	RunTimeTicks *int64 `json:"RunTimeTicks"`
}

// embyItemList is the {"Items": [...]} envelope.
type embyItemList struct {
	Items []embyItem `json:"Items"`
}

// doRequest performs an HTTP request against the Emby API with the API
// key appended, decoding a JSON response into result when non-nil.
func (c *EmbyClient) doRequest(ctx context.Context, method, endpoint string, query url.Values, body, result any) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("api_key", c.apiKey)

	apiURL := c.baseURL + endpoint + "?" + query.Encode()

	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: emby returned status %d for %s", shared.ErrUpstream, resp.StatusCode, endpoint)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("%w: failed to decode response: %v", shared.ErrUpstream, err)
		}
	}

	return nil
}

// UserIDByName resolves an Emby username to its user id via GET /Users.
// Matching is case-insensitive. Returns shared.ErrUserNotFound when no
// user carries that name.
func (c *EmbyClient) UserIDByName(ctx context.Context, username string) (string, error) {
	var users []embyUser
	if err := c.doRequest(ctx, http.MethodGet, "/Users", nil, nil, &users); err != nil {
		return "", err
	}

	for _, user := range users {
		if strings.EqualFold(user.Name, username) {
			return user.ID, nil
		}
	}

	return "", fmt.Errorf("%w: %s", shared.ErrUserNotFound, username)
}

// FindPlaylist looks for a playlist owned by the user with the given
// name (case-insensitive). Returns shared.ErrPlaylistNotFound when the
// user has no playlist by that name.
func (c *EmbyClient) FindPlaylist(ctx context.Context, userID, name string) (string, error) {
	query := url.Values{}
	query.Set("IncludeItemTypes", "Playlist")

	var list embyItemList
	endpoint := fmt.Sprintf("/Users/%s/Items", url.PathEscape(userID))
	if err := c.doRequest(ctx, http.MethodGet, endpoint, query, nil, &list); err != nil {
		return "", err
	}

	for _, item := range list.Items {
		if strings.EqualFold(item.Name, name) {
			return item.ID, nil
		}
	}

	return "", fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, name)
}

// CreatePlaylist creates an empty video playlist for the user and
// returns its id.
func (c *EmbyClient) CreatePlaylist(ctx context.Context, userID, name string) (string, error) {
	payload := struct {
		Name      string `json:"Name"`
		UserID    string `json:"UserId"`
		MediaType string `json:"MediaType"`
	}{
		Name:      name,
		UserID:    userID,
		MediaType: "Video",
	}

	var created struct {
		ID string `json:"Id"`
	}
	if err := c.doRequest(ctx, http.MethodPost, "/Playlists", nil, payload, &created); err != nil {
		return "", err
	}

	return created.ID, nil
}

// EnsurePlaylist returns the id of the user's playlist with the given
// name, creating it when absent.
func (c *EmbyClient) EnsurePlaylist(ctx context.Context, userID, name string) (string, error) {
	id, err := c.FindPlaylist(ctx, userID, name)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, shared.ErrPlaylistNotFound) {
		return "", err
	}

	return c.CreatePlaylist(ctx, userID, name)
}

// MovieLibrary lists every movie in the server library via
// GET /Items?Recursive=true&IncludeItemTypes=Movie.
func (c *EmbyClient) MovieLibrary(ctx context.Context) ([]MediaItem, error) {
	query := url.Values{}
	query.Set("Recursive", "true")
	query.Set("IncludeItemTypes", "Movie")

	var list embyItemList
	if err := c.doRequest(ctx, http.MethodGet, "/Items", query, nil, &list); err != nil {
		return nil, err
	}

	return toMediaItems(list.Items), nil
}

// PlaylistItems lists the items currently in a playlist.
func (c *EmbyClient) PlaylistItems(ctx context.Context, playlistID string) ([]MediaItem, error) {
	var list embyItemList
	endpoint := fmt.Sprintf("/Playlists/%s/Items", url.PathEscape(playlistID))
	if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, nil, &list); err != nil {
		return nil, err
	}

	return toMediaItems(list.Items), nil
}

// AddToPlaylist appends items to a playlist in one batched POST with the
// ids comma-joined. An empty id list performs no network calls and
// returns 0.
func (c *EmbyClient) AddToPlaylist(ctx context.Context, playlistID, userID string, itemIDs []string) (int, error) {
	if len(itemIDs) == 0 {
		return 0, nil
	}

	query := url.Values{}
	query.Set("Ids", strings.Join(itemIDs, ","))
	query.Set("UserId", userID)

	endpoint := fmt.Sprintf("/Playlists/%s/Items", url.PathEscape(playlistID))
	if err := c.doRequest(ctx, http.MethodPost, endpoint, query, nil, nil); err != nil {
		return 0, err
	}

	return len(itemIDs), nil
}

func toMediaItems(items []embyItem) []MediaItem {
	result := make([]MediaItem, len(items))
	for i, item := range items {
		result[i] = MediaItem{
			ID:           item.ID,
			Name:         item.Name,
			RunTimeTicks: item.RunTimeTicks,
		}
	}
	return result
}
