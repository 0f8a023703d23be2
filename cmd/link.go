package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gabrielcarfora/emby-letterboxd-sync/internal/models"
	"github.com/gabrielcarfora/emby-letterboxd-sync/internal/shared"
	"github.com/urfave/cli/v3"
)

// PlaylistName returns the canonical playlist name for a Letterboxd user.
func PlaylistName(letterboxdUsername string) string {
	return fmt.Sprintf("%s's Letterboxd Watchlist", letterboxdUsername)
}

// LinkAdd resolves an Emby account and its watchlist playlist, then
// persists the link. The playlist is created when it does not exist yet.
func (r *Runner) LinkAdd(ctx context.Context, cmd *cli.Command) error {
	letterboxdUser := cmd.String("letterboxd")
	embyUser := cmd.String("emby")
	playlistName := cmd.String("playlist")

	if playlistName == "" {
		playlistName = PlaylistName(letterboxdUser)
	}

	if r.accounts == nil {
		return fmt.Errorf("%w: emby is not configured, set emby.base_url and emby.api_key", shared.ErrMissingConfig)
	}

	repo, closeRepo, err := r.openLinks()
	if err != nil {
		return err
	}
	defer closeRepo()

	if _, err := repo.GetByLetterboxdUsername(letterboxdUser); err == nil {
		return fmt.Errorf("%w: %s is already linked", shared.ErrInvalidArgument, letterboxdUser)
	} else if !errors.Is(err, shared.ErrLinkNotFound) {
		return err
	}

	r.logger.Info("resolving emby user", "username", embyUser)
	userID, err := r.accounts.UserIDByName(ctx, embyUser)
	if err != nil {
		return err
	}

	r.logger.Info("resolving playlist", "name", playlistName)
	playlistID, err := r.accounts.EnsurePlaylist(ctx, userID, playlistName)
	if err != nil {
		return err
	}

	link := models.NewUserLink(0, letterboxdUser, embyUser, userID, playlistID)
	if err := repo.Create(link); err != nil {
		return err
	}

	r.logger.Info("link created", "id", link.ID())
	r.writePlain("Linked %s -> %s\n", letterboxdUser, embyUser)
	r.writePlain("Playlist: %s (%s)\n", playlistName, playlistID)

	return nil
}

// linkView is the JSON shape of a persisted link.
type linkView struct {
	ID         string `json:"id"`
	Letterboxd string `json:"letterboxd"`
	Emby       string `json:"emby"`
	EmbyUserID string `json:"emby_user_id"`
	PlaylistID string `json:"playlist_id"`
	CreatedAt  string `json:"created_at"`
}

// LinkList lists all configured links.
func (r *Runner) LinkList(ctx context.Context, cmd *cli.Command) error {
	repo, closeRepo, err := r.openLinks()
	if err != nil {
		return err
	}
	defer closeRepo()

	links, err := repo.List()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		views := make([]linkView, len(links))
		for i, link := range links {
			views[i] = linkView{
				ID:         link.ID(),
				Letterboxd: link.LetterboxdUsername(),
				Emby:       link.EmbyUsername(),
				EmbyUserID: link.EmbyUserID(),
				PlaylistID: link.PlaylistID(),
				CreatedAt:  link.CreatedAt().Format(time.RFC3339),
			}
		}
		return r.writeJSON(views, cmd.Bool("pretty"))
	}

	if len(links) == 0 {
		r.writePlain("No links configured.\n")
		return nil
	}

	for _, link := range links {
		r.writePlain("%s -> %s (playlist %s)\n",
			link.LetterboxdUsername(), link.EmbyUsername(), link.PlaylistID())
	}

	return nil
}

// LinkRemove removes a link by Letterboxd username.
func (r *Runner) LinkRemove(ctx context.Context, cmd *cli.Command) error {
	letterboxdUser := cmd.StringArg("letterboxd")
	if letterboxdUser == "" {
		return fmt.Errorf("%w: letterboxd username is required", shared.ErrMissingArgument)
	}

	repo, closeRepo, err := r.openLinks()
	if err != nil {
		return err
	}
	defer closeRepo()

	link, err := repo.GetByLetterboxdUsername(letterboxdUser)
	if err != nil {
		return err
	}

	if err := repo.Delete(link.ID()); err != nil {
		return err
	}

	r.writePlain("Removed link for %s\n", letterboxdUser)
	return nil
}
