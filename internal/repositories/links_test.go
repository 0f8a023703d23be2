package repositories

import (
	"errors"
	"testing"

	"github.com/gabrielcarfora/emby-letterboxd-sync/internal/models"
	"github.com/gabrielcarfora/emby-letterboxd-sync/internal/shared"
)

func newTestRepo(t *testing.T) *LinkRepository {
	t.Helper()
	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return NewLinkRepository(db)
}

func TestLinkRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		repo := newTestRepo(t)

		link := models.NewUserLink(0, "gabriel", "gabe", "user-1", "pl-1")
		if err := repo.Create(link); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if link.ID() == "" {
			t.Error("expected generated ID")
		}

		t.Run("rejects a link without usernames", func(t *testing.T) {
			if err := repo.Create(models.NewUserLink(0, "", "gabe", "u", "p")); err == nil {
				t.Fatal("expected validation error")
			}
		})

		t.Run("rejects a duplicate letterboxd username", func(t *testing.T) {
			if err := repo.Create(models.NewUserLink(0, "gabriel", "other", "u", "p")); err == nil {
				t.Fatal("expected unique constraint error")
			}
		})
	})

	t.Run("Get", func(t *testing.T) {
		repo := newTestRepo(t)

		link := models.NewUserLink(0, "gabriel", "gabe", "user-1", "pl-1")
		if err := repo.Create(link); err != nil {
			t.Fatalf("failed to create link: %v", err)
		}

		got, err := repo.Get(link.ID())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got.LetterboxdUsername() != "gabriel" {
			t.Errorf("expected letterboxd username 'gabriel', got %s", got.LetterboxdUsername())
		}
		if got.EmbyUserID() != "user-1" || got.PlaylistID() != "pl-1" {
			t.Errorf("unexpected identifiers: %s / %s", got.EmbyUserID(), got.PlaylistID())
		}
		if !got.Resolved() {
			t.Error("expected link to be resolved")
		}

		t.Run("returns ErrLinkNotFound for unknown id", func(t *testing.T) {
			if _, err := repo.Get("missing"); !errors.Is(err, shared.ErrLinkNotFound) {
				t.Fatalf("expected ErrLinkNotFound, got %v", err)
			}
		})
	})

	t.Run("GetByLetterboxdUsername", func(t *testing.T) {
		repo := newTestRepo(t)

		if err := repo.Create(models.NewUserLink(0, "gabriel", "gabe", "user-1", "pl-1")); err != nil {
			t.Fatalf("failed to create link: %v", err)
		}

		got, err := repo.GetByLetterboxdUsername("gabriel")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got.EmbyUsername() != "gabe" {
			t.Errorf("expected emby username 'gabe', got %s", got.EmbyUsername())
		}
	})

	t.Run("List", func(t *testing.T) {
		repo := newTestRepo(t)

		for _, name := range []string{"alice", "bob", "carol"} {
			if err := repo.Create(models.NewUserLink(0, name, name, "u-"+name, "p-"+name)); err != nil {
				t.Fatalf("failed to create link %s: %v", name, err)
			}
		}

		links, err := repo.List()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(links) != 3 {
			t.Fatalf("expected 3 links, got %d", len(links))
		}
		if links[0].LetterboxdUsername() != "alice" || links[2].LetterboxdUsername() != "carol" {
			t.Error("expected links ordered by creation sequence")
		}
	})

	t.Run("Update", func(t *testing.T) {
		repo := newTestRepo(t)

		link := models.NewUserLink(0, "gabriel", "gabe", "", "")
		if err := repo.Create(link); err != nil {
			t.Fatalf("failed to create link: %v", err)
		}

		link.SetIdentifiers("user-9", "pl-9")
		if err := repo.Update(link); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		got, err := repo.Get(link.ID())
		if err != nil {
			t.Fatalf("failed to re-read link: %v", err)
		}
		if got.EmbyUserID() != "user-9" || got.PlaylistID() != "pl-9" {
			t.Errorf("identifiers not updated: %s / %s", got.EmbyUserID(), got.PlaylistID())
		}
	})

	t.Run("Delete", func(t *testing.T) {
		repo := newTestRepo(t)

		link := models.NewUserLink(0, "gabriel", "gabe", "user-1", "pl-1")
		if err := repo.Create(link); err != nil {
			t.Fatalf("failed to create link: %v", err)
		}

		if err := repo.Delete(link.ID()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if _, err := repo.Get(link.ID()); !errors.Is(err, shared.ErrLinkNotFound) {
			t.Fatalf("expected ErrLinkNotFound after delete, got %v", err)
		}

		if err := repo.Delete(link.ID()); !errors.Is(err, shared.ErrLinkNotFound) {
			t.Fatalf("expected ErrLinkNotFound for double delete, got %v", err)
		}

		t.Run("deleted username can be linked again", func(t *testing.T) {
			relinked := models.NewUserLink(0, "gabriel", "gabe", "user-2", "pl-2")
			if err := repo.Create(relinked); err != nil {
				t.Fatalf("expected re-link after delete to succeed, got %v", err)
			}

			got, err := repo.GetByLetterboxdUsername("gabriel")
			if err != nil {
				t.Fatalf("failed to read re-linked user: %v", err)
			}
			if got.ID() != relinked.ID() || got.PlaylistID() != "pl-2" {
				t.Errorf("expected the new link row, got id %s playlist %s", got.ID(), got.PlaylistID())
			}
		})
	})
}
