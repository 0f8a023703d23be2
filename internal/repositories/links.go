package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/gabrielcarfora/emby-letterboxd-sync/internal/models"
	"github.com/gabrielcarfora/emby-letterboxd-sync/internal/shared"
)

// LinkRepository persists [models.UserLink] records in sqlite.
type LinkRepository struct {
	db *sql.DB
}

// NewLinkRepository creates a new LinkRepository with the given database connection
func NewLinkRepository(db *sql.DB) *LinkRepository {
	return &LinkRepository{db: db}
}

// Create inserts a new link into the database with generated ID and sequence.
func (r *LinkRepository) Create(link *models.UserLink) error {
	if err := link.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "links")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	link.SetID(id)

	query := `
		INSERT INTO links (id, sequence, letterboxd_username, emby_username, emby_user_id, playlist_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, id, sequence,
		link.LetterboxdUsername(), link.EmbyUsername(), link.EmbyUserID(), link.PlaylistID(),
		link.CreatedAt(), link.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert link: %w", err)
	}

	return nil
}

// Get retrieves a link by ID, excluding soft-deleted links.
func (r *LinkRepository) Get(id string) (*models.UserLink, error) {
	query := selectLinks + " WHERE id = ? AND deleted_at IS NULL"

	link, err := scanLink(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", shared.ErrLinkNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query link: %w", err)
	}

	return link, nil
}

// GetByLetterboxdUsername retrieves a link by the external account name.
func (r *LinkRepository) GetByLetterboxdUsername(username string) (*models.UserLink, error) {
	query := selectLinks + " WHERE letterboxd_username = ? AND deleted_at IS NULL"

	link, err := scanLink(r.db.QueryRow(query, username))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", shared.ErrLinkNotFound, username)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query link: %w", err)
	}

	return link, nil
}

// List retrieves all links ordered by sequence, excluding soft-deleted links.
func (r *LinkRepository) List() ([]*models.UserLink, error) {
	query := selectLinks + " WHERE deleted_at IS NULL ORDER BY sequence ASC"

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query links: %w", err)
	}
	defer rows.Close()

	var links []*models.UserLink
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		links = append(links, link)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return links, nil
}

// Update modifies an existing link's resolved identifiers.
func (r *LinkRepository) Update(link *models.UserLink) error {
	if err := link.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	link.SetUpdatedAt(now)

	query := `
		UPDATE links
		SET emby_username = ?, emby_user_id = ?, playlist_id = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, link.EmbyUsername(), link.EmbyUserID(), link.PlaylistID(), now, link.ID())
	if err != nil {
		return fmt.Errorf("failed to update link: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrLinkNotFound, link.ID())
	}

	return nil
}

// Delete soft-deletes a link by ID.
func (r *LinkRepository) Delete(id string) error {
	query := `
		UPDATE links
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete link: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrLinkNotFound, id)
	}

	return nil
}

const selectLinks = `
	SELECT id, sequence, letterboxd_username, emby_username, emby_user_id, playlist_id, created_at, updated_at, deleted_at
	FROM links
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLink(row rowScanner) (*models.UserLink, error) {
	var (
		id                 string
		sequence           int
		letterboxdUsername string
		embyUsername       string
		embyUserID         string
		playlistID         string
		createdAt          time.Time
		updatedAt          time.Time
		deletedAt          sql.NullTime
	)

	if err := row.Scan(&id, &sequence, &letterboxdUsername, &embyUsername, &embyUserID, &playlistID, &createdAt, &updatedAt, &deletedAt); err != nil {
		return nil, err
	}

	link := models.NewUserLink(sequence, letterboxdUsername, embyUsername, embyUserID, playlistID)
	link.SetID(id)
	link.SetCreatedAt(createdAt)
	link.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		link.SetDeletedAt(&deletedAt.Time)
	}

	return link, nil
}
