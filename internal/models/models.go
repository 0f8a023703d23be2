package models

import (
	"fmt"
	"strings"
	"time"
)

// Model defines the base interface for all persistent models.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// UserLink associates one Letterboxd account with one Emby account and the
// playlist its watchlist is synced into. The Emby user id and playlist id
// are resolved once at link time and treated as opaque afterwards.
type UserLink struct {
	id                 string
	sequence           int
	letterboxdUsername string
	embyUsername       string
	embyUserID         string
	playlistID         string
	createdAt          time.Time
	updatedAt          time.Time
	deletedAt          *time.Time
}

// NewUserLink creates a UserLink for the given account pair and resolved identifiers.
func NewUserLink(sequence int, letterboxdUsername, embyUsername, embyUserID, playlistID string) *UserLink {
	now := time.Now()
	return &UserLink{
		sequence:           sequence,
		letterboxdUsername: strings.TrimSpace(letterboxdUsername),
		embyUsername:       strings.TrimSpace(embyUsername),
		embyUserID:         embyUserID,
		playlistID:         playlistID,
		createdAt:          now,
		updatedAt:          now,
	}
}

func (l *UserLink) ID() string            { return l.id }
func (l *UserLink) Sequence() int         { return l.sequence }
func (l *UserLink) CreatedAt() time.Time  { return l.createdAt }
func (l *UserLink) UpdatedAt() time.Time  { return l.updatedAt }
func (l *UserLink) DeletedAt() *time.Time { return l.deletedAt }

// LetterboxdUsername returns the external watchlist account name.
func (l *UserLink) LetterboxdUsername() string { return l.letterboxdUsername }

// EmbyUsername returns the media server account name.
func (l *UserLink) EmbyUsername() string { return l.embyUsername }

// EmbyUserID returns the resolved media server user id.
func (l *UserLink) EmbyUserID() string { return l.embyUserID }

// PlaylistID returns the resolved playlist id the watchlist syncs into.
func (l *UserLink) PlaylistID() string { return l.playlistID }

// Resolved reports whether both identifiers needed for a sync pass are present.
func (l *UserLink) Resolved() bool { return l.embyUserID != "" && l.playlistID != "" }

func (l *UserLink) SetID(id string)           { l.id = id }
func (l *UserLink) SetUpdatedAt(t time.Time)  { l.updatedAt = t }
func (l *UserLink) SetDeletedAt(t *time.Time) { l.deletedAt = t }
func (l *UserLink) SetCreatedAt(t time.Time)  { l.createdAt = t }
func (l *UserLink) SetIdentifiers(userID, plID string) {
	l.embyUserID = userID
	l.playlistID = plID
}

// Validate checks the link has both account names.
func (l *UserLink) Validate() error {
	if l.letterboxdUsername == "" {
		return fmt.Errorf("letterboxd username is required")
	}
	if l.embyUsername == "" {
		return fmt.Errorf("emby username is required")
	}
	return nil
}
