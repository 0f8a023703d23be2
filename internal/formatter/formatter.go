// package formatter renders sync pass results for terminal display and export (plain text, styled, CSV)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/gabrielcarfora/emby-letterboxd-sync/internal/tasks"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title: NewBold(t).MarginBottom(1),
		ok:    NewBold(s),
		err:   NewBold(e),
		warn:  NewStyle(w),
		help:  NewEm(h),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

// userStatus reduces a per-user result to its display word.
func userStatus(user tasks.UserSyncResult) string {
	switch {
	case user.Skipped:
		return "skipped"
	case user.Err != nil:
		return "failed"
	default:
		return "ok"
	}
}

// SummaryText renders a sync pass result as plain text, one user per line
// plus a totals footer.
func SummaryText(result *tasks.SyncRunResult) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Sync pass: %d users\n\n", len(result.Users)))

	for _, user := range result.Users {
		buf.WriteString(fmt.Sprintf("%s -> %s: %s", user.LetterboxdUsername, user.EmbyUsername, userStatus(user)))
		switch {
		case user.Skipped:
			buf.WriteString(" (link not resolved)\n")
		case user.Err != nil:
			buf.WriteString(fmt.Sprintf(" (%v)\n", user.Err))
		default:
			buf.WriteString(fmt.Sprintf(" (watchlist %d, added %d, duplicates %d, unmatched %d)\n",
				user.WatchlistCount, user.Added, user.Duplicates, len(user.NoMatch)))
		}

		for _, title := range user.NoMatch {
			buf.WriteString(fmt.Sprintf("  not in library: %s\n", title))
		}
	}

	buf.WriteString(fmt.Sprintf("\nSucceeded: %d  Failed: %d  Skipped: %d\n",
		result.Succeeded, result.Failed, result.Skipped))

	return buf.Bytes()
}

// SummaryStyled renders a sync pass result for the terminal with colored
// per-user status lines.
func SummaryStyled(result *tasks.SyncRunResult) string {
	var buf bytes.Buffer

	buf.WriteString(styles.title.Render(fmt.Sprintf("Sync pass: %d users", len(result.Users))))
	buf.WriteString("\n")

	for _, user := range result.Users {
		pair := fmt.Sprintf("%s -> %s", user.LetterboxdUsername, user.EmbyUsername)

		switch {
		case user.Skipped:
			buf.WriteString(fmt.Sprintf("%s %s\n", styles.warn.Render("skip"), pair))
		case user.Err != nil:
			buf.WriteString(fmt.Sprintf("%s %s: %v\n", styles.err.Render("fail"), pair, user.Err))
		default:
			buf.WriteString(fmt.Sprintf("%s %s: added %d, duplicates %d, unmatched %d\n",
				styles.ok.Render("ok"), pair, user.Added, user.Duplicates, len(user.NoMatch)))
		}

		for _, title := range user.NoMatch {
			buf.WriteString(styles.help.Render(fmt.Sprintf("  not in library: %s", title)))
			buf.WriteString("\n")
		}
	}

	buf.WriteString(fmt.Sprintf("\nSucceeded: %d  Failed: %d  Skipped: %d\n",
		result.Succeeded, result.Failed, result.Skipped))

	return buf.String()
}

// UnmatchedToCSV exports every watchlist title that found no library match,
// with columns: LetterboxdUser, EmbyUser, Title
func UnmatchedToCSV(result *tasks.SyncRunResult) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"LetterboxdUser", "EmbyUser", "Title"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, user := range result.Users {
		for _, title := range user.NoMatch {
			record := []string{user.LetterboxdUsername, user.EmbyUsername, title}
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// SummaryToCSV exports per-user pass totals, with columns:
// LetterboxdUser, EmbyUser, Status, Watchlist, Added, Duplicates, Unmatched
func SummaryToCSV(result *tasks.SyncRunResult) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"LetterboxdUser", "EmbyUser", "Status", "Watchlist", "Added", "Duplicates", "Unmatched"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, user := range result.Users {
		record := []string{
			user.LetterboxdUsername,
			user.EmbyUsername,
			userStatus(user),
			strconv.Itoa(user.WatchlistCount),
			strconv.Itoa(user.Added),
			strconv.Itoa(user.Duplicates),
			strconv.Itoa(len(user.NoMatch)),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// WriteUnmatchedReport writes the unmatched-title CSV to disk.
//
// Defaults to unmatched.csv when no path is given.
func WriteUnmatchedReport(result *tasks.SyncRunResult, filepath string) (string, error) {
	if filepath == "" {
		filepath = "unmatched.csv"
	}

	data, err := UnmatchedToCSV(result)
	if err != nil {
		return "", fmt.Errorf("failed to generate CSV: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write CSV file: %w", err)
	}

	return filepath, nil
}
