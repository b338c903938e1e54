// Package profiles stores named harvest requests in SQLite so a harvest
// can be re-run by name. Harvested records are never stored here.
package profiles

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Custom errors for profile operations
var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrDuplicateName   = errors.New("profile with this name already exists")
	ErrNoKeywords      = errors.New("profile needs at least one keyword")
	ErrInvalidWindow   = errors.New("profile start must be before end")
)

// ProfileStore manages harvest profiles using SQLite.
type ProfileStore struct {
	db *sql.DB
}

// Profile is a saved harvest request.
type Profile struct {
	ProfileID       uuid.UUID  `json:"profile_id"`
	Name            string     `json:"name"`
	Site            string     `json:"site"`
	Keywords        []string   `json:"keywords"`
	Start           time.Time  `json:"start"`
	End             time.Time  `json:"end"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	LastRunAt       *time.Time `json:"last_run_at,omitempty"`
	LastRecordCount int        `json:"last_record_count"`
}

// ProfileUpdate represents fields that can be updated on a profile.
type ProfileUpdate struct {
	Name            *string
	Site            *string
	Keywords        []string
	Start           *time.Time
	End             *time.Time
	LastRunAt       *time.Time
	LastRecordCount *int
}

// NewProfileStore creates a new profile store with the given database
// path.
func NewProfileStore(dbPath string) (*ProfileStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &ProfileStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the profiles table if it doesn't exist.
func (s *ProfileStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS profiles (
		profile_id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		site TEXT NOT NULL,
		keywords TEXT NOT NULL,
		start_at TEXT NOT NULL,
		end_at TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		last_run_at TEXT,
		last_record_count INTEGER DEFAULT 0
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *ProfileStore) Close() error {
	return s.db.Close()
}

// CreateProfile saves a new harvest profile.
func (s *ProfileStore) CreateProfile(
	name, site string,
	keywords []string,
	start, end time.Time,
) (*Profile, error) {
	if len(keywords) == 0 {
		return nil, ErrNoKeywords
	}
	if !start.Before(end) {
		return nil, ErrInvalidWindow
	}

	now := time.Now().Truncate(0)

	profile := &Profile{
		ProfileID: uuid.New(),
		Name:      name,
		Site:      site,
		Keywords:  keywords,
		Start:     start.Truncate(0),
		End:       end.Truncate(0),
		CreatedAt: now,
		UpdatedAt: now,
	}

	keywordsJSON, err := json.Marshal(keywords)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal keywords: %w", err)
	}

	query := `
		INSERT INTO profiles (
			profile_id, name, site, keywords, start_at, end_at,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.Exec(query,
		profile.ProfileID.String(),
		profile.Name,
		profile.Site,
		string(keywordsJSON),
		formatTime(&profile.Start),
		formatTime(&profile.End),
		formatTime(&profile.CreatedAt),
		formatTime(&profile.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateName
		}
		return nil, fmt.Errorf("failed to insert profile: %w", err)
	}

	return profile, nil
}

const selectProfile = `
	SELECT profile_id, name, site, keywords, start_at, end_at,
	       created_at, updated_at, last_run_at, last_record_count
	FROM profiles
`

// GetProfile retrieves a profile by ID.
func (s *ProfileStore) GetProfile(profileID uuid.UUID) (*Profile, error) {
	row := s.db.QueryRow(selectProfile+" WHERE profile_id = ?", profileID.String())
	return scanProfile(row)
}

// GetProfileByName retrieves a profile by its unique name.
func (s *ProfileStore) GetProfileByName(name string) (*Profile, error) {
	row := s.db.QueryRow(selectProfile+" WHERE name = ?", name)
	return scanProfile(row)
}

// ListProfiles lists every profile ordered by name.
func (s *ProfileStore) ListProfiles() ([]Profile, error) {
	rows, err := s.db.Query(selectProfile + " ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer rows.Close()

	var profiles []Profile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *profile)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate profiles: %w", err)
	}

	return profiles, nil
}

// UpdateProfile updates a profile with the provided fields.
func (s *ProfileStore) UpdateProfile(profileID uuid.UUID, update ProfileUpdate) error {
	if update.Keywords != nil && len(update.Keywords) == 0 {
		return ErrNoKeywords
	}

	// Build dynamic UPDATE query based on provided fields
	setClauses := []string{"updated_at = ?"}
	now := time.Now()
	args := []any{formatTime(&now)}

	if update.Name != nil {
		setClauses = append(setClauses, "name = ?")
		args = append(args, *update.Name)
	}
	if update.Site != nil {
		setClauses = append(setClauses, "site = ?")
		args = append(args, *update.Site)
	}
	if update.Keywords != nil {
		data, err := json.Marshal(update.Keywords)
		if err != nil {
			return fmt.Errorf("failed to marshal keywords: %w", err)
		}
		setClauses = append(setClauses, "keywords = ?")
		args = append(args, string(data))
	}
	if update.Start != nil || update.End != nil {
		if err := s.checkWindow(profileID, update.Start, update.End); err != nil {
			return err
		}
	}
	if update.Start != nil {
		setClauses = append(setClauses, "start_at = ?")
		args = append(args, formatTime(update.Start))
	}
	if update.End != nil {
		setClauses = append(setClauses, "end_at = ?")
		args = append(args, formatTime(update.End))
	}
	if update.LastRunAt != nil {
		setClauses = append(setClauses, "last_run_at = ?")
		args = append(args, formatTime(update.LastRunAt))
	}
	if update.LastRecordCount != nil {
		setClauses = append(setClauses, "last_record_count = ?")
		args = append(args, *update.LastRecordCount)
	}

	args = append(args, profileID.String())

	query := fmt.Sprintf("UPDATE profiles SET %s WHERE profile_id = ?",
		strings.Join(setClauses, ", "))

	result, err := s.db.Exec(query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateName
		}
		return fmt.Errorf("failed to update profile: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrProfileNotFound
	}

	return nil
}

// checkWindow verifies the window that an update would leave behind.
func (s *ProfileStore) checkWindow(profileID uuid.UUID, start, end *time.Time) error {
	current, err := s.GetProfile(profileID)
	if err != nil {
		return err
	}

	newStart, newEnd := current.Start, current.End
	if start != nil {
		newStart = *start
	}
	if end != nil {
		newEnd = *end
	}
	if !newStart.Before(newEnd) {
		return ErrInvalidWindow
	}
	return nil
}

// RecordRun notes the time and size of the latest harvest for a profile.
func (s *ProfileStore) RecordRun(profileID uuid.UUID, at time.Time, records int) error {
	return s.UpdateProfile(profileID, ProfileUpdate{
		LastRunAt:       &at,
		LastRecordCount: &records,
	})
}

// DeleteProfile deletes a profile.
func (s *ProfileStore) DeleteProfile(profileID uuid.UUID) error {
	result, err := s.db.Exec("DELETE FROM profiles WHERE profile_id = ?", profileID.String())
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrProfileNotFound
	}

	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*Profile, error) {
	var idStr, name, site, keywordsJSON, startStr, endStr, createdAtStr, updatedAtStr string
	var lastRunAtStr sql.NullString
	var lastRecordCount int

	err := row.Scan(
		&idStr, &name, &site, &keywordsJSON, &startStr, &endStr,
		&createdAtStr, &updatedAtStr, &lastRunAtStr, &lastRecordCount,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan profile: %w", err)
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse profile ID: %w", err)
	}

	var keywords []string
	if err := json.Unmarshal([]byte(keywordsJSON), &keywords); err != nil {
		return nil, fmt.Errorf("failed to unmarshal keywords: %w", err)
	}

	profile := &Profile{
		ProfileID:       id,
		Name:            name,
		Site:            site,
		Keywords:        keywords,
		Start:           parseTime(startStr),
		End:             parseTime(endStr),
		CreatedAt:       parseTime(createdAtStr),
		UpdatedAt:       parseTime(updatedAtStr),
		LastRecordCount: lastRecordCount,
	}
	if lastRunAtStr.Valid {
		t := parseTime(lastRunAtStr.String)
		profile.LastRunAt = &t
	}

	return profile, nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint") ||
		strings.Contains(err.Error(), "unique constraint")
}

// Helper functions for time formatting
func formatTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	// Strip monotonic clock for consistent storage and comparisons
	return t.Truncate(0).Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339, s)
	}
	return t.Truncate(0)
}
