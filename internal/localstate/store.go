package localstate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Preference keys understood by the player and admin screens.
const (
	PrefTheme           = "theme"
	PrefSelectedProduct = "selected_product"
	PrefTTSVoice        = "tts_voice"
	PrefTTSEnabled      = "tts_enabled"
	PrefSpeed           = "presentation_speed"
	PrefSectionDelay    = "section_delay"
)

// Identity is the registered viewer stored after the sign-up conversation.
type Identity struct {
	UserID       int64
	Name         string
	Email        string
	Phone        string
	RegisteredAt time.Time
}

// ChatMessage is one transcript line for a presentation session.
type ChatMessage struct {
	ID        int64
	SessionID string
	Role      string
	Content   string
	CreatedAt time.Time
}

// Store manages client state persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the state database and applies migrations.
func Open(stateDir string) (*Store, error) {
	dbPath := filepath.Join(stateDir, "podium.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// SetPreference upserts one preference value.
func (s *Store) SetPreference(ctx context.Context, key, value string) error {
	if key == "" {
		return errors.New("preference key is required")
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, ?)
         ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key,
		value,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("set preference %q: %w", key, err)
	}
	return nil
}

// Preference returns a preference value and whether it was set.
func (s *Store) Preference(ctx context.Context, key string) (string, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key = ?`, key)
	var value string
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get preference %q: %w", key, err)
	}
	return value, true, nil
}

// Preferences returns every stored preference.
func (s *Store) Preferences(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM preferences ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list preferences: %w", err)
	}
	defer rows.Close()

	prefs := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		prefs[key] = value
	}
	return prefs, rows.Err()
}

// SaveIdentity stores the registered viewer, replacing any previous identity.
func (s *Store) SaveIdentity(ctx context.Context, identity Identity) error {
	if identity.UserID == 0 {
		return errors.New("identity user id is required")
	}
	registeredAt := identity.RegisteredAt
	if registeredAt.IsZero() {
		registeredAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO identity (id, user_id, name, email, phone, registered_at)
         VALUES (1, ?, ?, ?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET
             user_id = excluded.user_id, name = excluded.name, email = excluded.email,
             phone = excluded.phone, registered_at = excluded.registered_at`,
		identity.UserID,
		identity.Name,
		identity.Email,
		identity.Phone,
		registeredAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save identity: %w", err)
	}
	return nil
}

// Identity returns the stored viewer, or nil when no registration happened.
func (s *Store) Identity(ctx context.Context) (*Identity, error) {
	row := s.db.QueryRowContext(ctx, `SELECT user_id, name, email, phone, registered_at FROM identity WHERE id = 1`)
	var (
		identity      Identity
		registeredRaw string
	)
	if err := row.Scan(&identity.UserID, &identity.Name, &identity.Email, &identity.Phone, &registeredRaw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get identity: %w", err)
	}
	if parsed, err := time.Parse(time.RFC3339Nano, registeredRaw); err == nil {
		identity.RegisteredAt = parsed
	}
	return &identity, nil
}

// ClearIdentity removes the stored viewer.
func (s *Store) ClearIdentity(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM identity WHERE id = 1`); err != nil {
		return fmt.Errorf("clear identity: %w", err)
	}
	return nil
}

// AppendChatMessage records one transcript line for a session.
func (s *Store) AppendChatMessage(ctx context.Context, sessionID, role, content string) error {
	if sessionID == "" {
		return errors.New("session id is required")
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO chat_messages (session_id, role, content, created_at) VALUES (?, ?, ?, ?)`,
		sessionID,
		role,
		content,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("append chat message: %w", err)
	}
	return nil
}

// ChatTranscript returns a session's transcript in insertion order.
func (s *Store) ChatTranscript(ctx context.Context, sessionID string) ([]ChatMessage, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, session_id, role, content, created_at FROM chat_messages WHERE session_id = ? ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query transcript: %w", err)
	}
	defer rows.Close()

	var messages []ChatMessage
	for rows.Next() {
		var (
			msg        ChatMessage
			createdRaw string
		)
		if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.Role, &msg.Content, &createdRaw); err != nil {
			return nil, err
		}
		if parsed, err := time.Parse(time.RFC3339Nano, createdRaw); err == nil {
			msg.CreatedAt = parsed
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// ClearChat removes a session's transcript.
func (s *Store) ClearChat(ctx context.Context, sessionID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM chat_messages WHERE session_id = ?`, sessionID)
	if err != nil {
		return 0, fmt.Errorf("clear transcript: %w", err)
	}
	return res.RowsAffected()
}
