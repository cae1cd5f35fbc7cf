// Package session persists the local planning session (bearer tokens and the
// cached profile) in a small sqlite database, surviving CLI invocations the
// way browser local storage survives page loads.
package session

import (
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/trezcool/goose"

	"github.com/trezcool/ratiba/core"
	appfs "github.com/trezcool/ratiba/fs"
)

var ErrNotFound = errors.New("session item not found")

const (
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
	keyProfile      = "profile"
)

type Store struct {
	db *sqlx.DB
}

// Open opens (creating if needed) the session database and brings its schema
// up to date.
func Open(conf *core.Config) (*Store, error) {
	db, err := sqlx.Connect("sqlite3", conf.Session.DBPath)
	if err != nil {
		return nil, errors.Wrap(err, "opening session database")
	}
	if err = Migrate(db.DB); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func Migrate(db *sql.DB) error {
	if err := goose.SetDialect("sqlite3"); err != nil {
		return errors.Wrap(err, "setting migration dialect")
	}
	if err := goose.Up(db, appfs.FS, "migrations"); err != nil {
		return errors.Wrap(err, "migrating session database")
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }

// SaveTokens stores the bearer tokens granted at login or refresh.
func (s *Store) SaveTokens(sess core.Session) error {
	if err := s.set(keyAccessToken, sess.AccessToken); err != nil {
		return err
	}
	return s.set(keyRefreshToken, sess.RefreshToken)
}

// Tokens returns the stored bearer tokens. ErrNotFound when never logged in.
func (s *Store) Tokens() (core.Session, error) {
	access, err := s.get(keyAccessToken)
	if err != nil {
		return core.Session{}, err
	}
	refresh, err := s.get(keyRefreshToken)
	if err != nil {
		return core.Session{}, err
	}
	return core.Session{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *Store) SaveProfile(profile core.Profile) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return errors.Wrap(err, "encoding profile")
	}
	return s.set(keyProfile, string(raw))
}

func (s *Store) Profile() (core.Profile, error) {
	raw, err := s.get(keyProfile)
	if err != nil {
		return core.Profile{}, err
	}
	var profile core.Profile
	if err = json.Unmarshal([]byte(raw), &profile); err != nil {
		return core.Profile{}, errors.Wrap(err, "decoding profile")
	}
	return profile, nil
}

// Clear wipes the whole session, effectively logging out locally.
func (s *Store) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM session_item`); err != nil {
		return errors.Wrap(err, "clearing session")
	}
	return nil
}

func (s *Store) set(key, value string) error {
	q := `INSERT INTO session_item (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	if _, err := s.db.Exec(q, key, value); err != nil {
		return errors.Wrapf(err, "storing session item %q", key)
	}
	return nil
}

func (s *Store) get(key string) (string, error) {
	var value string
	err := s.db.Get(&value, `SELECT value FROM session_item WHERE key = ?`, key)
	if err == sql.ErrNoRows {
		return "", errors.Wrapf(ErrNotFound, "%q", key)
	}
	if err != nil {
		return "", errors.Wrapf(err, "loading session item %q", key)
	}
	return value, nil
}
