package library

import (
	"database/sql"
	"errors"

	_ "github.com/mattn/go-sqlite3"

	"github.com/feather-lang/gmk"
)

// The state pack is a key/value store that outlives a make run, backed
// by a SQLite file:
//
//	$(state-set .state.db,last-release,$(VERSION))
//	LAST := $(state-get .state.db,last-release,none)
//	$(state-del .state.db,last-release)
//
// state-get of an absent key returns the third argument, or "" without
// one, mirroring how an undefined variable expands.
func init() {
	gmk.RegisterLibrary(gmk.Library{
		Name: "state",
		Install: func(m *gmk.Make) error {
			if err := m.Export("state-set", stateSet); err != nil {
				return err
			}
			if err := m.Export("state-get", stateGet); err != nil {
				return err
			}
			return m.Export("state-del", stateDel)
		},
	})
}

// openState opens the store, creating the table on first use. make runs
// are short and the store sees a handful of calls, so every call opens
// and closes its own handle.
func openState(file string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", file)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (key TEXT PRIMARY KEY, value TEXT NOT NULL)`); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func stateSet(file, key, value string) error {
	db, err := openState(file)
	if err != nil {
		return err
	}
	defer db.Close()
	_, err = db.Exec(`INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}

func stateGet(file, key string, fallback *string) (string, error) {
	db, err := openState(file)
	if err != nil {
		return "", err
	}
	defer db.Close()
	var value string
	err = db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		if fallback != nil {
			return *fallback, nil
		}
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func stateDel(file, key string) error {
	db, err := openState(file)
	if err != nil {
		return err
	}
	defer db.Close()
	_, err = db.Exec(`DELETE FROM kv WHERE key = ?`, key)
	return err
}
