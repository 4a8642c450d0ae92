package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"weekboard/internal/model"
)

const (
	// StateKey is the persistence slot holding the whole serialized state.
	StateKey = "fahdAmitData"

	sqliteFileName = "weekboard.sqlite"
	// legacyExportFileName is a localStorage export dropped into the store dir.
	legacyExportFileName = StateKey + ".json"
)

// DB is the full application state. It is persisted as one JSON blob.
type DB struct {
	Tasks         []model.Task               `json:"tasks"`
	Initiatives   []model.Initiative         `json:"initiatives"`
	ArchivedWeeks map[int]model.ArchivedWeek `json:"archivedWeeks"`
}

// NewDB returns the zero-value state with empty collections.
func NewDB() *DB {
	return &DB{
		Tasks:         []model.Task{},
		Initiatives:   []model.Initiative{},
		ArchivedWeeks: map[int]model.ArchivedWeek{},
	}
}

type Store struct {
	Dir string
	Log *slog.Logger
}

func DefaultDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "data"), nil
}

func (s Store) Ensure() error {
	if strings.TrimSpace(s.Dir) == "" {
		return errors.New("store: dir is empty")
	}
	return os.MkdirAll(s.Dir, 0o755)
}

func (s Store) logger() *slog.Logger {
	if s.Log != nil {
		return s.Log
	}
	return slog.Default()
}

func (s Store) sqlitePath() string {
	return filepath.Join(s.Dir, sqliteFileName)
}

func (s Store) legacyExportPath() string {
	return filepath.Join(s.Dir, legacyExportFileName)
}

// Load reads the persisted state. A missing slot yields an empty state.
// A malformed blob is copied aside under a ".corrupt.<unixms>" key, logged,
// and the slot is reset to an empty state; it never fails the load.
// Repairs made by Normalize are written back so generated ids stay stable.
func (s Store) Load() (*DB, error) {
	ctx := context.Background()
	conn, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	raw, ok, err := kvGet(ctx, conn, StateKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		imported, err := s.importLegacyExport(ctx)
		if err != nil {
			return nil, err
		}
		if imported == nil {
			return NewDB(), nil
		}
		return imported, nil
	}

	db, repaired, err := decodeDB([]byte(raw))
	if err != nil {
		backupKey := fmt.Sprintf("%s.corrupt.%d", StateKey, time.Now().UTC().UnixMilli())
		if perr := kvPut(ctx, conn, backupKey, raw); perr != nil {
			return nil, fmt.Errorf("back up malformed state: %w", perr)
		}
		db = NewDB()
		if perr := putDB(ctx, conn, db); perr != nil {
			return nil, fmt.Errorf("reset malformed state: %w", perr)
		}
		s.logger().Warn("persisted state is malformed; reset to an empty store",
			"key", StateKey, "backup", backupKey, "err", err)
		return db, nil
	}
	if repaired {
		if err := putDB(ctx, conn, db); err != nil {
			return nil, fmt.Errorf("persist normalized state: %w", err)
		}
		s.logger().Debug("persisted normalized state", "key", StateKey)
	}
	return db, nil
}

// Save overwrites the persistence slot with the full serialized state.
func (s Store) Save(db *DB) error {
	if db == nil {
		return errors.New("nil db")
	}
	ctx := context.Background()
	conn, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()
	return putDB(ctx, conn, db)
}

func putDB(ctx context.Context, conn *sql.DB, db *DB) error {
	b, err := EncodeDB(db)
	if err != nil {
		return err
	}
	return kvPut(ctx, conn, StateKey, string(b))
}

// DecodeDB parses a serialized state blob and normalizes it.
// A JSON null decodes to the empty state.
func DecodeDB(b []byte) (*DB, error) {
	db, _, err := decodeDB(b)
	return db, err
}

func decodeDB(b []byte) (*DB, bool, error) {
	var db *DB
	if err := json.Unmarshal(b, &db); err != nil {
		return nil, false, err
	}
	if db == nil {
		return NewDB(), false, nil
	}
	return db, Normalize(db), nil
}

func EncodeDB(db *DB) ([]byte, error) {
	return json.Marshal(db)
}

func (db *DB) FindTask(id int64) (*model.Task, bool) {
	for i := range db.Tasks {
		if db.Tasks[i].ID == id {
			return &db.Tasks[i], true
		}
	}
	return nil, false
}

func (db *DB) FindInitiative(id int64) (*model.Initiative, bool) {
	for i := range db.Initiatives {
		if db.Initiatives[i].ID == id {
			return &db.Initiatives[i], true
		}
	}
	return nil, false
}

// ArchivedWeekNumbers returns the archived week numbers in ascending order.
func (db *DB) ArchivedWeekNumbers() []int {
	out := make([]int, 0, len(db.ArchivedWeeks))
	for wk := range db.ArchivedWeeks {
		out = append(out, wk)
	}
	slices.Sort(out)
	return out
}
