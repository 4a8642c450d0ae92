package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// importLegacyExport imports <dir>/fahdAmitData.json once, when the
// persistence slot is still empty. An unreadable export is logged and skipped.
func (s Store) importLegacyExport(ctx context.Context) (*DB, error) {
	b, err := os.ReadFile(s.legacyExportPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	if isNullOrEmpty(b) {
		return nil, nil
	}
	db, err := DecodeDB(b)
	if err != nil {
		s.logger().Warn("skipping malformed legacy export", "path", s.legacyExportPath(), "err", err)
		return nil, nil
	}
	if err := s.Save(db); err != nil {
		return nil, err
	}
	s.logger().Info("imported legacy export", "path", s.legacyExportPath(),
		"tasks", len(db.Tasks), "initiatives", len(db.Initiatives))
	return db, nil
}

// ImportJSON replaces the persisted state with the blob read from r.
// Unlike Load, a malformed blob is an error: nothing is overwritten.
func (s Store) ImportJSON(r io.Reader) (*DB, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if isNullOrEmpty(b) {
		return nil, errors.New("import: empty input")
	}
	db, err := DecodeDB(b)
	if err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}
	if err := s.Save(db); err != nil {
		return nil, err
	}
	return db, nil
}

// ExportJSON writes the state in the same blob format the slot holds.
func ExportJSON(w io.Writer, db *DB, pretty bool) error {
	var b []byte
	var err error
	if pretty {
		b, err = json.MarshalIndent(db, "", "  ")
	} else {
		b, err = EncodeDB(db)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func isNullOrEmpty(b []byte) bool {
	if len(b) == 0 {
		return true
	}
	s := strings.TrimSpace(string(b))
	return s == "" || s == "null"
}
