package store

import (
	"time"

	"weekboard/internal/model"

	"github.com/google/uuid"
)

// NextEntityID returns now as unix milliseconds, bumped past every task and
// initiative id already in db so two adds in the same millisecond never collide.
func NextEntityID(db *DB, now time.Time) int64 {
	id := now.UnixMilli()
	if db == nil {
		return id
	}
	for _, t := range db.Tasks {
		if t.ID >= id {
			id = t.ID + 1
		}
	}
	for _, in := range db.Initiatives {
		if in.ID >= id {
			id = in.ID + 1
		}
	}
	return id
}

// NewFileID returns a UUIDv7: a millisecond timestamp followed by random bits.
func NewFileID() model.FileID {
	id, err := uuid.NewV7()
	if err != nil {
		return model.FileID(uuid.NewString())
	}
	return model.FileID(id.String())
}
