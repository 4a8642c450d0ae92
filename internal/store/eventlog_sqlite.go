package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"weekboard/internal/model"

	"github.com/google/uuid"
)

// AppendEvent records a mutation in the activity log.
func (s Store) AppendEvent(typ, entityID string, payload any) error {
	typ = strings.TrimSpace(typ)
	if typ == "" {
		return errors.New("event: missing type")
	}
	entityID = strings.TrimSpace(entityID)
	if entityID == "" {
		return errors.New("event: missing entity id")
	}

	pb, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	ctx := context.Background()
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.ExecContext(ctx, `INSERT INTO events(event_id, issued_at_unixms, type, entity_id, payload_json) VALUES(?, ?, ?, ?, ?)`,
		uuid.NewString(), time.Now().UTC().UnixMilli(), typ, entityID, string(pb))
	return err
}

// ReadEvents returns the most recent events in chronological order.
// limit <= 0 returns all events.
func (s Store) ReadEvents(limit int) ([]model.Event, error) {
	return s.readEvents(context.Background(), "", limit)
}

// ReadEventsForEntity is like ReadEvents but filtered to one entity id.
func (s Store) ReadEventsForEntity(entityID string, limit int) ([]model.Event, error) {
	entityID = strings.TrimSpace(entityID)
	if entityID == "" {
		return []model.Event{}, nil
	}
	return s.readEvents(context.Background(), entityID, limit)
}

func (s Store) readEvents(ctx context.Context, entityID string, limit int) ([]model.Event, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	q := `SELECT event_id, issued_at_unixms, type, entity_id, payload_json FROM events`
	args := []any{}
	if entityID != "" {
		q += ` WHERE entity_id = ?`
		args = append(args, entityID)
	}
	// rowid breaks ties between events issued in the same millisecond.
	q += ` ORDER BY issued_at_unixms DESC, rowid DESC`
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	var rows *sql.Rows
	rows, err = db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Event
	for rows.Next() {
		var id, typ, eid, payloadJSON string
		var tsMs int64
		if err := rows.Scan(&id, &tsMs, &typ, &eid, &payloadJSON); err != nil {
			return nil, err
		}
		var payload any
		_ = json.Unmarshal([]byte(payloadJSON), &payload)
		out = append(out, model.Event{
			ID:       id,
			TS:       time.UnixMilli(tsMs).UTC(),
			Type:     typ,
			EntityID: eid,
			Payload:  payload,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Newest-first from SQL; callers want chronological order.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	if out == nil {
		out = []model.Event{}
	}
	return out, nil
}
