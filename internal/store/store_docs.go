package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const timeLayout = "2006-01-02T15:04:05.000Z"

// DocStore implements Store on the couples table, one JSONB document per
// couple. The table is created by the migrations package.
type DocStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewDocStore(db *sql.DB) *DocStore {
	return &DocStore{db: db, now: time.Now}
}

func (s *DocStore) CreateCouple(ctx context.Context, c Couple) (Couple, error) {
	now := s.now().UTC()
	c.ID = uuid.NewString()
	c.CreatedAt = now
	c.UpdatedAt = now

	data, err := json.Marshal(c)
	if err != nil {
		return Couple{}, err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO couples (id, created_at, updated_at, data) VALUES (?, ?, ?, jsonb(?))`,
		c.ID, now.Format(timeLayout), now.Format(timeLayout), string(data),
	)
	if err != nil {
		return Couple{}, fmt.Errorf("inserting couple: %w", err)
	}
	return c, nil
}

func (s *DocStore) Couple(ctx context.Context, id string) (Couple, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT json(data) FROM couples WHERE id = ?`, id,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return Couple{}, ErrNotFound
	}
	if err != nil {
		return Couple{}, err
	}

	var c Couple
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return Couple{}, fmt.Errorf("decoding couple %s: %w", id, err)
	}
	return c, nil
}

func (s *DocStore) ModifyCouple(ctx context.Context, id string, fn func(*Couple) error) (Couple, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return Couple{}, err
	}
	defer tx.Rollback()

	// Claim the write lock before reading. A deferred transaction that
	// reads first cannot wait for another writer when it upgrades and
	// fails with SQLITE_BUSY instead.
	res, err := tx.ExecContext(ctx,
		`UPDATE couples SET updated_at = updated_at WHERE id = ?`, id,
	)
	if err != nil {
		return Couple{}, fmt.Errorf("locking couple %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Couple{}, err
	}
	if n == 0 {
		return Couple{}, ErrNotFound
	}

	var data string
	err = tx.QueryRowContext(ctx,
		`SELECT json(data) FROM couples WHERE id = ?`, id,
	).Scan(&data)
	if err != nil {
		return Couple{}, err
	}

	var c Couple
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return Couple{}, fmt.Errorf("decoding couple %s: %w", id, err)
	}

	if err := fn(&c); err != nil {
		return Couple{}, err
	}
	c.ID = id
	c.UpdatedAt = s.now().UTC()

	jsonData, err := json.Marshal(c)
	if err != nil {
		return Couple{}, err
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE couples SET updated_at = ?, data = jsonb(?) WHERE id = ?`,
		c.UpdatedAt.Format(timeLayout), string(jsonData), id,
	)
	if err != nil {
		return Couple{}, err
	}

	if err := tx.Commit(); err != nil {
		return Couple{}, err
	}
	return c, nil
}

var _ Store = (*DocStore)(nil)
