package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aevon-lab/callstats/internal/syncdelta"
	"github.com/google/uuid"
)

const (
	metaInstallationID = "installation_id"
	metaCheckpoint     = "sync_checkpoint"
	metaPending        = "sync_pending"

	queryGetMeta = `SELECT value FROM metadata WHERE key = ?`
	querySetMeta = `
		INSERT INTO metadata (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	queryDeleteMeta = `DELETE FROM metadata WHERE key = ?`
)

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// GetMeta returns the value stored under key, if any.
func (s *Store) GetMeta(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, queryGetMeta, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get metadata %s: %w", key, err)
	}
	return value, true, nil
}

// SetMeta upserts key.
func (s *Store) SetMeta(ctx context.Context, key, value string) error {
	return s.setMeta(ctx, s.db, key, value)
}

func (s *Store) setMeta(ctx context.Context, ex execer, key, value string) error {
	if _, err := ex.ExecContext(ctx, querySetMeta, key, value, s.nowFn().UnixMilli()); err != nil {
		return fmt.Errorf("set metadata %s: %w", key, err)
	}
	return nil
}

// InstallationID returns this installation's stable identity, generating
// and persisting one on first use.
func (s *Store) InstallationID(ctx context.Context) (string, error) {
	id, ok, err := s.GetMeta(ctx, metaInstallationID)
	if err != nil {
		return "", err
	}
	if ok && id != "" {
		return id, nil
	}

	id = uuid.NewString()
	if err := s.SetMeta(ctx, metaInstallationID, id); err != nil {
		return "", err
	}
	return id, nil
}

// LoadCheckpoint returns the zero Checkpoint until one is committed.
func (s *Store) LoadCheckpoint(ctx context.Context) (syncdelta.Checkpoint, error) {
	var cp syncdelta.Checkpoint
	raw, ok, err := s.GetMeta(ctx, metaCheckpoint)
	if err != nil || !ok {
		return cp, err
	}
	if err := json.Unmarshal([]byte(raw), &cp); err != nil {
		return syncdelta.Checkpoint{}, fmt.Errorf("decode checkpoint: %w", err)
	}
	return cp, nil
}

// LoadPending returns nil when no attempt is outstanding.
func (s *Store) LoadPending(ctx context.Context) (*syncdelta.PendingAttempt, error) {
	raw, ok, err := s.GetMeta(ctx, metaPending)
	if err != nil || !ok {
		return nil, err
	}
	var p syncdelta.PendingAttempt
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("decode pending attempt: %w", err)
	}
	return &p, nil
}

func (s *Store) SavePending(ctx context.Context, pending syncdelta.PendingAttempt) error {
	raw, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("encode pending attempt: %w", err)
	}
	return s.SetMeta(ctx, metaPending, string(raw))
}

func (s *Store) ClearPending(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, queryDeleteMeta, metaPending); err != nil {
		return fmt.Errorf("clear pending attempt: %w", err)
	}
	return nil
}

// CommitCheckpoint stores cp and drops the pending attempt in one
// transaction.
func (s *Store) CommitCheckpoint(ctx context.Context, cp syncdelta.Checkpoint) error {
	raw, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("commit checkpoint: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := s.setMeta(ctx, tx, metaCheckpoint, string(raw)); err != nil {
		return fmt.Errorf("commit checkpoint: %w", err)
	}
	if _, err := tx.ExecContext(ctx, queryDeleteMeta, metaPending); err != nil {
		return fmt.Errorf("commit checkpoint: clear pending: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit checkpoint: commit: %w", err)
	}
	return nil
}

var _ syncdelta.CheckpointStore = (*Store)(nil)
