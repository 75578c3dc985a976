package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vbonduro/brandswipe/internal/domain"
)

// timestampLayout is ISO-8601 with sub-second precision, always written in UTC.
const timestampLayout = time.RFC3339Nano

// VoteStore persists the latest vote per (session_id, image_id).
type VoteStore struct {
	db *sql.DB
	// writeMu serializes upserts and clears.
	writeMu sync.Mutex
}

func NewVoteStore(db *sql.DB) *VoteStore {
	return &VoteStore{db: db}
}

// Upsert inserts the vote or, when the session already voted on the item,
// replaces its value and timestamp. The first user_name is kept.
func (s *VoteStore) Upsert(ctx context.Context, v domain.Vote) error {
	if !v.Value.Valid() {
		return domain.ErrInvalidVote
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	return s.upsert(ctx, v)
}

func (s *VoteStore) upsert(ctx context.Context, v domain.Vote) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO votes (session_id, user_name, image_id, vote, timestamp)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (session_id, image_id)
		DO UPDATE SET vote = excluded.vote, timestamp = excluded.timestamp
	`, v.SessionID, v.UserName, v.ItemID, string(v.Value), v.RecordedAt.UTC().Format(timestampLayout))
	if err != nil {
		return fmt.Errorf("failed to upsert vote: %w", err)
	}
	return nil
}

// ListAll returns every vote in insertion order. Rows that cannot be decoded
// are skipped.
func (s *VoteStore) ListAll(ctx context.Context) ([]domain.Vote, error) {
	return s.list(ctx, `
		SELECT session_id, user_name, image_id, vote, timestamp FROM votes ORDER BY rowid ASC
	`)
}

func (s *VoteStore) ListBySession(ctx context.Context, sessionID string) ([]domain.Vote, error) {
	return s.list(ctx, `
		SELECT session_id, user_name, image_id, vote, timestamp FROM votes
		WHERE session_id = ? ORDER BY rowid ASC
	`, sessionID)
}

// UpsertIfNewer stores v unless the pair already has a vote recorded at or
// after v.RecordedAt. It reports whether v was written.
func (s *VoteStore) UpsertIfNewer(ctx context.Context, v domain.Vote) (bool, error) {
	if !v.Value.Valid() {
		return false, domain.ErrInvalidVote
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	existing, err := s.Get(ctx, v.SessionID, v.ItemID)
	if err != nil {
		return false, err
	}
	if existing != nil && !v.RecordedAt.After(existing.RecordedAt) {
		return false, nil
	}
	if err := s.upsert(ctx, v); err != nil {
		return false, err
	}
	return true, nil
}

// Get returns the pair's vote, or nil when the session has not voted on the item.
func (s *VoteStore) Get(ctx context.Context, sessionID, itemID string) (*domain.Vote, error) {
	votes, err := s.list(ctx, `
		SELECT session_id, user_name, image_id, vote, timestamp FROM votes
		WHERE session_id = ? AND image_id = ?
	`, sessionID, itemID)
	if err != nil {
		return nil, err
	}
	if len(votes) == 0 {
		return nil, nil
	}
	return &votes[0], nil
}

func (s *VoteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM votes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count votes: %w", err)
	}
	return n, nil
}

// Clear removes every vote. Clearing an empty store is a no-op.
func (s *VoteStore) Clear(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM votes`); err != nil {
		return fmt.Errorf("failed to clear votes: %w", err)
	}
	return nil
}

func (s *VoteStore) list(ctx context.Context, query string, args ...any) ([]domain.Vote, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var votes []domain.Vote
	for rows.Next() {
		var (
			v     domain.Vote
			value string
			ts    string
		)
		if err := rows.Scan(&v.SessionID, &v.UserName, &v.ItemID, &value, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		v.Value = domain.VoteValue(value)
		if !v.Value.Valid() {
			slog.Warn("skipping vote with unknown value", "session_id", v.SessionID, "image_id", v.ItemID, "vote", value)
			continue
		}
		v.RecordedAt, err = time.Parse(timestampLayout, ts)
		if err != nil {
			slog.Warn("skipping vote with bad timestamp", "session_id", v.SessionID, "image_id", v.ItemID, "error", err)
			continue
		}
		votes = append(votes, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating votes: %w", err)
	}

	return votes, nil
}
