package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/vbonduro/brandswipe/internal/domain"
	"github.com/vbonduro/brandswipe/internal/ranking"
)

// voteRepository is the subset of store.VoteStore that Service requires.
type voteRepository interface {
	Upsert(ctx context.Context, v domain.Vote) error
	UpsertIfNewer(ctx context.Context, v domain.Vote) (bool, error)
	ListAll(ctx context.Context) ([]domain.Vote, error)
	ListBySession(ctx context.Context, sessionID string) ([]domain.Vote, error)
	Count(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
}

// Service is the vote ledger: it records votes and derives tallies and the
// ranked report from them.
type Service struct {
	votes  voteRepository
	now    func() time.Time
	logger *slog.Logger
}

func NewService(votes voteRepository, logger *slog.Logger) *Service {
	return &Service{votes: votes, now: time.Now, logger: logger}
}

// Report is the ranked approval table plus totals over catalog items.
type Report struct {
	Items        []ranking.Ranked
	Ranked       int
	TotalVotes   int
	UniqueVoters int
}

// RecordVote stores the session's vote on an item, replacing any earlier vote
// on the same item. The caller checks that itemID is in the catalog.
func (s *Service) RecordVote(ctx context.Context, sessionID, userName, itemID string, value domain.VoteValue) error {
	sessionID = strings.TrimSpace(sessionID)
	itemID = strings.TrimSpace(itemID)
	if sessionID == "" || itemID == "" {
		return domain.ErrInvalidInput
	}
	if !value.Valid() {
		return domain.ErrInvalidVote
	}

	v := domain.Vote{
		SessionID:  sessionID,
		UserName:   strings.TrimSpace(userName),
		ItemID:     itemID,
		Value:      value,
		RecordedAt: s.now(),
	}
	if err := s.votes.Upsert(ctx, v); err != nil {
		return fmt.Errorf("failed to record vote: %w", err)
	}
	s.logger.Debug("vote recorded", "session_id", sessionID, "image_id", itemID, "vote", string(value))
	return nil
}

// VoterTally counts one session's votes by value. A session without votes
// has a zero tally.
func (s *Service) VoterTally(ctx context.Context, sessionID string) domain.VoterTally {
	votes, err := s.votes.ListBySession(ctx, sessionID)
	if err != nil {
		s.logger.Warn("failed to load votes, treating ledger as empty", "session_id", sessionID, "error", err)
		return domain.VoterTally{}
	}
	return Summarize(votes, sessionID)
}

// Summarize counts the votes belonging to sessionID.
func Summarize(votes []domain.Vote, sessionID string) domain.VoterTally {
	var t domain.VoterTally
	for _, v := range votes {
		if v.SessionID != sessionID {
			continue
		}
		t.Total++
		switch v.Value {
		case domain.VoteYes:
			t.Yes++
		case domain.VoteNo:
			t.No++
		case domain.VoteMaybe:
			t.Maybe++
		}
	}
	return t
}

// RankedReport ranks the catalog items that have votes and keeps the top
// limit entries (all of them when limit <= 0). Totals cover every ranked item,
// not just the kept ones.
func (s *Service) RankedReport(ctx context.Context, catalog []domain.Item, limit int) Report {
	votes := s.loadAll(ctx)
	ranked := ranking.Rank(votes, catalog)

	report := Report{Items: ranking.Top(ranked, limit), Ranked: len(ranked)}
	inCatalog := make(map[string]bool, len(ranked))
	for _, r := range ranked {
		report.TotalVotes += r.TotalVotes
		inCatalog[r.ItemID] = true
	}

	voters := make(map[string]struct{})
	for _, v := range votes {
		if inCatalog[v.ItemID] {
			voters[v.SessionID] = struct{}{}
		}
	}
	report.UniqueVoters = len(voters)
	return report
}

// VoteCount is the number of stored votes, including votes for items no
// longer in the catalog.
func (s *Service) VoteCount(ctx context.Context) int {
	n, err := s.votes.Count(ctx)
	if err != nil {
		s.logger.Warn("failed to count votes", "error", err)
		return 0
	}
	return n
}

// WipeVotes irreversibly removes every vote. It is safe on an empty ledger.
func (s *Service) WipeVotes(ctx context.Context) error {
	if err := s.votes.Clear(ctx); err != nil {
		return fmt.Errorf("failed to wipe votes: %w", err)
	}
	s.logger.Info("all votes wiped")
	return nil
}

// loadAll returns every vote, or none when the store cannot be read: an empty
// ledger is always a valid state.
func (s *Service) loadAll(ctx context.Context) []domain.Vote {
	votes, err := s.votes.ListAll(ctx)
	if err != nil {
		s.logger.Warn("failed to load votes, treating ledger as empty", "error", err)
		return nil
	}
	return votes
}
