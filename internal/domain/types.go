package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidVote  = errors.New("invalid vote value")
	ErrInvalidInput = errors.New("invalid vote input")
)

// VoteValue is a voter's reaction to a single item.
type VoteValue string

const (
	VoteYes   VoteValue = "yes"
	VoteNo    VoteValue = "no"
	VoteMaybe VoteValue = "maybe"
)

// ParseVoteValue accepts "yes", "no" or "maybe", ignoring case and surrounding space.
func ParseVoteValue(s string) (VoteValue, error) {
	switch v := VoteValue(strings.ToLower(strings.TrimSpace(s))); v {
	case VoteYes, VoteNo, VoteMaybe:
		return v, nil
	default:
		return "", ErrInvalidVote
	}
}

func (v VoteValue) Valid() bool {
	return v == VoteYes || v == VoteNo || v == VoteMaybe
}

// Item is one votable media entry from the catalog.
type Item struct {
	ID       string
	Location string
	Label    string
}

// DisplayName returns the label, or the id when the item has no label.
func (i Item) DisplayName() string {
	if strings.TrimSpace(i.Label) != "" {
		return i.Label
	}
	return i.ID
}

// Vote is the latest reaction of one voter session to one item.
type Vote struct {
	SessionID  string
	UserName   string
	ItemID     string
	Value      VoteValue
	RecordedAt time.Time
}

type VoterTally struct {
	Total int `json:"total"`
	Yes   int `json:"yes"`
	No    int `json:"no"`
	Maybe int `json:"maybe"`
}

type ItemAggregate struct {
	ItemID        string  `json:"item_id"`
	TotalVotes    int     `json:"total_votes"`
	YesVotes      int     `json:"yes_votes"`
	NoVotes       int     `json:"no_votes"`
	MaybeVotes    int     `json:"maybe_votes"`
	YesPercentage float64 `json:"yes_percentage"`
	WeightedScore float64 `json:"weighted_score"`
}
