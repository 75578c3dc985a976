package ledger

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/vbonduro/brandswipe/internal/domain"
)

// csvHeader is the votes.csv layout other tools read.
var csvHeader = []string{"session_id", "user_name", "image_id", "vote", "timestamp"}

// timestampLayouts are tried in order when importing. Timestamps without a
// zone are taken as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// ExportCSV writes every vote in votes.csv layout.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer) error {
	votes, err := s.votes.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load votes: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, v := range votes {
		record := []string{v.SessionID, v.UserName, v.ItemID, string(v.Value), v.RecordedAt.UTC().Format(time.RFC3339Nano)}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write vote: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ImportResult summarizes an ImportCSV run.
type ImportResult struct {
	Imported int
	Skipped  int
	// Stale counts rows older than the vote already stored for their pair.
	Stale int
}

// ImportCSV loads votes in votes.csv layout. Rows are treated as an append-only
// log: for each (session_id, image_id) the row with the latest timestamp wins,
// later rows winning ties. A stored vote that is at least as recent is kept, so
// importing the same file again is a no-op. Rows that cannot be parsed are
// skipped.
func (s *Service) ImportCSV(ctx context.Context, r io.Reader) (ImportResult, error) {
	var result ImportResult

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return result, nil
	}
	if err != nil {
		return result, fmt.Errorf("failed to read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, name := range csvHeader {
		if _, ok := cols[name]; !ok {
			return result, fmt.Errorf("votes csv is missing column %q", name)
		}
	}

	type key struct{ session, item string }
	latest := make(map[key]domain.Vote)
	var order []key

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return result, fmt.Errorf("failed to read votes csv: %w", err)
		}

		v, ok := parseVoteRecord(record, cols)
		if !ok {
			result.Skipped++
			continue
		}
		k := key{v.SessionID, v.ItemID}
		prev, seen := latest[k]
		if !seen {
			order = append(order, k)
		}
		if !seen || !v.RecordedAt.Before(prev.RecordedAt) {
			latest[k] = v
		}
	}

	for _, k := range order {
		written, err := s.votes.UpsertIfNewer(ctx, latest[k])
		if err != nil {
			return result, fmt.Errorf("failed to import vote: %w", err)
		}
		if written {
			result.Imported++
		} else {
			result.Stale++
		}
	}
	s.logger.Info("votes imported", "imported", result.Imported, "skipped", result.Skipped, "stale", result.Stale)
	return result, nil
}

func parseVoteRecord(record []string, cols map[string]int) (domain.Vote, bool) {
	get := func(name string) string {
		i := cols[name]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	value, err := domain.ParseVoteValue(get("vote"))
	if err != nil {
		return domain.Vote{}, false
	}
	at, ok := parseTimestamp(get("timestamp"))
	if !ok {
		return domain.Vote{}, false
	}
	v := domain.Vote{
		SessionID:  get("session_id"),
		UserName:   get("user_name"),
		ItemID:     get("image_id"),
		Value:      value,
		RecordedAt: at,
	}
	if v.SessionID == "" || v.ItemID == "" {
		return domain.Vote{}, false
	}
	return v, true
}

func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
