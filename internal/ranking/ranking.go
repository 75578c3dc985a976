// Package ranking aggregates votes per item and orders items by approval.
//
// An item's weighted score is its yes percentage scaled by ln(1+n), where n is
// the number of votes it received. A single "yes" is 100% approval, so the log
// factor lets well-sampled items outrank it while saturating for large n.
package ranking

import (
	"math"
	"sort"

	"github.com/vbonduro/brandswipe/internal/domain"
)

// Aggregate groups votes by item id. Groups are returned in ascending item id
// order and only exist for items with at least one vote.
func Aggregate(votes []domain.Vote) []domain.ItemAggregate {
	byItem := make(map[string]*domain.ItemAggregate)
	for _, v := range votes {
		agg, ok := byItem[v.ItemID]
		if !ok {
			agg = &domain.ItemAggregate{ItemID: v.ItemID}
			byItem[v.ItemID] = agg
		}
		agg.TotalVotes++
		switch v.Value {
		case domain.VoteYes:
			agg.YesVotes++
		case domain.VoteNo:
			agg.NoVotes++
		case domain.VoteMaybe:
			agg.MaybeVotes++
		}
	}

	aggs := make([]domain.ItemAggregate, 0, len(byItem))
	for _, agg := range byItem {
		agg.YesPercentage = YesPercentage(agg.YesVotes, agg.TotalVotes)
		agg.WeightedScore = WeightedScore(agg.YesPercentage, agg.TotalVotes)
		aggs = append(aggs, *agg)
	}
	sort.Slice(aggs, func(i, j int) bool { return aggs[i].ItemID < aggs[j].ItemID })
	return aggs
}

// YesPercentage is 100*yes/total rounded half-to-even to one decimal.
// total must be positive.
func YesPercentage(yes, total int) float64 {
	return math.RoundToEven(float64(yes)/float64(total)*100*10) / 10
}

func WeightedScore(yesPercentage float64, total int) float64 {
	return yesPercentage * math.Log1p(float64(total))
}

// Sort orders aggregates by weighted score, then yes percentage, both
// descending. Remaining ties keep their input order.
func Sort(aggs []domain.ItemAggregate) {
	sort.SliceStable(aggs, func(i, j int) bool {
		if aggs[i].WeightedScore != aggs[j].WeightedScore {
			return aggs[i].WeightedScore > aggs[j].WeightedScore
		}
		return aggs[i].YesPercentage > aggs[j].YesPercentage
	})
}

// Ranked pairs an aggregate with its catalog item.
type Ranked struct {
	domain.ItemAggregate
	Item domain.Item `json:"item"`
}

// Rank aggregates votes and returns the sorted aggregates of catalog items.
// Votes for ids missing from the catalog are dropped.
func Rank(votes []domain.Vote, catalog []domain.Item) []Ranked {
	aggs := Aggregate(votes)
	Sort(aggs)

	items := make(map[string]domain.Item, len(catalog))
	for _, item := range catalog {
		items[item.ID] = item
	}

	ranked := make([]Ranked, 0, len(aggs))
	for _, agg := range aggs {
		item, ok := items[agg.ItemID]
		if !ok {
			continue
		}
		ranked = append(ranked, Ranked{ItemAggregate: agg, Item: item})
	}
	return ranked
}

// Top truncates ranked to its first n entries. n <= 0 returns ranked unchanged.
func Top(ranked []Ranked, n int) []Ranked {
	if n <= 0 || n >= len(ranked) {
		return ranked
	}
	return ranked[:n]
}
