package selection

import (
	"github.com/jonathan/post-curator/internal/ranking"
	"github.com/jonathan/post-curator/internal/types"
)

// MinScore is the threshold below which candidates are dropped,
// unless dropping would leave nothing.
const MinScore = -20.0

// DefaultCount is the number of articles a run selects when none is given
const DefaultCount = 5

// TechnicalTarget is the preferred number of technical picks out of n,
// roughly half rounded up (3 of 5).
func TechnicalTarget(n int) int {
	if n <= 0 {
		return 0
	}
	return (n + 1) / 2
}

// Select scores candidates and returns the best max of them, best-first.
func Select(candidates []types.Candidate, maxCount int) []types.Candidate {
	scored := SelectScored(candidates, maxCount)
	out := make([]types.Candidate, 0, len(scored))
	for _, sc := range scored {
		out = append(out, sc.Candidate)
	}
	return out
}

// SelectScored is Select but keeps each candidate's score and category.
//
// Steps:
//  1. score and rank every candidate (stable, descending)
//  2. drop scores below MinScore, keeping the single best if nothing survives
//  3. truncate to maxCount
func SelectScored(candidates []types.Candidate, maxCount int) []types.ScoredCandidate {
	if len(candidates) == 0 || maxCount <= 0 {
		return []types.ScoredCandidate{}
	}

	ranked := ranking.RankCandidates(candidates)
	kept := applyThreshold(ranked)

	if len(kept) > maxCount {
		kept = kept[:maxCount]
	}
	return kept
}

// SelectBalanced biases the selection toward technicalTarget technical candidates,
// filling the remaining slots with the best general ones. The result honors the same
// threshold, ordering and cardinality rules as SelectScored; the mix is best-effort.
func SelectBalanced(candidates []types.Candidate, maxCount, technicalTarget int) ([]types.ScoredCandidate, error) {
	if technicalTarget < 0 {
		return nil, &Error{Message: "technical target must be non-negative"}
	}
	if len(candidates) == 0 || maxCount <= 0 {
		return []types.ScoredCandidate{}, nil
	}
	if technicalTarget > maxCount {
		technicalTarget = maxCount
	}

	pool := applyThreshold(ranking.RankCandidates(candidates))
	if len(pool) <= maxCount {
		return pool, nil
	}

	picked := make([]bool, len(pool))
	count := 0

	take := func(want types.Category, limit int) {
		for i := range pool {
			if count >= maxCount || limit <= 0 {
				return
			}
			if picked[i] || pool[i].Category != want {
				continue
			}
			picked[i] = true
			count++
			limit--
		}
	}

	take(types.CategoryTechnical, technicalTarget)
	take(types.CategoryGeneral, maxCount-count)
	// top up from anything left when one category ran dry
	for i := range pool {
		if count >= maxCount {
			break
		}
		if !picked[i] {
			picked[i] = true
			count++
		}
	}

	// pool is already ordered best-first, so walking it preserves ordering
	out := make([]types.ScoredCandidate, 0, count)
	for i := range pool {
		if picked[i] {
			out = append(out, pool[i])
		}
	}
	return out, nil
}

// applyThreshold drops candidates below MinScore from a ranked list.
// If that removes everything, only the best candidate is kept.
func applyThreshold(ranked []types.ScoredCandidate) []types.ScoredCandidate {
	if len(ranked) == 0 {
		return ranked
	}

	kept := make([]types.ScoredCandidate, 0, len(ranked))
	for _, sc := range ranked {
		if sc.Score >= MinScore {
			kept = append(kept, sc)
		}
	}

	if len(kept) == 0 {
		return []types.ScoredCandidate{ranked[0]}
	}
	return kept
}
