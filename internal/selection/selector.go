// Package selection implements the question pool selector: it narrows the
// published question pool by the caller's filters and draws a uniform random
// sample without replacement.
package selection

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"quiz-session-service/internal/models"
)

// Mode presets. Quick and timed fix the question count; timed also carries
// the session deadline. Custom takes the caller's count, clamped to MaxCustomCount.
const (
	QuickCount     = 10
	TimedCount     = 20
	TimedDuration  = 900 * time.Second
	MaxCustomCount = 50
)

// Filters narrows the pool before sampling. Zero values mean "no filter";
// category and difficulty combine when both are set.
type Filters struct {
	Category   string `json:"category,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
}

// QuestionSource is the slice of the content collaborator the selector needs.
type QuestionSource interface {
	FindFiltered(ctx context.Context, category, difficulty string) ([]models.Question, error)
}

type Selector struct {
	source QuestionSource
	rand   *rand.Rand
}

func NewSelector(source QuestionSource) *Selector {
	return &Selector{
		source: source,
		rand:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CountForMode resolves the question count for a mode. Custom requests are
// clamped into [1, MaxCustomCount].
func CountForMode(mode string, customCount int) int {
	switch mode {
	case models.ModeQuick:
		return QuickCount
	case models.ModeTimed:
		return TimedCount
	default:
		if customCount < 1 {
			return QuickCount
		}
		if customCount > MaxCustomCount {
			return MaxCustomCount
		}
		return customCount
	}
}

// Select draws up to count question ids from the filtered pool, uniformly
// without replacement. A pool smaller than count yields the whole pool; an
// empty pool is an error because a zero-question session must never exist.
func (s *Selector) Select(ctx context.Context, filters Filters, count int) ([]string, error) {
	if filters.Difficulty != "" && !models.ValidDifficulty(filters.Difficulty) {
		return nil, fmt.Errorf("unknown difficulty %q", filters.Difficulty)
	}

	pool, err := s.source.FindFiltered(ctx, filters.Category, filters.Difficulty)
	if err != nil {
		return nil, fmt.Errorf("failed to load question pool: %w", err)
	}
	if len(pool) == 0 {
		return nil, fmt.Errorf("no questions match filters %+v", filters)
	}

	ids := make([]string, len(pool))
	for i, q := range pool {
		ids[i] = q.ID
	}
	s.rand.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})

	if count > len(ids) {
		count = len(ids)
	}
	return ids[:count], nil
}
