package services

import (
	"bacbo-analyst-backend/internal/models"
)

const (
	// ScoringWindow is how many of the most recent outcomes are scored.
	ScoringWindow = 10

	recencyBaseWeight = 1.0
	recencyWeightStep = 0.2

	tieVetoRatio      = 0.2
	majorityRatio     = 0.6
	streakSignalCount = 3
)

// SignalEngine scores a window of recent outcomes with a recency-weighted
// heuristic. It holds no state; Evaluate is deterministic for a given input.
type SignalEngine struct{}

func NewSignalEngine() *SignalEngine {
	return &SignalEngine{}
}

// Evaluate scores the trailing ScoringWindow entries of history, oldest to
// newest. Rule precedence is fixed: tie veto, then contrarian streak break,
// then majority.
func (se *SignalEngine) Evaluate(history []models.OutcomeSymbol) models.Verdict {
	if len(history) < ScoringWindow {
		return models.InsufficientData()
	}

	window := history[len(history)-ScoringWindow:]

	scores := map[models.OutcomeSymbol]float64{}
	for stepsBack := 0; stepsBack < len(window); stepsBack++ {
		symbol := window[len(window)-1-stepsBack]
		weight := recencyBaseWeight + recencyWeightStep*float64(stepsBack)
		scores[symbol] += weight
	}

	total := scores[models.OutcomePlayer] + scores[models.OutcomeBanker] + scores[models.OutcomeTie]

	if scores[models.OutcomeTie]/total > tieVetoRatio {
		return models.NoBet()
	}

	last := window[len(window)-1]
	streak := trailingStreak(window)
	if streak >= streakSignalCount && last != models.OutcomeTie {
		// Contrarian break: bet against the streak side.
		if last == models.OutcomePlayer {
			return models.Side(models.OutcomeBanker)
		}
		return models.Side(models.OutcomePlayer)
	}

	if scores[models.OutcomePlayer]/total > majorityRatio {
		return models.Side(models.OutcomePlayer)
	}
	if scores[models.OutcomeBanker]/total > majorityRatio {
		return models.Side(models.OutcomeBanker)
	}

	return models.NoBet()
}

// trailingStreak counts consecutive entries equal to the newest entry,
// scanning backward from the end of the window.
func trailingStreak(window []models.OutcomeSymbol) int {
	last := window[len(window)-1]
	streak := 0
	for i := len(window) - 1; i >= 0; i-- {
		if window[i] != last {
			break
		}
		streak++
	}
	return streak
}
