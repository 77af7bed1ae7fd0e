package models

import "strings"

type OutcomeSymbol string

const (
	OutcomePlayer OutcomeSymbol = "player"
	OutcomeBanker OutcomeSymbol = "banker"
	OutcomeTie    OutcomeSymbol = "tie"
)

// ParseOutcome maps an operator-supplied token to an outcome symbol.
// Recognized tokens are "P", "B" and "T" (case-insensitive); anything
// else is discarded by the caller.
func ParseOutcome(token string) (OutcomeSymbol, bool) {
	switch strings.ToUpper(strings.TrimSpace(token)) {
	case "P":
		return OutcomePlayer, true
	case "B":
		return OutcomeBanker, true
	case "T":
		return OutcomeTie, true
	default:
		return "", false
	}
}

// Label returns the display name used in operator-facing notices.
func (o OutcomeSymbol) Label() string {
	switch o {
	case OutcomePlayer:
		return "PLAYER"
	case OutcomeBanker:
		return "BANKER"
	case OutcomeTie:
		return "TIE"
	default:
		return string(o)
	}
}

type VerdictKind string

const (
	VerdictInsufficientData VerdictKind = "insufficient_data"
	VerdictNoBet            VerdictKind = "no_bet"
	VerdictSide             VerdictKind = "side"
)

// Verdict is the result of scoring a window of outcomes. Side is only
// meaningful when Kind is VerdictSide, and is never OutcomeTie.
type Verdict struct {
	Kind VerdictKind   `json:"kind"`
	Side OutcomeSymbol `json:"side,omitempty"`
}

func InsufficientData() Verdict { return Verdict{Kind: VerdictInsufficientData} }
func NoBet() Verdict            { return Verdict{Kind: VerdictNoBet} }
func Side(s OutcomeSymbol) Verdict {
	return Verdict{Kind: VerdictSide, Side: s}
}
