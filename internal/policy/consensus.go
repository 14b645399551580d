package policy

import (
	"github.com/daRevrse/football-network/internal/domain"
	"github.com/google/uuid"
)

// Consensus thresholds. Up to three independent validators exist per match
// (home manager, away manager, referee); any two agreeing on the same score
// is treated as ground truth. Three or more opinions that never converge to
// a two-way agreement is a dispute.
const (
	ConsensusMinAgreement = 2
	DisputeMinValidations = 3
)

// ScoreSubmission is one validator's opinion, in submission order.
type ScoreSubmission struct {
	ValidatorID uuid.UUID
	Role        domain.ValidatorRole
	HomeScore   int
	AwayScore   int
}

// ConsensusVerdict is the outcome of evaluating all submissions for a match.
type ConsensusVerdict struct {
	HasConsensus bool `json:"has_consensus"`
	HasDispute   bool `json:"has_dispute"`
	Total        int  `json:"total_validations"`

	// Agreed score, only meaningful when HasConsensus is true.
	HomeScore int `json:"home_score,omitempty"`
	AwayScore int `json:"away_score,omitempty"`
}

type scoreGroup struct {
	home, away int
	count      int
}

// EvaluateConsensus groups submissions by exact score pair and checks
// whether the largest group reaches the agreement threshold. Grouping is
// stable in submission order, so when two groups tie in size the
// earliest-submitted group wins. All validator roles weigh equally.
func EvaluateConsensus(subs []ScoreSubmission) ConsensusVerdict {
	verdict := ConsensusVerdict{Total: len(subs)}
	if len(subs) == 0 {
		return verdict
	}

	var groups []scoreGroup
	for _, sub := range subs {
		found := false
		for i := range groups {
			if groups[i].home == sub.HomeScore && groups[i].away == sub.AwayScore {
				groups[i].count++
				found = true
				break
			}
		}
		if !found {
			groups = append(groups, scoreGroup{home: sub.HomeScore, away: sub.AwayScore, count: 1})
		}
	}

	// Strict > keeps the earliest group on ties.
	max := groups[0]
	for _, g := range groups[1:] {
		if g.count > max.count {
			max = g
		}
	}

	if max.count >= ConsensusMinAgreement {
		verdict.HasConsensus = true
		verdict.HomeScore = max.home
		verdict.AwayScore = max.away
		return verdict
	}

	if len(subs) >= DisputeMinValidations {
		verdict.HasDispute = true
	}
	return verdict
}
