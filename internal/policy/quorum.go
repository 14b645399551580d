package policy

// Quorum thresholds. A team fields a valid side with at least 6 confirmed
// players; below 4 confirmed on either side the match is flagged critical.
const (
	QuorumMinConfirmed = 6
	QuorumWarningFloor = 4
)

// QuorumLevel is the tri-level participation status used for monitoring.
type QuorumLevel string

const (
	QuorumValidated QuorumLevel = "validated"
	QuorumWarning   QuorumLevel = "warning"
	QuorumCritical  QuorumLevel = "critical"
)

// TeamTally counts one team's participation responses.
type TeamTally struct {
	Confirmed int `json:"confirmed"`
	Total     int `json:"total"`
}

// QuorumResult is the outcome of a quorum evaluation for a match.
type QuorumResult struct {
	Home    TeamTally   `json:"home"`
	Away    TeamTally   `json:"away"`
	IsValid bool        `json:"is_valid"`
	Level   QuorumLevel `json:"level"`
}

// EvaluateQuorum computes the match-level quorum from per-team confirmation
// tallies. Validity requires both teams to individually clear the confirmed
// minimum; the warning band covers matches where both sides have at least
// the warning floor but not both clear the minimum. Quorum is advisory and
// never blocks lifecycle transitions.
func EvaluateQuorum(home, away TeamTally) QuorumResult {
	res := QuorumResult{Home: home, Away: away}

	switch {
	case home.Confirmed >= QuorumMinConfirmed && away.Confirmed >= QuorumMinConfirmed:
		res.IsValid = true
		res.Level = QuorumValidated
	case home.Confirmed >= QuorumWarningFloor && away.Confirmed >= QuorumWarningFloor:
		res.Level = QuorumWarning
	default:
		res.Level = QuorumCritical
	}
	return res
}
