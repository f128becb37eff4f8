package credibility

import "math"

// NeutralVoteScore is returned when there are no votes to judge.
const NeutralVoteScore = 50

// VoteScoreOf converts vote tallies into a 0-100 favorability ratio.
func VoteScoreOf(upvotes, downvotes int) int {
	up, down := nonNegative(upvotes), nonNegative(downvotes)
	total := up + down
	if total == 0 {
		return NeutralVoteScore
	}
	return clamp(roundHalfUp(100 * float64(up) / float64(total)))
}

// AttestationScoreOf is 100 for attested content and 0 otherwise.
func AttestationScoreOf(attested bool) int {
	if attested {
		return 100
	}
	return 0
}

// roundHalfUp rounds to the nearest integer with .5 going up. The epsilon keeps weighted sums
// like 12.499999999999998 (meant as 12.5) on the upper side.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5 + 1e-9))
}
