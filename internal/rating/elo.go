// Package rating implements the logistic Elo update used for confirmed matches.
package rating

import "math"

// K is the maximum rating change a single match can produce.
const K = 30

// ExpectedScore returns the expected score of a player rated r against opp.
func ExpectedScore(r, opp int) float64 {
	return 1.0 / (1.0 + math.Pow(10, float64(opp-r)/400.0))
}

// Delta is the unrounded number of points the winner gains and the loser loses.
func Delta(winner, loser int) float64 {
	return K * (1.0 - ExpectedScore(winner, loser))
}

// Update returns the new ratings after winner beat loser. Both results are
// rounded half to even, so the post-rounding change is not always zero-sum.
// Ratings are not clamped.
func Update(winner, loser int) (newWinner, newLoser int) {
	d := Delta(winner, loser)
	newWinner = int(math.RoundToEven(float64(winner) + d))
	newLoser = int(math.RoundToEven(float64(loser) - d))
	return newWinner, newLoser
}
