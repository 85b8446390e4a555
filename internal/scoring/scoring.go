package scoring

import (
	"github.com/scrumkit/planning-poker/internal/models"
)

// Summary describes the outcome of a round once the cards are revealed.
// Average is nil when no numeric votes were cast. Consensus means every
// numeric vote agreed and nobody played the "?" card.
type Summary struct {
	Average   *float64 `json:"average,omitempty"`
	Votes     int      `json:"votes"`
	Consensus bool     `json:"consensus"`
}

// Summarize computes the round summary over the room's players. Spectators
// and players who have not voted are ignored; a "?" vote is excluded from the
// average but breaks consensus.
func Summarize(players []models.Player) Summary {
	var (
		sum      int
		votes    int
		first    int
		agree    = true
		unknowns int
	)
	for _, p := range players {
		if p.IsSpectator || p.Points == nil {
			continue
		}
		if p.Points.Unknown {
			unknowns++
			continue
		}
		if votes == 0 {
			first = p.Points.Value
		} else if p.Points.Value != first {
			agree = false
		}
		sum += p.Points.Value
		votes++
	}

	summary := Summary{Votes: votes}
	if votes > 0 {
		avg := float64(sum) / float64(votes)
		summary.Average = &avg
		summary.Consensus = agree && unknowns == 0
	}
	return summary
}
