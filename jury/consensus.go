package jury

import (
	"errors"
	"fmt"

	"github.com/linesmerrill/jurychain-api/models"
)

// ErrNoJurors is returned when consensus is requested over an empty panel
var ErrNoJurors = errors.New("no juror opinions to count")

// Consensus is the majority outcome of a panel
type Consensus struct {
	Label     string
	Votes     int
	Total     int
	Verdict   string
	Reasoning string
}

// ComputeConsensus counts votes per label and picks the label with the most votes.
// A tie goes to the label that was voted for first.
func ComputeConsensus(jurors []models.Juror) (Consensus, error) {
	if len(jurors) == 0 {
		return Consensus{}, ErrNoJurors
	}

	counts := make(map[string]int, len(jurors))
	var order []string
	for _, j := range jurors {
		if _, seen := counts[j.Verdict]; !seen {
			order = append(order, j.Verdict)
		}
		counts[j.Verdict]++
	}

	label := order[0]
	for _, l := range order[1:] {
		if counts[l] > counts[label] {
			label = l
		}
	}

	return Consensus{
		Label:     label,
		Votes:     counts[label],
		Total:     len(jurors),
		Verdict:   fmt.Sprintf("%s Wins", label),
		Reasoning: fmt.Sprintf("%d out of %d jurors ruled in favor of %s.", counts[label], len(jurors), label),
	}, nil
}
