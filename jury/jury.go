// Package jury produces juror opinions for a case and reduces them to a verdict.
package jury

import (
	"context"

	"github.com/linesmerrill/jurychain-api/models"
)

// Verdict labels a juror can vote for
const (
	Claimant   = "Claimant"
	Respondent = "Respondent"
)

// Panel deliberates over a case description and returns one opinion per juror
type Panel interface {
	Deliberate(ctx context.Context, description string) ([]models.Juror, error)
	Size() int
}

// MockPanel is a stand-in for a real model-backed jury. It always returns the same
// three opinions in favor of the claimant and never reads the description.
type MockPanel struct{}

// NewMockPanel returns the fixed three-juror panel
func NewMockPanel() MockPanel {
	return MockPanel{}
}

var mockJurors = []models.Juror{
	{
		Name:    "Juror 1 (GPT-4)",
		Verdict: Claimant,
		Reason:  "The evidence clearly demonstrates breach of contract. The timeline and documentation support the claimant's claims.",
	},
	{
		Name:    "Juror 2 (Claude 3)",
		Verdict: Claimant,
		Reason:  "After careful analysis, the preponderance of evidence favors the claimant. The contract terms were violated.",
	},
	{
		Name:    "Juror 3 (Gemini)",
		Verdict: Claimant,
		Reason:  "The documentation provided is compelling. The claimant has proven their case with substantial evidence.",
	},
}

// Deliberate returns a fresh copy of the fixed opinions
func (MockPanel) Deliberate(ctx context.Context, _ string) ([]models.Juror, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	jurors := make([]models.Juror, len(mockJurors))
	copy(jurors, mockJurors)
	return jurors, nil
}

// Size is the number of jurors on the panel
func (MockPanel) Size() int {
	return len(mockJurors)
}
