package rules

import (
	"math"

	"github.com/nstehr/corridor/model"
)

// PriorityEnv is the environment the prioritizer conditions are evaluated
// against. Its exported fields are the names available in expr sources.
type PriorityEnv struct {
	Turn            int
	GrowthRatio     float64 // remaining / initial growth resources; NaN without growth cells
	ExtractionRatio float64 // remaining / initial extraction resources; NaN without extraction cells
	GrowthCells     int     // non-empty growth cells
	ExtractionCells int     // non-empty extraction cells
}

// NewPriorityEnv derives the prioritizer inputs from the current board.
func NewPriorityEnv(b *model.Board, turn int) PriorityEnv {
	return PriorityEnv{
		Turn:            turn,
		GrowthRatio:     ratio(b.Remaining(model.KindGrowth), b.Initial(model.KindGrowth)),
		ExtractionRatio: ratio(b.Remaining(model.KindExtraction), b.Initial(model.KindExtraction)),
		GrowthCells:     len(b.ResourceCells(model.KindGrowth)),
		ExtractionCells: len(b.ResourceCells(model.KindExtraction)),
	}
}

// ratio is NaN when nothing existed initially, so every threshold
// comparison against it is false.
func ratio(current, initial int) float64 {
	if initial == 0 {
		return math.NaN()
	}
	return float64(current) / float64(initial)
}
