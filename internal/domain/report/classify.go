package report

import "github.com/medvisionlab/chestray/internal/domain/scoring"

// Threshold bands used for report construction. They are never stored.
const (
	HighThreshold   = 0.5
	MediumThreshold = 0.2
)

// Classify splits predictions into high (> 0.5) and medium (0.2 < c <= 0.5)
// probability disease lists. Everything at or below 0.2 is omitted.
func Classify(preds []scoring.Prediction) (high, medium []string) {
	for _, p := range preds {
		switch {
		case p.Confidence > HighThreshold:
			high = append(high, p.Disease)
		case p.Confidence > MediumThreshold:
			medium = append(medium, p.Disease)
		}
	}
	return high, medium
}
