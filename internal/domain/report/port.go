package report

import (
	"context"

	"github.com/medvisionlab/chestray/internal/domain/scoring"
)

// Generator is the hosted text-generation collaborator. Implementations may
// fail; the never-fail degradation policy lives in the application layer.
type Generator interface {
	Generate(ctx context.Context, preds []scoring.Prediction) (string, error)
}
