package scoring

import "context"

// Prediction is one (disease, confidence) pair. Confidences are independent
// sigmoid outputs in (0,1); they are not mutually exclusive and do not sum to 1.
type Prediction struct {
	Disease    string  `json:"disease"`
	Confidence float64 `json:"confidence"`
}

// Scorer wraps the opaque pretrained classifier. Implementations own the
// deterministic preprocessing and the sigmoid postprocessing; the network
// itself is an external dependency. A successful call always returns exactly
// one prediction per canonical disease, in canonical order.
type Scorer interface {
	Score(ctx context.Context, image []byte) ([]Prediction, error)
}
