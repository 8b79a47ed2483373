package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/medvisionlab/chestray/internal/domain/diseases"
	domain "github.com/medvisionlab/chestray/internal/domain/scoring"
)

// Client scores images against the pretrained multi-label classifier served
// behind an HTTP inference endpoint. The endpoint is stateless after load and
// safe to call concurrently; this client holds no mutable state either.
type Client struct {
	endpoint string
	http     *http.Client
}

func NewClient(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
	}
}

type inferenceRequest struct {
	Inputs []float32 `json:"inputs"`
	Shape  [4]int    `json:"shape"`
}

type inferenceResponse struct {
	Logits []float64 `json:"logits"`
}

// Score runs one forward pass: preprocess locally, send the tensor to the
// inference endpoint, apply the sigmoid independently to each returned logit.
// It never returns a partial result; on any failure the prediction slice is nil.
func (c *Client) Score(ctx context.Context, image []byte) ([]domain.Prediction, error) {
	tensor, err := Preprocess(image)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(inferenceRequest{
		Inputs: tensor,
		Shape:  [4]int{1, 3, InputSize, InputSize},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrScoring, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrScoring, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrScoring, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: inference endpoint returned status %d", domain.ErrScoring, resp.StatusCode)
	}

	var out inferenceResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrScoring, err)
	}
	if len(out.Logits) != diseases.Count {
		return nil, fmt.Errorf("%w: expected %d logits, got %d", domain.ErrScoring, diseases.Count, len(out.Logits))
	}

	preds := make([]domain.Prediction, diseases.Count)
	for i, name := range diseases.Names {
		preds[i] = domain.Prediction{Disease: name, Confidence: sigmoid(out.Logits[i])}
	}
	return preds, nil
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}
