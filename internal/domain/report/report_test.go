package report

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/medvisionlab/chestray/internal/domain/scoring"
)

func TestClassifyBands(t *testing.T) {
	preds := []scoring.Prediction{
		{Disease: "Pneumonia", Confidence: 0.91},
		{Disease: "Edema", Confidence: 0.5},          // boundary, not high
		{Disease: "Cardiomegaly", Confidence: 0.35},
		{Disease: "Atelectasis", Confidence: 0.2},    // boundary, omitted
		{Disease: "Fracture", Confidence: 0.01},
	}

	high, medium := Classify(preds)

	assert.Equal(t, []string{"Pneumonia"}, high)
	assert.Equal(t, []string{"Edema", "Cardiomegaly"}, medium)
}

func TestClassifyPreservesInputOrder(t *testing.T) {
	preds := []scoring.Prediction{
		{Disease: "Pleural Effusion", Confidence: 0.6},
		{Disease: "Consolidation", Confidence: 0.55},
	}

	high, medium := Classify(preds)

	assert.Equal(t, []string{"Pleural Effusion", "Consolidation"}, high)
	assert.Empty(t, medium)
}

func TestClassifyEmpty(t *testing.T) {
	high, medium := Classify(nil)
	assert.Empty(t, high)
	assert.Empty(t, medium)
}

func TestQuotaFallbackEchoesLists(t *testing.T) {
	text := QuotaFallback([]string{"Pneumonia", "Edema"}, []string{"Cardiomegaly"})

	assert.Contains(t, text, "usage limit has been exceeded")
	assert.Contains(t, text, "High probability conditions: Pneumonia, Edema")
	assert.Contains(t, text, "Medium probability conditions: Cardiomegaly")
	assert.Contains(t, text, "Findings:")
	assert.Contains(t, text, "Assessment:")
	assert.Contains(t, text, "Recommendations:")
	assert.Contains(t, text, "Follow-up Plan:")
}

func TestQuotaFallbackEmptyLists(t *testing.T) {
	text := QuotaFallback(nil, nil)

	assert.Contains(t, text, "No high probability conditions detected")
	assert.Contains(t, text, "No medium probability conditions detected")
}

func TestQuotaFallbackDeterministic(t *testing.T) {
	a := QuotaFallback([]string{"Edema"}, nil)
	b := QuotaFallback([]string{"Edema"}, nil)
	assert.Equal(t, a, b)
}
