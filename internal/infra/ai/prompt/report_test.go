package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/medvisionlab/chestray/internal/domain/scoring"
)

func TestGetSystemPrompt(t *testing.T) {
	p := GetSystemPrompt("English")

	assert.Contains(t, p, "radiology expert")
	assert.Contains(t, p, "1. Findings")
	assert.Contains(t, p, "2. Assessment")
	assert.Contains(t, p, "3. Recommendations")
	assert.Contains(t, p, "4. Follow-up Plan")
	assert.Contains(t, p, "2-3 sentences")
	assert.Contains(t, p, "Write the report in English")
	assert.Contains(t, p, "identifying information")
}

func TestGetSystemPromptDefaultsLanguage(t *testing.T) {
	assert.Contains(t, GetSystemPrompt(""), "Write the report in English")
	assert.Contains(t, GetSystemPrompt("Turkish"), "Write the report in Turkish")
}

func TestGetUserPrompt(t *testing.T) {
	preds := []scoring.Prediction{
		{Disease: "Pneumonia", Confidence: 0.8},
		{Disease: "Edema", Confidence: 0.3},
		{Disease: "Fracture", Confidence: 0.05},
	}

	p := GetUserPrompt(preds)

	assert.Equal(t, "High probability conditions: Pneumonia\nMedium probability conditions: Edema", p)
}

func TestGetUserPromptNoFindings(t *testing.T) {
	p := GetUserPrompt(nil)

	assert.Contains(t, p, "High probability conditions: No high probability conditions detected")
	assert.Contains(t, p, "Medium probability conditions: No medium probability conditions detected")
}
