package prompt

import (
	"fmt"
	"strings"

	"github.com/medvisionlab/chestray/internal/domain/report"
	"github.com/medvisionlab/chestray/internal/domain/scoring"
)

// GetSystemPrompt fixes the role and the report structure. The structure is
// part of the product contract: four named sections, 2-3 sentences each, no
// patient or physician identifying information.
func GetSystemPrompt(language string) string {
	if strings.TrimSpace(language) == "" {
		language = "English"
	}
	return fmt.Sprintf(`You are an experienced radiology expert. Prepare a short and concise medical report for the conditions detected on a chest X-ray image.

Prepare the report under exactly these headings:
1. Findings: a short description of the detected conditions
2. Assessment: the severity and implications of the conditions
3. Recommendations: short and clear recommendations
4. Follow-up Plan: the required follow-up steps

Important:
- Summarize each section in 2-3 sentences
- Avoid unnecessary detail
- Use medical terminology
- Write the report in %s
- Do not include patient or radiologist identifying information in the report`, language)
}

// GetUserPrompt builds the per-image message around the classified disease lists.
func GetUserPrompt(preds []scoring.Prediction) string {
	high, medium := report.Classify(preds)
	return fmt.Sprintf("High probability conditions: %s\nMedium probability conditions: %s",
		joinOrDefault(high, "No high probability conditions detected"),
		joinOrDefault(medium, "No medium probability conditions detected"))
}

func joinOrDefault(names []string, def string) string {
	if len(names) == 0 {
		return def
	}
	return strings.Join(names, ", ")
}
