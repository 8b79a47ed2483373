package report

import (
	"fmt"
	"strings"
)

const (
	noHighDiseases   = "No high probability conditions detected"
	noMediumDiseases = "No medium probability conditions detected"
)

// QuotaFallback is the deterministic report returned verbatim when the
// generation provider reports quota exhaustion. It echoes the classified
// disease lists so the result is still clinically usable, and it is never
// retried automatically; the caller re-invokes the whole pipeline.
func QuotaFallback(high, medium []string) string {
	return fmt.Sprintf(`The report service usage limit has been exceeded. Please wait a few minutes and try again.

Findings:
- High probability conditions: %s
- Medium probability conditions: %s

Assessment:
- Please wait a few minutes and try generating the report again.

Recommendations:
- The system is currently under heavy use, please try again later.

Follow-up Plan:
- You can retry report generation in a few minutes.`,
		joinOrDefault(high, noHighDiseases),
		joinOrDefault(medium, noMediumDiseases))
}

func joinOrDefault(names []string, def string) string {
	if len(names) == 0 {
		return def
	}
	return strings.Join(names, ", ")
}
