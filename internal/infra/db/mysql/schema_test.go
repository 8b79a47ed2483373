package mysql

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The repositories and the shipped migration must agree on column names;
// a mismatch only surfaces at runtime against a live database.
func TestMigrationDeclaresQueriedColumns(t *testing.T) {
	raw, err := os.ReadFile("../../../../migrations/mysql.sql")
	require.NoError(t, err)
	ddl := string(raw)

	for _, col := range []string{
		// images
		"image_data", "filename", "patient_name", "archive_url", "llm_report",
		// disease_labels
		"disease_name", "confidence", "is_confirmed",
		// doctor_comments / upload_errors / users
		"comment", "stage", "message", "username", "password_hash",
	} {
		assert.Contains(t, ddl, col)
	}
}
