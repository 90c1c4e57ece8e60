package checkpoint

import (
	"os"
	"testing"
)

// TestSchemaFilePresent guards against schema.sql going missing or
// empty — InitSchema reads it relative to the process's working
// directory at runtime, so a missing file only otherwise surfaces at
// deploy time.
func TestSchemaFilePresent(t *testing.T) {
	data, err := os.ReadFile("schema.sql")
	if err != nil {
		t.Fatalf("unexpected error reading schema.sql: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty schema contents")
	}
}
