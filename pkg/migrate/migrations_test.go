package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/VadoVates/autoservice/pkg/migrate"
)

func TestMigrationsDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}

func TestSchemaMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_workshop_schema.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no schema migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE parts",
		"CHECK (stock_quantity >= 0)",
		"CHECK (quantity > 0)",
		"registration_number VARCHAR(20) NOT NULL UNIQUE",
		"order_id BIGINT NOT NULL UNIQUE REFERENCES orders (id)",
		"status TEXT NOT NULL DEFAULT 'new'",
		"DROP TABLE IF EXISTS customers",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestSeedMigrationInsertsBothStations(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_seed_work_stations.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no seed migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	for _, station := range []string{"Station 1", "Station 2"} {
		if !strings.Contains(content, station) {
			t.Errorf("seed migration missing %q", station)
		}
	}
}
