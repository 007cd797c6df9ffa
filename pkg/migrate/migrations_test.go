package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/atlasmedina/medina-backend/pkg/migrate"
)

func TestValidateMigrationsDir(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("migrations dir failed validation: %v", err)
	}
}

func readMigration(t *testing.T, glob string) string {
	t.Helper()

	matches, err := filepath.Glob(filepath.Join("migrations", glob))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %q found", glob)
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestProductsMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_products.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS products",
		"CONSTRAINT products_name_unique UNIQUE (name)",
		"CHECK (price >= 0)",
		"CHECK (stock >= 0)",
		"FOREIGN KEY (category_id) REFERENCES categories(id) ON DELETE SET NULL",
		"DROP TABLE IF EXISTS products",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestOrderItemsMigrationCascadesWithOrder(t *testing.T) {
	content := readMigration(t, "*_create_order_items.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS order_items",
		"FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE",
		"CHECK (quantity > 0)",
		"DROP TABLE IF EXISTS order_items",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestOrdersMigrationRestrictsStatus(t *testing.T) {
	content := readMigration(t, "*_create_orders.sql")

	for _, status := range []string{"'pending'", "'confirmed'", "'with_delivery_guy'", "'delivered'", "'canceled'"} {
		if !strings.Contains(content, status) {
			t.Errorf("status check missing %s", status)
		}
	}
}
