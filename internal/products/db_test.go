package products

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/atlasmedina/medina-backend/pkg/db/models"
)

// products carries a postgres array column, so the table is created by hand
// instead of through AutoMigrate when testing against sqlite.
const createProductsTable = `
CREATE TABLE products (
    id uuid PRIMARY KEY,
    name text NOT NULL UNIQUE,
    description text NOT NULL DEFAULT '',
    price numeric(10,2) NOT NULL,
    promo text,
    is_best_seller boolean NOT NULL DEFAULT false,
    category_id uuid,
    images text NOT NULL DEFAULT '{}',
    stock integer NOT NULL DEFAULT 0,
    is_active boolean NOT NULL DEFAULT true,
    created_at datetime NOT NULL,
    updated_at datetime NOT NULL
)`

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	if err := conn.AutoMigrate(&models.Category{}); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	if err := conn.Exec(createProductsTable).Error; err != nil {
		t.Fatalf("failed to create products table: %v", err)
	}
	return conn
}
