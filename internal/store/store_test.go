package store_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"pasar/internal/models"
	"pasar/internal/store"
)

// newTestManager opens a fresh in-memory SQLite database for one test. The
// shared-cache DSN keeps every pooled connection on the same database.
func newTestManager(t *testing.T) *store.Manager {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Product{}, &models.Order{}, &models.OrderItem{}))

	return store.NewManager(db, zerolog.Nop(), store.WithRetry(3, time.Millisecond))
}

func createTestUser(t *testing.T, m *store.Manager, username, email string) *store.UserSnapshot {
	t.Helper()
	user, err := m.CreateUser(username, email, "secure_password", "admin")
	require.NoError(t, err)
	return user
}

func createTestProduct(t *testing.T, m *store.Manager, name string, price float64, stock int) *store.ProductSnapshot {
	t.Helper()
	product, err := m.CreateProduct(name, "", price, stock, "admin")
	require.NoError(t, err)
	return product
}
