package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"bistro/internal/db"
	"bistro/internal/model"
	"bistro/internal/repository"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.NewSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

func createUser(t *testing.T, gdb *gorm.DB, email string, role model.Role) *model.User {
	t.Helper()
	u := &model.User{Name: "User", Email: email, Role: role}
	require.NoError(t, repository.NewUserRepository(gdb).Create(context.Background(), u))
	return u
}

// createMenu inserts one category holding items priced as given, returning them in order.
func createMenu(t *testing.T, gdb *gorm.DB, prices ...string) []model.MenuItem {
	t.Helper()
	cat := &model.MenuCategory{Name: "Mains"}
	require.NoError(t, gdb.Create(cat).Error)
	items := make([]model.MenuItem, len(prices))
	for i, p := range prices {
		items[i] = model.MenuItem{
			Name:       "Item " + string(rune('A'+i)),
			Price:      decimal.RequireFromString(p),
			CategoryID: cat.ID,
		}
		require.NoError(t, gdb.Omit("Category").Create(&items[i]).Error)
	}
	return items
}
