// Package testutil opens throwaway Postgres schemas for DB-backed tests.
package testutil

import (
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"credit-core/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const dsnEnv = "TEST_DATABASE_DSN"

// OpenTestDB connects to TEST_DATABASE_DSN inside a fresh schema that is
// dropped when the test ends. Skips the test when the variable is unset.
func OpenTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv(dsnEnv)
	if dsn == "" {
		t.Skipf("%s not set", dsnEnv)
	}

	admin, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)

	schema := "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	require.NoError(t, admin.Exec("CREATE SCHEMA " + schema).Error)

	db, err := gorm.Open(postgres.Open(withSearchPath(dsn, schema)), &gorm.Config{
		Logger:  gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.AllModels()...))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
		_ = admin.Exec("DROP SCHEMA " + schema + " CASCADE").Error
		if sqlDB, err := admin.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func withSearchPath(dsn, schema string) string {
	if strings.Contains(dsn, "://") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		return dsn + sep + "search_path=" + schema
	}
	return dsn + " search_path=" + schema
}

func CreateUser(t *testing.T, db *gorm.DB, name string) *model.User {
	t.Helper()
	u := &model.User{Username: name, Email: fmt.Sprintf("%s@example.com", name)}
	require.NoError(t, db.Create(u).Error)
	return u
}

func CreateChapter(t *testing.T, db *gorm.DB, authorID uint64, title string, price int64) *model.Chapter {
	t.Helper()
	c := &model.Chapter{BookID: 1, AuthorID: authorID, Title: title, Price: price, IsLocked: price > 0}
	require.NoError(t, db.Create(c).Error)
	return c
}

func CreatePackage(t *testing.T, db *gorm.DB, name string, credits int64, price string) *model.CreditPackage {
	t.Helper()
	p := &model.CreditPackage{Name: name, CreditAmount: credits, PriceUSD: decimal.RequireFromString(price), Active: true}
	require.NoError(t, db.Create(p).Error)
	return p
}
