// Package testutil provides an in-memory license store for tests.
package testutil

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/javajoker/license-server/internal/database"
)

// NewDB returns a migrated in-memory SQLite database. It holds a single
// connection, so every transaction runs serially; this stands in for the
// row locks postgres takes in production.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.RunMigrations(db))
	return db
}

// NewDirectoryDB returns an in-memory database holding the user directory
// tables under the given prefix.
func NewDirectoryDB(t *testing.T, prefix string) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Exec(`CREATE TABLE `+prefix+`users (
		ID INTEGER PRIMARY KEY,
		user_login TEXT NOT NULL,
		user_pass TEXT NOT NULL
	)`).Error)
	require.NoError(t, db.Exec(`CREATE TABLE `+prefix+`usermeta (
		umeta_id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		meta_key TEXT,
		meta_value TEXT
	)`).Error)
	return db
}

// AddDirectoryUser inserts a directory user with a capabilities meta row for role.
func AddDirectoryUser(t *testing.T, db *gorm.DB, prefix string, id uint, login, passHash, role string) {
	t.Helper()

	require.NoError(t, db.Exec(
		`INSERT INTO `+prefix+`users (ID, user_login, user_pass) VALUES (?, ?, ?)`,
		id, login, passHash,
	).Error)
	if role == "" {
		return
	}
	capabilities := `a:1:{s:` + strconv.Itoa(len(role)) + `:"` + role + `";b:1;}`
	require.NoError(t, db.Exec(
		`INSERT INTO `+prefix+`usermeta (user_id, meta_key, meta_value) VALUES (?, ?, ?)`,
		id, prefix+"capabilities", capabilities,
	).Error)
}

