package repo

import (
	"log"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// InitSqlite opens an in-memory SQLite database. The test suites use it
// so the quota and share invariants can be exercised without an
// external MySQL server. A single connection serializes writes, which
// SQLite requires; the atomic UPDATE guards stay the source of truth.
func InitSqlite() {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		log.Fatal("init sqlite fail", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("get sql db fail", err)
	}
	sqlDB.SetMaxOpenConns(1)

	autoMigrateAll(db)
	Db = db
}
