// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"microblog/internal/cache"
	"microblog/internal/database"
	"microblog/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var dbSeq atomic.Int64

// NewSQLiteDB returns a private in-memory SQLite database with the full schema applied.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := database.SQLiteDSN(fmt.Sprintf("%s_%d?mode=memory&cache=shared", name, dbSeq.Add(1)))
	db, err := gorm.Open(sqlite.Open(dsn), database.GormConfig())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

// NewRedis starts a miniredis server, installs it as the package cache client and returns both.
func NewRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache.SetClient(rdb)
	t.Cleanup(func() {
		cache.SetClient(nil)
		_ = rdb.Close()
	})
	return mr, rdb
}

// CreateUser inserts a user with a throwaway password hash.
func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	u := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		LastSeen:     time.Now().UTC(),
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// CreatePost inserts a post by author at the given time.
func CreatePost(t *testing.T, db *gorm.DB, author *models.User, body string, at time.Time) *models.Post {
	t.Helper()

	p := &models.Post{Body: body, UserID: author.ID, Timestamp: at.UTC()}
	require.NoError(t, db.Create(p).Error)
	return p
}

// Follow inserts the edge follower -> followed.
func Follow(t *testing.T, db *gorm.DB, follower, followed *models.User) {
	t.Helper()
	require.NoError(t, db.Create(&models.Follow{FollowerID: follower.ID, FollowedID: followed.ID}).Error)
}
