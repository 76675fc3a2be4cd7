// Package testsupport provides shared helpers for package tests: in-memory
// databases with the full schema, a cartridge-compatible DB manager, and
// fixture builders for catalog entries, activities and leads.
package testsupport

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/karloscodes/cartridge"
	ctestsupport "github.com/karloscodes/cartridge/testsupport"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"leadpulse/internal/activities"
	"leadpulse/internal/catalog"
	"leadpulse/internal/config"
	"leadpulse/internal/leads"
	"leadpulse/internal/users"
)

// testDBCache caches test databases by test name to allow multiple calls
// within the same test to share the same database
var testDBCache = make(map[string]*gorm.DB)
var testDBCacheMu sync.Mutex

// TestDBManager wraps cartridge's TestDBManager with leadpulse's interface
type TestDBManager struct {
	*ctestsupport.TestDBManager
}

// NewTestDBManager creates a TestDBManager that implements cartridge.DBManager
func NewTestDBManager(db *gorm.DB) *TestDBManager {
	return &TestDBManager{
		TestDBManager: ctestsupport.NewTestDBManager(db),
	}
}

// Ensure TestDBManager implements cartridge.DBManager
var _ cartridge.DBManager = (*TestDBManager)(nil)

// allModels returns all leadpulse models for migration
func allModels() []any {
	return []any{
		&catalog.Category{},
		&catalog.Service{},
		&activities.Activity{},
		&leads.Lead{},
		&users.User{},
	}
}

// SetupTestDB creates a test database with all leadpulse models migrated.
// Uses a named in-memory database with cache=shared to allow multiple
// connections to share the same database within a test. Caches the database
// by test name so multiple calls within the same test return the same one.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	testName := t.Name()

	// Use root test name for caching to handle closure issues where
	// setup functions capture the outer t while t.Run has subtest t
	rootName := testName
	if idx := strings.Index(testName, "/"); idx > 0 {
		rootName = testName[:idx]
	}

	testDBCacheMu.Lock()
	if db, exists := testDBCache[rootName]; exists {
		testDBCacheMu.Unlock()
		return db
	}
	testDBCacheMu.Unlock()

	// Create a unique named in-memory database for each test
	// cache=shared allows multiple connections to the same database
	sanitizedName := strings.ReplaceAll(rootName, "/", "_")
	dsn := fmt.Sprintf("file:test_%s_%d?mode=memory&cache=shared", sanitizedName, time.Now().UnixNano())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("testsupport: failed to open test database: %v", err)
	}

	db.Exec("PRAGMA foreign_keys = ON")
	db.Exec("PRAGMA journal_mode = WAL")

	if err := db.AutoMigrate(allModels()...); err != nil {
		t.Fatalf("testsupport: failed to migrate models: %v", err)
	}

	testDBCacheMu.Lock()
	testDBCache[rootName] = db
	testDBCacheMu.Unlock()

	t.Cleanup(func() {
		testDBCacheMu.Lock()
		delete(testDBCache, rootName)
		testDBCacheMu.Unlock()
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	return db
}

// SetupTestDBManager creates a test DB manager using cartridge's testsupport
func SetupTestDBManager(t *testing.T) (*TestDBManager, *slog.Logger) {
	cfg := config.GetConfig()

	// SAFETY CHECK: Ensure we're in test environment
	if cfg.Environment != config.Test {
		t.Fatalf("CRITICAL: Tests must run in test environment! Current: %s. Set LEADPULSE_ENV=test", cfg.Environment)
	}

	db := SetupTestDB(t)
	logger := GetLogger()
	dbManager := NewTestDBManager(db)

	return dbManager, logger
}

// CleanAllTables clears all non-system tables in the database
func CleanAllTables(db *gorm.DB) {
	var tableNames []string
	db.Raw("SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%'").Scan(&tableNames)

	var tables []string
	for _, name := range tableNames {
		if name != "migrations" && name != "schema_migrations" {
			tables = append(tables, name)
		}
	}

	if len(tables) == 0 {
		return
	}

	db.Exec("PRAGMA foreign_keys = OFF")
	defer db.Exec("PRAGMA foreign_keys = ON")

	db.Transaction(func(tx *gorm.DB) error {
		for _, table := range tables {
			tx.Exec("DELETE FROM " + table)
			tx.Exec("DELETE FROM sqlite_sequence WHERE name=?", table)
		}
		return nil
	})
}

// GetLogger returns a test logger
func GetLogger() *slog.Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})
	return slog.New(handler)
}

// CreateTestCategory creates a category, reusing one with the same slug.
func CreateTestCategory(t *testing.T, db *gorm.DB, slug, name string) catalog.Category {
	t.Helper()

	var category catalog.Category
	if db.Where("slug = ?", slug).First(&category).Error == nil {
		return category
	}

	category = catalog.Category{Slug: slug, Name: name, CreatedAt: time.Now().UTC()}
	require.NoError(t, db.Create(&category).Error)
	return category
}

// CreateTestService creates a service under a fresh or existing category.
func CreateTestService(t *testing.T, db *gorm.DB, slug, name string) catalog.Service {
	t.Helper()

	var service catalog.Service
	if db.Where("slug = ?", slug).First(&service).Error == nil {
		return service
	}

	category := CreateTestCategory(t, db, "test-category", "Test Category")
	service = catalog.Service{
		CategoryID: category.ID,
		Slug:       slug,
		Name:       name,
		CreatedAt:  time.Now().UTC(),
	}
	require.NoError(t, db.Create(&service).Error)
	return service
}

// CreateGuestActivityInput builds a guest activity submission for tests.
func CreateGuestActivityInput(sessionID, activityType string, serviceID *uint, createdAt time.Time) *activities.RecordActivityInput {
	return &activities.RecordActivityInput{
		ActorSessionID: sessionID,
		ActivityType:   activityType,
		ServiceID:      serviceID,
		IPAddress:      "203.0.113.7",
		UserAgent:      "Mozilla/5.0 Test Browser",
		CreatedAt:      createdAt,
	}
}

// CreateRegisteredActivityInput builds a registered-user activity submission for tests.
func CreateRegisteredActivityInput(userID uint, activityType string, serviceID *uint, createdAt time.Time) *activities.RecordActivityInput {
	return &activities.RecordActivityInput{
		ActorUserID:  &userID,
		ActivityType: activityType,
		ServiceID:    serviceID,
		IPAddress:    "203.0.113.7",
		UserAgent:    "Mozilla/5.0 Test Browser",
		CreatedAt:    createdAt,
	}
}

// CreateTestLeadInput builds a valid guest lead submission for tests.
func CreateTestLeadInput(sessionID string, serviceID uint) *leads.SubmitLeadInput {
	return &leads.SubmitLeadInput{
		ActorSessionID: sessionID,
		Name:           "Jamie Doe",
		Email:          "jamie@example.com",
		Phone:          "+1 (555) 123-4567",
		ServiceID:      serviceID,
		Message:        "Looking for a quote.",
	}
}

// CreateTestUser creates a test user in the database
func CreateTestUser(db *gorm.DB, email, password string) users.User {
	var user users.User
	if db.Where("email = ?", email).First(&user).Error == nil {
		return user
	}

	user = users.User{
		Email:             email,
		EncryptedPassword: password,
		CreatedAt:         time.Now().UTC(),
		UpdatedAt:         time.Now().UTC(),
	}
	db.Create(&user)
	return user
}

// CreateTestUserForAuth creates a user with properly hashed password for auth testing
func CreateTestUserForAuth(t *testing.T, db *gorm.DB, email, password string) *users.User {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	require.NoError(t, err)

	user := &users.User{
		Email:             email,
		EncryptedPassword: string(hashedPassword),
		CreatedAt:         time.Now().UTC(),
		UpdatedAt:         time.Now().UTC(),
	}
	require.NoError(t, db.Create(user).Error)
	return user
}
