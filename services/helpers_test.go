package services

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"paper-shelf/config"
	"paper-shelf/models"
	"paper-shelf/storage"
)

// newTestDB öffnet eine frische SQLite-Datenbank mit komplettem Schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Admin{}, &models.Researcher{},
		&models.Field{}, &models.Paper{}, &models.Author{}, &models.AuthorPaper{},
		&models.PaperKeyword{}, &models.Download{}, &models.Review{}, &models.Search{},
		&models.ChatSession{}, &models.ChatMessage{},
	))
	return db
}

func newTestFiles(t *testing.T) *storage.FileStore {
	t.Helper()
	files, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	return files
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:   "test-secret",
		TokenTTL:    24 * time.Hour,
		MaxUploadMB: 50,
	}
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}

// createField legt ein Feld an und gibt dessen ID zurück.
func createField(t *testing.T, db *gorm.DB, name string) uint {
	t.Helper()
	field := models.Field{FieldName: name}
	require.NoError(t, db.Create(&field).Error)
	return field.ID
}

// createAccount legt über den IdentityService ein Konto mit Rolle an.
func createAccount(t *testing.T, identity *IdentityService, name, email, role string) *models.User {
	t.Helper()
	user, err := identity.Register(RegisterInput{
		Name:     name,
		Email:    email,
		Password: "secret123",
		Role:     role,
	})
	require.NoError(t, err)
	return user
}
