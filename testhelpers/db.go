// Package testhelpers builds in-memory databases and fixtures for package tests.
package testhelpers

import (
	"instaclean-backend/config"
	"instaclean-backend/models"
	"instaclean-backend/utils"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewTestDB opens a migrated in-memory sqlite database private to t.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	utils.BcryptCost = bcrypt.MinCost

	db, err := gorm.Open(sqlite.Open(":memory:"), config.GormConfig())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Every connection to ":memory:" is a separate database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, models.AutoMigrate(db))
	return db
}

func CreateService(t *testing.T, db *gorm.DB, name string, basePrice float64, duration int) models.Service {
	t.Helper()
	service := models.Service{
		Name:        name,
		Description: name + " for homes and offices",
		BasePrice:   basePrice,
		PriceUnit:   "flat rate",
		Duration:    duration,
		IsActive:    true,
	}
	require.NoError(t, db.Create(&service).Error)
	return service
}

func CreatePropertyType(t *testing.T, db *gorm.DB, name string) models.PropertyType {
	t.Helper()
	propertyType := models.PropertyType{Name: name, IsActive: true}
	require.NoError(t, db.Create(&propertyType).Error)
	return propertyType
}

// CreateUser stores an account whose password is "password123".
func CreateUser(t *testing.T, db *gorm.DB, role models.Role) models.User {
	t.Helper()
	id := uuid.New()
	user := models.User{
		ID:       id,
		Name:     string(role) + " user",
		Email:    id.String()[:8] + "@example.com",
		Phone:    "0551234567",
		Password: "password123",
		Role:     role,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}
