package auth

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"swapdesk-backend/internal/domain"
)

func setupAuthTest(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.ApplicationUser{}, &domain.UserProfile{}))

	profile := domain.UserProfile{UserType: "TRADER"}
	require.NoError(t, db.Create(&profile).Error)
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22again"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, db.Create(&domain.ApplicationUser{
		FirstName: "Tessa", LastName: "Jones", LoginID: "tjones",
		PasswordHash: string(hash), Active: true, ProfileID: &profile.ID,
	}).Error)
	return db
}

func TestLoginUser_Valid(t *testing.T) {
	db := setupAuthTest(t)

	u, err := LoginUser(db, LoginInput{LoginID: "tjones", Password: "hunter22again"})
	require.NoError(t, err)
	assert.Equal(t, "tjones", u.LoginID)

	shape := SessionShape(u)
	assert.Equal(t, "Tessa Jones", shape.Name)
	assert.Equal(t, "TRADER", shape.Role)
}

func TestLoginUser_NormalizesLoginID(t *testing.T) {
	db := setupAuthTest(t)
	u, err := LoginUser(db, LoginInput{LoginID: "TJones", Password: "hunter22again"})
	require.NoError(t, err)
	assert.Equal(t, "tjones", u.LoginID)
}

func TestLoginUser_WrongPassword(t *testing.T) {
	db := setupAuthTest(t)
	_, err := LoginUser(db, LoginInput{LoginID: "tjones", Password: "nope"})
	assert.Equal(t, ErrIncorrectPassword, err)
}

func TestLoginUser_UnknownLogin(t *testing.T) {
	db := setupAuthTest(t)
	_, err := LoginUser(db, LoginInput{LoginID: "nobody", Password: "whatever"})
	assert.Equal(t, ErrInvalidLogin, err)
}

func TestLoginUser_MissingInputs(t *testing.T) {
	db := setupAuthTest(t)
	_, err := LoginUser(db, LoginInput{})
	assert.Equal(t, ErrLoginPasswordRequired, err)
}

func TestLoginUser_InactiveUser(t *testing.T) {
	db := setupAuthTest(t)
	require.NoError(t, db.Model(&domain.ApplicationUser{}).
		Where("login_id = ?", "tjones").Update("active", false).Error)

	_, err := LoginUser(db, LoginInput{LoginID: "tjones", Password: "hunter22again"})
	assert.Equal(t, ErrUserInactive, err)
}

func TestVerifyUser_Nil(t *testing.T) {
	u, err := VerifyUser(nil)
	assert.Nil(t, u)
	assert.Equal(t, ErrNotAuthenticated, err)
}

func TestVerifyUser_NoLoginID(t *testing.T) {
	u, err := VerifyUser(map[string]interface{}{"name": "Test"})
	assert.Nil(t, u)
	assert.Equal(t, ErrNotAuthenticated, err)
}

func TestVerifyUser_Valid(t *testing.T) {
	u, err := VerifyUser(map[string]interface{}{
		"login_id": "tjones",
		"name":     "Tessa Jones",
		"role":     "TRADER",
	})
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "tjones", u.LoginID)
	assert.Equal(t, "Tessa Jones", u.Name)
	assert.Equal(t, "TRADER", u.Role)
}
