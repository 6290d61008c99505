package auth

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"swapdesk-backend/internal/domain"
)

// LoginInput for login request body.
type LoginInput struct {
	LoginID  string `json:"loginId"`
	Password string `json:"password"`
}

// SessionUserShape is the object stored in session and returned by /me.
type SessionUserShape struct {
	LoginID string `json:"login_id"`
	Name    string `json:"name"`
	Role    string `json:"role"`
}

// LoginUser finds a user by login id and verifies the password. Returns the
// user for session creation or an error.
func LoginUser(db *gorm.DB, input LoginInput) (*domain.ApplicationUser, error) {
	if input.LoginID == "" || input.Password == "" {
		return nil, ErrLoginPasswordRequired
	}
	var u domain.ApplicationUser
	err := db.Preload("Profile").
		Where("login_id = ?", strings.ToLower(input.LoginID)).
		First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidLogin
		}
		return nil, err
	}
	if !u.Active {
		return nil, ErrUserInactive
	}
	if u.PasswordHash == "" {
		return nil, ErrInvalidLogin
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrIncorrectPassword
	}
	return &u, nil
}

// SessionShape builds the session object for a logged-in user.
func SessionShape(u *domain.ApplicationUser) SessionUserShape {
	shape := SessionUserShape{
		LoginID: u.LoginID,
		Name:    strings.TrimSpace(u.FirstName + " " + u.LastName),
	}
	if u.Profile != nil {
		shape.Role = u.Profile.UserType
	}
	return shape
}

// VerifyUser validates the session user and returns the shape for /me.
func VerifyUser(sessionUser interface{}) (*SessionUserShape, error) {
	if sessionUser == nil {
		return nil, ErrNotAuthenticated
	}
	m, ok := sessionUser.(map[string]interface{})
	if !ok {
		return nil, ErrNotAuthenticated
	}
	loginID, _ := m["login_id"].(string)
	if loginID == "" {
		return nil, ErrNotAuthenticated
	}
	return &SessionUserShape{
		LoginID: loginID,
		Name:    str(m["name"]),
		Role:    str(m["role"]),
	}, nil
}

func str(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
