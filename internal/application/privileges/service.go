// Package privileges answers "may this user perform this operation".
// It fails closed on every lookup miss and never returns an error to
// callers; a false result is translated into an authorization failure
// by the caller.
package privileges

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"swapdesk-backend/internal/constants"
	"swapdesk-backend/internal/domain"
)

type Service struct {
	DB *gorm.DB
}

// Authorize reports whether the user identified by loginID holds the named
// operation. Operation names are uppercase-normalized. A SUPERUSER profile
// is granted everything unconditionally. Every denial path is logged with
// the acting user and requested operation for audit.
func (s *Service) Authorize(ctx context.Context, loginID, operation string) bool {
	if loginID == "" || operation == "" {
		log.Warn().Str("login_id", loginID).Str("operation", operation).Msg("Privilege check with missing login or operation")
		return false
	}
	operation = strings.ToUpper(operation)

	var user domain.ApplicationUser
	if err := s.DB.WithContext(ctx).Where("login_id = ?", loginID).First(&user).Error; err != nil {
		log.Warn().Str("login_id", loginID).Str("operation", operation).Msg("Privilege denied: user not found")
		return false
	}
	if !user.Active {
		log.Warn().Str("login_id", loginID).Str("operation", operation).Msg("Privilege denied: user inactive")
		return false
	}

	if user.ProfileID == nil {
		log.Warn().Str("login_id", loginID).Str("operation", operation).Msg("Privilege denied: no profile assigned")
		return false
	}
	var profile domain.UserProfile
	if err := s.DB.WithContext(ctx).First(&profile, *user.ProfileID).Error; err != nil {
		log.Warn().Str("login_id", loginID).Str("operation", operation).Msg("Privilege denied: profile not found")
		return false
	}

	if strings.ToUpper(profile.UserType) == constants.RoleSuperuser {
		log.Info().Str("login_id", loginID).Str("operation", operation).Msg("Superuser access granted")
		return true
	}

	var names []string
	err := s.DB.WithContext(ctx).
		Model(&domain.Privilege{}).
		Joins("JOIN user_privileges ON user_privileges.privilege_id = privileges.id").
		Where("user_privileges.user_id = ?", user.ID).
		Pluck("privileges.name", &names).Error
	if err != nil || len(names) == 0 {
		log.Warn().Str("login_id", loginID).Str("operation", operation).Msg("Privilege denied: no privileges assigned")
		return false
	}

	for _, name := range names {
		if strings.ToUpper(name) == operation {
			return true
		}
	}
	log.Warn().Str("login_id", loginID).Str("operation", operation).Str("role", profile.UserType).Msg("Privilege denied: operation not granted")
	return false
}
