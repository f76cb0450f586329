package service

import (
	"regexp"
	"strings"

	"github.com/cyberkid042/auth-identity-service/internal/credential"
	"github.com/cyberkid042/auth-identity-service/internal/model"
	"github.com/cyberkid042/auth-identity-service/pkg/apierror"
)

const maxEmailLength = 255

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,32}$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

const (
	msgInvalidUsername = "Username must be 3-32 characters of letters, digits or underscores"
	msgInvalidEmail    = "Invalid email address"
	msgPasswordTooLong = "Password must be at most 72 bytes"
	msgInvalidRole     = "Role must be one of: user, admin"
)

func validateUsername(username string) error {
	if !usernamePattern.MatchString(username) {
		return apierror.Validation(apierror.CodeValidation, msgInvalidUsername)
	}
	return nil
}

func validateEmail(email string) error {
	if len(email) > maxEmailLength || !emailPattern.MatchString(email) {
		return apierror.Validation(apierror.CodeValidation, msgInvalidEmail)
	}
	return nil
}

func validatePasswordLength(password string) error {
	if len(password) > credential.MaxPasswordBytes {
		return apierror.Validation(apierror.CodeValidation, msgPasswordTooLong)
	}
	return nil
}

func validateRole(role string) error {
	if role != model.RoleUser && role != model.RoleAdmin {
		return apierror.Validation(apierror.CodeValidation, msgInvalidRole)
	}
	return nil
}

// emailDomain is safe to log; the local part is not.
func emailDomain(email string) string {
	if i := strings.LastIndexByte(email, '@'); i >= 0 {
		return email[i+1:]
	}
	return ""
}
