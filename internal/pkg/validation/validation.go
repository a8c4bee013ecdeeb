package validation

import (
	"regexp"
	"unicode"

	"lifelink-backend/internal/models"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Fullname: letters, spaces, hyphens, apostrophes only.
var fullnameRe = regexp.MustCompile(`^[A-Za-z\s\-']+$`)

var bloodTypes = map[string]bool{
	"A+": true, "A-": true,
	"B+": true, "B-": true,
	"AB+": true, "AB-": true,
	"O+": true, "O-": true,
}

var urgencies = map[string]bool{
	models.UrgencyLow:      true,
	models.UrgencyNormal:   true,
	models.UrgencyUrgent:   true,
	models.UrgencyCritical: true,
}

func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

// IsValidPassword requires at least 8 characters with a letter, a number and
// a special character.
func IsValidPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	hasLetter, hasDigit, hasSpecial := false, false, false
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}
	return hasLetter && hasDigit && hasSpecial
}

func IsValidFullname(fullname string) bool {
	return fullname != "" && fullnameRe.MatchString(fullname)
}

func IsValidBloodType(bt string) bool {
	return bloodTypes[bt]
}

func IsValidUrgency(u string) bool {
	return urgencies[u]
}

// IsValidMessageText enforces the 1..1000 char bound on message bodies.
func IsValidMessageText(text string) bool {
	n := len([]rune(text))
	return n >= 1 && n <= models.MaxMessageLength
}
