package utils

import (
	"regexp"
	"strings"
)

// FormatPhoneNumber formats a phone number to a standard format
// Removes all non-digit characters and ensures it starts with country code
func FormatPhoneNumber(phoneNumber string) string {
	// Remove all non-digit characters
	re := regexp.MustCompile(`\D`)
	digits := re.ReplaceAllString(phoneNumber, "")

	// If it doesn't start with a country code, assume Czech Republic (+420)
	if len(digits) > 0 && !strings.HasPrefix(digits, "420") && !strings.HasPrefix(digits, "421") {
		// Remove leading zeros
		digits = strings.TrimLeft(digits, "0")
		// Add Czech country code
		digits = "420" + digits
	}

	return digits
}

// ValidatePhoneNumber validates if a phone number is in correct format
func ValidatePhoneNumber(phoneNumber string) bool {
	// Remove all non-digit characters
	re := regexp.MustCompile(`\D`)
	cleaned := re.ReplaceAllString(phoneNumber, "")

	// Strip the Czech or Slovak country code when present
	if strings.HasPrefix(cleaned, "420") || strings.HasPrefix(cleaned, "421") {
		cleaned = cleaned[3:]
	}

	// National numbers are exactly 9 digits
	if len(cleaned) != 9 {
		return false
	}

	matched, _ := regexp.MatchString(`^\d+$`, cleaned)
	return matched
}

// NormalizePhoneNumber normalizes phone number for database storage
func NormalizePhoneNumber(phoneNumber string) string {
	return FormatPhoneNumber(phoneNumber)
}

// DisplayPhoneNumber formats phone number for display
func DisplayPhoneNumber(phoneNumber string) string {
	formatted := FormatPhoneNumber(phoneNumber)
	if len(formatted) == 12 {
		// Format as +420 XXX XXX XXX
		return "+" + formatted[:3] + " " + formatted[3:6] + " " + formatted[6:9] + " " + formatted[9:12]
	}
	return phoneNumber
}
