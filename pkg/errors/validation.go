package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateNodeID validates a node identifier for safety and correctness.
//
// The validation rules are intentionally conservative:
//   - No empty ids
//   - No control characters or null bytes
//   - Maximum length of 256 characters
//
// Device-specific id formats (MAC addresses, synthesized ids) are accepted
// as long as they satisfy these rules.
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "node id cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidInput, "node id too long (max 256 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "node id contains invalid control characters")
		}
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

// macAddressRegex matches colon- or hyphen-separated hardware addresses.
var macAddressRegex = regexp.MustCompile(`^([0-9A-Fa-f]{2}[:-]){5}[0-9A-Fa-f]{2}$`)

// ValidateMACAddress validates a hardware address string.
func ValidateMACAddress(mac string) error {
	if err := ValidateNodeID(mac); err != nil {
		return err
	}

	if !macAddressRegex.MatchString(mac) {
		return New(ErrCodeInvalidInput, "invalid hardware address: %q", mac)
	}

	return nil
}

// ValidateSaveName validates a layout save name for safety.
// It ensures the name is a simple identifier without path components.
func ValidateSaveName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "save name cannot be empty")
	}

	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidInput, "save name cannot contain path separators")
	}

	if strings.HasPrefix(name, ".") {
		return New(ErrCodeInvalidInput, "save name cannot be a hidden file")
	}

	return nil
}
