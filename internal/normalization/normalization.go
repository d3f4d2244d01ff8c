package normalization

import "strings"

func ParseInputString(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}

// ParseName trims but preserves case; used for display names.
func ParseName(input string) string {
	return strings.TrimSpace(input)
}

func ParseInputStringPtr(input *string) *string {
	if input == nil {
		return nil
	}
	normalized := strings.ToLower(strings.TrimSpace(*input))
	return &normalized
}
