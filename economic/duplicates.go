package economic

import "strings"

// duplicateKeyLength is how much of a description takes part in duplicate
// detection. The backend's day listing is searched for this prefix as plain
// text, so two entries sharing their first 20 characters collide, and an
// unlucky substring elsewhere in the page counts as a hit. Accepted
// imprecision for a daily batch job.
const duplicateKeyLength = 20

// DescriptionKey truncates a description to the prefix used for duplicate
// comparison.
func DescriptionKey(description string) string {
	runes := []rune(description)
	if len(runes) > duplicateKeyLength {
		return string(runes[:duplicateKeyLength])
	}
	return description
}

// IsDuplicate reports whether the entry description's key already appears in
// the registered-entries blob for the day.
func IsDuplicate(registered, description string) bool {
	key := DescriptionKey(description)
	if key == "" || registered == "" {
		return false
	}
	return strings.Contains(registered, key)
}
