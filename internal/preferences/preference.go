package preferences

import (
	"strings"
	"time"
)

// Preference is a user's latest destination, interests and food selection.
type Preference struct {
	UserID      uint      `json:"userId"`
	Destination string    `json:"destination"`
	Interests   []string  `json:"interests"`
	Food        []string  `json:"food"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

const tagSeparator = ", "

// JoinTags renders tags in the legacy comma+space delimited form.
func JoinTags(tags []string) string {
	return strings.Join(tags, tagSeparator)
}

// UniqueTags drops blank and repeated tags, keeping first-seen order.
func UniqueTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// Has reports whether tag was selected among tags.
func Has(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
