package model

import "strings"

// ParseTags splits a comma-separated tag list, trimming blanks and dropping empties and duplicates.
// Order of first appearance is kept.
func ParseTags(raw string) []string {
	tags := make([]string, 0)
	seen := make(map[string]struct{})
	for _, part := range strings.Split(raw, ",") {
		t := strings.TrimSpace(part)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		tags = append(tags, t)
	}
	return tags
}
