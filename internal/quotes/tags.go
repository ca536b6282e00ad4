package quotes

import "strings"

const tagSeparator = ", "

// MergeTags appends additions to a Shopify comma-separated tag string,
// skipping blanks and anything already present. Existing order is kept so
// the write-back never reshuffles tags another system relies on.
func MergeTags(existing string, additions ...string) string {
	merged := make([]string, 0, len(additions)+4)
	seen := make(map[string]struct{})

	appendTag := func(tag string) {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			return
		}
		key := strings.ToLower(tag)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		merged = append(merged, tag)
	}

	for _, tag := range strings.Split(existing, ",") {
		appendTag(tag)
	}
	for _, tag := range additions {
		appendTag(tag)
	}

	return strings.Join(merged, tagSeparator)
}
