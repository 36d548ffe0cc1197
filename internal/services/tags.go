package services

// ToggleQueryTag implements single-cardinality tag filtering on the search
// query: tapping the active tag clears the query, tapping any other tag
// replaces the query with that tag. Tags never accumulate here.
func ToggleQueryTag(query, tag string) string {
	if query == tag {
		return ""
	}
	return tag
}

// ToggleTagSet implements multi-cardinality tag selection for form inputs:
// a present tag is removed, an absent tag is appended. The relative order of
// the remaining tags is preserved and the input slice is never mutated.
func ToggleTagSet(tags []string, tag string) []string {
	out := make([]string, 0, len(tags)+1)
	found := false
	for _, t := range tags {
		if t == tag {
			found = true
			continue
		}
		out = append(out, t)
	}
	if !found {
		out = append(out, tag)
	}
	return out
}
