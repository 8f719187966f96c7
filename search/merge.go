package search

// Merge combines suggestion lists from multiple sub-queries (e.g. the direct
// match and a meaning-based fallback) into one deduplicated list.
//
// Entries are keyed by word + ":" + reading. The first occurrence of a key
// fixes the entry's position; later occurrences union their meaning and
// English sets into it without moving it. Pure, no I/O.
func Merge(lists ...[]Suggestion) []Suggestion {
	var total int
	for _, l := range lists {
		total += len(l)
	}

	index := make(map[string]int, total)
	out := make([]Suggestion, 0, total)

	for _, list := range lists {
		for _, s := range list {
			k := s.Word + ":" + s.Reading
			i, ok := index[k]
			if !ok {
				index[k] = len(out)
				out = append(out, Suggestion{
					Word:     s.Word,
					Reading:  s.Reading,
					Meanings: unionStrings(nil, s.Meanings),
					English:  unionStrings(nil, s.English),
				})
				continue
			}
			out[i].Meanings = unionStrings(out[i].Meanings, s.Meanings)
			out[i].English = unionStrings(out[i].English, s.English)
		}
	}
	return out
}

// unionStrings appends the members of add that dst does not already contain,
// preserving order. Gloss sets are small, so the linear scan beats building
// a map per entry.
func unionStrings(dst, add []string) []string {
	for _, s := range add {
		found := false
		for _, have := range dst {
			if have == s {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, s)
		}
	}
	return dst
}
