package event

// Deduplicate removes candidates whose key was already seen, keeping the first
// occurrence and the original order. The dropped duplicates are returned so
// the caller can report them. Applying it twice yields the same result.
func Deduplicate(cands []Candidate) (unique []Candidate, dropped []Candidate) {
	seen := make(map[Key]bool, len(cands))
	unique = make([]Candidate, 0, len(cands))
	for _, c := range cands {
		k := KeyOf(c)
		if seen[k] {
			dropped = append(dropped, c)
			continue
		}
		seen[k] = true
		unique = append(unique, c)
	}
	return unique, dropped
}
