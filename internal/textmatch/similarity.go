package textmatch

// returns |a ∩ b| / |a ∪ b|, or 0 when both sets are empty
func Jaccard(a, b Tokens) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}

	shared := 0
	for token := range small {
		if large.Has(token) {
			shared++
		}
	}

	union := len(a) + len(b) - shared
	return float64(shared) / float64(union)
}
