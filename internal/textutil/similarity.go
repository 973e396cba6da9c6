package textutil

// CosineSimilarity computes the cosine similarity between two fingerprints.
// Returns 0 if either fingerprint is nil or has zero norm.
func CosineSimilarity(a, b *Fingerprint) float64 {
	if a == nil || b == nil || a.norm == 0 || b.norm == 0 {
		return 0
	}
	var dot float64
	for gram, count := range a.grams {
		if other, ok := b.grams[gram]; ok {
			dot += count * other
		}
	}
	if dot == 0 {
		return 0
	}
	return dot / (a.norm * b.norm)
}

// Closest returns the candidate most similar to query when its similarity
// reaches threshold. Earlier candidates win ties.
func Closest(query string, candidates []string, threshold float64) (string, bool) {
	q := NewFingerprint(query)
	if q == nil {
		return "", false
	}
	best, bestScore := "", 0.0
	for _, c := range candidates {
		if score := CosineSimilarity(q, NewFingerprint(c)); score > bestScore {
			best, bestScore = c, score
		}
	}
	if best == "" || bestScore < threshold {
		return "", false
	}
	return best, true
}
