package vectorstore

import "math"

// cosineSimilarity returns dot(a,b) / (‖a‖·‖b‖). Callers must check the
// dimensions match before calling; mismatches are handled (as similarity 0)
// one level up so they can be logged with context.
func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
