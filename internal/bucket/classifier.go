// Package bucket maps odds values onto the four fixed trust buckets.
package bucket

import "github.com/yourusername/hexabet/internal/models"

// Classify maps a positive odds value to its bucket key. The partition is
// closed on the upper boundary: odds of exactly 2, 5, or 10 belong to the
// lower bucket.
func Classify(odds float64) models.BucketKey {
	switch {
	case odds <= 2:
		return models.BucketLow
	case odds <= 5:
		return models.BucketMid
	case odds <= 10:
		return models.BucketHigh
	default:
		return models.BucketLongshot
	}
}
