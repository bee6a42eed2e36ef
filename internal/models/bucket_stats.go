package models

// BucketKey identifies one of the four fixed odds-range partitions.
type BucketKey string

const (
	BucketLow     BucketKey = "1-2"
	BucketMid     BucketKey = "3-5"
	BucketHigh    BucketKey = "6-10"
	BucketLongshot BucketKey = "11-30"
)

// BucketKeys lists the partitions in ascending odds order.
var BucketKeys = [4]BucketKey{BucketLow, BucketMid, BucketHigh, BucketLongshot}

// RecentWindowSize caps the per-bucket outcome sequence used for the
// recent-window win rate and the variance score.
const RecentWindowSize = 20

// BucketStats holds aggregate statistics for a single odds bucket. All
// fields are derived from the ledger and rebuilt from scratch; none are
// ever hand-edited.
type BucketStats struct {
	Key            BucketKey `json:"key"`
	Total          int       `json:"total"`
	Wins           int       `json:"wins"`
	Top3           int       `json:"top3"`
	ImpliedSum     float64   `json:"implied_sum"`
	ImpliedMean    float64   `json:"implied_mean"`
	WinRate        float64   `json:"win_rate"`
	ROI            float64   `json:"roi"`
	VarianceScore  float64   `json:"variance_score"`
	RecentOutcomes []int     `json:"recent_outcomes"`
	RecentWinRate  float64   `json:"recent_win_rate"`
}

// BucketStatsSet is the complete derived statistics record. The bucket set
// is closed, so this is a fixed struct with one field per partition rather
// than a map keyed by range.
type BucketStatsSet struct {
	Low      BucketStats `json:"low"`
	Mid      BucketStats `json:"mid"`
	High     BucketStats `json:"high"`
	Longshot BucketStats `json:"longshot"`
}

// NewBucketStatsSet returns an empty set with keys populated.
func NewBucketStatsSet() BucketStatsSet {
	return BucketStatsSet{
		Low:      BucketStats{Key: BucketLow},
		Mid:      BucketStats{Key: BucketMid},
		High:     BucketStats{Key: BucketHigh},
		Longshot: BucketStats{Key: BucketLongshot},
	}
}

// Get returns the stats for the given key. Unknown keys return the
// longshot bucket, matching the classifier's catch-all range.
func (s *BucketStatsSet) Get(key BucketKey) *BucketStats {
	switch key {
	case BucketLow:
		return &s.Low
	case BucketMid:
		return &s.Mid
	case BucketHigh:
		return &s.High
	default:
		return &s.Longshot
	}
}

// All returns the four buckets in ascending odds order.
func (s *BucketStatsSet) All() [4]*BucketStats {
	return [4]*BucketStats{&s.Low, &s.Mid, &s.High, &s.Longshot}
}
