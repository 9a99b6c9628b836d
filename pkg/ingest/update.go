package ingest

import (
	"encoding/json"
	"fmt"
)

// Update is one safety score revision for a single road segment, as
// published by the flood prediction pipeline.
type Update struct {
	SegmentID string  `json:"segment_id"`
	ProbSafe  float64 `json:"pred_prob_safe"`
}

// ParseUpdate decodes and validates an update payload.
func ParseUpdate(data []byte) (Update, error) {
	var u Update
	if err := json.Unmarshal(data, &u); err != nil {
		return Update{}, fmt.Errorf("decode safety update: %w", err)
	}
	if u.SegmentID == "" {
		return Update{}, fmt.Errorf("safety update missing segment_id")
	}
	if u.ProbSafe < 0 || u.ProbSafe > 1 {
		return Update{}, fmt.Errorf("safety update for %s: probability %v outside [0,1]", u.SegmentID, u.ProbSafe)
	}
	return u, nil
}
