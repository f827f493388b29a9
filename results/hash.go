// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package results

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/danielhkuo/pollview/models"
)

// InputsHash fingerprints an upstream payload. Equal payloads hash equally
// regardless of tally key order, so a changed hash means the results changed.
func InputsHash(res models.PollResults) string {
	// map keys are marshalled in sorted order
	data, err := json.Marshal(struct {
		Options []string         `json:"options"`
		Title   string           `json:"title"`
		Votes   models.VoteTally `json:"votes"`
		Total   int              `json:"total"`
	}{
		Options: res.Poll.Options,
		Title:   res.Poll.Title,
		Votes:   res.Votes,
		Total:   res.Total,
	})
	if err != nil {
		return ""
	}

	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
