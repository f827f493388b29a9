// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package results

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/danielhkuo/pollview/models"
)

func TestInputsHash(t *testing.T) {
	base := models.PollResults{
		Poll:  testPoll("Yes", "No"),
		Votes: models.VoteTally{"Yes": 3, "No": 1},
		Total: 4,
	}

	h := InputsHash(base)
	assert.Len(t, h, 64)
	assert.Equal(t, h, InputsHash(base))

	reordered := base
	reordered.Votes = models.VoteTally{"No": 1, "Yes": 3}
	assert.Equal(t, h, InputsHash(reordered))

	changed := base
	changed.Votes = models.VoteTally{"Yes": 4, "No": 1}
	changed.Total = 5
	assert.NotEqual(t, h, InputsHash(changed))

	retitled := base
	retitled.Poll.Title = "Dinner?"
	assert.NotEqual(t, h, InputsHash(retitled))
}
