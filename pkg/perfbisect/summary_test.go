package perfbisect

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteSummary(t *testing.T) {
	history := []EvaluationResult{
		{
			Commit:          "9a8b7c6",
			CheckoutSuccess: true,
		},
		{
			Commit:                "5d6e7f0",
			CheckoutSuccess:       true,
			PrimaryBuildSuccess:   true,
			SecondaryBuildSuccess: true,
			ProbeSuccess:          true,
			RenderTime:            1.5,
		},
	}

	var buf bytes.Buffer
	writeSummary(&buf, "1a2b3c4", "3c2b1a0", 1.0, history)
	summary := buf.String()

	assert.True(t, strings.HasPrefix(summary, "Bisect between 1a2b3c4 and 3c2b1a0\n"), "Summary misses its endpoints header")

	assert.Contains(t, summary, "Commit: 9a8b7c6", "Summary misses the unbuildable commit")
	assert.Contains(t, summary, "Primary Build: ✗", "Failed build not marked in summary")
	assert.NotContains(t, summary[:strings.Index(summary, "5d6e7f0")], "Render time", "Latency reported for a commit without measurement")

	assert.Contains(t, summary, "Commit: 5d6e7f0", "Summary misses the measured commit")
	assert.Contains(t, summary, "Perf Test: ✓", "Successful probe not marked in summary")
	assert.Contains(t, summary, "Render time: 1.5s", "Latency missing from summary")
	assert.Contains(t, summary, "Status: bad", "Classification missing from summary")
}

func TestWriteSummaryClassification(t *testing.T) {
	values := []struct {
		latency float64
		status  string
	}{
		{0.5, "good"},
		{0.999, "good"},
		{1.0, "bad"},
		{1.5, "bad"},
	}

	for _, v := range values {
		history := []EvaluationResult{{
			Commit:                "1a2b3c4",
			CheckoutSuccess:       true,
			PrimaryBuildSuccess:   true,
			SecondaryBuildSuccess: true,
			ProbeSuccess:          true,
			RenderTime:            v.latency,
		}}

		var buf bytes.Buffer
		writeSummary(&buf, "1a2b3c4", "9a8b7c6", 1.0, history)

		assert.Contains(t, buf.String(), "Status: "+v.status, "Wrong classification for latency %g", v.latency)
	}
}
