package perfbisect

import (
	"fmt"
	"io"
)

// logSummary emits the human-readable run summary through the session's
// logger.
func (s *Session) logSummary() {
	s.log.Info("Bisect Summary:")
	for _, result := range s.history {
		s.log.Infof("Commit: %s", result.Commit)
		s.log.Infof("Checkout: %s", checkmark(result.CheckoutSuccess))
		s.log.Infof("Primary Build: %s", checkmark(result.PrimaryBuildSuccess))
		s.log.Infof("Secondary Build: %s", checkmark(result.SecondaryBuildSuccess))
		s.log.Infof("Perf Test: %s", checkmark(result.ProbeSuccess))
		if result.ProbeSuccess {
			s.log.Infof("Render time: %gs", result.RenderTime)
			s.log.Infof("Status: %s", classify(result.RenderTime, s.config.Threshold))
		}
	}
}

// writeSummary writes the per-commit stage outcomes of a finished run to w.
func writeSummary(w io.Writer, goodHash, badHash string, threshold float64, history []EvaluationResult) {
	fmt.Fprintf(w, "Bisect between %s and %s\n", goodHash, badHash)
	for _, result := range history {
		fmt.Fprintf(w, "\nCommit: %s\n", result.Commit)
		fmt.Fprintf(w, "Checkout: %s\n", checkmark(result.CheckoutSuccess))
		fmt.Fprintf(w, "Primary Build: %s\n", checkmark(result.PrimaryBuildSuccess))
		fmt.Fprintf(w, "Secondary Build: %s\n", checkmark(result.SecondaryBuildSuccess))
		fmt.Fprintf(w, "Perf Test: %s\n", checkmark(result.ProbeSuccess))
		if result.ProbeSuccess {
			fmt.Fprintf(w, "Render time: %gs\n", result.RenderTime)
			fmt.Fprintf(w, "Status: %s\n", classify(result.RenderTime, threshold))
		}
	}
}

func checkmark(ok bool) string {
	if ok {
		return "✓"
	}
	return "✗"
}

func classify(latency, threshold float64) string {
	if latency < threshold {
		return "good"
	}
	return "bad"
}
