package perfbisect

import (
	"github.com/sirupsen/logrus"
)

// A Verdict is the classification of a single evaluated commit.
type Verdict int

const (
	// VerdictInconclusive means a stage failed and the commit could not be
	// classified. It leads to the commit being skipped during bisection.
	VerdictInconclusive Verdict = iota
	// VerdictGood means the measured latency is below the threshold.
	VerdictGood
	// VerdictBad means the measured latency is at or above the threshold.
	VerdictBad
)

func (v Verdict) String() string {
	switch v {
	case VerdictGood:
		return "good"
	case VerdictBad:
		return "bad"
	default:
		return "inconclusive"
	}
}

// An EvaluationResult records the outcome of every stage for one evaluated
// commit. RenderTime only carries a measurement if ProbeSuccess is true; a
// failed stage leaves all later flags false.
type EvaluationResult struct {
	Commit string // The hash of the evaluated commit

	CheckoutSuccess       bool
	PrimaryBuildSuccess   bool
	SecondaryBuildSuccess bool
	ProbeSuccess          bool

	RenderTime float64 // The measured latency in seconds, valid iff ProbeSuccess
}

// An Evaluator runs the full per-commit pipeline of checkout, both builds and
// the probe, and classifies the outcome against the latency threshold.
type Evaluator struct {
	repo *Repo

	primaryBuild   *BuildDriver
	secondaryBuild *BuildDriver

	probe *Probe

	threshold float64

	log *logrus.Entry
}

// Evaluate runs the pipeline for commit, short-circuiting on the first failed
// stage. It never panics outward: an unexpected fault in any stage classifies
// the commit as inconclusive, so a single broken candidate cannot take down
// the surrounding bisection.
func (e *Evaluator) Evaluate(commit string) (verdict Verdict, result EvaluationResult) {
	result = EvaluationResult{Commit: commit}

	defer func() {
		if fault := recover(); fault != nil {
			e.log.Errorf("Unexpected error evaluating commit %s: %v", commit, fault)
			verdict = VerdictInconclusive
		}
	}()

	if result.CheckoutSuccess = e.repo.Checkout(commit); !result.CheckoutSuccess {
		e.log.Warnf("Skipping commit %s due to checkout failure", commit)
		return VerdictInconclusive, result
	}

	if result.PrimaryBuildSuccess = e.primaryBuild.Build(commit); !result.PrimaryBuildSuccess {
		e.log.Warnf("Skipping commit %s due to %s build failure", commit, e.primaryBuild.name)
		return VerdictInconclusive, result
	}

	if result.SecondaryBuildSuccess = e.secondaryBuild.Build(commit); !result.SecondaryBuildSuccess {
		e.log.Warnf("Skipping commit %s due to %s build failure", commit, e.secondaryBuild.name)
		return VerdictInconclusive, result
	}

	var latency float64
	if latency, result.ProbeSuccess = e.probe.Measure(commit); !result.ProbeSuccess {
		e.log.Warnf("Skipping commit %s due to performance test failure", commit)
		return VerdictInconclusive, result
	}
	result.RenderTime = latency

	e.log.Infof("Commit %s: %s time = %gs", commit, e.probe.marker, latency)
	if latency < e.threshold {
		return VerdictGood, result
	}
	return VerdictBad, result
}
