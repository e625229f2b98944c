package perfbisect

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// A Probe runs the external measurement program and extracts the render
// latency from its textual output.
type Probe struct {
	dir     string
	command string
	marker  string

	pattern *regexp.Regexp

	runner commandRunner

	log *logrus.Entry
}

func newProbe(config ProbeConfig, runner commandRunner, log *logrus.Entry) *Probe {
	return &Probe{
		dir:     config.Dir,
		command: config.Command,
		marker:  config.Marker,

		pattern: regexp.MustCompile(regexp.QuoteMeta(config.Marker) + `: (\d+\.\d+)s`),

		runner: runner,

		log: log,
	}
}

// Measure runs the probe for commit and returns the measured latency in
// seconds. A probe that exits non-zero or whose output carries no marker line
// reports ok as false, never an error. The caller decides how to treat an
// unknown latency.
func (p *Probe) Measure(commit string) (latency float64, ok bool) {
	p.log.Info("Running performance test...")

	out, err := p.runner.Run(p.command, p.dir, &TranscriptTag{Phase: "perf_test", Commit: commit})
	if err != nil {
		p.log.Errorf("Performance test failed for commit %s - %v", commit, err)
		return 0, false
	}

	latency, ok = p.parseLatency(out)
	if !ok {
		p.log.Errorf("Could not find %s timing in performance test output", p.marker)
	}
	return latency, ok
}

// parseLatency scans output line by line for the marker pattern and returns
// the first match.
func (p *Probe) parseLatency(output string) (float64, bool) {
	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(line, p.marker) {
			continue
		}
		match := p.pattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		latency, err := strconv.ParseFloat(match[1], 64)
		if err != nil {
			continue
		}
		return latency, true
	}
	return 0, false
}
