package perfbisect

import (
	"github.com/sirupsen/logrus"
)

// A BuildDriver builds one dependent project with a fixed command in a fixed
// working directory.
type BuildDriver struct {
	name    string
	dir     string
	command string

	tolerateFailure bool

	runner commandRunner

	log *logrus.Entry
}

func newBuildDriver(config BuildConfig, runner commandRunner, log *logrus.Entry) *BuildDriver {
	return &BuildDriver{
		name:    config.Name,
		dir:     config.Dir,
		command: config.Command,

		tolerateFailure: config.TolerateFailure,

		runner: runner,

		log: log.WithField("project", config.Name),
	}
}

// Build runs the project's build command for commit. Failures are downgraded
// to the returned boolean; with TolerateFailure set in the build's config, a
// failed build is logged and reported as a success.
func (b *BuildDriver) Build(commit string) bool {
	b.log.Infof("Building %s...", b.name)

	tag := &TranscriptTag{Phase: "build_" + b.name, Commit: commit}
	if _, err := b.runner.Run(b.command, b.dir, tag); err != nil {
		if b.tolerateFailure {
			b.log.Warnf("Build of %s failed for commit %s, tolerating it - %v", b.name, commit, err)
			return true
		}
		b.log.Errorf("Build of %s failed for commit %s - %v", b.name, commit, err)
		return false
	}

	return true
}
