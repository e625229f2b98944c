package perfbisect

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// A Repo drives git in the repository under bisection. It owns both the
// working tree operations and the verbs of the git bisect session.
type Repo struct {
	path string

	runner commandRunner

	log *logrus.Entry
}

func newRepo(path string, runner commandRunner, log *logrus.Entry) *Repo {
	return &Repo{
		path:   path,
		runner: runner,
		log:    log,
	}
}

// ResolveRevision resolves rev to its full commit hash.
func (r *Repo) ResolveRevision(rev string) (string, error) {
	out, err := r.runner.Run("git rev-parse "+rev, r.path, nil)
	if err != nil {
		return "", errors.Join(fmt.Errorf("failed to resolve revision %s", rev), err)
	}
	return strings.TrimSpace(out), nil
}

// Head returns the commit hash the working tree currently points at.
func (r *Repo) Head() (string, error) {
	out, err := r.runner.Run("git rev-parse HEAD", r.path, nil)
	if err != nil {
		return "", errors.Join(fmt.Errorf("failed to resolve HEAD"), err)
	}
	return strings.TrimSpace(out), nil
}

// Checkout switches the working tree to commit and syncs all submodules to
// the versions that commit pins. Both steps have to succeed for the checkout
// to be reported as successful. Failures are downgraded to the returned
// boolean, the details live in the transcript.
func (r *Repo) Checkout(commit string) bool {
	r.log.Infof("Checking out commit %s", commit)

	tag := &TranscriptTag{Phase: "checkout", Commit: commit}
	if _, err := r.runner.Run("git checkout "+commit, r.path, tag); err != nil {
		r.log.Errorf("Failed to checkout commit %s - %v", commit, err)
		return false
	}
	if _, err := r.runner.Run("git submodule update --init --recursive", r.path, tag); err != nil {
		r.log.Errorf("Failed to sync submodules of commit %s - %v", commit, err)
		return false
	}

	return true
}

// BisectStart starts a git bisect session with the passed good and bad
// commits registered. The response of registering the bad commit is returned,
// since git already announces the first bad commit there if the two commits
// are adjacent.
func (r *Repo) BisectStart(goodCommit, badCommit string) (string, error) {
	if _, err := r.runner.Run("git bisect start", r.path, nil); err != nil {
		return "", errors.Join(fmt.Errorf("failed to start bisect session"), err)
	}
	if _, err := r.runner.Run("git bisect good "+goodCommit, r.path, nil); err != nil {
		return "", errors.Join(fmt.Errorf("failed to mark commit %s as good", goodCommit), err)
	}
	out, err := r.runner.Run("git bisect bad "+badCommit, r.path, nil)
	if err != nil {
		return "", errors.Join(fmt.Errorf("failed to mark commit %s as bad", badCommit), err)
	}
	return out, nil
}

// BisectGood marks the current candidate as good and returns git's response.
func (r *Repo) BisectGood() (string, error) {
	return r.runner.Run("git bisect good", r.path, nil)
}

// BisectBad marks the current candidate as bad and returns git's response.
func (r *Repo) BisectBad() (string, error) {
	return r.runner.Run("git bisect bad", r.path, nil)
}

// BisectSkip excludes the current candidate from the bisection.
func (r *Repo) BisectSkip() error {
	_, err := r.runner.Run("git bisect skip", r.path, nil)
	return err
}

// BisectReset ends the bisect session and returns the working tree to its
// pre-bisection state.
func (r *Repo) BisectReset() error {
	_, err := r.runner.Run("git bisect reset", r.path, nil)
	return err
}

// CommitInfo returns the message, date and author of commit. Empty strings
// are returned if git's output is not of the expected shape.
func (r *Repo) CommitInfo(commit string) (message, date, author string) {
	out, err := r.runner.Run("git --no-pager show -s --format='%B%n%aD%n%an <%ae>' "+commit, r.path, nil)
	if err != nil {
		r.log.Errorf("Couldn't get additional info of commit %s - %v", commit, err)
		return "", "", ""
	}

	if len(out) == 0 || strings.Count(out, "\n") < 3 {
		r.log.Warnf("Git show output is not of the expected format: %q", out)
		return "", "", ""
	}

	// Trim trailing newline
	out = strings.TrimSuffix(out, "\n")
	authorOffset := strings.LastIndex(out, "\n")
	dateOffset := strings.LastIndex(out[:authorOffset], "\n")

	message = strings.TrimSpace(out[:dateOffset])
	date = out[dateOffset+1 : authorOffset]
	author = out[authorOffset+1:]
	return message, date, author
}
