package perfbisect

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/dchest/uniuri"
	"github.com/sirupsen/logrus"
)

// firstBadPattern matches git bisect's completion announcement.
var firstBadPattern = regexp.MustCompile(`(?m)^([0-9a-f]+) is the first bad commit`)

// A Session drives one full bisection run between a good and a bad revision.
type Session struct {
	GoodRevision string // The revision which does not exhibit the regression
	BadRevision  string // The revision which exhibits the regression

	config *Config

	runID string

	repo      *Repo
	evaluator *Evaluator

	history []EvaluationResult

	log *logrus.Entry
}

// A Finding describes the first bad commit a bisection converged on.
type Finding struct {
	Commit string // The commit which introduced the regression. I.e. the oldest bad commit

	CommitMessage string // The message of the offending commit
	CommitDate    string // The date of the offending commit
	CommitAuthor  string // The author of the offending commit
}

// NewSession creates a session bisecting the regression between goodRevision
// and badRevision with the passed config. The log directory is created if it
// does not exist yet. Passing a nil log mutes the session.
func NewSession(config *Config, goodRevision, badRevision string, log *logrus.Logger) (*Session, error) {
	if log == nil {
		// Mute logger
		log = logrus.New()
		log.SetOutput(io.Discard)
	}

	if err := os.MkdirAll(config.LogDir, 0o755); err != nil {
		return nil, errors.Join(fmt.Errorf("failed to create log directory %s", config.LogDir), err)
	}

	runID := fmt.Sprintf("%s_%s", time.Now().Format("20060102_150405"), uniuri.NewLen(6))
	entry := log.WithField("run-id", runID)

	runner := newRunner(config.LogDir, runID, config.StageTimeout, entry)

	return newSessionWithRunner(config, goodRevision, badRevision, runID, runner, entry), nil
}

// newSessionWithRunner wires up all the session's components on top of the
// passed command runner.
func newSessionWithRunner(config *Config, goodRevision, badRevision, runID string, runner commandRunner, log *logrus.Entry) *Session {
	repo := newRepo(config.Repository, runner, log)

	return &Session{
		GoodRevision: goodRevision,
		BadRevision:  badRevision,

		config: config,

		runID: runID,

		repo: repo,
		evaluator: &Evaluator{
			repo: repo,

			primaryBuild:   newBuildDriver(config.PrimaryBuild, runner, log),
			secondaryBuild: newBuildDriver(config.SecondaryBuild, runner, log),

			probe: newProbe(config.Probe, runner, log),

			threshold: config.Threshold,

			log: log,
		},

		log: log,
	}
}

// Run performs the bisection and returns the finding it converged on.
// Once the bisect session was started, it is always reset and the run summary
// is always emitted before Run returns, also when the loop fails partway.
func (s *Session) Run() (*Finding, error) {
	s.log.Infof("Starting bisect between good revision %s and bad revision %s", s.GoodRevision, s.BadRevision)

	// Verify the revisions exist and get their full hashes
	goodHash, err := s.repo.ResolveRevision(s.GoodRevision)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("invalid good revision %s", s.GoodRevision), err)
	}
	badHash, err := s.repo.ResolveRevision(s.BadRevision)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("invalid bad revision %s", s.BadRevision), err)
	}

	response, err := s.repo.BisectStart(goodHash, badHash)
	if err != nil {
		return nil, err
	}
	defer s.finalize(goodHash, badHash)

	// The two revisions may already be adjacent
	if firstBad, found := s.checkConverged(response); found {
		return firstBad, nil
	}

	for {
		commit, err := s.repo.Head()
		if err != nil {
			return nil, errors.Join(fmt.Errorf("failed to get current bisect candidate"), err)
		}

		verdict, result := s.evaluator.Evaluate(commit)
		s.history = append(s.history, result)

		switch verdict {
		case VerdictInconclusive:
			s.log.Warnf("Skipping commit %s due to evaluation failure", commit)
			if err := s.repo.BisectSkip(); err != nil {
				return nil, errors.Join(fmt.Errorf("failed to skip commit %s", commit), err)
			}
			continue
		case VerdictGood:
			response, err = s.repo.BisectGood()
		case VerdictBad:
			response, err = s.repo.BisectBad()
		}
		if err != nil {
			return nil, errors.Join(fmt.Errorf("failed to report commit %s as %v", commit, verdict), err)
		}

		if firstBad, found := s.checkConverged(response); found {
			return firstBad, nil
		}
	}
}

// History returns the results of all commits evaluated so far, in evaluation
// order.
func (s *Session) History() []EvaluationResult {
	return s.history
}

// checkConverged inspects a git bisect response for the completion
// announcement and builds the finding from it if present.
func (s *Session) checkConverged(response string) (*Finding, bool) {
	match := firstBadPattern.FindStringSubmatch(response)
	if match == nil {
		return nil, false
	}
	s.log.Info("Bisect complete!")

	commit := match[1]
	message, date, author := s.repo.CommitInfo(commit)
	s.log.Infof("Found offending commit %s. Message: %q, Date: %q, Author: %q", commit, message, date, author)

	return &Finding{
		Commit: commit,

		CommitMessage: message,
		CommitDate:    date,
		CommitAuthor:  author,
	}, true
}

// finalize resets the bisect session and emits the run summary. It runs
// exactly once per Run invocation, also when the loop exits on an error.
func (s *Session) finalize(goodHash, badHash string) {
	if err := s.repo.BisectReset(); err != nil {
		s.log.Errorf("Failed to reset bisect session - %v", err)
	}

	s.logSummary()

	path := filepath.Join(s.config.LogDir, fmt.Sprintf("bisect_summary_%s.log", s.runID))
	file, err := os.Create(path)
	if err != nil {
		s.log.Errorf("Failed to create summary file %s - %v", path, err)
		return
	}
	defer file.Close()

	writeSummary(file, goodHash, badHash, s.config.Threshold, s.history)
	s.log.Infof("Saved run summary to %s", path)
}

// Reset aborts any in-flight git bisect session in the configured repository,
// returning the working tree to its pre-bisection state. Meant for cleaning
// up after an interrupted run.
func Reset(config *Config, log *logrus.Logger) error {
	if log == nil {
		// Mute logger
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	entry := log.WithField("run-id", "cleanup")

	runner := newRunner(config.LogDir, "cleanup", config.StageTimeout, entry)
	return newRepo(config.Repository, runner, entry).BisectReset()
}
