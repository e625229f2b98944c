package perfbisect

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// An ExternalCommandError is returned when a spawned process exits with a
// non-zero status. The combined output produced up to the exit is retained
// so it remains available for diagnosis.
type ExternalCommandError struct {
	Command  string // The command that was run
	ExitCode int    // The exit code of the process, or -1 if it never ran
	Output   string // The combined output captured before the process exited
}

func (e *ExternalCommandError) Error() string {
	return fmt.Sprintf("command %q exited with code %d", e.Command, e.ExitCode)
}

// A TranscriptTag identifies the phase and commit an invocation belongs to.
// Tagged invocations get their combined output persisted to a transcript file
// in the log directory, named after the tag.
type TranscriptTag struct {
	Phase  string
	Commit string
}

// commandRunner is the boundary through which all components talk to external
// processes. It exists so tests can substitute scripted processes.
type commandRunner interface {
	Run(command, dir string, tag *TranscriptTag) (string, error)
}

// A Runner executes external commands through the shell, streaming their
// combined output to the console and, for tagged invocations, to a per-phase
// transcript as the output is produced.
type Runner struct {
	logDir string
	runID  string

	timeout time.Duration

	console io.Writer

	log *logrus.Entry
}

func newRunner(logDir, runID string, timeout time.Duration, log *logrus.Entry) *Runner {
	return &Runner{
		logDir: logDir,
		runID:  runID,

		timeout: timeout,

		console: os.Stdout,

		log: log,
	}
}

// squashWriters returns a single writer fanning out to all non-nil writers.
func squashWriters(writers ...io.Writer) io.Writer {
	nonNil := []io.Writer{}
	for _, writer := range writers {
		if writer != nil {
			nonNil = append(nonNil, writer)
		}
	}
	if len(nonNil) == 1 {
		return nonNil[0]
	}
	return io.MultiWriter(nonNil...)
}

// Run executes command through the shell in dir and returns its combined
// output. The output is consumed incrementally as the process produces it, so
// a long-running build does not go silent. If the process exits non-zero, the
// captured output is returned alongside an [*ExternalCommandError].
func (r *Runner) Run(command, dir string, tag *TranscriptTag) (string, error) {
	var transcript io.Writer
	if tag != nil {
		file, err := r.openTranscript(tag)
		if err != nil {
			r.log.Warnf("Couldn't open transcript for phase %s of commit %s - %v", tag.Phase, tag.Commit, err)
		} else {
			defer file.Close()
			transcript = file
		}
	}

	ctx := context.Background()
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	r.log.Debugf("Executing %q in %s", command, dir)

	var captured bytes.Buffer
	output := squashWriters(&captured, r.console, transcript)

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = dir
	cmd.Stdout = output
	cmd.Stderr = output

	err := cmd.Run()
	if err == nil {
		return captured.String(), nil
	}

	cmdErr := &ExternalCommandError{Command: command, ExitCode: -1, Output: captured.String()}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		cmdErr.ExitCode = exitErr.ExitCode()
	}
	if ctx.Err() != nil {
		r.log.Errorf("Command %q killed since it took longer than %v", command, r.timeout)
	} else {
		r.log.Warnf("Command %q returned non-zero exit code %d", command, cmdErr.ExitCode)
	}
	return cmdErr.Output, cmdErr
}

// openTranscript opens the transcript file for the passed tag, creating it
// with a header if it does not exist yet. Invocations sharing a tag append to
// the same transcript.
func (r *Runner) openTranscript(tag *TranscriptTag) (*os.File, error) {
	name := fmt.Sprintf("%s_%s_%s.log", tag.Commit, tag.Phase, r.runID)
	file, err := os.OpenFile(filepath.Join(r.logDir, name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}

	if info, err := file.Stat(); err == nil && info.Size() == 0 {
		fmt.Fprintf(file, "Phase: %s\n", tag.Phase)
		fmt.Fprintf(file, "Commit: %s\n", tag.Commit)
		fmt.Fprintf(file, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
		fmt.Fprintln(file, "--------------------------------------------------------------------------------")
	}

	return file, nil
}
