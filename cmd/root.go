package cmd

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
	"gopkg.in/natefinch/lumberjack.v2"
)

var verbosity int

var rootCmd = &cobra.Command{
	Use:   "perfbisect",
	Short: "Bisect render performance regressions by driving git bisect with an external latency probe",
	Long:  ``,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase logging verbosity. Can be passed multiple times")
}

// newLogger creates the logger for a run, writing both to the console and to
// a rotated chronological log in logDir.
func newLogger(logDir string) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&prefixed.TextFormatter{FullTimestamp: true})

	if err := os.MkdirAll(logDir, 0o755); err != nil {
		logrus.Warnf("Couldn't create log directory %s, logging to console only - %v", logDir, err)
	} else {
		log.SetOutput(io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   filepath.Join(logDir, "perfbisect.log"),
			MaxSize:    10, // MB
			MaxBackups: 5,
		}))
	}

	// Set logger verbosity
	if verbosity == 0 {
		log.SetLevel(logrus.InfoLevel)
	} else if verbosity == 1 {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.TraceLevel)
	}

	return log
}
