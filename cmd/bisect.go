package cmd

import (
	"github.com/gtong-nv/perfbisect/pkg/perfbisect"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var bisectConfigPath string

var bisectCmd = &cobra.Command{
	Use:   "bisect goodRevision badRevision",
	Short: "Find the first commit whose measured render latency crosses the configured threshold",
	Long: `Find the first commit whose measured render latency crosses the configured threshold.

This command takes in the known-good and the known-bad revision and drives a
git bisect session between them. For every candidate commit git selects, the
configured projects are rebuilt and the performance probe is run. Commits whose
latency stays below the threshold are reported as good, commits at or above it
as bad. Commits that cannot be classified because a stage failed are skipped.

All command output is persisted to per-phase transcripts in the log directory,
together with a chronological main log and a final summary of every evaluated
commit.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		config, err := perfbisect.GetConfigFromFile(bisectConfigPath)
		if err != nil {
			logrus.Fatalf("Failed to read config from %s - %v", bisectConfigPath, err)
		}

		log := newLogger(config.LogDir)

		session, err := perfbisect.NewSession(config, args[0], args[1], log)
		if err != nil {
			logrus.Fatalf("Failed to create bisect session - %v", err)
		}

		finding, err := session.Run()
		if err != nil {
			log.Fatalf("Bisect failed - %v", err)
		}

		log.Infof("First bad commit: %s", finding.Commit)
	},
}

func init() {
	rootCmd.AddCommand(bisectCmd)

	bisectCmd.Flags().StringVarP(&bisectConfigPath, "config", "c", "bisect.yml", "Path to the bisect config file")
}
