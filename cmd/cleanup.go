package cmd

import (
	"fmt"
	"os"

	"github.com/gtong-nv/perfbisect/pkg/perfbisect"
	"github.com/manifoldco/promptui"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var cleanupConfigPath string
var cleanupLogs bool
var cleanupAgree bool

var cleanupCmd = &cobra.Command{
	Use:     "clean",
	Aliases: []string{"cleanup"},
	Short:   "Abort any in-flight bisect session and optionally delete the log directory",
	Long: `This command aborts any in-flight git bisect session in the configured
repository, returning the working tree to its pre-bisection state.
With --logs, the log directory and all transcripts in it are deleted as well.`,
	Run: func(cmd *cobra.Command, args []string) {
		config, err := perfbisect.GetConfigFromFile(cleanupConfigPath)
		if err != nil {
			logrus.Fatalf("Failed to read config from %s - %v", cleanupConfigPath, err)
		}

		confirmationMessage := fmt.Sprintf("About to reset the bisect session in %s", config.Repository)
		if cleanupLogs {
			confirmationMessage += fmt.Sprintf(" and delete %s", config.LogDir)
		}
		confirmationMessage += "."
		logrus.Info(confirmationMessage)

		prompt := promptui.Prompt{
			Label:     "Proceed",
			IsConfirm: true,
		}

		if !cleanupAgree {
			_, err := prompt.Run()
			if err != nil {
				logrus.Info("Exiting...")
				os.Exit(0)
			}
		}

		if err := perfbisect.Reset(config, newLogger(config.LogDir)); err != nil {
			logrus.Fatalf("Failed to reset bisect session - %v", err)
		}

		if cleanupLogs {
			logrus.Infof("Deleting log directory %s", config.LogDir)
			if err := os.RemoveAll(config.LogDir); err != nil {
				logrus.Fatalf("Failed to delete log directory %s - %v", config.LogDir, err)
			}
		}

		logrus.Info("Done cleaning up.")
	},
}

func init() {
	rootCmd.AddCommand(cleanupCmd)

	cleanupCmd.Flags().StringVarP(&cleanupConfigPath, "config", "c", "bisect.yml", "Path to the bisect config file")
	cleanupCmd.Flags().BoolVarP(&cleanupLogs, "logs", "l", false, "Also delete the log directory.")
	cleanupCmd.Flags().BoolVarP(&cleanupAgree, "assume-yes", "y", false, `Bypass "Are you sure?" message.`)
}
