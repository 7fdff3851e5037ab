// Command tzresolve is the CLI binding over tzcore.Registry: it lists the
// compiled zone table and resolves zone queries against tzdata source text
// on disk. Its cobra+viper shape follows malpanez-tempus/main.go, the
// pack's only other cobra-fronted domain engine.
package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tzres/tzengine/cmd/tzresolve/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		dataDir     string
		configPath  string
		defaultZone string
	)

	cmd := &cobra.Command{
		Use:          "tzresolve",
		Short:        "Resolve IANA time-zone transitions",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if dataDir != "" {
				cfg.DataDir = dataDir
			}
			if defaultZone != "" {
				cfg.DefaultZone = defaultZone
			}
			cmd.SetContext(withConfig(cmd.Context(), cfg))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory containing tzdata source text (overrides config)")
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to tzresolve config file")
	cmd.PersistentFlags().StringVarP(&defaultZone, "zone", "z", "", "default zone name (overrides config)")

	cmd.AddCommand(
		newListCmd(),
		newResolveCmd(),
	)

	return cmd
}

// invocationLogger returns a logrus.Entry tagged with a fresh correlation
// id, so a single CLI invocation's log lines can be grepped together
// (grounded on jcom-dev-zmanim and luthersystems-svc's use of
// google/uuid for the same purpose).
func invocationLogger(command string) *logrus.Entry {
	return logrus.WithFields(logrus.Fields{
		"invocation_id": uuid.NewString(),
		"command":       command,
	})
}
