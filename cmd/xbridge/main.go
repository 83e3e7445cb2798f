package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func CmdXbridge() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "xbridge",
		Short:        "Manually exercise the bridge aggregator",
		Args:         cobra.ExactArgs(0),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// optional .env for rpc url / keys
			_ = godotenv.Load()
			verbosity, _ := cmd.Flags().GetCount("verbose")
			switch verbosity {
			case 0:
				logrus.SetLevel(logrus.InfoLevel)
			case 1:
				logrus.SetLevel(logrus.DebugLevel)
			default:
				logrus.SetLevel(logrus.TraceLevel)
			}
			return nil
		},
	}
	cmd.PersistentFlags().CountP("verbose", "v", "increase logging verbosity")
	cmd.AddCommand(CmdBridges())
	cmd.AddCommand(CmdTransfer())
	return cmd
}

func main() {
	if err := CmdXbridge().Execute(); err != nil {
		os.Exit(1)
	}
}
