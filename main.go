package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:          "ihub-oauth",
		Short:        "OAuth 2.0 authorization endpoint of the iHub platform",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newKeygenCmd(), newTokenCmd())

	if err := root.Execute(); err != nil {
		logrus.WithError(err).Error("command failed")
		os.Exit(1)
	}
}
