package main // Entry point package

import (
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "furniture",
	Short: "Furniture catalog API",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := godotenv.Overload(); err != nil {
			logrus.Debug("no .env file loaded")
		}
	},
}

func main() {
	rootCmd.AddCommand(serveCmd, seedAdminCmd, repairWorkerCmd)
	if err := rootCmd.Execute(); err != nil {
		logrus.Fatal(err)
	}
}
