package main

import (
	"os"

	"github.com/lightring/lightring/cmd/lightring/commands"
)

func main() {
	rootCmd := commands.RootCmd()
	rootCmd.AddCommand(
		commands.InitCmd(),
		commands.StatusCmd(),
		commands.CreateCmd(),
		commands.UpdateCmd(),
		commands.VersionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
