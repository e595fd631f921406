package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lightring/lightring/version"
)

// VersionCmd prints the build version.
func VersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print the lightring version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version.Version)
		},
	}
}
