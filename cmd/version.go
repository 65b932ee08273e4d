package cmd

import (
	"runtime/debug"

	"github.com/spf13/cobra"
)

const modulePath = "mendc.dev/pkg/mendc"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the mendc version information",
		Long:  "Displays the mendc build version and the Go version it was built with.",
		Run: func(cmd *cobra.Command, _ []string) {
			version := "unknown"
			goVersion := "unknown"

			if info, ok := debug.ReadBuildInfo(); ok {
				if info.Main.Version != "" {
					version = info.Main.Version
				}

				goVersion = info.GoVersion
			}

			cmd.Println("mendc", version, "("+modulePath+")")
			cmd.Println("go", goVersion)
		},
	}
}

// versionCmd represents the version command.
var versionCmd = newVersionCmd()

func init() {
	rootCmd.AddCommand(versionCmd)
}
