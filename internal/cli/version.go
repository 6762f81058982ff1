package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrz1836/sigil-connect/internal/version"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command
var versionCmd = &cobra.Command{
	Use:     "version",
	Short:   "Show version information",
	GroupID: "config",
	Long:    `Show the sigil-connect version, commit, build date, and Go toolchain.`,
	Example: `  sigil-connect version
  sigil-connect version -o json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		info := version.Get()
		if formatter.IsJSON() {
			return formatter.Print(info)
		}

		w := cmd.OutOrStdout()
		outln(w, "sigil-connect "+info.String())
		out(w, "  go:       %s\n  platform: %s\n", info.GoVersion, info.Platform)
		return nil
	},
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(versionCmd)
}
