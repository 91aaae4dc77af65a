package commands

import (
	"io"
	"runtime"

	"github.com/spf13/cobra"
)

// VersionInfo describes the CLI build.
type VersionInfo struct {
	Version   string `json:"version"    yaml:"version"`
	Commit    string `json:"commit"     yaml:"commit"`
	Built     string `json:"built"      yaml:"built"`
	GoVersion string `json:"go_version" yaml:"go_version"`
}

// NewVersionCommand creates the version command.
func NewVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Long:  "Display detailed version information about the alpaca CLI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := VersionInfo{
				Version:   version,
				Commit:    commit,
				Built:     date,
				GoVersion: runtime.Version(),
			}

			return render(cmd.OutOrStdout(), info, func(w io.Writer, v VersionInfo) error {
				return renderProperties(w, [][]string{
					{"Version", v.Version},
					{"Commit", v.Commit},
					{"Built", v.Built},
					{"Go", v.GoVersion},
				})
			})
		},
	}
}
