// Package tool holds the commands managing the external scanner
// binaries: status, install, releases and uninstall.
package tool

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/container-tools/podscan/cmd/cmdutils"
	"github.com/container-tools/podscan/internal/gh"
	"github.com/container-tools/podscan/internal/style"
	"github.com/container-tools/podscan/internal/toolmgr"
	"github.com/container-tools/podscan/internal/tui"
	"github.com/container-tools/podscan/util/common/errors"
)

func GetRootCmd(factory *cmdutils.Factory) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tool",
		Short: "Manage the external scanner binaries",
		Long:  `Commands to install, inspect and upgrade the syft and grype binaries`,
	}

	rootCmd.AddCommand(newStatusCmd(factory))
	rootCmd.AddCommand(newInstallCmd(factory))
	rootCmd.AddCommand(newReleasesCmd(factory))
	rootCmd.AddCommand(newUninstallCmd(factory))

	return rootCmd
}

type toolStatus struct {
	Tool      string `json:"tool"`
	Installed bool   `json:"installed"`
	Version   string `json:"version,omitempty"`
	Path      string `json:"path,omitempty"`
}

func newStatusCmd(factory *cmdutils.Factory) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the installed state of every managed tool",
		RunE: func(cmd *cobra.Command, args []string) error {
			var statuses []toolStatus
			for _, desc := range toolmgr.Known {
				m, err := factory.Manager(cmd.Context(), desc.ID)
				if err != nil {
					return err
				}
				s := toolStatus{Tool: desc.ID, Installed: m.Installed()}
				if s.Installed {
					s.Version = m.Version()
					if s.Path, err = m.BinaryPath(); err != nil {
						return err
					}
				}
				statuses = append(statuses, s)
			}

			if factory.JSON {
				return json.NewEncoder(os.Stdout).Encode(statuses)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TOOL\tINSTALLED\tVERSION\tPATH")
			for _, s := range statuses {
				if !s.Installed {
					fmt.Fprintf(w, "%s\tno\t-\t-\n", s.Tool)
					continue
				}
				fmt.Fprintf(w, "%s\tyes\t%s\t%s\n", s.Tool, s.Version, s.Path)
			}
			return w.Flush()
		},
	}
}

func newInstallCmd(factory *cmdutils.Factory) *cobra.Command {
	var versionFlag string

	installCmd := &cobra.Command{
		Use:   "install [tool]",
		Short: "Download and install a managed tool",
		Long: `Downloads the release asset matching the current platform from the
tool's GitHub releases and unpacks it into the storage directory.
Without --version an interactive picker lists the recent releases.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := factory.Manager(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			version := versionFlag
			if version == "" {
				version, err = m.SelectVersion(cmd.Context())
				if err != nil {
					return err
				}
				ok, err := tui.PromptConfirm(
					fmt.Sprintf("Install %s %s?", args[0], version),
					"The binary will be downloaded into "+factory.Config.Storage.Dir,
				)
				if err != nil {
					return err
				}
				if !ok {
					return errors.NewStateError("install", "no version chosen", errors.ErrNoVersionSelected)
				}
			}

			if err := m.Install(cmd.Context(), version); err != nil {
				return err
			}
			fmt.Printf("%s Installed %s %s\n", style.SuccessIcon(), args[0], m.Version())
			return nil
		},
	}
	installCmd.Flags().StringVar(&versionFlag, "version", "", "Release version to install (skips the picker)")

	return installCmd
}

type releaseRow struct {
	Tag       string `json:"tag"`
	Name      string `json:"name,omitempty"`
	Installed bool   `json:"installed"`
	Newer     bool   `json:"newer"`
}

// releaseRows annotates upstream releases with the manager's installed
// state: the installed tag is marked, newer tags are badged as upgrade
// candidates.
func releaseRows(m *toolmgr.Manager, releases []gh.Release) []releaseRow {
	var rows []releaseRow
	for _, r := range releases {
		rows = append(rows, releaseRow{
			Tag:       r.TagName,
			Name:      r.Name,
			Installed: m.Installed() && m.Version() == strings.TrimPrefix(r.TagName, "v"),
			Newer:     m.Installed() && m.NewerAvailable(r.TagName),
		})
	}
	return rows
}

func newReleasesCmd(factory *cmdutils.Factory) *cobra.Command {
	return &cobra.Command{
		Use:   "releases [tool]",
		Short: "List the recent releases of a managed tool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := factory.Manager(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			releases, err := m.Releases(cmd.Context())
			if err != nil {
				return err
			}

			rows := releaseRows(m, releases)

			if factory.JSON {
				return json.NewEncoder(os.Stdout).Encode(rows)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TAG\tNAME")
			for _, row := range rows {
				tag := row.Tag
				switch {
				case row.Installed:
					tag += " (installed)"
				case row.Newer:
					tag += " " + style.Success.Render("(newer)")
				}
				fmt.Fprintf(w, "%s\t%s\n", tag, row.Name)
			}
			return w.Flush()
		},
	}
}

func newUninstallCmd(factory *cmdutils.Factory) *cobra.Command {
	return &cobra.Command{
		Use:   "uninstall [tool]",
		Short: "Remove a managed tool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := factory.Manager(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := m.Uninstall(cmd.Context()); err != nil {
				if errors.Is(err, errors.ErrNotImplemented) {
					fmt.Fprintf(os.Stderr, "%s Uninstall is not supported\n", style.WarningIcon())
					fmt.Fprintln(os.Stderr, style.Hint("Remove "+factory.Config.Storage.Dir+" to delete installed tools."))
				}
				return err
			}
			return nil
		},
	}
}
