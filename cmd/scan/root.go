// Package scan holds the scanning commands: SBOM generation and
// vulnerability analysis of container images.
package scan

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/container-tools/podscan/cmd/cmdutils"
	"github.com/container-tools/podscan/internal/style"
	"github.com/container-tools/podscan/internal/tui"
	"github.com/container-tools/podscan/internal/vuln"
)

func GetRootCmd(factory *cmdutils.Factory) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan container images",
		Long:  `Commands to generate SBOM documents and vulnerability reports for images`,
	}

	rootCmd.AddCommand(newSBOMCmd(factory))
	rootCmd.AddCommand(newVulnCmd(factory))

	return rootCmd
}

func newSBOMCmd(factory *cmdutils.Factory) *cobra.Command {
	return &cobra.Command{
		Use:   "sbom [image]",
		Short: "Generate a Software Bill of Materials for an image",
		Long: `Generates an SBOM for the image and stores it in the artifact store.
An already-stored SBOM is reused without invoking the scanner.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := generateSBOM(factory, cmd, args[0])
			if err != nil {
				return err
			}
			fmt.Println(path)
			return nil
		},
	}
}

func newVulnCmd(factory *cmdutils.Factory) *cobra.Command {
	return &cobra.Command{
		Use:   "vuln [image]",
		Short: "Scan an image for vulnerabilities",
		Long: `Generates the image's SBOM if needed, scans it for vulnerabilities
and renders the findings. Stored results are reused without invoking
the scanner.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sbomPath, err := generateSBOM(factory, cmd, args[0])
			if err != nil {
				return err
			}

			scanner, err := factory.VulnScanner(cmd.Context())
			if err != nil {
				return err
			}

			result, err := tui.RunWithSpinner("Scanning for vulnerabilities", func() (interface{}, error) {
				doc, _, err := scanner.Analyze(cmd.Context(), sbomPath)
				return doc, err
			})
			if err != nil {
				return err
			}
			doc := result.(*vuln.Document)

			if factory.JSON {
				return json.NewEncoder(os.Stdout).Encode(doc)
			}
			renderMatches(doc)
			return nil
		},
	}
}

func generateSBOM(factory *cmdutils.Factory, cmd *cobra.Command, image string) (string, error) {
	conn, err := factory.Connection()
	if err != nil {
		return "", err
	}
	scanner, err := factory.SBOMScanner(cmd.Context())
	if err != nil {
		return "", err
	}

	result, err := tui.RunWithSpinner("Generating SBOM for "+image, func() (interface{}, error) {
		return scanner.Analyze(cmd.Context(), conn, image)
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

// severityOrder ranks severities for display, most urgent first.
var severityOrder = map[string]int{
	vuln.SeverityCritical:   0,
	vuln.SeverityHigh:       1,
	vuln.SeverityMedium:     2,
	vuln.SeverityLow:        3,
	vuln.SeverityNegligible: 4,
	vuln.SeverityUnknown:    5,
}

func renderMatches(doc *vuln.Document) {
	if len(doc.Matches) == 0 {
		fmt.Printf("%s No vulnerabilities found\n", style.SuccessIcon())
		return
	}

	matches := append([]vuln.Match(nil), doc.Matches...)
	sort.SliceStable(matches, func(i, j int) bool {
		return severityOrder[matches[i].Vulnerability.Severity] <
			severityOrder[matches[j].Vulnerability.Severity]
	})

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSEVERITY\tDESCRIPTION")
	for _, m := range matches {
		sev := style.SeverityStyle(m.Vulnerability.Severity).Render(m.Vulnerability.Severity)
		fmt.Fprintf(w, "%s\t%s\t%s\n", m.Vulnerability.ID, sev, m.Vulnerability.Description)
	}
	w.Flush()

	counts := doc.CountBySeverity()
	fmt.Printf("\n%d matches", len(matches))
	for _, sev := range []string{vuln.SeverityCritical, vuln.SeverityHigh, vuln.SeverityMedium,
		vuln.SeverityLow, vuln.SeverityNegligible, vuln.SeverityUnknown} {
		if counts[sev] > 0 {
			fmt.Printf("  %s: %d", sev, counts[sev])
		}
	}
	fmt.Println()
}
