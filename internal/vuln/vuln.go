// Package vuln invokes the managed vulnerability scanner against SBOM
// documents and parses its results into a validated report.
package vuln

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/container-tools/podscan/internal/executor"
	"github.com/container-tools/podscan/internal/store"
	"github.com/container-tools/podscan/internal/toolmgr"
	"github.com/container-tools/podscan/util/common/errors"
	"github.com/container-tools/podscan/util/common/fileutil"
)

// Severity levels reported by the scanner, normalized to lowercase.
const (
	SeverityCritical   = "critical"
	SeverityHigh       = "high"
	SeverityMedium     = "medium"
	SeverityLow        = "low"
	SeverityNegligible = "negligible"
	SeverityUnknown    = "unknown"
)

var knownSeverities = map[string]struct{}{
	SeverityCritical:   {},
	SeverityHigh:       {},
	SeverityMedium:     {},
	SeverityLow:        {},
	SeverityNegligible: {},
	SeverityUnknown:    {},
}

// Vulnerability is one finding inside a match.
type Vulnerability struct {
	ID          string `json:"id"`
	Severity    string `json:"severity"`
	Description string `json:"description,omitempty"`
}

// Match pairs a vulnerability with the artifact it was found in.
type Match struct {
	Vulnerability Vulnerability `json:"vulnerability"`
}

// Document is a parsed, validated vulnerability report.
type Document struct {
	Matches []Match `json:"matches"`
}

// Scanner runs the vulnerability tool over SBOM files.
type Scanner struct {
	tool *toolmgr.Manager
	st   *store.Store
	exec executor.Executor
	log  zerolog.Logger
}

// NewScanner wires a scanner to its managed tool and artifact store.
func NewScanner(tool *toolmgr.Manager, st *store.Store, exec executor.Executor, log zerolog.Logger) *Scanner {
	return &Scanner{tool: tool, st: st, exec: exec, log: log}
}

// Analyze scans the SBOM at sbomPath and returns the parsed report.
// The SBOM must exist. The result lives next to the SBOM with the fixed
// result suffix; an existing result is validated and returned without
// invoking the binary.
func (s *Scanner) Analyze(ctx context.Context, sbomPath string) (*Document, string, error) {
	if !fileutil.IsFile(sbomPath) {
		return nil, "", errors.NewMissingInputError(sbomPath)
	}

	bin, err := s.tool.BinaryPath()
	if err != nil {
		return nil, "", err
	}

	dest := store.VulnPath(sbomPath)
	log := s.log.With().
		Str("trace_id", uuid.NewString()).
		Str("sbom", sbomPath).
		Logger()

	if fileutil.IsFile(dest) {
		log.Debug().Str("path", dest).Msg("Vulnerability cache hit")
		doc, err := parseResult(dest)
		return doc, dest, err
	}

	key, err := s.st.Rel(dest)
	if err != nil {
		return nil, "", err
	}

	log.Info().Msg("Scanning for vulnerabilities")
	dest, err = s.st.Put(key, func(tmp string) error {
		args := []string{"sbom:" + sbomPath, "--output=json", "--file=" + tmp}
		_, _, err := s.exec.Run(ctx, bin, args, nil)
		return err
	})
	if err != nil {
		return nil, "", err
	}

	doc, err := parseResult(dest)
	return doc, dest, err
}

// parseResult reads a result file, validates it against the strict
// schema and normalizes severities. No partial result is ever returned.
func parseResult(path string) (*Document, error) {
	data, err := fileutil.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := validate(data); err != nil {
		return nil, errors.NewSchemaError(path, "schema validation failed", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.NewSchemaError(path, "decode failed", err)
	}

	for i := range doc.Matches {
		sev := strings.ToLower(doc.Matches[i].Vulnerability.Severity)
		if _, ok := knownSeverities[sev]; !ok {
			return nil, errors.NewSchemaError(path, "unknown severity "+doc.Matches[i].Vulnerability.Severity, nil)
		}
		doc.Matches[i].Vulnerability.Severity = sev
	}
	return &doc, nil
}

// CountBySeverity tallies matches per normalized severity.
func (d *Document) CountBySeverity() map[string]int {
	counts := make(map[string]int)
	for _, m := range d.Matches {
		counts[m.Vulnerability.Severity]++
	}
	return counts
}
