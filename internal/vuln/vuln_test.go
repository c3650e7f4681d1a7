package vuln

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/container-tools/podscan/internal/executor"
	"github.com/container-tools/podscan/internal/store"
	"github.com/container-tools/podscan/internal/toolmgr"
	"github.com/container-tools/podscan/util/common/errors"
)

const goodResult = `{
	"matches": [
		{"vulnerability": {"id": "CVE-2024-1234", "severity": "High", "description": "buffer overflow"}},
		{"vulnerability": {"id": "CVE-2024-5678", "severity": "low"}}
	]
}`

func installedGrype(t *testing.T) *toolmgr.Manager {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("binary fixture layout is POSIX specific")
	}
	storage := t.TempDir()
	binDir := filepath.Join(storage, "grype")
	require.NoError(t, os.MkdirAll(binDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(binDir, "grype"), []byte("bin"), 0755))

	probe := &executor.Spy{Stdout: []byte("grype 0.74.1")}
	m := toolmgr.New(toolmgr.Grype, storage, nil, probe, nil, 10, zerolog.Nop())
	m.Init(context.Background())
	require.True(t, m.Installed())
	return m
}

func writeSBOM(t *testing.T, st *store.Store) string {
	t.Helper()
	key := store.SBOMKey("podman", "default", "sha256:abcd1234")
	require.NoError(t, os.MkdirAll(filepath.Dir(st.Abs(key)), 0755))
	require.NoError(t, os.WriteFile(st.Abs(key), []byte(`{"artifacts":[]}`), 0644))
	return st.Abs(key)
}

func TestAnalyzeMissingSBOM(t *testing.T) {
	m := installedGrype(t)
	st := store.New(t.TempDir())
	spy := &executor.Spy{}
	s := NewScanner(m, st, spy, zerolog.Nop())

	_, _, err := s.Analyze(context.Background(), st.Abs("podman/default/missing.json"))
	var missingErr *errors.MissingInputError
	assert.True(t, errors.As(err, &missingErr))
	assert.Empty(t, spy.Calls())
}

func TestAnalyzeCachedResultSkipsInvocation(t *testing.T) {
	m := installedGrype(t)
	st := store.New(t.TempDir())
	sbomPath := writeSBOM(t, st)
	require.NoError(t, os.WriteFile(store.VulnPath(sbomPath), []byte(goodResult), 0644))

	spy := &executor.Spy{}
	s := NewScanner(m, st, spy, zerolog.Nop())

	doc, path, err := s.Analyze(context.Background(), sbomPath)
	require.NoError(t, err)
	assert.Equal(t, store.VulnPath(sbomPath), path)
	assert.Empty(t, spy.Calls(), "cache hit must not call the external binary")

	require.Len(t, doc.Matches, 2)
	assert.Equal(t, "high", doc.Matches[0].Vulnerability.Severity, "severity is case-normalized")
	assert.Equal(t, "buffer overflow", doc.Matches[0].Vulnerability.Description)
}

func TestAnalyzeInvokesScanner(t *testing.T) {
	m := installedGrype(t)
	st := store.New(t.TempDir())
	sbomPath := writeSBOM(t, st)

	spy := &executor.Spy{
		Handler: func(call executor.Call) ([]byte, []byte, error) {
			tmp := call.Args[len(call.Args)-1][len("--file="):]
			return nil, nil, os.WriteFile(tmp, []byte(goodResult), 0644)
		},
	}
	s := NewScanner(m, st, spy, zerolog.Nop())

	doc, path, err := s.Analyze(context.Background(), sbomPath)
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.Len(t, doc.Matches, 2)

	_, statErr := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(statErr))

	calls := spy.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "sbom:"+sbomPath, calls[0].Args[0])
	assert.Equal(t, "--output=json", calls[0].Args[1])
}

func TestAnalyzeMissingVulnerabilityID(t *testing.T) {
	m := installedGrype(t)
	st := store.New(t.TempDir())
	sbomPath := writeSBOM(t, st)
	bad := `{"matches": [{"vulnerability": {"severity": "high"}}]}`
	require.NoError(t, os.WriteFile(store.VulnPath(sbomPath), []byte(bad), 0644))

	s := NewScanner(m, st, &executor.Spy{}, zerolog.Nop())

	doc, _, err := s.Analyze(context.Background(), sbomPath)
	var schemaErr *errors.SchemaError
	assert.True(t, errors.As(err, &schemaErr))
	assert.Nil(t, doc, "no partial result on schema failure")
}

func TestAnalyzeUnknownSeverity(t *testing.T) {
	m := installedGrype(t)
	st := store.New(t.TempDir())
	sbomPath := writeSBOM(t, st)
	bad := `{"matches": [{"vulnerability": {"id": "CVE-1", "severity": "catastrophic"}}]}`
	require.NoError(t, os.WriteFile(store.VulnPath(sbomPath), []byte(bad), 0644))

	s := NewScanner(m, st, &executor.Spy{}, zerolog.Nop())

	doc, _, err := s.Analyze(context.Background(), sbomPath)
	var schemaErr *errors.SchemaError
	assert.True(t, errors.As(err, &schemaErr))
	assert.Nil(t, doc)
}

func TestCountBySeverity(t *testing.T) {
	doc := &Document{Matches: []Match{
		{Vulnerability: Vulnerability{ID: "a", Severity: "high"}},
		{Vulnerability: Vulnerability{ID: "b", Severity: "high"}},
		{Vulnerability: Vulnerability{ID: "c", Severity: "low"}},
	}}
	counts := doc.CountBySeverity()
	assert.Equal(t, 2, counts["high"])
	assert.Equal(t, 1, counts["low"])
}
