package toolmgr

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/container-tools/podscan/internal/executor"
	"github.com/container-tools/podscan/internal/gh"
	"github.com/container-tools/podscan/internal/platform"
	"github.com/container-tools/podscan/util/common/errors"
)

// fakeReleases scripts the release API and records how it was used.
type fakeReleases struct {
	releases      []gh.Release
	listErr       error
	listCalls     int
	downloadCalls int
	payload       map[string]string // archive entry name -> content
}

func (f *fakeReleases) ListReleases(ctx context.Context, owner, repo string, limit int) ([]gh.Release, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	if len(f.releases) > limit {
		return f.releases[:limit], nil
	}
	return f.releases, nil
}

func (f *fakeReleases) DownloadAsset(ctx context.Context, owner, repo string, releaseID int64, assetName, dest string) error {
	f.downloadCalls++
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	gz := gzip.NewWriter(out)
	tw := tar.NewWriter(gz)
	for name, content := range f.payload {
		if err := tw.WriteHeader(&tar.Header{
			Name: name, Mode: 0644, Size: int64(len(content)), Typeflag: tar.TypeReg,
		}); err != nil {
			return err
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			return err
		}
	}
	if err := tw.Close(); err != nil {
		return err
	}
	return gz.Close()
}

func promptFirst(title, description string, options []string) (string, error) {
	return options[0], nil
}

func newManager(t *testing.T, releases *fakeReleases, exec executor.Executor, prompt Prompter) *Manager {
	t.Helper()
	if exec == nil {
		exec = &executor.Spy{}
	}
	if prompt == nil {
		prompt = promptFirst
	}
	return New(Syft, t.TempDir(), releases, exec, prompt, 10, zerolog.Nop())
}

func TestInstallWithoutVersionFailsBeforeNetwork(t *testing.T) {
	releases := &fakeReleases{}
	m := newManager(t, releases, nil, nil)

	err := m.Install(context.Background(), "")
	assert.True(t, errors.Is(err, errors.ErrNoVersionSelected))
	assert.Zero(t, releases.listCalls, "no network call may happen before version validation")
	assert.Zero(t, releases.downloadCalls)
}

func TestBinaryPathWhenNotInstalled(t *testing.T) {
	m := newManager(t, &fakeReleases{}, nil, nil)

	_, err := m.BinaryPath()
	assert.True(t, errors.Is(err, errors.ErrNotInstalled))
}

func TestInitProbesExistingBinary(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("conventional path differs on windows")
	}
	storage := t.TempDir()
	binDir := filepath.Join(storage, "syft")
	require.NoError(t, os.MkdirAll(binDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(binDir, "syft"), []byte("bin"), 0755))

	spy := &executor.Spy{Stdout: []byte("syft 1.9.0\n")}
	m := New(Syft, storage, &fakeReleases{}, spy, promptFirst, 10, zerolog.Nop())
	m.Init(context.Background())

	assert.True(t, m.Installed())
	assert.Equal(t, "1.9.0", m.Version())

	path, err := m.BinaryPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(binDir, "syft"), path)

	calls := spy.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"--version"}, calls[0].Args)
}

func TestInitDegradesOnProbeFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("conventional path differs on windows")
	}
	storage := t.TempDir()
	binDir := filepath.Join(storage, "syft")
	require.NoError(t, os.MkdirAll(binDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(binDir, "syft"), []byte("bin"), 0755))

	spy := &executor.Spy{Err: fmt.Errorf("exec format error")}
	m := New(Syft, storage, &fakeReleases{}, spy, promptFirst, 10, zerolog.Nop())
	m.Init(context.Background())

	assert.False(t, m.Installed())
	assert.Empty(t, m.Version())
}

func TestSelectVersionExcludesInstalledTag(t *testing.T) {
	releases := &fakeReleases{releases: []gh.Release{
		{ID: 1, TagName: "v1.9.0"},
		{ID: 2, TagName: "v1.8.0"},
	}}

	var offered []string
	prompt := func(title, description string, options []string) (string, error) {
		offered = options
		return options[0], nil
	}
	m := newManager(t, releases, nil, prompt)
	m.version = "1.9.0"

	got, err := m.SelectVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.8.0", got, "leading v must be stripped")
	assert.Equal(t, []string{"v1.8.0"}, offered)
}

func TestSelectVersionNothingChosen(t *testing.T) {
	releases := &fakeReleases{releases: []gh.Release{{ID: 1, TagName: "v1.9.0"}}}
	prompt := func(title, description string, options []string) (string, error) {
		return "", nil
	}
	m := newManager(t, releases, nil, prompt)

	_, err := m.SelectVersion(context.Background())
	assert.True(t, errors.Is(err, errors.ErrNoVersionSelected))
}

func TestInstallDownloadsExtractsAndCleansUp(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("tarball install path is POSIX specific")
	}
	releases := &fakeReleases{
		releases: []gh.Release{{ID: 7, TagName: "v1.9.0"}},
		payload:  map[string]string{"syft": "#!/bin/sh\necho syft", "LICENSE": "apache"},
	}
	storage := t.TempDir()
	m := New(Syft, storage, releases, &executor.Spy{}, promptFirst, 10, zerolog.Nop())

	require.NoError(t, m.Install(context.Background(), "1.9.0"))
	assert.True(t, m.Installed())
	assert.Equal(t, "1.9.0", m.Version())

	path, err := m.BinaryPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(storage, "syft", "syft"), path)

	// downloaded archive removed after extraction
	archiveName := platform.AssetName("syft", "1.9.0", runtime.GOOS, runtime.GOARCH)
	_, statErr := os.Stat(filepath.Join(storage, "syft", archiveName))
	assert.True(t, os.IsNotExist(statErr))
}

func TestInstallUnknownVersion(t *testing.T) {
	releases := &fakeReleases{releases: []gh.Release{{ID: 7, TagName: "v1.9.0"}}}
	m := newManager(t, releases, nil, nil)

	err := m.Install(context.Background(), "9.9.9")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	assert.Zero(t, releases.downloadCalls)
}

func TestReleasesHonorsLimit(t *testing.T) {
	releases := &fakeReleases{releases: []gh.Release{
		{ID: 1, TagName: "v1.9.0"},
		{ID: 2, TagName: "v1.8.0"},
		{ID: 3, TagName: "v1.7.0"},
	}}
	m := New(Syft, t.TempDir(), releases, nil, nil, 2, zerolog.Nop())

	got, err := m.Releases(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "v1.9.0", got[0].TagName)
}

func TestUninstallNotImplemented(t *testing.T) {
	m := newManager(t, &fakeReleases{}, nil, nil)
	err := m.Uninstall(context.Background())
	assert.True(t, errors.Is(err, errors.ErrNotImplemented))
}

func TestNewerAvailable(t *testing.T) {
	m := newManager(t, &fakeReleases{}, nil, nil)
	m.version = "1.8.0"
	assert.True(t, m.NewerAvailable("v1.9.0"))
	assert.False(t, m.NewerAvailable("v1.7.2"))
	assert.False(t, m.NewerAvailable("v1.8.0"))
}
