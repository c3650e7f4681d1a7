package toolmgr

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/mod/semver"

	"github.com/container-tools/podscan/internal/archive"
	"github.com/container-tools/podscan/internal/executor"
	"github.com/container-tools/podscan/internal/gh"
	"github.com/container-tools/podscan/internal/platform"
	"github.com/container-tools/podscan/util/common/errors"
	"github.com/container-tools/podscan/util/common/fileutil"
)

// ReleaseSource is the slice of the release API the manager needs.
type ReleaseSource interface {
	ListReleases(ctx context.Context, owner, repo string, limit int) ([]gh.Release, error)
	DownloadAsset(ctx context.Context, owner, repo string, releaseID int64, assetName, dest string) error
}

// Prompter asks the user to pick one of the offered options.
type Prompter func(title, description string, options []string) (string, error)

// Manager installs, versions and exposes one external tool binary.
// The binary lives at {storage}/{id}/{id} by convention. There is no
// persisted manifest: the installed state is the binary on disk plus a
// runtime --version probe.
type Manager struct {
	desc         Descriptor
	storage      string
	releases     ReleaseSource
	exec         executor.Executor
	prompt       Prompter
	releaseLimit int
	log          zerolog.Logger

	version string
	binPath string
}

// New builds a manager for one tool. Call Init before anything else.
func New(desc Descriptor, storage string, releases ReleaseSource, exec executor.Executor, prompt Prompter, releaseLimit int, log zerolog.Logger) *Manager {
	if releaseLimit <= 0 {
		releaseLimit = 10
	}
	return &Manager{
		desc:         desc,
		storage:      storage,
		releases:     releases,
		exec:         exec,
		prompt:       prompt,
		releaseLimit: releaseLimit,
		log:          log.With().Str("tool", desc.ID).Logger(),
	}
}

// Descriptor returns the managed tool's descriptor.
func (m *Manager) Descriptor() Descriptor {
	return m.desc
}

// Init probes for an existing binary at the conventional storage path
// and reads its version. A failed probe degrades to "not installed"
// with a warning; Init itself never fails on probe errors.
func (m *Manager) Init(ctx context.Context) {
	path := m.conventionalPath()
	if !fileutil.IsFile(path) {
		m.log.Debug().Str("path", path).Msg("No existing binary found")
		return
	}

	version, err := m.probeVersion(ctx, path)
	if err != nil {
		m.log.Warn().Err(err).Str("path", path).Msg("Version probe failed, treating tool as not installed")
		return
	}

	m.version = version
	m.binPath = path
	m.log.Info().Str("version", version).Msg("Found installed tool")
}

// Installed reports whether the tool has both a known version and an
// existing binary on disk.
func (m *Manager) Installed() bool {
	return m.version != "" && fileutil.IsFile(m.binPath)
}

// Version returns the installed version, or "" when not installed.
func (m *Manager) Version() string {
	return m.version
}

// BinaryPath returns the runnable binary path. A manager with a missing
// binary or unknown version refuses with a NotInstalledError rather
// than attempt execution.
func (m *Manager) BinaryPath() (string, error) {
	if !m.Installed() {
		return "", errors.NewNotInstalledError(m.desc.ID)
	}
	return m.binPath, nil
}

// Releases lists the recent upstream releases for the tool, newest
// first, capped at the configured limit.
func (m *Manager) Releases(ctx context.Context) ([]gh.Release, error) {
	return m.releases.ListReleases(ctx, m.desc.Owner, m.desc.Repo, m.releaseLimit)
}

// SelectVersion lists upstream releases, excluding the installed tag,
// and prompts for a choice. The returned version has the leading "v"
// stripped. Fails with ErrNoVersionSelected when nothing was chosen.
func (m *Manager) SelectVersion(ctx context.Context) (string, error) {
	releases, err := m.releases.ListReleases(ctx, m.desc.Owner, m.desc.Repo, m.releaseLimit)
	if err != nil {
		return "", err
	}

	var tags []string
	for _, r := range releases {
		if m.version != "" && strings.TrimPrefix(r.TagName, "v") == m.version {
			continue
		}
		tags = append(tags, r.TagName)
	}
	if len(tags) == 0 {
		return "", errors.NewNotFoundError("installable release", m.desc.Owner+"/"+m.desc.Repo)
	}

	choice, err := m.prompt(
		"Select "+m.desc.DisplayName+" version",
		m.desc.Description,
		tags,
	)
	if err != nil {
		return "", err
	}
	if choice == "" {
		return "", errors.NewStateError("select version", "no version chosen", errors.ErrNoVersionSelected)
	}
	return strings.TrimPrefix(choice, "v"), nil
}

// Install downloads and extracts the given version into the tool's
// storage directory. The version must have been selected first; an
// empty version fails before any network call. The downloaded archive
// is removed best-effort whether or not extraction succeeded.
func (m *Manager) Install(ctx context.Context, version string) error {
	if version == "" {
		return errors.NewStateError("install", "a version must be selected before installing", errors.ErrNoVersionSelected)
	}
	version = strings.TrimPrefix(version, "v")

	release, err := m.findRelease(ctx, version)
	if err != nil {
		return err
	}

	assetName := platform.HostAssetName(m.desc.ID, version)
	destDir := filepath.Join(m.storage, m.desc.ID)
	archivePath := filepath.Join(destDir, assetName)

	m.log.Info().Str("version", version).Str("asset", assetName).Msg("Installing tool")

	if err := m.releases.DownloadAsset(ctx, m.desc.Owner, m.desc.Repo, release.ID, assetName, archivePath); err != nil {
		return err
	}
	defer func() {
		// Best-effort cleanup regardless of extraction outcome.
		_ = os.Remove(archivePath)
	}()

	binPath, err := archive.Extract(archivePath, destDir, m.desc.ID)
	if err != nil {
		return err
	}

	m.version = version
	m.binPath = binPath
	m.log.Info().Str("version", version).Str("path", binPath).Msg("Tool installed")
	return nil
}

// Uninstall is not supported. The storage directory is shared with scan
// artifacts and removal semantics were never settled upstream.
func (m *Manager) Uninstall(ctx context.Context) error {
	return errors.NewStateError("uninstall "+m.desc.ID, "uninstall is not supported", errors.ErrNotImplemented)
}

func (m *Manager) conventionalPath() string {
	return filepath.Join(m.storage, m.desc.ID, platform.HostExeName(m.desc.ID))
}

// probeVersion runs `<binary> --version` and parses the second
// whitespace-delimited token of stdout, per the "<name> <semver>"
// contract.
func (m *Manager) probeVersion(ctx context.Context, path string) (string, error) {
	stdout, _, err := m.exec.Run(ctx, path, []string{"--version"}, nil)
	if err != nil {
		return "", err
	}

	fields := strings.Fields(string(stdout))
	if len(fields) < 2 {
		return "", errors.NewStateError("probe version", "unexpected --version output: "+strings.TrimSpace(string(stdout)), nil)
	}
	return fields[1], nil
}

func (m *Manager) findRelease(ctx context.Context, version string) (gh.Release, error) {
	releases, err := m.releases.ListReleases(ctx, m.desc.Owner, m.desc.Repo, m.releaseLimit)
	if err != nil {
		return gh.Release{}, err
	}
	for _, r := range releases {
		if strings.TrimPrefix(r.TagName, "v") == version {
			return r, nil
		}
	}
	return gh.Release{}, errors.NewNotFoundError("release", "v"+version)
}

// NewerAvailable reports whether tag is a newer semver than the
// installed version. Used to badge upgrade candidates in listings.
func (m *Manager) NewerAvailable(tag string) bool {
	if m.version == "" {
		return false
	}
	return semver.Compare(ensureV(tag), ensureV(m.version)) > 0
}

func ensureV(v string) string {
	if strings.HasPrefix(v, "v") {
		return v
	}
	return "v" + v
}
