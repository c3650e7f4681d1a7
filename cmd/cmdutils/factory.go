// Package cmdutils wires the shared dependencies the command packages
// need: configuration, the artifact store, the release client and the
// per-tool managers.
package cmdutils

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/container-tools/podscan/internal/config"
	"github.com/container-tools/podscan/internal/executor"
	"github.com/container-tools/podscan/internal/gh"
	"github.com/container-tools/podscan/internal/podman"
	"github.com/container-tools/podscan/internal/sbom"
	"github.com/container-tools/podscan/internal/store"
	"github.com/container-tools/podscan/internal/toolmgr"
	"github.com/container-tools/podscan/internal/tui"
	"github.com/container-tools/podscan/internal/vuln"
	"github.com/container-tools/podscan/util/common/errors"
)

type Factory struct {
	Config         *config.Config
	ConnectionName string
	// JSON mirrors the global --json flag: commands that render tables
	// emit raw JSON instead when it is set.
	JSON bool
	Log  zerolog.Logger

	exec     executor.Executor
	releases toolmgr.ReleaseSource
	st       *store.Store
	managers map[string]*toolmgr.Manager
}

func NewFactory(cfg *config.Config, log zerolog.Logger) *Factory {
	token := cfg.GitHub.Token
	if token == "" {
		token = gh.ResolveToken()
	}
	return &Factory{
		Config:   cfg,
		Log:      log,
		exec:     executor.System(),
		releases: gh.NewClient(log, gh.WithToken(token)),
		st:       store.New(cfg.Storage.Dir),
		managers: make(map[string]*toolmgr.Manager),
	}
}

// Executor returns the shared process executor.
func (f *Factory) Executor() executor.Executor {
	return f.exec
}

// Store returns the artifact store rooted at the configured storage dir.
func (f *Factory) Store() *store.Store {
	return f.st
}

// Connection resolves the connection named on the command line, or the
// local connection when none was named.
func (f *Factory) Connection() (podman.Connection, error) {
	conns, err := podman.LoadConnections(f.Config.Podman.ContainersConf)
	if err != nil {
		return podman.Connection{}, err
	}
	if f.ConnectionName == "" {
		return podman.Local, nil
	}
	return podman.Find(conns, f.ConnectionName)
}

// Manager returns the initialised manager for a tool id. Managers are
// cached so repeated lookups share one probed state.
func (f *Factory) Manager(ctx context.Context, id string) (*toolmgr.Manager, error) {
	if m, ok := f.managers[id]; ok {
		return m, nil
	}
	desc, ok := toolmgr.Lookup(id)
	if !ok {
		return nil, errors.NewNotFoundError("tool", id)
	}
	m := toolmgr.New(desc, f.Config.Storage.Dir, f.releases, f.exec,
		tui.PromptSelect, f.Config.GitHub.ReleaseLimit, f.Log)
	m.Init(ctx)
	f.managers[id] = m
	return m, nil
}

// SBOMScanner builds the SBOM invoker bound to the syft manager.
func (f *Factory) SBOMScanner(ctx context.Context) (*sbom.Scanner, error) {
	m, err := f.Manager(ctx, toolmgr.Syft.ID)
	if err != nil {
		return nil, err
	}
	return sbom.NewScanner(m, f.st, f.exec, f.Config.Podman.ProviderID, f.Log), nil
}

// VulnScanner builds the vulnerability invoker bound to the grype
// manager.
func (f *Factory) VulnScanner(ctx context.Context) (*vuln.Scanner, error) {
	m, err := f.Manager(ctx, toolmgr.Grype.ID)
	if err != nil {
		return nil, err
	}
	return vuln.NewScanner(m, f.st, f.exec, f.Log), nil
}
