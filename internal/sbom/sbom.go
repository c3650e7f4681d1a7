// Package sbom invokes the managed SBOM generator against container
// images, caching results by image id.
package sbom

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/container-tools/podscan/internal/executor"
	"github.com/container-tools/podscan/internal/podman"
	"github.com/container-tools/podscan/internal/store"
	"github.com/container-tools/podscan/internal/toolmgr"
)

// Scanner generates SBOM documents for engine images.
type Scanner struct {
	tool       *toolmgr.Manager
	store      *store.Store
	exec       executor.Executor
	providerID string
	log        zerolog.Logger
}

// NewScanner wires a scanner to its managed tool and artifact store.
func NewScanner(tool *toolmgr.Manager, st *store.Store, exec executor.Executor, providerID string, log zerolog.Logger) *Scanner {
	return &Scanner{
		tool:       tool,
		store:      st,
		exec:       exec,
		providerID: providerID,
		log:        log,
	}
}

// Analyze produces the SBOM for an image and returns the artifact path.
// When the artifact already exists the binary is not invoked at all —
// presence alone satisfies the cache, with no freshness check. A fresh
// result is written to a temp file and renamed into place.
func (s *Scanner) Analyze(ctx context.Context, conn podman.Connection, imageID string) (string, error) {
	bin, err := s.tool.BinaryPath()
	if err != nil {
		return "", err
	}

	key := store.SBOMKey(s.providerID, conn.Name, imageID)
	log := s.log.With().
		Str("trace_id", uuid.NewString()).
		Str("image", store.SanitizeImageID(imageID)).
		Str("connection", conn.Name).
		Logger()

	if s.store.Has(key) {
		log.Debug().Str("path", s.store.Abs(key)).Msg("SBOM cache hit")
		return s.store.Abs(key), nil
	}

	env, err := podman.Env(conn)
	if err != nil {
		return "", err
	}

	log.Info().Msg("Generating SBOM")
	return s.store.Put(key, func(tmp string) error {
		args := []string{"--from=podman", imageID, "--output=json=" + tmp}
		_, _, err := s.exec.Run(ctx, bin, args, env)
		return err
	})
}
