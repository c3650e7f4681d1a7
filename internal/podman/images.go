package podman

import (
	"context"
	"encoding/json"

	"github.com/gobwas/glob"

	"github.com/container-tools/podscan/internal/executor"
	"github.com/container-tools/podscan/util/common/errors"
)

// Image is one engine image as reported by `podman images`.
type Image struct {
	ID    string   `json:"Id"`
	Names []string `json:"Names"`
	Size  int64    `json:"Size"`
}

// ListImages queries the engine for its images through the podman CLI.
// An optional glob pattern filters by image name.
func ListImages(ctx context.Context, exec executor.Executor, conn Connection, pattern string) ([]Image, error) {
	env, err := Env(conn)
	if err != nil {
		return nil, err
	}

	stdout, _, err := exec.Run(ctx, "podman", []string{"images", "--format", "json"}, env)
	if err != nil {
		return nil, errors.Wrap(err, "list images")
	}

	var images []Image
	if err := json.Unmarshal(stdout, &images); err != nil {
		return nil, errors.Wrap(err, "parse image list")
	}

	if pattern == "" {
		return images, nil
	}

	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, errors.Wrap(err, "compile image filter")
	}

	filtered := images[:0]
	for _, img := range images {
		for _, name := range img.Names {
			if g.Match(name) {
				filtered = append(filtered, img)
				break
			}
		}
	}
	return filtered, nil
}
