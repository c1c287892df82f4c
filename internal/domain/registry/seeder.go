package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"go.uber.org/zap"

	"github.com/halcyon-desktop/halcyon/internal/shared/types"
)

const manifestExt = ".app.yaml"

// Seeder loads application manifests from a directory into the
// registry at startup. Manifests are YAML descriptor files with the
// .app.yaml extension; seeded applications get a nil component and can
// only be launched once code registers a real one, so the seeder is
// mostly useful for pre-populating catalog metadata and autostart sets.
type Seeder struct {
	registry *Manager
	dir      string
}

// NewSeeder creates a seeder reading manifests from dir
func NewSeeder(registry *Manager, dir string) *Seeder {
	return &Seeder{registry: registry, dir: dir}
}

// Seed loads every manifest in the directory. Individual manifest
// failures are logged and skipped; only an unreadable directory is an
// error. Returns the descriptors that were registered.
func (s *Seeder) Seed() ([]types.Descriptor, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest dir: %w", err)
	}

	var seeded []types.Descriptor
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), manifestExt) {
			continue
		}
		desc, err := s.loadManifest(filepath.Join(s.dir, e.Name()))
		if err != nil {
			s.registry.logger.Warn("skipping manifest", zap.String("file", e.Name()), zap.Error(err))
			continue
		}
		if err := s.registry.Register(*desc, types.Component{}); err != nil {
			s.registry.logger.Warn("skipping manifest", zap.String("file", e.Name()), zap.Error(err))
			continue
		}
		seeded = append(seeded, *desc)
	}
	return seeded, nil
}

// Autostarts returns the seeded descriptors flagged for autostart
func Autostarts(seeded []types.Descriptor) []types.Descriptor {
	var out []types.Descriptor
	for _, desc := range seeded {
		if desc.Launch.Autostart {
			out = append(out, desc)
		}
	}
	return out
}

func (s *Seeder) loadManifest(path string) (*types.Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var desc types.Descriptor
	if err := yaml.Unmarshal(data, &desc); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if violations := ValidateManifest(&desc); len(violations) > 0 {
		return nil, fmt.Errorf("invalid manifest: %s", strings.Join(violations, "; "))
	}
	return &desc, nil
}
