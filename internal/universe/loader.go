package universe

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/corpstory/starmap/internal/timeutil"
)

const maxCatalogSize = 64 * 1024 * 1024 // 64MB

type catalogFile struct {
	Systems []struct {
		ID         int64   `yaml:"id"`
		Name       string  `yaml:"name"`
		X          float64 `yaml:"x"`
		Y          float64 `yaml:"y"`
		Z          float64 `yaml:"z"`
		Luminosity float64 `yaml:"luminosity"`
	} `yaml:"systems"`
	Regions []regionFile `yaml:"regions"`
	Patch   *struct {
		Effective string       `yaml:"effective"`
		Regions   []regionFile `yaml:"regions"`
	} `yaml:"patch"`
}

type regionFile struct {
	ID      int64   `yaml:"id"`
	Name    string  `yaml:"name"`
	Systems []int64 `yaml:"systems"`
}

// LoadCatalog reads a YAML catalog file from disk.
func LoadCatalog(path string) (*Catalog, error) {
	cleanPath := filepath.Clean(path)
	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat catalog: %w", err)
	}
	if info.Size() > maxCatalogSize {
		return nil, fmt.Errorf("catalog too large: %d bytes (max %d)", info.Size(), maxCatalogSize)
	}
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes a YAML catalog:
//
//	systems:
//	  - {id: 30000142, name: Jita, x: -1.29e17, y: 6.07e16, z: 1.17e17, luminosity: 0.29}
//	regions:
//	  - {id: 10000002, name: The Forge, systems: [30000142]}
//	patch:
//	  effective: 2021-10-13
//	  regions:
//	    - {id: 10000070, name: Pochven, systems: [...]}
func ParseCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
	}

	systems := make([]System, 0, len(f.Systems))
	for _, s := range f.Systems {
		systems = append(systems, System{
			ID:         s.ID,
			Name:       s.Name,
			Pos:        Point{X: s.X, Y: s.Y, Z: s.Z},
			Luminosity: s.Luminosity,
		})
	}

	regions := make([]Region, 0, len(f.Regions))
	for _, r := range f.Regions {
		regions = append(regions, Region{ID: r.ID, Name: r.Name, Systems: r.Systems})
	}

	var patch *Patch
	if f.Patch != nil {
		eff, err := timeutil.ParseDay(f.Patch.Effective)
		if err != nil {
			return nil, fmt.Errorf("patch effective date: %w", err)
		}
		patch = &Patch{Effective: eff, Regions: make(map[int64]*Region, len(f.Patch.Regions))}
		for _, r := range f.Patch.Regions {
			if _, dup := patch.Regions[r.ID]; dup {
				return nil, fmt.Errorf("patch: duplicate region id %d", r.ID)
			}
			patch.Regions[r.ID] = &Region{ID: r.ID, Name: r.Name, Systems: r.Systems}
		}
	}

	return NewCatalog(systems, regions, patch)
}
