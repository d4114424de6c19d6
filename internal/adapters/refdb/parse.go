package refdb

import (
	"fmt"
	"slices"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/okian/burstcov/internal/domain/model"
	"github.com/okian/burstcov/internal/domain/product"
)

// row is one table entry as stored on disk. Bursts is either a collection
// literal string or a native sequence.
type row struct {
	MGRSSetID      string    `yaml:"mgrs_set_id"`
	Bursts         yaml.Node `yaml:"bursts"`
	LandOceanFlag  string    `yaml:"land_ocean_flag"`
	NumberOfBursts *int      `yaml:"number_of_bursts"`
}

// Decode parses a reference table document (YAML, or JSON as its subset)
// into validated partitions, in document order.
func Decode(data []byte) ([]*model.TilePartition, error) {
	var rows []row
	if err := yaml.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("%w: decode table: %w", ErrMalformedRow, err)
	}

	out := make([]*model.TilePartition, 0, len(rows))
	for i := range rows {
		p, err := rows[i].partition()
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *row) partition() (*model.TilePartition, error) {
	id := strings.TrimSpace(r.MGRSSetID)
	if id == "" {
		return nil, fmt.Errorf("%w: missing mgrs_set_id", ErrMalformedRow)
	}

	ids, err := burstIDs(&r.Bursts)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: bursts: %w", ErrMalformedRow, id, err)
	}

	required := make(map[string]struct{}, len(ids))
	var orbits []int
	for _, b := range ids {
		b = strings.TrimSpace(b)
		orbit, err := product.OrbitFromBurstID(b)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrMalformedRow, id, err)
		}
		required[b] = struct{}{}
		orbits = append(orbits, orbit)
	}
	slices.Sort(orbits)
	orbits = slices.Compact(orbits)

	landOcean, err := parseLandOcean(r.LandOceanFlag)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformedRow, id, err)
	}

	count := len(required)
	if r.NumberOfBursts != nil {
		count = *r.NumberOfBursts
	}
	if count <= 0 {
		return nil, fmt.Errorf("%w: %s: required burst count %d", ErrMalformedRow, id, count)
	}

	return &model.TilePartition{
		TileSetID:          id,
		OrbitNumbers:       orbits,
		RequiredBurstIDs:   required,
		RequiredBurstCount: count,
		LandOcean:          landOcean,
	}, nil
}

// burstIDs accepts a native sequence or a string holding a bracketed
// ['a', 'b'] or braced {'a', 'b'} literal. Both literal forms are YAML flow
// sequences once braces are swapped for brackets.
func burstIDs(n *yaml.Node) ([]string, error) {
	var ids []string
	switch n.Kind {
	case yaml.SequenceNode:
		if err := n.Decode(&ids); err != nil {
			return nil, err
		}
	case yaml.ScalarNode:
		lit := strings.TrimSpace(n.Value)
		if strings.HasPrefix(lit, "{") && strings.HasSuffix(lit, "}") {
			lit = "[" + lit[1:len(lit)-1] + "]"
		}
		if !strings.HasPrefix(lit, "[") || !strings.HasSuffix(lit, "]") {
			return nil, fmt.Errorf("unrecognized literal %q", n.Value)
		}
		if err := yaml.Unmarshal([]byte(lit), &ids); err != nil {
			return nil, fmt.Errorf("literal %q: %w", n.Value, err)
		}
	case 0:
		return nil, fmt.Errorf("missing")
	default:
		return nil, fmt.Errorf("unsupported node kind %d", n.Kind)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("empty")
	}
	return ids, nil
}

func parseLandOcean(flag string) (model.LandOcean, error) {
	switch lo := model.LandOcean(strings.ToLower(strings.TrimSpace(flag))); lo {
	case model.Water, model.Land, model.WaterLand:
		return lo, nil
	default:
		return "", fmt.Errorf("unknown land_ocean_flag %q", flag)
	}
}
