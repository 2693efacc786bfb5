package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hjson/hjson-go/v4"
	"gopkg.in/yaml.v2"

	"github.com/odyssey-erp/orderdesk/internal/orders"
)

// LoadAliases extends orders.DefaultAliases with an alias file mapping
// canonical field names to extra header spellings:
//
//	product_code: [Art. Nr, Artikelnummer]
//
// YAML (.yaml, .yml) and Hjson (.hjson, .json) are accepted. An empty path
// returns the defaults.
func LoadAliases(path string) (map[string]orders.Field, error) {
	aliases := make(map[string]orders.Field, len(orders.DefaultAliases))
	for k, f := range orders.DefaultAliases {
		aliases[k] = f
	}
	if path == "" {
		return aliases, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("app: read alias file: %w", err)
	}
	extra := map[string][]string{}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &extra)
	case ".hjson", ".json":
		err = hjson.Unmarshal(data, &extra)
	default:
		return nil, fmt.Errorf("app: alias file %q: unsupported extension %q", path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("app: parse alias file: %w", err)
	}

	known := make(map[orders.Field]struct{}, len(orders.Fields))
	for _, f := range orders.Fields {
		known[f] = struct{}{}
	}
	for name, headers := range extra {
		field := orders.Field(strings.TrimSpace(name))
		if _, ok := known[field]; !ok {
			return nil, fmt.Errorf("app: alias file: unknown field %q", name)
		}
		for _, h := range headers {
			key := orders.NormalizeHeader(h)
			if key == "" {
				continue
			}
			aliases[key] = field
		}
	}
	return aliases, nil
}
