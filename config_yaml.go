package persist

import (
	"fmt"
	"io"
	"os"

	"github.com/goliatone/go-persist/pkg/storage"
	"gopkg.in/yaml.v3"
)

// StorageResolver maps storage names used in configuration files to backends.
type StorageResolver interface {
	ResolveStorage(name string) (storage.Storage, error)
}

// StorageResolverFunc adapts a function to StorageResolver.
type StorageResolverFunc func(name string) (storage.Storage, error)

// ResolveStorage implements StorageResolver.
func (f StorageResolverFunc) ResolveStorage(name string) (storage.Storage, error) {
	return f(name)
}

// StorageMap resolves names from a fixed set of backends.
type StorageMap map[string]storage.Storage

// ResolveStorage implements StorageResolver.
func (m StorageMap) ResolveStorage(name string) (storage.Storage, error) {
	backend, ok := m[name]
	if !ok || backend == nil {
		return nil, fmt.Errorf("%w: unknown storage %q", ErrInvalidConfig, name)
	}
	return backend, nil
}

type configDocument struct {
	StorageKey        string          `yaml:"storageKey"`
	ResetMutationType string          `yaml:"resetMutationType"`
	Storage           string          `yaml:"storage"`
	Filter            filterDocument  `yaml:"filter"`
	Paths             []entryDocument `yaml:"paths"`
}

type filterDocument struct {
	Engine     string `yaml:"engine"`
	Expression string `yaml:"expression"`
}

type entryDocument struct {
	Path  string
	Group *groupDocument
}

type groupDocument struct {
	Name       string   `yaml:"name"`
	Paths      []string `yaml:"paths"`
	Storage    string   `yaml:"storage"`
	StorageKey string   `yaml:"storageKey"`
}

// UnmarshalYAML accepts a path string or a group mapping.
func (e *entryDocument) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		return node.Decode(&e.Path)
	case yaml.MappingNode:
		// node.Decode starts a fresh decoder that does not carry KnownFields
		if err := checkFields(node, groupFields); err != nil {
			return err
		}
		var group groupDocument
		if err := node.Decode(&group); err != nil {
			return err
		}
		e.Group = &group
		return nil
	default:
		return fmt.Errorf("line %d: path entry must be a string or a mapping", node.Line)
	}
}

var groupFields = map[string]struct{}{
	"name":       {},
	"paths":      {},
	"storage":    {},
	"storageKey": {},
}

func checkFields(node *yaml.Node, known map[string]struct{}) error {
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i]
		if _, ok := known[key.Value]; !ok {
			return fmt.Errorf("line %d: field %s not found in path group", key.Line, key.Value)
		}
	}
	return nil
}

// LoadConfig reads a YAML configuration. Storage names are looked up with
// resolver, which may be nil when the document names no storage.
func LoadConfig(r io.Reader, resolver StorageResolver) (Config, error) {
	var doc configDocument
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	cfg := Config{
		StorageKey:        doc.StorageKey,
		ResetMutationType: doc.ResetMutationType,
		FilterEngine:      doc.Filter.Engine,
		FilterExpression:  doc.Filter.Expression,
	}
	var err error
	if cfg.Storage, err = resolveStorage(resolver, doc.Storage); err != nil {
		return Config{}, err
	}
	for i, entry := range doc.Paths {
		if entry.Group == nil {
			cfg.Paths = append(cfg.Paths, Path(entry.Path))
			continue
		}
		backend, err := resolveStorage(resolver, entry.Group.Storage)
		if err != nil {
			return Config{}, fmt.Errorf("paths[%d]: %w", i, err)
		}
		cfg.Paths = append(cfg.Paths, Override(GroupOverride{
			Name:       entry.Group.Name,
			Paths:      entry.Group.Paths,
			Storage:    backend,
			StorageKey: entry.Group.StorageKey,
		}))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfigFile is LoadConfig for a file path.
func LoadConfigFile(path string, resolver StorageResolver) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("persist: open config: %w", err)
	}
	defer f.Close()
	return LoadConfig(f, resolver)
}

func resolveStorage(resolver StorageResolver, name string) (storage.Storage, error) {
	if name == "" {
		return nil, nil
	}
	if resolver == nil {
		return nil, fmt.Errorf("%w: storage %q named without a resolver", ErrInvalidConfig, name)
	}
	backend, err := resolver.ResolveStorage(name)
	if err != nil {
		return nil, err
	}
	return backend, nil
}
