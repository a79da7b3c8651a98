package persist

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-persist/pkg/storage"
)

var (
	// ErrInvalidConfig reports a configuration rejected at construction.
	ErrInvalidConfig = errors.New("persist: invalid config")
	// ErrStoreRequired reports a nil host store.
	ErrStoreRequired = errors.New("persist: host store is required")
)

// Config describes what to persist and where. Zero fields take defaults when
// the plugin is built; only Paths is required.
type Config struct {
	Paths []PathEntry

	// Storage defaults to a fresh storage.Memory per configuration.
	Storage storage.Storage
	// StorageKey defaults to DefaultStorageKey.
	StorageKey  string
	GetState    GetStateFunc
	SetState    SetStateFunc
	RemoveState RemoveStateFunc

	// MutationFilter defaults to accepting every mutation. When nil and
	// FilterExpression is set, the expression decides.
	MutationFilter   MutationFilter
	FilterEngine     string
	FilterExpression string

	// ResetMutationType defaults to DefaultResetMutationType.
	ResetMutationType string
}

// PathEntry is either a bare dotted path routed to the implicit group or a
// group override. Exactly one of Path and Group must be set.
type PathEntry struct {
	Path  string
	Group *GroupOverride
}

// GroupOverride declares an explicit group. Unset fields inherit the
// top-level Config value.
type GroupOverride struct {
	Name        string
	Paths       []string
	Storage     storage.Storage
	StorageKey  string
	GetState    GetStateFunc
	SetState    SetStateFunc
	RemoveState RemoveStateFunc
}

// Path returns a bare path entry.
func Path(path string) PathEntry {
	return PathEntry{Path: path}
}

// Paths returns bare path entries for every path.
func Paths(paths ...string) []PathEntry {
	entries := make([]PathEntry, 0, len(paths))
	for _, path := range paths {
		entries = append(entries, Path(path))
	}
	return entries
}

// Override returns a group override entry.
func Override(override GroupOverride) PathEntry {
	return PathEntry{Group: &override}
}

// WithDefaults returns a copy of c with every unset field defaulted. The
// default storage is allocated here so independent configurations never
// share a backend.
func (c Config) WithDefaults() Config {
	if c.Storage == nil {
		c.Storage = storage.NewMemory()
	}
	if c.StorageKey == "" {
		c.StorageKey = DefaultStorageKey
	}
	if c.GetState == nil {
		c.GetState = JSONGetState
	}
	if c.SetState == nil {
		c.SetState = JSONSetState
	}
	if c.RemoveState == nil {
		c.RemoveState = RemoveState
	}
	if c.ResetMutationType == "" {
		c.ResetMutationType = DefaultResetMutationType
	}
	return c
}

// Validate reports the first malformed entry. Nothing is dropped silently.
func (c Config) Validate() error {
	if len(c.Paths) == 0 {
		return fmt.Errorf("%w: at least one path entry is required", ErrInvalidConfig)
	}
	names := map[string]int{}
	for i, entry := range c.Paths {
		switch {
		case entry.Group != nil && entry.Path != "":
			return fmt.Errorf("%w: paths[%d] sets both a path and a group", ErrInvalidConfig, i)
		case entry.Group == nil && entry.Path == "":
			return fmt.Errorf("%w: paths[%d] is empty", ErrInvalidConfig, i)
		case entry.Group != nil:
			if len(entry.Group.Paths) == 0 {
				return fmt.Errorf("%w: paths[%d] group has no paths", ErrInvalidConfig, i)
			}
			for j, path := range entry.Group.Paths {
				if path == "" {
					return fmt.Errorf("%w: paths[%d].paths[%d] is empty", ErrInvalidConfig, i, j)
				}
			}
			name := groupName(i, entry.Group)
			if name == DefaultGroupName {
				return fmt.Errorf("%w: paths[%d] group name %q is reserved", ErrInvalidConfig, i, name)
			}
			if prev, ok := names[name]; ok {
				return fmt.Errorf("%w: paths[%d] group name %q already used by paths[%d]", ErrInvalidConfig, i, name, prev)
			}
			names[name] = i
		}
	}
	if c.MutationFilter != nil && c.FilterExpression != "" {
		return fmt.Errorf("%w: set either a mutation filter or a filter expression", ErrInvalidConfig)
	}
	return nil
}

func groupName(index int, override *GroupOverride) string {
	if override.Name != "" {
		return override.Name
	}
	return fmt.Sprintf("group-%d", index)
}
