package persist

import (
	"slices"

	"github.com/goliatone/go-persist/pkg/storage"
)

// Group is a fully resolved persistence group.
type Group struct {
	Name        string
	Paths       []string
	Storage     storage.Storage
	StorageKey  string
	GetState    GetStateFunc
	SetState    SetStateFunc
	RemoveState RemoveStateFunc
}

func (g Group) clone() Group {
	g.Paths = slices.Clone(g.Paths)
	return g
}

// NormalizeGroups validates cfg and resolves it into ordered groups: one per
// override in declaration order, then the implicit group holding every bare
// path once.
func NormalizeGroups(cfg Config) ([]Group, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.WithDefaults()

	implicit := Group{
		Name:        DefaultGroupName,
		Paths:       []string{},
		Storage:     cfg.Storage,
		StorageKey:  cfg.StorageKey,
		GetState:    cfg.GetState,
		SetState:    cfg.SetState,
		RemoveState: cfg.RemoveState,
	}
	seen := map[string]struct{}{}
	var groups []Group
	for i, entry := range cfg.Paths {
		if entry.Group == nil {
			if _, dup := seen[entry.Path]; dup {
				continue
			}
			seen[entry.Path] = struct{}{}
			implicit.Paths = append(implicit.Paths, entry.Path)
			continue
		}
		groups = append(groups, resolveOverride(i, entry.Group, implicit))
	}
	return append(groups, implicit), nil
}

func resolveOverride(index int, override *GroupOverride, defaults Group) Group {
	group := defaults
	group.Name = groupName(index, override)
	group.Paths = slices.Clone(override.Paths)
	if override.Storage != nil {
		group.Storage = override.Storage
	}
	if override.StorageKey != "" {
		group.StorageKey = override.StorageKey
	}
	if override.GetState != nil {
		group.GetState = override.GetState
	}
	if override.SetState != nil {
		group.SetState = override.SetState
	}
	if override.RemoveState != nil {
		group.RemoveState = override.RemoveState
	}
	return group
}
