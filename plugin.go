package persist

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goliatone/go-persist/layering"
	"github.com/goliatone/go-persist/pkg/activity"
	"github.com/goliatone/go-persist/pkg/store"
)

// Plugin mirrors the configured paths of a host store into storage, restores
// them when attached and resets state on the reset mutation.
type Plugin struct {
	host      Store
	cfg       pluginConfig
	groups    []Group
	filter    MutationFilter
	resetType string
	logger    Logger
	emitter   *activity.Emitter
	newID     func() string
	now       func() time.Time

	// mu serializes save and reset cycles for hosts that do not serialize
	// their subscribers.
	mu          sync.Mutex
	initial     map[string]any
	layers      []Layer
	unsubscribe func()
	closed      bool
}

// New attaches a plugin to host. It captures the attach time snapshot, merges
// every group's persisted data into the live state, registers the reset
// mutation and subscribes to commits. Configuration errors wrap
// ErrInvalidConfig.
func New(host Store, config Config, opts ...Option) (*Plugin, error) {
	if host == nil {
		return nil, ErrStoreRequired
	}
	groups, err := NormalizeGroups(config)
	if err != nil {
		return nil, err
	}
	config = config.WithDefaults()

	cfg := applyOptions(opts)
	if len(cfg.optionErrs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(cfg.optionErrs...))
	}
	p := &Plugin{
		host:      host,
		cfg:       cfg,
		groups:    groups,
		resetType: config.ResetMutationType,
		logger:    cfg.loggerOrNoop(),
		newID:     cfg.idGenerator(),
		now:       cfg.clock(),
	}
	p.emitter = p.newEmitter()
	if p.filter, err = p.resolveFilter(config); err != nil {
		return nil, err
	}

	p.initial = layering.CloneTree(host.State())
	if p.initial == nil {
		p.initial = map[string]any{}
	}

	if err := host.RegisterModule(p.resetType, store.Module{
		Mutations: map[string]store.MutationHandler{
			// state changes for a reset happen in the subscriber
			p.resetType: func(map[string]any, any) {},
		},
	}); err != nil {
		return nil, fmt.Errorf("persist: register %q: %w", p.resetType, err)
	}

	p.restore()
	p.unsubscribe = host.Subscribe(p.onMutation)
	return p, nil
}

func (p *Plugin) resolveFilter(config Config) (MutationFilter, error) {
	if config.MutationFilter != nil {
		return config.MutationFilter, nil
	}
	if config.FilterExpression == "" {
		return acceptAll, nil
	}
	evaluator := p.cfg.evaluator
	if evaluator == nil {
		var err error
		evaluator, err = NewEvaluator(config.FilterEngine, p.cfg.programCache, p.cfg.functions)
		if err != nil {
			return nil, err
		}
	}
	filter, err := NewExpressionFilter(evaluator, config.FilterExpression, p.cfg.evaluatorLoggerOrNoop())
	if err != nil {
		return nil, fmt.Errorf("%w: filter: %w", ErrInvalidConfig, err)
	}
	return filter.Filter(), nil
}

func (p *Plugin) restore() {
	p.layers = make([]Layer, 0, len(p.groups))
	for i, group := range p.groups {
		snapshot := p.read(group, OpRestore, "")
		layer := Layer{
			Group:      group.Name,
			StorageKey: group.StorageKey,
			Priority:   i,
			Snapshot:   snapshot,
			SnapshotID: p.newID(),
			Found:      snapshot != nil,
		}
		p.layers = append(p.layers, layer)
	}
	loaded := mergeLayers(p.layers)
	if len(loaded) > 0 {
		p.host.ReplaceState(layering.Merge(p.host.State(), loaded))
	}
	for _, layer := range p.layers {
		if !layer.Found {
			continue
		}
		p.emit(activity.Event{
			Verb:       activity.VerbStateRestored,
			Group:      layer.Group,
			StorageKey: layer.StorageKey,
			SnapshotID: layer.SnapshotID,
		})
	}
}

func (p *Plugin) onMutation(mutation store.Mutation, state map[string]any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}

	if mutation.Type == p.resetType {
		p.onReset(mutation, state)
		return
	}
	if !p.filter(mutation, state) {
		return
	}
	for _, group := range p.groups {
		p.save(group, state, mutation.Type)
	}
}

func (p *Plugin) onReset(mutation store.Mutation, state map[string]any) {
	if mutation.Payload == nil {
		for _, group := range p.groups {
			p.remove(group, mutation.Type)
		}
		p.host.ReplaceState(layering.Merge(state, p.initial))
		p.emit(activity.Event{Verb: activity.VerbStateReset, MutationType: mutation.Type})
		return
	}

	paths, ok := layering.PathList(mutation.Payload)
	if !ok {
		p.logger.Log(LogEvent{
			Op:           OpReset,
			MutationType: mutation.Type,
			Err:          fmt.Errorf("%w: reset payload %T is not a list of paths", ErrInvalidPayload, mutation.Payload),
		})
		return
	}
	partial := layering.Project(p.initial, paths)
	merged := layering.Merge(layering.CloneTree(state), partial)
	for _, group := range p.groups {
		p.save(group, merged, mutation.Type)
	}
	p.host.ReplaceState(merged)
	p.emit(activity.Event{
		Verb:         activity.VerbStateReset,
		MutationType: mutation.Type,
		Paths:        paths,
	})
}

// ErrInvalidPayload reports a reset payload that is not a list of paths.
var ErrInvalidPayload = errors.New("persist: invalid reset payload")

// save merges the group's projection of state over what is already stored.
func (p *Plugin) save(group Group, state map[string]any, mutationType string) {
	existing := p.read(group, OpPersist, mutationType)
	next := layering.Merge(existing, layering.Project(state, group.Paths))
	if !p.write(group, next, mutationType) {
		return
	}
	p.emit(activity.Event{
		Verb:         activity.VerbStatePersisted,
		Group:        group.Name,
		StorageKey:   group.StorageKey,
		MutationType: mutationType,
		Paths:        group.Paths,
		SnapshotID:   p.newID(),
	})
}

// read returns nil when the group has no usable data. Failures are logged.
func (p *Plugin) read(group Group, op, mutationType string) map[string]any {
	start := p.now()
	snapshot, err := p.guard(func() (map[string]any, error) {
		return group.GetState(group.StorageKey, group.Storage)
	})
	if err != nil {
		p.logger.Log(LogEvent{
			Op:           op,
			Group:        group.Name,
			StorageKey:   group.StorageKey,
			MutationType: mutationType,
			Duration:     p.now().Sub(start),
			Err:          fmt.Errorf("read: %w", err),
		})
		return nil
	}
	return snapshot
}

func (p *Plugin) write(group Group, state map[string]any, mutationType string) bool {
	start := p.now()
	_, err := p.guard(func() (map[string]any, error) {
		return nil, group.SetState(group.StorageKey, state, group.Storage)
	})
	p.logger.Log(LogEvent{
		Op:           OpPersist,
		Group:        group.Name,
		StorageKey:   group.StorageKey,
		MutationType: mutationType,
		Duration:     p.now().Sub(start),
		Err:          err,
	})
	return err == nil
}

func (p *Plugin) remove(group Group, mutationType string) {
	start := p.now()
	_, err := p.guard(func() (map[string]any, error) {
		return nil, group.RemoveState(group.StorageKey, group.Storage)
	})
	p.logger.Log(LogEvent{
		Op:           OpRemove,
		Group:        group.Name,
		StorageKey:   group.StorageKey,
		MutationType: mutationType,
		Duration:     p.now().Sub(start),
		Err:          err,
	})
	if err != nil {
		return
	}
	p.emit(activity.Event{
		Verb:         activity.VerbStateRemoved,
		Group:        group.Name,
		StorageKey:   group.StorageKey,
		MutationType: mutationType,
	})
}

// guard turns a panicking codec or backend into an error so a commit is
// never interrupted by storage.
func (p *Plugin) guard(fn func() (map[string]any, error)) (out map[string]any, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("persist: storage panic: %v", r)
		}
	}()
	return fn()
}

// Initial returns a copy of the state captured when the plugin attached.
func (p *Plugin) Initial() map[string]any {
	p.mu.Lock()
	defer p.mu.Unlock()
	return layering.CloneTree(p.initial)
}

// Groups returns copies of the resolved persistence groups in merge order.
func (p *Plugin) Groups() []Group {
	out := make([]Group, len(p.groups))
	for i, group := range p.groups {
		out[i] = group.clone()
	}
	return out
}

// Layers returns copies of the group snapshots loaded at attach time.
func (p *Plugin) Layers() []Layer {
	p.mu.Lock()
	defer p.mu.Unlock()
	return cloneLayers(p.layers)
}

// ResolveWithTrace returns the live value at path together with the layers
// that could have supplied it, strongest first, ending with the attach time
// snapshot. A path missing from the live state returns ErrPathNotFound along
// with the trace.
func (p *Plugin) ResolveWithTrace(path string) (any, Trace, error) {
	p.mu.Lock()
	layers := cloneLayers(p.layers)
	initial := p.initial
	trace := Trace{Path: path, Layers: make([]Provenance, 0, len(layers)+1)}
	for i := len(layers) - 1; i >= 0; i-- {
		value, found := layering.Get(layers[i].Snapshot, path)
		trace.Layers = append(trace.Layers, Provenance{
			Group:      layers[i].Group,
			StorageKey: layers[i].StorageKey,
			SnapshotID: layers[i].SnapshotID,
			Path:       path,
			Value:      value,
			Found:      found,
		})
	}
	value, found := layering.Get(initial, path)
	trace.Layers = append(trace.Layers, Provenance{
		Group: InitialLayerName,
		Path:  path,
		Value: layering.Clone(value),
		Found: found,
	})
	p.mu.Unlock()

	current, ok := layering.Get(p.host.State(), path)
	if !ok {
		return nil, trace, fmt.Errorf("%w: %s", ErrPathNotFound, path)
	}
	trace.Value = layering.Clone(current)
	return trace.Value, trace, nil
}

// Flush writes every group from the current state regardless of the
// mutation filter.
func (p *Plugin) Flush() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	state := p.host.State()
	for _, group := range p.groups {
		p.save(group, state, "")
	}
}

// Close stops reacting to mutations. Persisted data is left in place.
func (p *Plugin) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	if p.unsubscribe != nil {
		p.unsubscribe()
	}
}

// ResetType returns the mutation type that triggers a reset.
func (p *Plugin) ResetType() string {
	return p.resetType
}

// Reset commits a reset on committer using the default reset mutation type.
// No paths resets everything; otherwise only the named paths revert.
func Reset(committer Committer, paths ...string) error {
	return ResetWith(committer, DefaultResetMutationType, paths...)
}

// ResetWith is Reset for a custom reset mutation type.
func ResetWith(committer Committer, mutationType string, paths ...string) error {
	if committer == nil {
		return ErrStoreRequired
	}
	var payload any
	if len(paths) > 0 {
		payload = append([]string{}, paths...)
	}
	return committer.Commit(mutationType, payload)
}
