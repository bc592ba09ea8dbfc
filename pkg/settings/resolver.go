package settings

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrETagMismatch indicates a write raced with another writer.
	ErrETagMismatch = errors.New("settings: etag mismatch")
	// ErrDuplicateScope indicates the same scope was passed twice.
	ErrDuplicateScope = errors.New("settings: scopes must be unique")
	// ErrPriorityOrder indicates two scopes share a priority.
	ErrPriorityOrder = errors.New("settings: scope priorities must be distinct")
)

// Mutator edits a snapshot in place.
type Mutator func(Snapshot) error

// Resolver loads snapshots for several scopes and layers them.
type Resolver struct {
	Store Store
}

type layer struct {
	scope    Scope
	snapshot Snapshot
	meta     Meta
}

// Resolve returns the merged snapshot for namespace. Stronger scopes
// (higher priority) override keys from weaker ones regardless of argument
// order. Scopes with no stored snapshot are skipped.
func (r Resolver) Resolve(ctx context.Context, namespace string, scopes ...Scope) (Snapshot, error) {
	layers, err := r.load(ctx, namespace, scopes)
	if err != nil {
		return nil, err
	}
	merged := Snapshot{}
	for i := len(layers) - 1; i >= 0; i-- {
		for key, value := range layers[i].snapshot {
			merged[key] = value
		}
	}
	return merged, nil
}

// Trace reports, strongest first, which scopes define key and what value
// each one holds.
func (r Resolver) Trace(ctx context.Context, namespace, key string, scopes ...Scope) (Trace, error) {
	layers, err := r.load(ctx, namespace, scopes)
	if err != nil {
		return Trace{}, err
	}
	trace := Trace{Namespace: namespace, Key: key}
	for _, l := range layers {
		value, found := l.snapshot[key]
		trace.Layers = append(trace.Layers, Provenance{
			Scope:      l.scope,
			SnapshotID: l.meta.SnapshotID,
			Value:      value,
			Found:      found,
		})
	}
	return trace, nil
}

func (r Resolver) load(ctx context.Context, namespace string, scopes []Scope) ([]layer, error) {
	if r.Store == nil {
		return nil, fmt.Errorf("settings: store is required")
	}
	if namespace == "" {
		return nil, fmt.Errorf("settings: namespace is required")
	}
	if len(scopes) == 0 {
		return nil, fmt.Errorf("settings: at least one scope is required")
	}

	ordered := append([]Scope(nil), scopes...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority > ordered[j].Priority
	})
	seen := make(map[string]struct{}, len(ordered))
	for i, scope := range ordered {
		if _, ok := seen[scope.Name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateScope, scope.Name)
		}
		seen[scope.Name] = struct{}{}
		if i > 0 && ordered[i-1].Priority == scope.Priority {
			return nil, fmt.Errorf("%w: %d", ErrPriorityOrder, scope.Priority)
		}
	}

	layers := make([]layer, 0, len(ordered))
	for _, scope := range ordered {
		snapshot, meta, ok, err := r.Store.Load(ctx, Ref{Namespace: namespace, Scope: scope})
		if err != nil {
			return nil, fmt.Errorf("settings: load %q for scope %q: %w", namespace, scope, err)
		}
		if !ok {
			continue
		}
		layers = append(layers, layer{scope: scope, snapshot: snapshot, meta: meta})
	}
	return layers, nil
}

// Mutate loads one snapshot, applies fn and saves the result. When meta
// carries an ETag it must match the stored one.
func (r Resolver) Mutate(ctx context.Context, ref Ref, meta Meta, fn Mutator) (Snapshot, Meta, error) {
	if r.Store == nil {
		return nil, Meta{}, fmt.Errorf("settings: store is required")
	}
	if fn == nil {
		return nil, Meta{}, fmt.Errorf("settings: mutator is required")
	}

	snapshot, loadedMeta, ok, err := r.Store.Load(ctx, ref)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("settings: load %q for scope %q: %w", ref.Namespace, ref.Scope, err)
	}
	if !ok || snapshot == nil {
		snapshot = Snapshot{}
		loadedMeta = Meta{}
	}

	if meta.ETag != "" && loadedMeta.ETag != "" && meta.ETag != loadedMeta.ETag {
		return nil, loadedMeta, fmt.Errorf("%w: expected %q, got %q", ErrETagMismatch, meta.ETag, loadedMeta.ETag)
	}

	if err := fn(snapshot); err != nil {
		return nil, loadedMeta, err
	}

	saveMeta := loadedMeta
	if meta.SnapshotID != "" {
		saveMeta.SnapshotID = meta.SnapshotID
	}
	saveMeta.UpdatedAt = meta.UpdatedAt
	saved, err := r.Store.Save(ctx, ref, snapshot, saveMeta)
	if err != nil {
		return nil, loadedMeta, fmt.Errorf("settings: save %q for scope %q: %w", ref.Namespace, ref.Scope, err)
	}
	return snapshot, saved, nil
}
