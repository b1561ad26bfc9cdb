// Package reactivetable is a thin, out-of-core collaborator: a CRUD
// dispatcher that turns table mutations (Upsert / SafeRemove / Batch)
// into Z-set deltas driven through a circuit.Circuit. The core itself
// never enforces key uniqueness; that contract lives here.
package reactivetable

import (
	"github.com/streamhouse/dbsp/circuit"
	"github.com/streamhouse/dbsp/internal/dbsperrors"
	"github.com/streamhouse/dbsp/internal/telemetry"
	"github.com/streamhouse/dbsp/zset"
)

// OpKind distinguishes the two mutation kinds a Batch can contain.
type OpKind int

const (
	OpUpsert OpKind = iota
	OpRemove
)

// TableOp is one mutation in a Batch call.
type TableOp[K comparable, T any] struct {
	Kind  OpKind
	Key   K
	Value T // only meaningful when Kind == OpUpsert
}

// Table wraps a Z-set of T, addressed externally by a comparable primary
// key K, and drives a downstream circuit with every mutation's delta.
type Table[K comparable, T any] struct {
	zkeyFn     zset.KeyFunc[T]
	current    map[K]T
	downstream *circuit.Circuit[*zset.ZSet[T], *zset.ZSet[T]]
	view       *zset.ZSet[T]
	log        telemetry.Logger
}

// New builds an empty Table. zkeyFn canonicalizes T's content (so that
// Upsert-ing an identical value is a true no-op delta); downstream is the
// circuit driving this table's materialized view.
func New[K comparable, T any](zkeyFn zset.KeyFunc[T], downstream *circuit.Circuit[*zset.ZSet[T], *zset.ZSet[T]], log telemetry.Logger) *Table[K, T] {
	if log == nil {
		log = telemetry.NewNop()
	}
	return &Table[K, T]{
		zkeyFn:     zkeyFn,
		current:    make(map[K]T),
		downstream: downstream,
		view:       zset.New(zkeyFn),
		log:        log,
	}
}

// Upsert idempotently sets key's value to value: a retraction of any
// prior value at key (weight -1) followed by an insertion of value
// (weight +1). If the prior value canonicalizes to the same key as
// value (i.e. is content-identical), the two cancel and the resulting
// delta — and hence the downstream effect — is zero.
func (t *Table[K, T]) Upsert(key K, value T) error {
	var values []T
	var weights []int64

	if existing, ok := t.current[key]; ok {
		values = append(values, existing)
		weights = append(weights, -1)
	}
	values = append(values, value)
	weights = append(weights, 1)

	delta, err := zset.FromRecords(t.zkeyFn, values, weights)
	if err != nil {
		return err
	}

	t.current[key] = value
	return t.apply(delta)
}

// SafeRemove retracts the value at key. It returns a missing-record
// error if key is absent rather than silently no-op-ing.
func (t *Table[K, T]) SafeRemove(key K) error {
	existing, ok := t.current[key]
	if !ok {
		return dbsperrors.New("reactivetable: SafeRemove: key %v has no record", key)
	}

	delta, err := zset.FromRecords(t.zkeyFn, []T{existing}, []int64{-1})
	if err != nil {
		return err
	}

	delete(t.current, key)
	return t.apply(delta)
}

// Batch applies every op in ops as a single delta through one call to the
// downstream circuit, preserving the "mutations are applied in the order
// submitted" rule. Validation (missing-record removals) happens
// before any state is mutated, so a batch either fully applies or fully
// fails.
func (t *Table[K, T]) Batch(ops []TableOp[K, T]) error {
	for _, op := range ops {
		if op.Kind == OpRemove {
			if _, ok := t.current[op.Key]; !ok {
				return dbsperrors.New("reactivetable: Batch: key %v has no record to remove", op.Key)
			}
		}
	}

	var values []T
	var weights []int64

	for _, op := range ops {
		switch op.Kind {
		case OpUpsert:
			if existing, ok := t.current[op.Key]; ok {
				values = append(values, existing)
				weights = append(weights, -1)
			}
			values = append(values, op.Value)
			weights = append(weights, 1)
		case OpRemove:
			existing := t.current[op.Key]
			values = append(values, existing)
			weights = append(weights, -1)
		}
	}

	delta, err := zset.FromRecords(t.zkeyFn, values, weights)
	if err != nil {
		return err
	}

	for _, op := range ops {
		switch op.Kind {
		case OpUpsert:
			t.current[op.Key] = op.Value
		case OpRemove:
			delete(t.current, op.Key)
		}
	}

	return t.apply(delta)
}

func (t *Table[K, T]) apply(delta *zset.ZSet[T]) error {
	out, err := t.downstream.Execute(delta)
	if err != nil {
		return err
	}
	view, err := t.view.Add(out)
	if err != nil {
		return err
	}
	t.view = view
	return nil
}

// MaterializedView returns the table's current downstream view snapshot.
func (t *Table[K, T]) MaterializedView() *zset.ZSet[T] {
	return t.view.Clone()
}

// Len returns the number of keys currently present in the table.
func (t *Table[K, T]) Len() int {
	return len(t.current)
}
