package metadata

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/goliatone/go-metadata-cache/relation"
)

// ErrInvalidResultType is returned when a cached or computed value does not
// have the Go type requested by the caller.
var ErrInvalidResultType = errors.New("invalid metadata result type")

// GetOrCompute is the typed form of Store.GetOrCompute. T must be the value
// type of kind.
func GetOrCompute[T any](ctx context.Context, store Store, model ModelIdentity, kind Kind, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	want := reflect.TypeOf((*T)(nil)).Elem()
	if kind.Valid() && kind.ValueType() != want {
		return zero, fmt.Errorf("%w: kind %s holds %s, not %s", ErrInvalidResultType, kind, kind.ValueType(), want)
	}

	v, err := store.GetOrCompute(ctx, model, kind, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})
	if err != nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: kind %s holds %T", ErrInvalidResultType, kind, v)
	}
	return out, nil
}

// Reflector computes metadata for model values.
type Reflector interface {
	Identity(model any) (ModelIdentity, error)
	Compute(model any, kind Kind) ComputeFunc
}

// Reader answers metadata questions about model values, consulting the
// store first and the reflector on a miss.
type Reader struct {
	store     Store
	reflector Reflector
}

// NewReader creates a Reader.
func NewReader(store Store, reflector Reflector) *Reader {
	return &Reader{store: store, reflector: reflector}
}

// Get returns the value of kind for model.
func (r *Reader) Get(ctx context.Context, model any, kind Kind) (any, error) {
	id, err := r.reflector.Identity(model)
	if err != nil {
		return nil, err
	}
	return r.store.GetOrCompute(ctx, id, kind, r.reflector.Compute(model, kind))
}

// GetByName is Get with the kind given by name, e.g. "columnMap".
func (r *Reader) GetByName(ctx context.Context, model any, name string) (any, error) {
	kind, err := ParseKind(name)
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, model, kind)
}

// Warm computes every kind of model that is not cached yet.
func (r *Reader) Warm(ctx context.Context, model any) error {
	for _, kind := range Kinds() {
		if _, err := r.Get(ctx, model, kind); err != nil {
			return fmt.Errorf("warm %s: %w", kind, err)
		}
	}
	return nil
}

func readAs[T any](ctx context.Context, r *Reader, model any, kind Kind) (T, error) {
	var zero T
	v, err := r.Get(ctx, model, kind)
	if err != nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: kind %s holds %T", ErrInvalidResultType, kind, v)
	}
	return out, nil
}

func (r *Reader) Attributes(ctx context.Context, model any) ([]string, error) {
	return readAs[[]string](ctx, r, model, KindAttributes)
}

func (r *Reader) PrimaryKeys(ctx context.Context, model any) ([]string, error) {
	return readAs[[]string](ctx, r, model, KindPrimaryKeys)
}

func (r *Reader) NonPrimaryKeys(ctx context.Context, model any) ([]string, error) {
	return readAs[[]string](ctx, r, model, KindNonPrimaryKeys)
}

func (r *Reader) NotNull(ctx context.Context, model any) ([]string, error) {
	return readAs[[]string](ctx, r, model, KindNotNull)
}

func (r *Reader) DataTypes(ctx context.Context, model any) (map[string]DataType, error) {
	return readAs[map[string]DataType](ctx, r, model, KindDataTypes)
}

func (r *Reader) DataTypesNumeric(ctx context.Context, model any) (map[string]bool, error) {
	return readAs[map[string]bool](ctx, r, model, KindDataTypesNumeric)
}

func (r *Reader) IdentityField(ctx context.Context, model any) (string, error) {
	return readAs[string](ctx, r, model, KindIdentityField)
}

func (r *Reader) ColumnMap(ctx context.Context, model any) (map[string]string, error) {
	return readAs[map[string]string](ctx, r, model, KindColumnMap)
}

func (r *Reader) ReverseColumnMap(ctx context.Context, model any) (map[string]string, error) {
	return readAs[map[string]string](ctx, r, model, KindReverseColumnMap)
}

func (r *Reader) AutomaticDefault(ctx context.Context, model any) (map[string]bool, error) {
	return readAs[map[string]bool](ctx, r, model, KindAutomaticDefault)
}

func (r *Reader) DefaultValues(ctx context.Context, model any) (map[string]any, error) {
	return readAs[map[string]any](ctx, r, model, KindDefaultValues)
}

func (r *Reader) EmptyStringValues(ctx context.Context, model any) (map[string]bool, error) {
	return readAs[map[string]bool](ctx, r, model, KindEmptyStringValues)
}

func (r *Reader) Relations(ctx context.Context, model any) ([]relation.Relation, error) {
	return readAs[[]relation.Relation](ctx, r, model, KindRelations)
}
