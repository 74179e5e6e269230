package metadata

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/goliatone/go-metadata-cache/relation"
)

// ErrUnknownKind is returned when a kind name or value is not part of the enumeration.
var ErrUnknownKind = errors.New("unknown metadata kind")

// Kind is one category of structural fact about a model.
type Kind int

const (
	KindAttributes Kind = iota
	KindPrimaryKeys
	KindNonPrimaryKeys
	KindNotNull
	KindDataTypes
	KindDataTypesNumeric
	KindIdentityField
	KindColumnMap
	KindReverseColumnMap
	KindAutomaticDefault
	KindDefaultValues
	KindEmptyStringValues
	KindRelations
)

// kindSpec ties a kind to its stable wire name and its Go value type.
type kindSpec struct {
	name      string
	valueType reflect.Type
	decode    func(unmarshal func(target any) error) (any, error)
	canonical func(value any) (any, error)
}

func specOf[T any](name string) kindSpec {
	return kindSpec{
		name:      name,
		valueType: reflect.TypeOf((*T)(nil)).Elem(),
		decode: func(unmarshal func(target any) error) (any, error) {
			var v T
			if err := unmarshal(&v); err != nil {
				return nil, err
			}
			return v, nil
		},
	}
}

func (s kindSpec) withCanonical(fn func(any) (any, error)) kindSpec {
	s.canonical = fn
	return s
}

var kindSpecs = [...]kindSpec{
	KindAttributes:        specOf[[]string]("attributes"),
	KindPrimaryKeys:       specOf[[]string]("primaryKeys"),
	KindNonPrimaryKeys:    specOf[[]string]("nonPrimaryKeys"),
	KindNotNull:           specOf[[]string]("notNull"),
	KindDataTypes:         specOf[map[string]DataType]("dataTypes"),
	KindDataTypesNumeric:  specOf[map[string]bool]("dataTypesNumeric"),
	KindIdentityField:     specOf[string]("identityField"),
	KindColumnMap:         specOf[map[string]string]("columnMap"),
	KindReverseColumnMap:  specOf[map[string]string]("reverseColumnMap"),
	KindAutomaticDefault:  specOf[map[string]bool]("automaticDefault"),
	KindDefaultValues:     specOf[map[string]any]("defaultValues").withCanonical(canonicalDefaults),
	KindEmptyStringValues: specOf[map[string]bool]("emptyStringValues"),
	KindRelations:         specOf[[]relation.Relation]("relations"),
}

var kindsByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kindSpecs))
	for i, spec := range kindSpecs {
		m[spec.name] = Kind(i)
	}
	return m
}()

// Kinds returns every kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, len(kindSpecs))
	for i := range kindSpecs {
		out[i] = Kind(i)
	}
	return out
}

// ParseKind resolves a kind from its name, e.g. "primaryKeys".
func ParseKind(name string) (Kind, error) {
	k, ok := kindsByName[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, name)
	}
	return k, nil
}

// Valid reports whether k is part of the enumeration.
func (k Kind) Valid() bool {
	return k >= 0 && int(k) < len(kindSpecs)
}

// String returns the wire name of the kind.
func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindSpecs[k].name
}

// ValueType returns the Go type values of this kind must have.
func (k Kind) ValueType() reflect.Type {
	if !k.Valid() {
		return nil
	}
	return kindSpecs[k].valueType
}

// check verifies value has the Go type expected for the kind.
func (k Kind) check(value any) error {
	if !k.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownKind, int(k))
	}
	want := kindSpecs[k].valueType
	if value == nil || reflect.TypeOf(value) != want {
		return fmt.Errorf("kind %s expects %s, got %T", k, want, value)
	}
	return nil
}

// canonicalize checks value and returns the form it takes after a trip
// through any serializer.
func (k Kind) canonicalize(value any) (any, error) {
	if err := k.check(value); err != nil {
		return nil, err
	}
	if c := kindSpecs[k].canonical; c != nil {
		return c(value)
	}
	return value, nil
}
