package relation

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// Type is the kind of association a Relation describes. The numeric values
// are part of the cached row format.
type Type int

const (
	BelongsTo     Type = 0
	HasOne        Type = 1
	HasMany       Type = 2
	HasOneThrough Type = 3
	HasManyToMany Type = 4
)

func (t Type) String() string {
	switch t {
	case BelongsTo:
		return "belongsTo"
	case HasOne:
		return "hasOne"
	case HasMany:
		return "hasMany"
	case HasOneThrough:
		return "hasOneThrough"
	case HasManyToMany:
		return "hasManyToMany"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// Action is the referential action taken on the related records when the
// owning record is deleted.
type Action int

const (
	NoAction       Action = 0
	ActionRestrict Action = 1
	ActionCascade  Action = 2
)

// Option names with a dedicated accessor.
const (
	OptionForeignKey = "foreignKey"
	OptionReusable   = "reusable"
	OptionAlias      = "alias"
	OptionParams     = "params"

	// OptionAction is read from a map valued foreignKey option.
	OptionAction = "action"
)

// Intermediate describes the join model of a through relation.
type Intermediate struct {
	Model            string   `json:"model" msgpack:"model"`
	Fields           []string `json:"fields,omitempty" msgpack:"fields,omitempty"`
	ReferencedFields []string `json:"referencedFields,omitempty" msgpack:"referencedFields,omitempty"`
}

// Relation describes one association between two models. It is an immutable
// value: accessors return copies and the only way to add an intermediate
// model is WithIntermediate, which returns a new Relation.
type Relation struct {
	typ              Type
	fields           []string
	referencedModel  string
	referencedFields []string
	options          map[string]any
	intermediate     *Intermediate
}

// New creates a direct relation. The slices and the options map are copied.
func New(typ Type, fields []string, referencedModel string, referencedFields []string, options map[string]any) Relation {
	return Relation{
		typ:              typ,
		fields:           cloneStrings(fields),
		referencedModel:  referencedModel,
		referencedFields: cloneStrings(referencedFields),
		options:          cloneOptions(options),
	}
}

// NewThrough creates a relation mediated by intermediateModel. fields on the
// owning model match intermediateFields on the join model, and
// intermediateReferencedFields on the join model match referencedFields on
// referencedModel.
func NewThrough(
	typ Type,
	fields []string,
	intermediateModel string,
	intermediateFields []string,
	intermediateReferencedFields []string,
	referencedModel string,
	referencedFields []string,
	options map[string]any,
) Relation {
	return New(typ, fields, referencedModel, referencedFields, options).
		WithIntermediate(intermediateFields, intermediateModel, intermediateReferencedFields)
}

// WithIntermediate returns a through relation built from r and the given join
// model. r itself is left unchanged.
func (r Relation) WithIntermediate(fields []string, model string, referencedFields []string) Relation {
	out := r.clone()
	out.intermediate = &Intermediate{
		Model:            model,
		Fields:           cloneStrings(fields),
		ReferencedFields: cloneStrings(referencedFields),
	}
	return out
}

// Type returns the association type.
func (r Relation) Type() Type { return r.typ }

// Fields returns the fields on the owning model.
func (r Relation) Fields() []string { return cloneStrings(r.fields) }

// ReferencedModel returns the identity of the related model.
func (r Relation) ReferencedModel() string { return r.referencedModel }

// ReferencedFields returns the fields on the related model.
func (r Relation) ReferencedFields() []string { return cloneStrings(r.referencedFields) }

// Option returns a single option. Missing options report ok == false.
func (r Relation) Option(name string) (any, bool) {
	v, ok := r.options[name]
	return v, ok
}

// Options returns a copy of every option.
func (r Relation) Options() map[string]any {
	out := cloneOptions(r.options)
	if out == nil {
		return map[string]any{}
	}
	return out
}

// ForeignKey returns the foreign key option.
func (r Relation) ForeignKey() (any, bool) {
	return r.Option(OptionForeignKey)
}

// Alias returns the alias option when it is a string.
func (r Relation) Alias() (string, bool) {
	v, ok := r.options[OptionAlias].(string)
	return v, ok
}

// Params returns the params option. A params value of type func() any is
// invoked and its result returned.
func (r Relation) Params() (any, bool) {
	v, ok := r.options[OptionParams]
	if !ok {
		return nil, false
	}
	if fn, isFn := v.(func() any); isFn {
		return fn(), true
	}
	return v, true
}

// IsForeignKey reports whether a truthy foreignKey option is set.
func (r Relation) IsForeignKey() bool {
	return truthy(r.options[OptionForeignKey])
}

// IsReusable reports whether a truthy reusable option is set.
func (r Relation) IsReusable() bool {
	return truthy(r.options[OptionReusable])
}

// Action returns the referential action of a foreign key relation. A map
// valued foreignKey option may carry it under "action"; any other truthy
// foreignKey value means ActionRestrict. Without a foreign key it is NoAction.
func (r Relation) Action() Action {
	fk := r.options[OptionForeignKey]
	if !truthy(fk) {
		return NoAction
	}
	if m, ok := fk.(map[string]any); ok {
		if a, ok := actionOf(m[OptionAction]); ok {
			return a
		}
	}
	return ActionRestrict
}

// IsThrough reports whether the relation has an intermediate model.
func (r Relation) IsThrough() bool { return r.intermediate != nil }

// IntermediateModel returns the join model, or "" for direct relations.
func (r Relation) IntermediateModel() string {
	if r.intermediate == nil {
		return ""
	}
	return r.intermediate.Model
}

// IntermediateFields returns the join model fields matching Fields.
func (r Relation) IntermediateFields() []string {
	if r.intermediate == nil {
		return nil
	}
	return cloneStrings(r.intermediate.Fields)
}

// IntermediateReferencedFields returns the join model fields matching ReferencedFields.
func (r Relation) IntermediateReferencedFields() []string {
	if r.intermediate == nil {
		return nil
	}
	return cloneStrings(r.intermediate.ReferencedFields)
}

func (r Relation) clone() Relation {
	out := Relation{
		typ:              r.typ,
		fields:           cloneStrings(r.fields),
		referencedModel:  r.referencedModel,
		referencedFields: cloneStrings(r.referencedFields),
		options:          cloneOptions(r.options),
	}
	if r.intermediate != nil {
		out.intermediate = &Intermediate{
			Model:            r.intermediate.Model,
			Fields:           cloneStrings(r.intermediate.Fields),
			ReferencedFields: cloneStrings(r.intermediate.ReferencedFields),
		}
	}
	return out
}

func cloneStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneOptions(in map[string]any) map[string]any {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// truthy treats nil, false, zero numbers and empty strings, slices and maps as false.
func truthy(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	case reflect.Ptr, reflect.Interface, reflect.Func:
		return !rv.IsNil()
	default:
		return true
	}
}

// actionOf accepts any numeric value, since decoded options carry whatever
// number type the codec produced.
func actionOf(v any) (Action, bool) {
	if v == nil {
		return NoAction, false
	}
	if n, ok := v.(json.Number); ok {
		f, err := n.Float64()
		return Action(f), err == nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Action(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Action(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return Action(rv.Float()), true
	default:
		return NoAction, false
	}
}
