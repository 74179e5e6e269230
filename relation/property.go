package relation

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownProperty is returned by Property for names without an accessor.
var ErrUnknownProperty = errors.New("unknown relation property")

var properties = map[string]func(Relation) any{
	"type":                         func(r Relation) any { return r.Type() },
	"fields":                       func(r Relation) any { return r.Fields() },
	"referencedModel":              func(r Relation) any { return r.ReferencedModel() },
	"referencedFields":             func(r Relation) any { return r.ReferencedFields() },
	"options":                      func(r Relation) any { return r.Options() },
	"intermediateModel":            func(r Relation) any { return r.IntermediateModel() },
	"intermediateFields":           func(r Relation) any { return r.IntermediateFields() },
	"intermediateReferencedFields": func(r Relation) any { return r.IntermediateReferencedFields() },
	"foreignKey": func(r Relation) any {
		v, _ := r.ForeignKey()
		return v
	},
	"params": func(r Relation) any {
		v, _ := r.Params()
		return v
	},
	"action":       func(r Relation) any { return r.Action() },
	"isForeignKey": func(r Relation) any { return r.IsForeignKey() },
	"isThrough":    func(r Relation) any { return r.IsThrough() },
	"isReusable":   func(r Relation) any { return r.IsReusable() },
}

// Property resolves a named accessor, e.g. "referencedModel".
func (r Relation) Property(name string) (any, error) {
	get, ok := properties[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProperty, name)
	}
	return get(r), nil
}

// PropertyNames lists the names accepted by Property.
func PropertyNames() []string {
	names := make([]string, 0, len(properties))
	for name := range properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
