package bunreflect

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/goliatone/go-metadata-cache/metadata"
	"github.com/goliatone/go-metadata-cache/relation"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

var _ metadata.Reflector = (*Reflector)(nil)

// Reflector computes model metadata from bun schema tables.
type Reflector struct {
	db *bun.DB
}

// New creates a Reflector using the table registry of db.
func New(db *bun.DB) *Reflector {
	return &Reflector{db: db}
}

// Identity returns the identity of a bun model struct, pointer or reflect.Type.
func (r *Reflector) Identity(model any) (metadata.ModelIdentity, error) {
	typ, err := modelType(model)
	if err != nil {
		return "", err
	}
	return metadata.IdentityOf(typ), nil
}

// Compute returns the callback building kind for model. bun panics on
// misdeclared models; the callback reports those as errors.
func (r *Reflector) Compute(model any, kind metadata.Kind) metadata.ComputeFunc {
	return func(ctx context.Context) (v any, err error) {
		defer func() {
			if p := recover(); p != nil {
				v, err = nil, fmt.Errorf("bunreflect: %v", p)
			}
		}()
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		typ, err := modelType(model)
		if err != nil {
			return nil, err
		}
		table := r.db.Table(typ)
		return r.build(table, kind)
	}
}

// Warm computes and caches every kind of model in store.
func Warm(ctx context.Context, store metadata.Store, reflector *Reflector, model any) error {
	return metadata.NewReader(store, reflector).Warm(ctx, model)
}

func modelType(model any) (reflect.Type, error) {
	typ, ok := model.(reflect.Type)
	if !ok {
		typ = reflect.TypeOf(model)
	}
	for typ != nil && typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ == nil || typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("bunreflect: model must be a struct, got %v", typ)
	}
	return typ, nil
}

func (r *Reflector) build(table *schema.Table, kind metadata.Kind) (any, error) {
	switch kind {
	case metadata.KindAttributes:
		return columns(table.Fields, keepAll), nil
	case metadata.KindPrimaryKeys:
		return columns(table.PKs, keepAll), nil
	case metadata.KindNonPrimaryKeys:
		return columns(table.Fields, func(f *schema.Field) bool { return !f.IsPK }), nil
	case metadata.KindNotNull:
		return columns(table.Fields, func(f *schema.Field) bool { return f.NotNull || f.IsPK }), nil
	case metadata.KindDataTypes:
		out := make(map[string]metadata.DataType, len(table.Fields))
		for _, f := range table.Fields {
			out[f.Name] = DataTypeOf(sqlType(f))
		}
		return out, nil
	case metadata.KindDataTypesNumeric:
		out := make(map[string]bool)
		for _, f := range table.Fields {
			if DataTypeOf(sqlType(f)).IsNumeric() {
				out[f.Name] = true
			}
		}
		return out, nil
	case metadata.KindIdentityField:
		for _, f := range table.Fields {
			if f.AutoIncrement || f.Identity {
				return f.Name, nil
			}
		}
		return "", nil
	case metadata.KindColumnMap:
		out := make(map[string]string, len(table.Fields))
		for _, f := range table.Fields {
			out[f.Name] = f.GoName
		}
		return out, nil
	case metadata.KindReverseColumnMap:
		out := make(map[string]string, len(table.Fields))
		for _, f := range table.Fields {
			out[f.GoName] = f.Name
		}
		return out, nil
	case metadata.KindAutomaticDefault:
		out := make(map[string]bool)
		for _, f := range table.Fields {
			if f.SQLDefault != "" || f.AutoIncrement || f.Identity {
				out[f.Name] = true
			}
		}
		return out, nil
	case metadata.KindDefaultValues:
		out := make(map[string]any)
		for _, f := range table.Fields {
			if f.SQLDefault != "" {
				out[f.Name] = f.SQLDefault
			}
		}
		return out, nil
	case metadata.KindEmptyStringValues:
		out := make(map[string]bool)
		for _, f := range table.Fields {
			if indirect(f.StructField.Type).Kind() == reflect.String && !f.NullZero {
				out[f.Name] = true
			}
		}
		return out, nil
	case metadata.KindRelations:
		return r.relations(table)
	default:
		return nil, fmt.Errorf("%w: %d", metadata.ErrUnknownKind, int(kind))
	}
}

func columns(fields []*schema.Field, keep func(*schema.Field) bool) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if keep(f) {
			out = append(out, f.Name)
		}
	}
	return out
}

func sqlType(f *schema.Field) string {
	if f.UserSQLType != "" {
		return f.UserSQLType
	}
	return f.DiscoveredSQLType
}

// relations maps the relations bun resolved for table, in field order.
func (r *Reflector) relations(table *schema.Table) ([]relation.Relation, error) {
	out := make([]relation.Relation, 0, len(table.Relations))
	typ := table.Type
	for i := 0; i < typ.NumField(); i++ {
		rel, ok := table.Relations[typ.Field(i).Name]
		if !ok {
			continue
		}
		opts := map[string]any{relation.OptionAlias: rel.Field.GoName}
		fields := columns(rel.BasePKs, keepAll)
		referenced := string(metadata.IdentityOf(rel.JoinTable.Type))
		referencedFields := columns(rel.JoinPKs, keepAll)

		switch rel.Type {
		case schema.BelongsToRelation:
			opts[relation.OptionForeignKey] = map[string]any{
				relation.OptionAction: int64(actionOf(rel.OnDelete)),
			}
			out = append(out, relation.New(relation.BelongsTo, fields, referenced, referencedFields, opts))
		case schema.HasOneRelation:
			out = append(out, relation.New(relation.HasOne, fields, referenced, referencedFields, opts))
		case schema.HasManyRelation:
			out = append(out, relation.New(relation.HasMany, fields, referenced, referencedFields, opts))
		case schema.ManyToManyRelation:
			out = append(out, relation.NewThrough(relation.HasManyToMany,
				fields, string(metadata.IdentityOf(rel.M2MTable.Type)),
				columns(rel.M2MBasePKs, keepAll), columns(rel.M2MJoinPKs, keepAll),
				referenced, referencedFields, opts))
		default:
			return nil, fmt.Errorf("bunreflect: unsupported relation %s on %s.%s", rel, typ.Name(), rel.Field.GoName)
		}
	}
	return out, nil
}

func keepAll(*schema.Field) bool { return true }

// actionOf maps a bun "ON DELETE <rule>" clause to a relation action.
func actionOf(onDelete string) relation.Action {
	rule := strings.TrimSpace(strings.TrimPrefix(strings.ToUpper(onDelete), "ON DELETE"))
	switch rule {
	case "CASCADE":
		return relation.ActionCascade
	case "RESTRICT":
		return relation.ActionRestrict
	default:
		return relation.NoAction
	}
}

func indirect(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}
