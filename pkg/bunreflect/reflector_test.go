package bunreflect

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/goliatone/go-metadata-cache/metadata"
	"github.com/goliatone/go-metadata-cache/relation"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

type Customer struct {
	bun.BaseModel `bun:"table:customers"`

	ID   int64  `bun:"id,pk,autoincrement"`
	Name string `bun:"name,notnull"`
}

type Item struct {
	bun.BaseModel `bun:"table:items"`

	ID      int64 `bun:"id,pk,autoincrement"`
	OrderID int64 `bun:"order_id,notnull"`
}

type Order struct {
	bun.BaseModel `bun:"table:orders"`

	ID         int64     `bun:"id,pk,autoincrement"`
	CustomerID int64     `bun:"customer_id,notnull"`
	Status     string    `bun:"status,notnull,default:'new'"`
	Note       string    `bun:"note,nullzero"`
	Total      float64   `bun:"total,type:decimal(10,2)"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:current_timestamp"`

	Customer *Customer `bun:"rel:belongs-to,join:customer_id=id,on_delete:CASCADE"`
	Items    []*Item   `bun:"rel:has-many,join:id=order_id"`
	Products []Product `bun:"m2m:order_products,join:Order=Product"`
}

type Product struct {
	bun.BaseModel `bun:"table:products"`

	ID int64 `bun:"id,pk,autoincrement"`
}

type OrderProduct struct {
	bun.BaseModel `bun:"table:order_products"`

	OrderID   int64    `bun:"order_id,pk"`
	Order     *Order   `bun:"rel:belongs-to,join:order_id=id"`
	ProductID int64    `bun:"product_id,pk"`
	Product   *Product `bun:"rel:belongs-to,join:product_id=id"`
}

type Invoice struct {
	bun.BaseModel `bun:"table:invoices"`

	ID       int64     `bun:"id,pk,autoincrement"`
	Products []Product `bun:"m2m:invoice_products,join:Invoice=Product"`
}

// newTestDB opens a lazily connecting handle; nothing here talks to postgres.
func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	sqldb, err := sql.Open("postgres", "postgres://localhost:5432/metadata?sslmode=disable")
	require.NoError(t, err)
	db := bun.NewDB(sqldb, pgdialect.New())
	db.RegisterModel((*OrderProduct)(nil))
	t.Cleanup(func() { db.Close() })
	return db
}

func compute(t *testing.T, r *Reflector, model any, kind metadata.Kind) any {
	t.Helper()
	v, err := r.Compute(model, kind)(context.Background())
	require.NoError(t, err)
	return v
}

func TestReflector_Columns(t *testing.T) {
	r := New(newTestDB(t))

	assert.ElementsMatch(t, []string{"id", "customer_id", "status", "note", "total", "created_at"},
		compute(t, r, (*Order)(nil), metadata.KindAttributes))
	assert.Equal(t, []string{"id"}, compute(t, r, Order{}, metadata.KindPrimaryKeys))
	assert.NotContains(t, compute(t, r, Order{}, metadata.KindNonPrimaryKeys), "id")
	assert.ElementsMatch(t, []string{"id", "customer_id", "status", "created_at"},
		compute(t, r, Order{}, metadata.KindNotNull))
	assert.Equal(t, "id", compute(t, r, Order{}, metadata.KindIdentityField))

	columnMap := compute(t, r, Order{}, metadata.KindColumnMap).(map[string]string)
	assert.Equal(t, "CustomerID", columnMap["customer_id"])
	reverse := compute(t, r, Order{}, metadata.KindReverseColumnMap).(map[string]string)
	assert.Equal(t, "customer_id", reverse["CustomerID"])
}

func TestReflector_TypesAndDefaults(t *testing.T) {
	r := New(newTestDB(t))

	types := compute(t, r, Order{}, metadata.KindDataTypes).(map[string]metadata.DataType)
	assert.Equal(t, metadata.TypeBigInteger, types["id"])
	assert.Equal(t, metadata.TypeDecimal, types["total"])
	assert.Equal(t, metadata.TypeTimestamp, types["created_at"])

	numeric := compute(t, r, Order{}, metadata.KindDataTypesNumeric).(map[string]bool)
	assert.True(t, numeric["id"])
	assert.True(t, numeric["total"])
	assert.False(t, numeric["status"])

	automatic := compute(t, r, Order{}, metadata.KindAutomaticDefault).(map[string]bool)
	assert.True(t, automatic["id"])
	assert.True(t, automatic["status"])
	assert.True(t, automatic["created_at"])
	assert.False(t, automatic["note"])

	defaults := compute(t, r, Order{}, metadata.KindDefaultValues).(map[string]any)
	assert.Contains(t, defaults, "status")
	assert.NotContains(t, defaults, "note")

	empty := compute(t, r, Order{}, metadata.KindEmptyStringValues).(map[string]bool)
	assert.True(t, empty["status"])
	assert.False(t, empty["note"])
}

func TestReflector_Relations(t *testing.T) {
	r := New(newTestDB(t))

	rels := compute(t, r, Order{}, metadata.KindRelations).([]relation.Relation)
	require.Len(t, rels, 3)

	customer := rels[0]
	assert.Equal(t, relation.BelongsTo, customer.Type())
	assert.Equal(t, []string{"customer_id"}, customer.Fields())
	assert.Equal(t, []string{"id"}, customer.ReferencedFields())
	assert.Equal(t, string(metadata.IdentityOf(Customer{})), customer.ReferencedModel())
	assert.True(t, customer.IsForeignKey())
	assert.Equal(t, relation.ActionCascade, customer.Action())
	alias, _ := customer.Alias()
	assert.Equal(t, "Customer", alias)

	items := rels[1]
	assert.Equal(t, relation.HasMany, items.Type())
	assert.Equal(t, []string{"id"}, items.Fields())
	assert.Equal(t, []string{"order_id"}, items.ReferencedFields())
	assert.False(t, items.IsThrough())
	assert.Equal(t, relation.NoAction, items.Action())
}

func TestReflector_ManyToManyUsesJoinTable(t *testing.T) {
	r := New(newTestDB(t))

	rels := compute(t, r, Order{}, metadata.KindRelations).([]relation.Relation)
	require.Len(t, rels, 3)

	products := rels[2]
	assert.Equal(t, relation.HasManyToMany, products.Type())
	require.True(t, products.IsThrough())
	assert.Equal(t, []string{"id"}, products.Fields())
	assert.Equal(t, string(metadata.IdentityOf(Product{})), products.ReferencedModel())
	assert.Equal(t, []string{"id"}, products.ReferencedFields())

	assert.Equal(t, string(metadata.IdentityOf(OrderProduct{})), products.IntermediateModel())
	assert.Equal(t, []string{"order_id"}, products.IntermediateFields())
	assert.Equal(t, []string{"product_id"}, products.IntermediateReferencedFields())

	alias, _ := products.Alias()
	assert.Equal(t, "Products", alias)
}

func TestReflector_UnregisteredJoinTableIsAnError(t *testing.T) {
	r := New(newTestDB(t))

	var v any
	var err error
	require.NotPanics(t, func() {
		v, err = r.Compute(Invoice{}, metadata.KindRelations)(context.Background())
	})
	require.Error(t, err)
	assert.Nil(t, v)
	assert.Contains(t, err.Error(), "bunreflect:")
	assert.Contains(t, err.Error(), "invoice_products")
}

func TestReflector_RejectsNonStructModels(t *testing.T) {
	r := New(newTestDB(t))

	_, err := r.Identity(42)
	assert.Error(t, err)
	_, err = r.Compute("orders", metadata.KindAttributes)(context.Background())
	assert.Error(t, err)
}

func TestWarm_CachesEveryKind(t *testing.T) {
	ctx := context.Background()
	r := New(newTestDB(t))
	store := metadata.NewMemory()

	require.NoError(t, Warm(ctx, store, r, &Order{}))

	id, err := r.Identity(&Order{})
	require.NoError(t, err)
	row, ok := store.Read(ctx, id)
	require.True(t, ok)
	assert.Len(t, row, len(metadata.Kinds()))
}

func TestDataTypeOf(t *testing.T) {
	tests := map[string]metadata.DataType{
		"BIGINT":           metadata.TypeBigInteger,
		"VARCHAR(255)":     metadata.TypeVarchar,
		"decimal(10,2)":    metadata.TypeDecimal,
		"DOUBLE PRECISION": metadata.TypeDouble,
		"TIMESTAMPTZ":      metadata.TypeTimestamp,
		"jsonb":            metadata.TypeJSONB,
		"bytea":            metadata.TypeBlob,
		"smallint":         metadata.TypeSmallInt,
		"text[]":           metadata.TypeText,
		"some_custom_type": metadata.TypeVarchar,
	}
	for sqlType, want := range tests {
		assert.Equal(t, want, DataTypeOf(sqlType), sqlType)
	}
}
