package metadata

import (
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/goliatone/go-metadata-cache/pkg/testsupport"
	"github.com/goliatone/go-metadata-cache/relation"
	"github.com/vmihailenco/msgpack/v5"
)

func fullRow() Row {
	return Row{
		KindAttributes:     []string{"id", "name", "price"},
		KindPrimaryKeys:    []string{"id"},
		KindNonPrimaryKeys: []string{"name", "price"},
		KindNotNull:        []string{"id", "name"},
		KindDataTypes: map[string]DataType{
			"id":    TypeInteger,
			"name":  TypeVarchar,
			"price": TypeDecimal,
		},
		KindDataTypesNumeric:  map[string]bool{"id": true, "price": true},
		KindIdentityField:     "id",
		KindColumnMap:         map[string]string{"id": "id", "name": "name", "price": "price"},
		KindReverseColumnMap:  map[string]string{"id": "id", "name": "name", "price": "price"},
		KindAutomaticDefault:  map[string]bool{"id": true},
		KindDefaultValues:     map[string]any{"name": "unnamed"},
		KindEmptyStringValues: map[string]bool{"name": true},
		KindRelations: []relation.Relation{
			relation.New(relation.HasManyToMany, []string{"id"}, "shop.Order", []string{"id"},
				map[string]any{"alias": "orders"}).
				WithIntermediate([]string{"product_id"}, "shop.OrderProduct", []string{"order_id"}),
		},
	}
}

func TestSerializers_RoundTripEveryKind(t *testing.T) {
	row := fullRow()
	if len(row) != len(Kinds()) {
		t.Fatalf("fixture must cover every kind, has %d of %d", len(row), len(Kinds()))
	}

	for _, s := range []Serializer{MsgpackSerializer(), JSONSerializer()} {
		t.Run(s.Name(), func(t *testing.T) {
			data, err := s.EncodeRow(row)
			if err != nil {
				t.Fatalf("EncodeRow failed: %v", err)
			}
			got, err := s.DecodeRow(data)
			if err != nil {
				t.Fatalf("DecodeRow failed: %v", err)
			}
			for _, k := range Kinds() {
				if !reflect.DeepEqual(got[k], row[k]) {
					t.Errorf("kind %s: got %#v, want %#v", k, got[k], row[k])
				}
			}
		})
	}
}

func TestSerializers_RejectMistypedValues(t *testing.T) {
	row := Row{KindDataTypes: map[string]int{"id": 0}}
	for _, s := range []Serializer{MsgpackSerializer(), JSONSerializer()} {
		if _, err := s.EncodeRow(row); err == nil {
			t.Errorf("%s: expected error for mistyped value", s.Name())
		}
	}
}

type level int

func TestSerializers_DefaultValuesKeepNumericTypes(t *testing.T) {
	input := map[string]any{
		"qty":    5,
		"small":  uint8(7),
		"level":  level(3),
		"price":  1.5,
		"ratio":  float32(0.5),
		"whole":  2.0,
		"name":   "x",
		"active": true,
		"none":   nil,
		"tags":   []string{"a", "b"},
		"limits": map[string]int{"max": 10},
	}
	want := map[string]any{
		"qty":    int64(5),
		"small":  int64(7),
		"level":  int64(3),
		"price":  1.5,
		"ratio":  0.5,
		"whole":  2.0,
		"name":   "x",
		"active": true,
		"none":   nil,
		"tags":   []any{"a", "b"},
		"limits": map[string]any{"max": int64(10)},
	}

	canonical, err := KindDefaultValues.canonicalize(input)
	if err != nil {
		t.Fatalf("canonicalize failed: %v", err)
	}
	if !reflect.DeepEqual(canonical, want) {
		t.Fatalf("canonical form:\n got %#v\nwant %#v", canonical, want)
	}

	for _, s := range []Serializer{MsgpackSerializer(), JSONSerializer()} {
		t.Run(s.Name(), func(t *testing.T) {
			data, err := s.EncodeRow(Row{KindDefaultValues: input})
			if err != nil {
				t.Fatalf("EncodeRow failed: %v", err)
			}
			got, err := s.DecodeRow(data)
			if err != nil {
				t.Fatalf("DecodeRow failed: %v", err)
			}
			if !reflect.DeepEqual(got[KindDefaultValues], want) {
				t.Errorf("decoded:\n got %#v\nwant %#v", got[KindDefaultValues], want)
			}
		})
	}
}

func TestRow_ValidateRejectsUnencodableDefaults(t *testing.T) {
	tests := map[string]any{
		"channel":  make(chan int),
		"func":     func() {},
		"nan":      math.NaN(),
		"infinity": math.Inf(1),
		"int keys": map[int]string{1: "a"},
		"struct":   struct{ A int }{A: 1},
	}
	for name, value := range tests {
		row := Row{KindDefaultValues: map[string]any{"v": value}}
		if err := row.Validate(); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestSerializers_IgnoreUnknownKinds(t *testing.T) {
	payload := map[string]any{"identityField": "id", "legacyKind": []int{1, 2}}

	data, err := msgpack.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	row, err := MsgpackSerializer().DecodeRow(data)
	if err != nil {
		t.Fatalf("DecodeRow failed: %v", err)
	}
	if len(row) != 1 || row[KindIdentityField] != "id" {
		t.Errorf("unexpected row %v", row)
	}

	data, err = json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	row, err = JSONSerializer().DecodeRow(data)
	if err != nil {
		t.Fatalf("DecodeRow failed: %v", err)
	}
	if len(row) != 1 || row[KindIdentityField] != "id" {
		t.Errorf("unexpected row %v", row)
	}
}

func TestJSONSerializer_Golden(t *testing.T) {
	row := Row{
		KindAttributes:    []string{"id", "name"},
		KindPrimaryKeys:   []string{"id"},
		KindIdentityField: "id",
		KindColumnMap:     map[string]string{"id": "id", "name": "name"},
		KindDataTypes:     map[string]DataType{"id": TypeInteger, "name": TypeVarchar},
		KindRelations: []relation.Relation{
			relation.New(relation.HasMany, []string{"id"}, "shop.Item", []string{"order_id"},
				map[string]any{"alias": "items"}),
		},
	}
	data, err := JSONSerializer().EncodeRow(row)
	if err != nil {
		t.Fatalf("EncodeRow failed: %v", err)
	}
	testsupport.CompareWithGolden(t, testsupport.GoldenPath("order_row.json"), data)
}

func TestSerializerByName(t *testing.T) {
	tests := []struct {
		name string
		want string
		err  bool
	}{
		{name: "", want: SerializerMsgpack},
		{name: "msgpack", want: SerializerMsgpack},
		{name: "json", want: SerializerJSON},
		{name: "php", err: true},
	}
	for _, tt := range tests {
		s, err := SerializerByName(tt.name)
		if tt.err {
			if err == nil {
				t.Errorf("%q: expected error", tt.name)
			}
			continue
		}
		if err != nil || s.Name() != tt.want {
			t.Errorf("%q: got %v, %v", tt.name, s, err)
		}
	}
}

func TestKinds(t *testing.T) {
	for _, k := range Kinds() {
		parsed, err := ParseKind(k.String())
		if err != nil || parsed != k {
			t.Errorf("ParseKind(%q) = %v, %v", k.String(), parsed, err)
		}
		if k.ValueType() == nil {
			t.Errorf("kind %s has no value type", k)
		}
	}

	if _, err := ParseKind("columns"); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
	if Kind(-1).Valid() || Kind(len(kindSpecs)).Valid() {
		t.Error("out of range kinds must be invalid")
	}
	if Kind(42).String() != "Kind(42)" {
		t.Errorf("unexpected name %q", Kind(42).String())
	}
}

func TestRow(t *testing.T) {
	base := Row{KindIdentityField: "id"}
	next := base.With(KindPrimaryKeys, []string{"id"})

	if _, ok := base.Get(KindPrimaryKeys); ok {
		t.Error("With must not modify the receiver")
	}
	if v, ok := next.Get(KindIdentityField); !ok || v != "id" {
		t.Error("With must keep existing kinds")
	}
	if got := next.Kinds(); !reflect.DeepEqual(got, []Kind{KindPrimaryKeys, KindIdentityField}) {
		t.Errorf("Kinds = %v", got)
	}
	if err := next.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
	if err := (Row{KindIdentityField: nil}).Validate(); err == nil {
		t.Error("expected nil value rejected")
	}
	if Row(nil).Clone() != nil {
		t.Error("Clone of nil must be nil")
	}
}

func TestDataType_IsNumeric(t *testing.T) {
	tests := map[DataType]bool{
		TypeInteger:    true,
		TypeBigInteger: true,
		TypeDecimal:    true,
		TypeTinyInt:    true,
		TypeVarchar:    false,
		TypeJSONB:      false,
		TypeTimestamp:  false,
	}
	for dt, want := range tests {
		if dt.IsNumeric() != want {
			t.Errorf("DataType(%d).IsNumeric() = %v", dt, !want)
		}
	}
}
