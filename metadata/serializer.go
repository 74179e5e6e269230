package metadata

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Serializer converts rows to and from the bytes stored in a cache backend.
type Serializer interface {
	Name() string
	EncodeRow(row Row) ([]byte, error)
	DecodeRow(data []byte) (Row, error)
}

const (
	SerializerMsgpack = "msgpack"
	SerializerJSON    = "json"
)

// MsgpackSerializer is the default row encoding.
func MsgpackSerializer() Serializer { return msgpackSerializer{} }

// JSONSerializer stores rows as JSON objects keyed by kind name.
func JSONSerializer() Serializer { return jsonSerializer{} }

// SerializerByName resolves "msgpack" or "json". An empty name selects msgpack.
func SerializerByName(name string) (Serializer, error) {
	switch name {
	case "", SerializerMsgpack:
		return MsgpackSerializer(), nil
	case SerializerJSON:
		return JSONSerializer(), nil
	default:
		return nil, fmt.Errorf("unknown serializer %q", name)
	}
}

// encodable validates row and keys its canonical values by kind name.
func encodable(row Row) (map[string]any, error) {
	canonical, err := row.canonical()
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(canonical))
	for k, v := range canonical {
		out[k.String()] = v
	}
	return out, nil
}

// decodeKind decodes one kind and brings it to its canonical form.
func decodeKind(kind Kind, unmarshal func(target any) error) (any, error) {
	v, err := kindSpecs[kind].decode(unmarshal)
	if err != nil {
		return nil, err
	}
	return kind.canonicalize(v)
}

type msgpackSerializer struct{}

func (msgpackSerializer) Name() string { return SerializerMsgpack }

func (msgpackSerializer) EncodeRow(row Row) ([]byte, error) {
	m, err := encodable(row)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (msgpackSerializer) DecodeRow(data []byte) (Row, error) {
	var raw map[string]msgpack.RawMessage
	if err := msgpack.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	row := make(Row, len(raw))
	for name, msg := range raw {
		kind, ok := kindsByName[name]
		if !ok {
			continue
		}
		v, err := decodeKind(kind, func(target any) error {
			return msgpack.Unmarshal(msg, target)
		})
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
		row[kind] = v
	}
	return row, nil
}

type jsonSerializer struct{}

func (jsonSerializer) Name() string { return SerializerJSON }

func (jsonSerializer) EncodeRow(row Row) ([]byte, error) {
	m, err := encodable(row)
	if err != nil {
		return nil, err
	}
	if v, ok := m[KindDefaultValues.String()]; ok {
		m[KindDefaultValues.String()] = withJSONFloats(v)
	}
	return json.Marshal(m)
}

func (jsonSerializer) DecodeRow(data []byte) (Row, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	row := make(Row, len(raw))
	for name, msg := range raw {
		kind, ok := kindsByName[name]
		if !ok {
			continue
		}
		v, err := decodeKind(kind, func(target any) error {
			dec := json.NewDecoder(bytes.NewReader(msg))
			dec.UseNumber()
			return dec.Decode(target)
		})
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
		row[kind] = v
	}
	return row, nil
}
