package relation

import (
	"encoding/json"

	"github.com/vmihailenco/msgpack/v5"
)

// wire is the serialized shape of a Relation.
type wire struct {
	Type             Type           `json:"type" msgpack:"type"`
	Fields           []string       `json:"fields,omitempty" msgpack:"fields,omitempty"`
	ReferencedModel  string         `json:"referencedModel" msgpack:"referencedModel"`
	ReferencedFields []string       `json:"referencedFields,omitempty" msgpack:"referencedFields,omitempty"`
	Options          map[string]any `json:"options,omitempty" msgpack:"options,omitempty"`
	Intermediate     *Intermediate  `json:"intermediate,omitempty" msgpack:"intermediate,omitempty"`
}

func (r Relation) toWire() wire {
	c := r.clone()
	return wire{
		Type:             c.typ,
		Fields:           c.fields,
		ReferencedModel:  c.referencedModel,
		ReferencedFields: c.referencedFields,
		Options:          serializableOptions(c.options),
		Intermediate:     c.intermediate,
	}
}

func fromWire(w wire) Relation {
	r := New(w.Type, w.Fields, w.ReferencedModel, w.ReferencedFields, w.Options)
	if w.Intermediate != nil {
		r = r.WithIntermediate(w.Intermediate.Fields, w.Intermediate.Model, w.Intermediate.ReferencedFields)
	}
	return r
}

// serializableOptions drops option values that cannot leave the process,
// such as params closures.
func serializableOptions(in map[string]any) map[string]any {
	for k, v := range in {
		if _, isFn := v.(func() any); isFn {
			delete(in, k)
		}
	}
	if len(in) == 0 {
		return nil
	}
	return in
}

// EncodeMsgpack implements msgpack.CustomEncoder.
func (r Relation) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.Encode(r.toWire())
}

// DecodeMsgpack implements msgpack.CustomDecoder.
func (r *Relation) DecodeMsgpack(dec *msgpack.Decoder) error {
	var w wire
	if err := dec.Decode(&w); err != nil {
		return err
	}
	*r = fromWire(w)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (r Relation) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.toWire())
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Relation) UnmarshalJSON(data []byte) error {
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*r = fromWire(w)
	return nil
}
