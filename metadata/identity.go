package metadata

import "reflect"

// IdentityOf derives the identity of a model value from its Go type as
// "<package path>.<type name>", after dereferencing pointers. Strings and
// identities are returned unchanged.
func IdentityOf(v any) ModelIdentity {
	var t reflect.Type
	switch m := v.(type) {
	case ModelIdentity:
		return m
	case string:
		return ModelIdentity(m)
	case reflect.Type:
		t = m
	default:
		t = reflect.TypeOf(v)
	}
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil {
		return ""
	}
	if t.PkgPath() == "" || t.Name() == "" {
		return ModelIdentity(t.String())
	}
	return ModelIdentity(t.PkgPath() + "." + t.Name())
}
