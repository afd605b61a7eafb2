package config

import "gopkg.in/yaml.v3"

// Optional is a three-state string: unset, explicitly empty, or a value.
//
// Receipt fields need to distinguish "the operator never configured this"
// (fall back to the built-in default) from "the operator set it to empty"
// (omit the line). A plain string or *string collapses those two states and
// breeds ambiguity bugs, so the distinction is carried in the type.
type Optional struct {
	set   bool
	value string
}

// Some returns an Optional holding an explicit value. An explicit empty
// string is the documented opt-out signal.
func Some(value string) Optional {
	return Optional{set: true, value: value}
}

// Unset returns the zero Optional. Mostly useful in tests.
func Unset() Optional {
	return Optional{}
}

// IsSet reports whether the field appeared in the config file at all.
func (o Optional) IsSet() bool { return o.set }

// Value returns the configured value. Empty when unset.
func (o Optional) Value() string { return o.value }

// Or resolves the three states: unset yields def, an explicit empty string
// stays empty (meaning "omit"), and any other value is returned as-is.
func (o Optional) Or(def string) string {
	if !o.set {
		return def
	}
	return o.value
}

// UnmarshalYAML records that the key was present, even when its value is
// empty or null. A null value counts as explicit empty.
func (o *Optional) UnmarshalYAML(node *yaml.Node) error {
	o.set = true
	if node.Tag == "!!null" {
		o.value = ""
		return nil
	}
	return node.Decode(&o.value)
}

// MarshalYAML round-trips the value; unset fields marshal as null.
func (o Optional) MarshalYAML() (any, error) {
	if !o.set {
		return nil, nil
	}
	return o.value, nil
}
