package models

// Override is an optional string field. A zero Override means "no value
// supplied", which is distinct from an explicit empty string.
type Override struct {
	Value string
	Set   bool
}

// Some returns an Override carrying v.
func Some(v string) Override {
	return Override{Value: v, Set: true}
}

// OverrideFromField treats an empty field as unset. Rule tables cannot
// express a forced empty value.
func OverrideFromField(v string) Override {
	if v == "" {
		return Override{}
	}
	return Some(v)
}

// Apply writes the value into dst when set.
func (o Override) Apply(dst *string) {
	if o.Set {
		*dst = o.Value
	}
}
