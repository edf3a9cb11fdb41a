package driver

// TagsToARM converts descriptor tags to the pointer map ARM clients expect.
func TagsToARM(tags map[string]string) map[string]*string {
	if tags == nil {
		return nil
	}
	out := make(map[string]*string, len(tags))
	for k, v := range tags {
		v := v
		out[k] = &v
	}
	return out
}

// TagsFromARM converts an ARM tag map into plain strings. Nil values are
// treated as empty strings.
func TagsFromARM(tags map[string]*string) map[string]string {
	out := make(map[string]string, len(tags))
	for k, v := range tags {
		if v != nil {
			out[k] = *v
		} else {
			out[k] = ""
		}
	}
	return out
}

// StringsFromARM dereferences a pointer slice, skipping nil entries.
func StringsFromARM(values []*string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != nil {
			out = append(out, *v)
		}
	}
	return out
}

// StringsToARM converts a string slice into the pointer slice ARM expects.
func StringsToARM(values []string) []*string {
	out := make([]*string, 0, len(values))
	for _, v := range values {
		v := v
		out = append(out, &v)
	}
	return out
}

// Deref returns the pointed-to string or "".
func Deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
