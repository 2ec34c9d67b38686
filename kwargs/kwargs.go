// Package kwargs holds name-keyed constructor argument sets and the
// filtering applied to them when a layer is rebuilt for a different runtime.
package kwargs

// Args maps constructor parameter names to values.
type Args map[string]interface{}

// Clone returns a shallow copy of a.
func (a Args) Clone() Args {
	out := make(Args, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Keys returns the parameter names present in a.
func (a Args) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	return keys
}

// Trim removes each name in drop from params, in place. It accepts either an
// Args map or a *[]string parameter-name list; names absent from the
// container are skipped. Any other container type is left untouched.
func Trim(params interface{}, drop []string) {
	switch p := params.(type) {
	case Args:
		for _, name := range drop {
			delete(p, name)
		}
	case map[string]interface{}:
		for _, name := range drop {
			delete(p, name)
		}
	case *[]string:
		for _, name := range drop {
			*p = remove(*p, name)
		}
	}
}

// Restrict removes from a every parameter whose name is not in keep.
func (a Args) Restrict(keep []string) {
	for name := range a {
		if !contains(keep, name) {
			delete(a, name)
		}
	}
}

// Merge copies every entry of extra into a, overwriting existing names.
func (a Args) Merge(extra Args) {
	for k, v := range extra {
		a[k] = v
	}
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func remove(names []string, name string) []string {
	out := names[:0]
	for _, n := range names {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}
