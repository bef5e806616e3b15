package build

// merge performs a deep merge: b overrides a key by key; nested maps merge
// recursively, everything else (scalars, lists) is replaced. Neither input is modified.
func merge(a, b map[string]any) map[string]any {
	out := make(map[string]any, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, bv := range b {
		if bm, ok := asMap(bv); ok {
			if am, ok := asMap(out[k]); ok {
				out[k] = merge(am, bm)
				continue
			}
			out[k] = merge(nil, bm)
			continue
		}
		out[k] = bv
	}
	return out
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Raw:
		return m, true
	case Overrides:
		return m, true
	}
	return nil, false
}
