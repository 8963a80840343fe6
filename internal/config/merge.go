package config

// Merge deep-merges source into target and returns target.
//
// For every key in source: when both sides hold mappings they are merged
// recursively, otherwise the source value replaces the target value.
// Sequences and scalars are never merged. A nil target is allocated.
func Merge(target, source map[string]any) map[string]any {
	if target == nil {
		target = make(map[string]any, len(source))
	}

	for key, value := range source {
		srcMap, srcIsMap := value.(map[string]any)
		dstMap, dstIsMap := target[key].(map[string]any)

		if srcIsMap && dstIsMap {
			target[key] = Merge(dstMap, srcMap)
			continue
		}

		target[key] = copyValue(value)
	}

	return target
}

// copyMap returns a deep copy of m. Nested mappings and sequences are copied
// so the result never aliases m.
func copyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return copyMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = copyValue(item)
		}
		return out
	default:
		return v
	}
}
