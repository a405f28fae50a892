package ops

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// minLeafRunes is the cutoff below which leaf strings inside nested
// structures are dropped from the indexable text. Short leaves tend to
// be ids and codes that would pollute the token index; prose-like
// content clears the bar.
const minLeafRunes = 15

// Stringify converts an arbitrary document value into a single
// indexable string. Strings pass through unchanged; numbers and
// booleans keep their textual form (zero and false included); nested
// structures are flattened to their long string leaves joined by a
// space. Anything else yields an empty string.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case json.Number:
		return t.String()
	case map[string]any, []any:
		var leaves []string
		collectLeaves(v, &leaves)
		return strings.Join(leaves, " ")
	default:
		return ""
	}
}

// collectLeaves walks nested maps and slices gathering string leaves
// longer than minLeafRunes. Map keys are visited in sorted order so
// the result is deterministic.
func collectLeaves(v any, out *[]string) {
	switch t := v.(type) {
	case string:
		if utf8.RuneCountInString(t) > minLeafRunes {
			*out = append(*out, t)
		}
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			collectLeaves(t[k], out)
		}
	case []any:
		for _, e := range t {
			collectLeaves(e, out)
		}
	}
}
