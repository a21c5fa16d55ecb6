package evm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Fields is an ordered set of key/value pairs rendered by Format.
// Values may be strings, integers, booleans, *big.Int, raw JSON,
// string slices or nested *Fields.
type Fields = orderedmap.OrderedMap[string, any]

// NewFields builds Fields from alternating keys and values
func NewFields(kv ...any) *Fields {
	f := orderedmap.New[string, any]()
	for i := 0; i+1 < len(kv); i += 2 {
		f.Set(kv[i].(string), kv[i+1])
	}
	return f
}

type entry struct {
	key   string
	value any
}

// Format renders data under a bold title. Object values are expanded one
// level as an indented list; anything nested deeper is printed inline as
// compact JSON rather than expanded further.
func Format(title string, data any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s**\n\n", title)

	top, ok := entries(data)
	if !ok {
		b.WriteString(stringify(data))
		b.WriteByte('\n')
		return b.String()
	}

	for _, e := range top {
		sub, ok := entries(e.value)
		if !ok {
			fmt.Fprintf(&b, "**%s:** %s\n", e.key, stringify(e.value))
			continue
		}
		fmt.Fprintf(&b, "**%s:**\n", e.key)
		for _, s := range sub {
			fmt.Fprintf(&b, "  - %s: %s\n", s.key, stringify(s.value))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// entries returns the key/value pairs of object-like values. Arrays are
// object-like and keyed by index.
func entries(v any) ([]entry, bool) {
	switch v := v.(type) {
	case *Fields:
		if v == nil {
			return nil, false
		}
		out := make([]entry, 0, v.Len())
		for pair := v.Oldest(); pair != nil; pair = pair.Next() {
			out = append(out, entry{pair.Key, pair.Value})
		}
		return out, true
	case []string:
		out := make([]entry, len(v))
		for i, s := range v {
			out[i] = entry{strconv.Itoa(i), s}
		}
		return out, true
	case json.RawMessage:
		return rawEntries(v)
	default:
		return nil, false
	}
}

func rawEntries(raw json.RawMessage) ([]entry, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, false
	}

	switch trimmed[0] {
	case '{':
		obj := orderedmap.New[string, json.RawMessage]()
		if err := obj.UnmarshalJSON(trimmed); err != nil {
			return nil, false
		}
		out := make([]entry, 0, obj.Len())
		for pair := obj.Oldest(); pair != nil; pair = pair.Next() {
			out = append(out, entry{pair.Key, pair.Value})
		}
		return out, true
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, false
		}
		out := make([]entry, len(items))
		for i, item := range items {
			out[i] = entry{strconv.Itoa(i), item}
		}
		return out, true
	default:
		return nil, false
	}
}

// stringify renders a scalar, or a nested value as compact JSON
func stringify(v any) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case uint64:
		return strconv.FormatUint(v, 10)
	case *big.Int:
		if v == nil {
			return "null"
		}
		return v.String()
	case json.RawMessage:
		return stringifyRaw(v)
	case *Fields:
		data, err := v.MarshalJSON()
		if err != nil {
			return err.Error()
		}
		return string(data)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	}
}

func stringifyRaw(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "null"
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return string(trimmed)
	}
	return buf.String()
}
