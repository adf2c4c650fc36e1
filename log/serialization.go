package log

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// field is one rendered attribute.
type field struct {
	Key   string
	Type  string // "string", "int64", "bool", "float64", "time", "error", "json", "any", ...
	Value string
}

// toField renders a slog.Attr. prefix is the dotted group path.
func toField(prefix string, attr slog.Attr) []field {
	attr.Value = attr.Value.Resolve()
	key := attr.Key
	if prefix != "" {
		key = prefix + "." + key
	}
	f := field{Key: key}

	switch attr.Value.Kind() {
	case slog.KindString:
		f.Type = "string"
		f.Value = attr.Value.String()
	case slog.KindInt64:
		f.Type = "int64"
		f.Value = strconv.FormatInt(attr.Value.Int64(), 10)
	case slog.KindUint64:
		f.Type = "uint64"
		f.Value = strconv.FormatUint(attr.Value.Uint64(), 10)
	case slog.KindBool:
		f.Type = "bool"
		f.Value = strconv.FormatBool(attr.Value.Bool())
	case slog.KindFloat64:
		f.Type = "float64"
		f.Value = strconv.FormatFloat(attr.Value.Float64(), 'g', -1, 64)
	case slog.KindTime:
		f.Type = "time"
		f.Value = attr.Value.Time().Format(time.RFC3339Nano)
	case slog.KindDuration:
		f.Type = "duration"
		f.Value = attr.Value.Duration().String()
	case slog.KindGroup:
		var out []field
		for _, a := range attr.Value.Group() {
			out = append(out, toField(groupPrefix(prefix, attr.Key), a)...)
		}
		return out
	case slog.KindAny:
		v := attr.Value.Any()
		switch x := v.(type) {
		case nil:
			f.Type = "any"
			f.Value = "<nil>"
		case error:
			f.Type = "error"
			f.Value = x.Error()
		case fmt.Stringer:
			f.Type = "string"
			f.Value = x.String()
		default:
			if data, err := json.Marshal(v); err == nil {
				f.Type = "json"
				f.Value = string(data)
			} else {
				f.Type = "any"
				f.Value = fmt.Sprintf("%v", v)
			}
		}
	default:
		f.Type = "any"
		f.Value = fmt.Sprintf("%v", attr.Value.Any())
	}
	return []field{f}
}

// groupPrefix extends prefix with name. An inline group (empty name) adds
// nothing.
func groupPrefix(prefix, name string) string {
	switch {
	case name == "":
		return prefix
	case prefix == "":
		return name
	default:
		return prefix + "." + name
	}
}

// String renders the field as key=value, quoting values that need it.
func (f field) String() string {
	v := f.Value
	if v == "" || strings.ContainsAny(v, " \t\n\"=") {
		v = strconv.Quote(v)
	}
	return f.Key + "=" + v
}
