package query

import (
	"bytes"
	"encoding/json"

	"github.com/yourusername/yabai-cli/internal/models"
	"github.com/yourusername/yabai-cli/internal/wmerr"
)

// record is one object from a query's JSON array, checked field by field so
// a schema violation names the offending record and field.
type record struct {
	domain string
	index  int
	fields map[string]json.RawMessage
}

func (r record) fail(field, reason string) error {
	return &wmerr.ParseError{Query: r.domain, Index: r.index, Field: field, Reason: reason}
}

func (r record) raw(name string) (json.RawMessage, bool) {
	v, ok := r.fields[name]
	if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
		return nil, false
	}
	return v, true
}

func (r record) decode(name string, dst interface{}, typeName string) error {
	v, ok := r.raw(name)
	if !ok {
		return r.fail(name, "missing")
	}
	if err := json.Unmarshal(v, dst); err != nil {
		return r.fail(name, "expected "+typeName)
	}
	return nil
}

func (r record) intField(name string) (int, error) {
	var n int
	err := r.decode(name, &n, "integer")
	return n, err
}

func (r record) stringField(name string) (string, error) {
	var s string
	err := r.decode(name, &s, "string")
	return s, err
}

// boolAlias reads the first alias present. yabai renamed several flags
// (e.g. focused -> has-focus) and both spellings are in the wild.
func (r record) boolAlias(names ...string) (bool, error) {
	for _, name := range names {
		if _, ok := r.raw(name); ok {
			var b bool
			err := r.decode(name, &b, "boolean")
			return b, err
		}
	}
	return false, r.fail(names[0], "missing")
}

func (r record) intSlice(name string) ([]int, error) {
	var s []int
	err := r.decode(name, &s, "array of integers")
	return s, err
}

// optional reads name into dst when present; absence is not an error.
func (r record) optional(name string, dst interface{}, typeName string) error {
	if _, ok := r.raw(name); !ok {
		return nil
	}
	return r.decode(name, dst, typeName)
}

func records(domain string, data []byte) ([]record, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, &wmerr.ParseError{Query: domain, Index: -1, Reason: "not a JSON array: " + err.Error()}
	}
	if items == nil {
		return nil, &wmerr.ParseError{Query: domain, Index: -1, Reason: "not a JSON array"}
	}

	out := make([]record, len(items))
	for i, item := range items {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(item, &fields); err != nil || fields == nil {
			return nil, &wmerr.ParseError{Query: domain, Index: i, Reason: "not a JSON object"}
		}
		out[i] = record{domain: domain, index: i, fields: fields}
	}
	return out, nil
}

// ParseWindows parses `query --windows` output.
func ParseWindows(data []byte) ([]models.Window, error) {
	recs, err := records(DomainWindows, data)
	if err != nil {
		return nil, err
	}

	windows := make([]models.Window, 0, len(recs))
	for _, r := range recs {
		var w models.Window
		if w.ID, err = r.intField("id"); err != nil {
			return nil, err
		}
		if w.App, err = r.stringField("app"); err != nil {
			return nil, err
		}
		if w.Title, err = r.stringField("title"); err != nil {
			return nil, err
		}
		if w.Display, err = r.intField("display"); err != nil {
			return nil, err
		}
		if w.Space, err = r.intField("space"); err != nil {
			return nil, err
		}
		if w.Focused, err = r.boolAlias("has-focus", "focused"); err != nil {
			return nil, err
		}

		if err := r.optional("pid", &w.PID, "integer"); err != nil {
			return nil, err
		}
		if err := r.optional("is-floating", &w.Floating, "boolean"); err != nil {
			return nil, err
		}
		if err := r.optional("is-minimized", &w.Minimized, "boolean"); err != nil {
			return nil, err
		}
		if _, ok := r.raw("frame"); ok {
			var f models.Frame
			if err := r.decode("frame", &f, "frame object"); err != nil {
				return nil, err
			}
			w.Frame = &f
		}

		windows = append(windows, w)
	}
	return windows, nil
}

// ParseDisplays parses `query --displays` output.
func ParseDisplays(data []byte) ([]models.Display, error) {
	recs, err := records(DomainDisplays, data)
	if err != nil {
		return nil, err
	}

	displays := make([]models.Display, 0, len(recs))
	for _, r := range recs {
		var d models.Display
		if d.ID, err = r.intField("id"); err != nil {
			return nil, err
		}
		if d.Index, err = r.intField("index"); err != nil {
			return nil, err
		}
		if d.Frame, err = parseDisplayFrame(r); err != nil {
			return nil, err
		}
		if d.Spaces, err = r.intSlice("spaces"); err != nil {
			return nil, err
		}
		if err := r.optional("uuid", &d.UUID, "string"); err != nil {
			return nil, err
		}

		displays = append(displays, d)
	}
	return displays, nil
}

// parseDisplayFrame requires w and h; x and y are optional.
func parseDisplayFrame(r record) (models.Frame, error) {
	var raw map[string]json.RawMessage
	if err := r.decode("frame", &raw, "frame object"); err != nil {
		return models.Frame{}, err
	}
	frame := record{domain: r.domain, index: r.index, fields: raw}

	var f models.Frame
	for _, dim := range []struct {
		name     string
		dst      *float64
		required bool
	}{
		{"w", &f.W, true},
		{"h", &f.H, true},
		{"x", &f.X, false},
		{"y", &f.Y, false},
	} {
		if _, ok := frame.raw(dim.name); !ok {
			if dim.required {
				return models.Frame{}, r.fail("frame."+dim.name, "missing")
			}
			continue
		}
		if err := json.Unmarshal(raw[dim.name], dim.dst); err != nil {
			return models.Frame{}, r.fail("frame."+dim.name, "expected number")
		}
	}
	return f, nil
}

// ParseSpaces parses `query --spaces` output.
func ParseSpaces(data []byte) ([]models.Space, error) {
	recs, err := records(DomainSpaces, data)
	if err != nil {
		return nil, err
	}

	spaces := make([]models.Space, 0, len(recs))
	for _, r := range recs {
		var s models.Space
		if s.ID, err = r.intField("id"); err != nil {
			return nil, err
		}
		if s.Index, err = r.intField("index"); err != nil {
			return nil, err
		}
		if s.Label, err = r.stringField("label"); err != nil {
			return nil, err
		}
		if s.Display, err = r.intField("display"); err != nil {
			return nil, err
		}
		if s.Visible, err = r.boolAlias("is-visible", "visible"); err != nil {
			return nil, err
		}

		if err := r.optional("type", &s.Type, "string"); err != nil {
			return nil, err
		}
		if err := r.optional("windows", &s.Windows, "array of integers"); err != nil {
			return nil, err
		}
		if err := r.optional("has-focus", &s.Focused, "boolean"); err != nil {
			return nil, err
		}

		spaces = append(spaces, s)
	}
	return spaces, nil
}
