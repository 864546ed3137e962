package models

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"
)

// Cell is the {"v": ...} envelope the warehouse wraps around values in
// list positions and in raw row cells.
type Cell struct {
	V any `json:"v"`
}

// TableRow is the textual row shape: an ordered string-keyed mapping
// whose values are strings, numbers, booleans, nested *TableRow values
// or []any lists. Insertion order is preserved through JSON round
// trips, which matters because the warehouse matches raw cells to
// descriptor fields positionally.
type TableRow struct {
	names []string
	vals  map[string]any
	cells []Cell
}

// NewTableRow returns an empty text row.
func NewTableRow() *TableRow {
	return &TableRow{vals: make(map[string]any)}
}

// Set stores a value under name. Setting an existing name overwrites in
// place and keeps its original position.
func (r *TableRow) Set(name string, value any) *TableRow {
	if _, ok := r.vals[name]; !ok {
		r.names = append(r.names, name)
	}
	r.vals[name] = value
	return r
}

// Get returns the value stored under name.
func (r *TableRow) Get(name string) (any, bool) {
	v, ok := r.vals[name]
	return v, ok
}

// Len returns the number of fields.
func (r *TableRow) Len() int {
	return len(r.names)
}

// Names returns field names in insertion order.
func (r *TableRow) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// SetCells attaches the positional cell list used by the raw warehouse
// row form.
func (r *TableRow) SetCells(cells []Cell) {
	r.cells = cells
}

// Cell returns the i-th positional cell. Rows decoded from the raw
// {"f": [{"v": ...}, ...]} form expose their cells here.
func (r *TableRow) Cell(i int) (Cell, bool) {
	if r.cells == nil {
		r.cells = cellsFromF(r)
	}
	if i < 0 || i >= len(r.cells) {
		return Cell{}, false
	}
	return r.cells[i], true
}

func cellsFromF(r *TableRow) []Cell {
	raw, ok := r.Get("f")
	if !ok {
		return []Cell{}
	}
	list, ok := raw.([]any)
	if !ok {
		return []Cell{}
	}
	cells := make([]Cell, 0, len(list))
	for _, el := range list {
		switch cv := el.(type) {
		case *TableRow:
			v, _ := cv.Get("v")
			cells = append(cells, Cell{V: v})
		case map[string]any:
			cells = append(cells, Cell{V: cv["v"]})
		case Cell:
			cells = append(cells, cv)
		default:
			cells = append(cells, Cell{V: el})
		}
	}
	return cells
}

// MarshalJSON writes fields in insertion order.
func (r *TableRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range r.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(r.vals[name])
		if err != nil {
			return nil, fmt.Errorf("marshaling field %q: %w", name, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object preserving field order; nested
// objects decode to *TableRow so order survives at every level.
func (r *TableRow) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}
	if r.vals == nil {
		r.vals = make(map[string]any)
	}
	return decodeObjectFields(dec, r)
}

func decodeObjectFields(dec *json.Decoder, r *TableRow) error {
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", keyTok)
		}
		val, err := decodeValue(dec)
		if err != nil {
			return fmt.Errorf("decoding field %q: %w", key, err)
		}
		r.Set(key, val)
	}
	// consume closing '}'
	_, err := dec.Token()
	return err
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			sub := NewTableRow()
			if err := decodeObjectFields(dec, sub); err != nil {
				return nil, err
			}
			return sub, nil
		case '[':
			var list []any
			for dec.More() {
				el, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				list = append(list, el)
			}
			if _, err := dec.Token(); err != nil { // closing ']'
				return nil, err
			}
			return list, nil
		default:
			return nil, fmt.Errorf("unexpected delimiter %v", t)
		}
	default:
		return tok, nil
	}
}
