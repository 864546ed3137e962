package convert

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"github.com/rowbridge/rowbridge/pkg/bigquery"
	"github.com/rowbridge/rowbridge/pkg/models"
)

// RowFromTableRow parses a textual row into a canonical row, looking up
// raw values directly by field name. This is the preferred entry point:
// it needs no descriptor, which is redundant with the schema and not
// serializable anyway.
func RowFromTableRow(schema models.Schema, tr *models.TableRow) (*models.Row, error) {
	values := make([]any, 0, len(schema.Fields))
	for _, field := range schema.Fields {
		raw, _ := tr.Get(field.Name)
		v, err := parseFieldValue(field, raw)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return &models.Row{Values: values}, nil
}

// RowFromTableRowWithSchema parses a raw textual row whose values sit in
// positional {"v": ...} cells, using the descriptor to map each schema
// field's name to its cell position. Descriptor field order may differ
// from schema field order.
func RowFromTableRowWithSchema(schema models.Schema, ts *bigquery.TableSchema, tr *models.TableRow) (*models.Row, error) {
	indexByName := make(map[string]int, len(ts.Fields))
	for i, f := range ts.Fields {
		indexByName[f.Name] = i
	}

	values := make([]any, 0, len(schema.Fields))
	for _, field := range schema.Fields {
		idx, ok := indexByName[field.Name]
		if !ok {
			return nil, fmt.Errorf("%w: field %q missing from descriptor", ErrUnsupportedType, field.Name)
		}
		cell, ok := tr.Cell(idx)
		if !ok {
			return nil, fmt.Errorf("%w: row has no cell %d for field %q", ErrUnsupportedType, idx, field.Name)
		}
		v, err := parseFieldValue(field, cell.V)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return &models.Row{Values: values}, nil
}

func parseFieldValue(field models.Field, raw any) (any, error) {
	if raw == nil {
		if field.Nullable {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: received null value for field %q", ErrNonNullableNull, field.Name)
	}
	v, err := parseValue(field.Type, raw)
	if err != nil {
		return nil, fmt.Errorf("parsing field %q: %w", field.Name, err)
	}
	return v, nil
}

func parseValue(ft models.FieldType, raw any) (any, error) {
	if isTextScalar(raw) {
		s := fmt.Sprint(raw)
		if parse, ok := textParsers[ft.Name]; ok {
			v, err := parse(s)
			if err != nil {
				return nil, fmt.Errorf("%w: parsing %q as %s: %v", ErrUnsupportedType, s, ft.Name, err)
			}
			return v, nil
		}
		if ft.Name == models.TypeLogical {
			if v, err, ok := parseLogicalText(ft.Logical, s); ok {
				return v, err
			}
		}
	}

	switch rv := raw.(type) {
	case []any:
		if ft.Name != models.TypeArray {
			return nil, badParseValue(ft, raw)
		}
		out := make([]any, 0, len(rv))
		for i, el := range rv {
			inner := unwrapCell(el)
			if inner == nil {
				out = append(out, nil)
				continue
			}
			v, err := parseValue(*ft.Elem, inner)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out = append(out, v)
		}
		return out, nil

	case *models.TableRow:
		if ft.Name != models.TypeRow {
			return nil, badParseValue(ft, raw)
		}
		return RowFromTableRow(*ft.RowSchema, rv)

	case map[string]any:
		if ft.Name != models.TypeRow {
			return nil, badParseValue(ft, raw)
		}
		sub := models.NewTableRow()
		for k, v := range rv {
			sub.Set(k, v)
		}
		return RowFromTableRow(*ft.RowSchema, sub)
	}

	return nil, badParseValue(ft, raw)
}

// parseLogicalText parses the textual forms of the date/time logical
// types. The third return reports whether the identifier was handled.
func parseLogicalText(lt *models.LogicalType, s string) (any, error, bool) {
	var layout string
	switch lt.Repr {
	case models.ReprDateTime:
		layout = datetimeLayout
	case models.ReprDate:
		layout = dateLayout
	case models.ReprTime:
		layout = timeLayout
	default:
		return nil, nil, false
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing %q as %s: %v", ErrUnsupportedType, s, lt.Identifier, err), true
	}
	return t, nil, true
}

// unwrapCell strips one level of the {"v": value} envelope the text
// format wraps around values inside lists.
func unwrapCell(el any) any {
	switch cv := el.(type) {
	case *models.TableRow:
		if v, ok := cv.Get("v"); ok && cv.Len() == 1 {
			return v
		}
		return cv
	case map[string]any:
		if v, ok := cv["v"]; ok && len(cv) == 1 {
			return v
		}
		return cv
	case models.Cell:
		return cv.V
	default:
		return el
	}
}

func isTextScalar(raw any) bool {
	switch raw.(type) {
	case string, bool, json.Number,
		float64, float32,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return true
	default:
		return false
	}
}

func badParseValue(ft models.FieldType, raw any) error {
	return fmt.Errorf("%w: converting text value of type %T to %s is unsupported", ErrUnsupportedType, raw, ft.Name)
}
