package convert

import (
	"encoding/base64"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rowbridge/rowbridge/pkg/models"
)

// Field names of the struct the warehouse uses to express maps.
const (
	mapKeyFieldName   = "key"
	mapValueFieldName = "value"
)

// Wire formats. The timestamp output layout is a byte-for-byte contract
// with the warehouse's text ingestion: always exactly three fractional
// digits, always the literal " UTC" suffix. On input, zero, three or
// six fractional digits are accepted (Go tolerates an input fraction
// after the seconds even when the layout carries none).
const (
	timestampPrintLayout = "2006-01-02 15:04:05.000 UTC"
	timestampParseLayout = "2006-01-02 15:04:05 UTC"
	dateLayout           = "2006-01-02"
	timeLayout           = "15:04:05"
	timeFracLayout       = "15:04:05.000000"
	datetimeLayout       = "2006-01-02T15:04:05"
	datetimeFracLayout   = "2006-01-02T15:04:05.000000"
)

// canonicalToKeyword maps canonical kinds to warehouse type keywords.
// Built once, never mutated.
var canonicalToKeyword = map[models.TypeName]string{
	models.TypeByte:      "INT64",
	models.TypeInt16:     "INT64",
	models.TypeInt32:     "INT64",
	models.TypeInt64:     "INT64",
	models.TypeFloat32:   "FLOAT64",
	models.TypeFloat64:   "FLOAT64",
	models.TypeDecimal:   "NUMERIC",
	models.TypeBoolean:   "BOOL",
	models.TypeArray:     "ARRAY",
	models.TypeRow:       "STRUCT",
	models.TypeTimestamp: "TIMESTAMP",
	models.TypeString:    "STRING",
	models.TypeBytes:     "BYTES",
}

// logicalToKeyword maps logical identifiers to warehouse type keywords.
var logicalToKeyword = map[string]string{
	models.DateIdentifier:       "DATE",
	models.TimeIdentifier:       "TIME",
	models.DateTimeIdentifier:   "DATETIME",
	models.TimeWithTZIdentifier: "TIME",
	models.EnumIdentifier:       "STRING",
}

// textParsers parses the textual form of a primitive value per kind.
// This is the one conversion step dispatched through a function table;
// everything else uses direct switches for exhaustiveness.
var textParsers = map[models.TypeName]func(string) (any, error){
	models.TypeByte: func(s string) (any, error) {
		v, err := strconv.ParseInt(s, 10, 8)
		return int8(v), err
	},
	models.TypeInt16: func(s string) (any, error) {
		v, err := strconv.ParseInt(s, 10, 16)
		return int16(v), err
	},
	models.TypeInt32: func(s string) (any, error) {
		v, err := strconv.ParseInt(s, 10, 32)
		return int32(v), err
	},
	models.TypeInt64: func(s string) (any, error) {
		return strconv.ParseInt(s, 10, 64)
	},
	models.TypeFloat32: func(s string) (any, error) {
		v, err := strconv.ParseFloat(s, 32)
		return float32(v), err
	},
	models.TypeFloat64: func(s string) (any, error) {
		return strconv.ParseFloat(s, 64)
	},
	models.TypeDecimal: func(s string) (any, error) {
		return decimal.NewFromString(s)
	},
	models.TypeBoolean: func(s string) (any, error) {
		return strconv.ParseBool(s)
	},
	models.TypeString: func(s string) (any, error) {
		return s, nil
	},
	models.TypeBytes: func(s string) (any, error) {
		return base64.StdEncoding.DecodeString(s)
	},
	models.TypeTimestamp: parseTimestampText,
}

// parseTimestampText accepts the fixed warehouse timestamp format or,
// as a fallback, a fractional-seconds-since-epoch numeric.
func parseTimestampText(s string) (any, error) {
	if s == "" {
		return nil, nil
	}
	if strings.HasSuffix(s, "UTC") {
		t, err := time.Parse(timestampParseLayout, s)
		if err != nil {
			return nil, err
		}
		return t.UTC(), nil
	}
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return time.UnixMilli(int64(secs * 1000)).UTC(), nil
}
