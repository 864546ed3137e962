package convert

import (
	"encoding/binary"

	"github.com/twmb/murmur3"

	"github.com/rowbridge/rowbridge/pkg/bigquery"
)

// fingerprintTypeTags assigns each warehouse type keyword the ordinal
// hashed into schema fingerprints. FROZEN: these values are embedded in
// persisted and streamed protocol messages; changing a tag, the hash
// function, or the accumulation silently breaks wire compatibility.
var fingerprintTypeTags = map[string]int32{
	"STRING":    0,
	"BYTES":     1,
	"INTEGER":   2,
	"INT64":     2,
	"FLOAT":     3,
	"FLOAT64":   3,
	"BOOL":      4,
	"BOOLEAN":   4,
	"NUMERIC":   5,
	"TIMESTAMP": 6,
	"TIME":      7,
	"DATE":      8,
	"DATETIME":  9,
	"STRUCT":    10,
	"RECORD":    10,
}

// FingerprintTableSchema hashes a schema descriptor into a stable
// 64-bit identity for schema-versioned binary protocols.
//
// Each field contributes the sum of 32-bit murmur3 hashes of its name,
// repeated flag, required flag and type tag; struct fields additionally
// fold in the fingerprint of their nested fields. Accumulation is
// wrapping addition, so the result is insensitive to field order: two
// descriptors with the same multiset of field hashes collide. That
// weakness is part of the wire identity and must not be "fixed".
func FingerprintTableSchema(ts *bigquery.TableSchema) int64 {
	return fingerprintFields(ts.Fields)
}

func fingerprintFields(fields []*bigquery.TableFieldSchema) int64 {
	var h int64
	for _, f := range fields {
		h += hash32Bytes([]byte(f.Name))
		h += hash32Int(boolToInt32(f.Repeated()))
		h += hash32Int(boolToInt32(f.Required()))
		h += hash32Int(typeTag(f.Type))
		if f.Type == "STRUCT" || f.Type == "RECORD" {
			h += fingerprintFields(f.Fields)
		}
	}
	return h
}

func typeTag(keyword string) int32 {
	if tag, ok := fingerprintTypeTags[keyword]; ok {
		return tag
	}
	return -1
}

// hash32Bytes sign-extends the 32-bit hash so the accumulator matches
// signed 32-bit addition into a 64-bit word.
func hash32Bytes(b []byte) int64 {
	return int64(int32(murmur3.Sum32(b)))
}

func hash32Int(v int32) int64 {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(v))
	return int64(int32(murmur3.Sum32(buf[:])))
}

func boolToInt32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
