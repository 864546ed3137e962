package convert

// TruncatePolicy controls what happens when a binary timestamp carries
// more precision than the millisecond granularity kept internally.
type TruncatePolicy int

const (
	// RejectSubMillis fails the conversion on sub-millisecond input.
	RejectSubMillis TruncatePolicy = iota
	// TruncateSubMillis drops sub-millisecond precision silently.
	TruncateSubMillis
)

func (p TruncatePolicy) String() string {
	switch p {
	case TruncateSubMillis:
		return "truncate"
	default:
		return "reject"
	}
}

// Options controls value conversion. The zero value is the default:
// reject sub-millisecond timestamps.
type Options struct {
	TruncateTimestamps TruncatePolicy
}

// SchemaOptions controls schema translation. The zero value is the
// default: no map inference.
type SchemaOptions struct {
	// InferMaps treats a REPEATED two-field struct named exactly
	// key,value as a MAP instead of ARRAY<ROW>.
	InferMaps bool
}
