package metrics

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is the exposition type of a metric: counter or gauge.
type Kind string

const (
	Counter Kind = "counter"
	Gauge   Kind = "gauge"
)

// Label is one key/value pair in a sample's label block.
type Label struct {
	Key   string
	Value string
}

// Labels is an ordered label set. Insertion order is render order.
type Labels []Label

// NewLabels builds a label set from alternating key, value strings.
// It panics on an odd argument count or a duplicate key — both are
// programming errors at the call site, not data errors.
func NewLabels(kv ...string) Labels {
	if len(kv)%2 != 0 {
		panic("metrics: NewLabels requires an even number of arguments")
	}
	ls := make(Labels, 0, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		ls = ls.Add(kv[i], kv[i+1])
	}
	return ls
}

// Add appends a label and returns the extended set. Duplicate keys panic:
// the batteries construct every label block explicitly, so a duplicate is
// a bug rather than device data.
func (ls Labels) Add(key, value string) Labels {
	for _, l := range ls {
		if l.Key == key {
			panic(fmt.Sprintf("metrics: duplicate label key %q", key))
		}
	}
	return append(ls, Label{Key: key, Value: value})
}

// Clone returns an independent copy so a battery can branch a shared
// label prefix without aliasing the backing array.
func (ls Labels) Clone() Labels {
	out := make(Labels, len(ls))
	copy(out, ls)
	return out
}

// Sample is one measurement emitted during a scrape.
type Sample struct {
	// Name is the unprefixed metric name, e.g. "interface-rx-bytes".
	// The encoder prepends the configured prefix at render time.
	Name string

	Kind Kind

	Value float64

	// Labels render in insertion order inside the label block.
	Labels Labels
}

// FormatValue renders v the way the exposition format expects: integral
// values print without a decimal point, fractional values keep the
// shortest representation that round-trips.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// labelEscaper applies Prometheus exposition escaping to label values.
// Order matters: backslash first so the other replacements don't double.
var labelEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

// EscapeLabelValue escapes a device-reported string for inclusion inside
// a quoted label value.
func EscapeLabelValue(v string) string {
	return labelEscaper.Replace(v)
}

// RenderLabels formats the label block, including braces, or returns the
// empty string when there are no labels.
func RenderLabels(ls Labels) string {
	if len(ls) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteByte('{')
	for i, l := range ls {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(l.Key)
		sb.WriteString(`="`)
		sb.WriteString(EscapeLabelValue(l.Value))
		sb.WriteByte('"')
	}
	sb.WriteByte('}')
	return sb.String()
}
