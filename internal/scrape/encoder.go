package scrape

import (
	"github.com/laurivosandi/mikrotik-exporter/internal/metrics"
)

// Encoder renders samples as exposition text. It is scoped to one
// request: the set of already-declared metric names starts empty and is
// discarded with the response. Only the single goroutine pulling from
// the merged stream touches it, so it needs no locking.
type Encoder struct {
	prefix string
	seen   map[string]struct{}
}

// NewEncoder returns an Encoder that prepends prefix to every metric name.
func NewEncoder(prefix string) *Encoder {
	return &Encoder{prefix: prefix, seen: make(map[string]struct{})}
}

// Lines renders s as one or two exposition lines, without trailing
// newlines: a "# TYPE" declaration the first time s.Name is seen in this
// request, then the value line.
func (e *Encoder) Lines(s metrics.Sample) []string {
	name := e.prefix + s.Name
	valueLine := name + metrics.RenderLabels(s.Labels) + " " + metrics.FormatValue(s.Value)

	if _, ok := e.seen[s.Name]; ok {
		return []string{valueLine}
	}
	e.seen[s.Name] = struct{}{}
	return []string{"# TYPE " + name + " " + string(s.Kind), valueLine}
}
