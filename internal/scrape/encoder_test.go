package scrape

import (
	"reflect"
	"testing"

	"github.com/laurivosandi/mikrotik-exporter/internal/metrics"
)

func TestEncoder_DeclaresTypeOncePerName(t *testing.T) {
	e := NewEncoder("mikrotik_")
	labels1 := metrics.NewLabels("host", "10.0.0.1", "port", "ether1", "type", "ether")
	labels2 := metrics.NewLabels("host", "10.0.0.2", "port", "ether1", "type", "ether")

	var lines []string
	samples := []metrics.Sample{
		{Name: "interface-rx-bytes", Kind: metrics.Counter, Value: 100, Labels: labels1},
		{Name: "interface-rx-bytes", Kind: metrics.Counter, Value: 300, Labels: labels2},
		{Name: "system-free-memory", Kind: metrics.Gauge, Value: 1024, Labels: metrics.NewLabels("host", "10.0.0.1")},
	}
	for _, s := range samples {
		lines = append(lines, e.Lines(s)...)
	}

	want := []string{
		"# TYPE mikrotik_interface-rx-bytes counter",
		`mikrotik_interface-rx-bytes{host="10.0.0.1",port="ether1",type="ether"} 100`,
		`mikrotik_interface-rx-bytes{host="10.0.0.2",port="ether1",type="ether"} 300`,
		"# TYPE mikrotik_system-free-memory gauge",
		`mikrotik_system-free-memory{host="10.0.0.1"} 1024`,
	}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("encoded lines:\n%v\nwant:\n%v", lines, want)
	}
}

func TestEncoder_NoLabels(t *testing.T) {
	e := NewEncoder("mikrotik_")
	lines := e.Lines(metrics.Sample{Name: "system-health-voltage", Kind: metrics.Gauge, Value: 24.1})

	want := []string{
		"# TYPE mikrotik_system-health-voltage gauge",
		"mikrotik_system-health-voltage 24.1",
	}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("Lines() = %v, want %v", lines, want)
	}
}

func TestEncoder_StatePerRequest(t *testing.T) {
	// A fresh encoder re-declares names: the seen set must not leak
	// across requests.
	s := metrics.Sample{Name: "interface-rx-bytes", Kind: metrics.Counter, Value: 1}

	first := NewEncoder("mikrotik_").Lines(s)
	second := NewEncoder("mikrotik_").Lines(s)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("fresh encoders disagree: %v vs %v", first, second)
	}
	if len(first) != 2 {
		t.Errorf("fresh encoder emitted %d lines, want 2 (type + value)", len(first))
	}
}

func TestEncoder_EmptyPrefix(t *testing.T) {
	e := NewEncoder("")
	lines := e.Lines(metrics.Sample{Name: "interface-rx-bytes", Kind: metrics.Counter, Value: 5})
	if lines[0] != "# TYPE interface-rx-bytes counter" {
		t.Errorf("type line = %q", lines[0])
	}
	if lines[1] != "interface-rx-bytes 5" {
		t.Errorf("value line = %q", lines[1])
	}
}
