// Package metrics defines the Sample data model shared by the scrape
// pipeline and the exposition encoder.
//
// A Sample is one (name, kind, value, labels) measurement produced while
// polling a device. Labels keep their insertion order because that order
// determines how the label block renders; duplicate keys are rejected at
// insert time.
//
// Rendering rules live here too: FormatValue prints integral values
// without a fractional artifact ("1", not "1.0"), and EscapeLabelValue
// applies Prometheus exposition escaping (backslash, double quote,
// newline) to device-reported strings.
package metrics
