package scrape

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/laurivosandi/mikrotik-exporter/internal/metrics"
	"github.com/laurivosandi/mikrotik-exporter/internal/routeros"
)

// ErrUnknownRate is returned when a device reports a link rate that is
// not in the lookup table. Silently mapping it would publish a wrong
// bits-per-second value, so it fails the scrape instead.
var ErrUnknownRate = errors.New("unknown link rate")

// linkRates maps RouterOS rate names to bits per second.
var linkRates = map[string]float64{
	"40Gbps":  40e9,
	"10Gbps":  10e9,
	"1Gbps":   1e9,
	"100Mbps": 100e6,
	"10Mbps":  10e6,
}

// monitorNumbers enumerates the interface indices passed to the ethernet
// and PoE monitor commands: "0,1,...,23".
var monitorNumbers = func() string {
	nums := make([]string, 24)
	for i := range nums {
		nums[i] = strconv.Itoa(i)
	}
	return strings.Join(nums, ",")
}()

// emitFunc delivers one sample downstream. It returns an error when the
// consumer is gone (cancellation); sources stop at the first failed emit.
type emitFunc func(metrics.Sample) error

// Source polls one target. A fresh session is opened per Run and closed
// unconditionally when the run finishes or is cancelled.
type Source struct {
	target string
	dialer routeros.Dialer
}

// NewSource returns a Source for one target address.
func NewSource(target string, dialer routeros.Dialer) *Source {
	return &Source{target: target, dialer: dialer}
}

// Target returns the target address this source polls.
func (s *Source) Target() string {
	return s.target
}

// Run opens a session, executes the query batteries in order and sends
// every sample to out. Samples from one run are strictly ordered.
func (s *Source) Run(ctx context.Context, out chan<- metrics.Sample) error {
	session, err := s.dialer.Dial(ctx, s.target)
	if err != nil {
		return fmt.Errorf("scrape %q: %w", s.target, err)
	}
	defer session.Close()

	emit := func(sm metrics.Sample) error {
		select {
		case out <- sm:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	batteries := []func(context.Context, routeros.Session, emitFunc) error{
		s.interfaceInventory,
		s.ethernetMonitor,
		s.poeMonitor,
		s.systemResource,
		s.systemHealth,
	}
	for _, battery := range batteries {
		if err := battery(ctx, session, emit); err != nil {
			return err
		}
	}
	return nil
}

// interfaceInventory emits traffic counters and state gauges for every
// interface. Error and drop counters are absent on some device families
// and are skipped per field.
func (s *Source) interfaceInventory(ctx context.Context, session routeros.Session, emit emitFunc) error {
	records, err := session.Run(ctx, "/interface/print")
	if err != nil {
		return fmt.Errorf("scrape %q: %w", s.target, err)
	}

	for _, r := range records {
		name, err := s.require(r, "name")
		if err != nil {
			return err
		}
		ifaceType, err := s.require(r, "type")
		if err != nil {
			return err
		}
		labels := metrics.NewLabels("host", s.target, "port", name, "type", ifaceType)

		txBytes, err := s.requireNumber(r, "tx-byte")
		if err != nil {
			return err
		}

		counters := []struct {
			metric, field string
			optional      bool
		}{
			{"interface-rx-bytes", "rx-byte", false},
			{"interface-tx-bytes", "tx-byte", false},
			{"interface-rx-packets", "rx-packet", false},
			{"interface-tx-packets", "tx-packet", false},
			{"interface-rx-errors", "rx-error", true},
			{"interface-tx-errors", "tx-error", true},
			{"interface-rx-drops", "rx-drop", true},
			{"interface-tx-drops", "tx-drop", true},
		}
		for _, c := range counters {
			v, ok, err := s.number(r, c.field, c.optional)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			if err := emit(metrics.Sample{Name: c.metric, Kind: metrics.Counter, Value: v, Labels: labels}); err != nil {
				return err
			}
		}

		if err := emit(metrics.Sample{Name: "interface-running", Kind: metrics.Gauge, Value: txBytes, Labels: labels}); err != nil {
			return err
		}
		mtu, err := s.requireNumber(r, "actual-mtu")
		if err != nil {
			return err
		}
		if err := emit(metrics.Sample{Name: "interface-actual-mtu", Kind: metrics.Gauge, Value: mtu, Labels: labels}); err != nil {
			return err
		}
	}
	return nil
}

// ethernetMonitor emits physical-layer gauges per interface index:
// negotiated link rate, transceiver diagnostics when a module is
// present, and a constant status gauge carrying link state labels.
func (s *Source) ethernetMonitor(ctx context.Context, session routeros.Session, emit emitFunc) error {
	records, err := session.Run(ctx, "/interface/ethernet/monitor", "=once=", "=numbers="+monitorNumbers)
	if err != nil {
		return fmt.Errorf("scrape %q: %w", s.target, err)
	}

	for _, r := range records {
		name, err := s.require(r, "name")
		if err != nil {
			return err
		}
		labels := metrics.NewLabels("host", s.target, "port", name)

		if rate, ok := r.Get("rate"); ok {
			bps, known := linkRates[rate]
			if !known {
				return fmt.Errorf("scrape %q: port %q: %w: %q", s.target, name, ErrUnknownRate, rate)
			}
			if err := emit(metrics.Sample{Name: "interface-rate", Kind: metrics.Gauge, Value: bps, Labels: labels}); err != nil {
				return err
			}
		}

		if vendor, ok := r.Get("sfp-vendor-name"); ok {
			labels = labels.Add("sfp-vendor-name", vendor)
		}
		if part, ok := r.Get("sfp-vendor-part-number"); ok {
			labels = labels.Add("sfp-vendor-part-number", part)
		}

		sfpGauges := []struct{ metric, field string }{
			{"interface-sfp-temperature", "sfp-temperature"},
			{"interface-sfp-tx-power", "sfp-tx-power"},
			{"interface-sfp-rx-power", "sfp-rx-power"},
		}
		for _, g := range sfpGauges {
			v, ok, err := s.number(r, g.field, true)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			if err := emit(metrics.Sample{Name: g.metric, Kind: metrics.Gauge, Value: v, Labels: labels}); err != nil {
				return err
			}
		}

		status, err := s.require(r, "status")
		if err != nil {
			return err
		}
		labels = labels.Add("status", status)
		if present, ok := r.Get("sfp-module-present"); ok {
			labels = labels.Add("sfp-module-present", present)
		}
		if err := emit(metrics.Sample{Name: "interface-status", Kind: metrics.Gauge, Value: 1, Labels: labels}); err != nil {
			return err
		}
	}
	return nil
}

// poeMonitor emits power-delivery gauges per interface index. Voltage
// and current are only reported on powered ports; current converts from
// milliamps to amps.
func (s *Source) poeMonitor(ctx context.Context, session routeros.Session, emit emitFunc) error {
	records, err := session.Run(ctx, "/interface/ethernet/poe/monitor", "=once=", "=numbers="+monitorNumbers)
	if err != nil {
		return fmt.Errorf("scrape %q: %w", s.target, err)
	}

	for _, r := range records {
		name, err := s.require(r, "name")
		if err != nil {
			return err
		}
		labels := metrics.NewLabels("host", s.target, "port", name)

		voltage, ok, err := s.number(r, "poe-out-voltage", true)
		if err != nil {
			return err
		}
		if ok {
			if err := emit(metrics.Sample{Name: "poe-out-voltage", Kind: metrics.Gauge, Value: voltage, Labels: labels}); err != nil {
				return err
			}
		}
		current, ok, err := s.number(r, "poe-out-current", true)
		if err != nil {
			return err
		}
		if ok {
			if err := emit(metrics.Sample{Name: "poe-out-current", Kind: metrics.Gauge, Value: current / 1000, Labels: labels}); err != nil {
				return err
			}
		}

		status, err := s.require(r, "poe-out-status")
		if err != nil {
			return err
		}
		labels = labels.Add("status", status)
		if err := emit(metrics.Sample{Name: "poe-out-status", Kind: metrics.Gauge, Value: 1, Labels: labels}); err != nil {
			return err
		}
	}
	return nil
}

// systemResource emits storage and memory readings plus a constant
// version gauge carrying hardware identity labels.
func (s *Source) systemResource(ctx context.Context, session routeros.Session, emit emitFunc) error {
	records, err := session.Run(ctx, "/system/resource/print")
	if err != nil {
		return fmt.Errorf("scrape %q: %w", s.target, err)
	}

	for _, r := range records {
		labels := metrics.NewLabels("host", s.target)

		written, err := s.requireNumber(r, "write-sect-total")
		if err != nil {
			return err
		}
		if err := emit(metrics.Sample{Name: "system-write-sect-total", Kind: metrics.Counter, Value: written, Labels: labels}); err != nil {
			return err
		}
		free, err := s.requireNumber(r, "free-memory")
		if err != nil {
			return err
		}
		if err := emit(metrics.Sample{Name: "system-free-memory", Kind: metrics.Gauge, Value: free, Labels: labels}); err != nil {
			return err
		}
		bad, ok, err := s.number(r, "bad-blocks", true)
		if err != nil {
			return err
		}
		if ok {
			if err := emit(metrics.Sample{Name: "system-bad-blocks", Kind: metrics.Counter, Value: bad, Labels: labels}); err != nil {
				return err
			}
		}

		versionLabels := labels.Clone()
		for _, key := range []string{"version", "cpu", "cpu-count", "board-name", "architecture-name"} {
			v, err := s.require(r, key)
			if err != nil {
				return err
			}
			versionLabels = versionLabels.Add(key, v)
		}
		if err := emit(metrics.Sample{Name: "system-version", Kind: metrics.Gauge, Value: 1, Labels: versionLabels}); err != nil {
			return err
		}
	}
	return nil
}

// systemHealth emits one gauge per health reading, in device-reported
// field order. Numeric readings become the gauge value; non-numeric
// readings become a constant gauge with the raw value as a state label.
func (s *Source) systemHealth(ctx context.Context, session routeros.Session, emit emitFunc) error {
	records, err := session.Run(ctx, "/system/health/print")
	if err != nil {
		return fmt.Errorf("scrape %q: %w", s.target, err)
	}

	for _, r := range records {
		for _, p := range r.Pairs() {
			sample := metrics.Sample{
				Name:   "system-health-" + p.Key,
				Kind:   metrics.Gauge,
				Labels: metrics.NewLabels("host", s.target),
			}
			if v, err := strconv.ParseFloat(p.Value, 64); err == nil {
				sample.Value = v
			} else {
				sample.Value = 1
				sample.Labels = sample.Labels.Add("state", p.Value)
			}
			if err := emit(sample); err != nil {
				return err
			}
		}
	}
	return nil
}

// require returns the value of a mandatory field or a hard error naming
// the target and the field.
func (s *Source) require(r routeros.Record, key string) (string, error) {
	v, ok := r.Get(key)
	if !ok {
		return "", fmt.Errorf("scrape %q: required field %q missing", s.target, key)
	}
	return v, nil
}

// requireNumber is require plus numeric parsing.
func (s *Source) requireNumber(r routeros.Record, key string) (float64, error) {
	v, err := s.require(r, key)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("scrape %q: field %q: parse %q: %w", s.target, key, v, err)
	}
	return f, nil
}

// number reads a numeric field. Absence is tolerated only when optional;
// a present-but-unparseable value is always a hard error.
func (s *Source) number(r routeros.Record, key string, optional bool) (float64, bool, error) {
	v, ok := r.Get(key)
	if !ok {
		if optional {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("scrape %q: required field %q missing", s.target, key)
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false, fmt.Errorf("scrape %q: field %q: parse %q: %w", s.target, key, v, err)
	}
	return f, true, nil
}
