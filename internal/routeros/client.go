package routeros

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	ros "github.com/go-routeros/routeros/v3"
)

// DefaultPort is the plaintext RouterOS API port.
const DefaultPort = "8728"

const defaultDialTimeout = 10 * time.Second

// APIDialer opens RouterOS API sessions with a shared set of device
// credentials. Targets without an explicit port get DefaultPort.
type APIDialer struct {
	Username string
	Password string

	// DialTimeout bounds connection setup and login. Zero means 10s.
	DialTimeout time.Duration
}

// Dial connects and logs in to target.
func (d APIDialer) Dial(ctx context.Context, target string) (Session, error) {
	timeout := d.DialTimeout
	if timeout <= 0 {
		timeout = defaultDialTimeout
	}
	if deadline, ok := ctx.Deadline(); ok {
		if until := time.Until(deadline); until < timeout {
			timeout = until
		}
	}

	client, err := ros.DialTimeout(withDefaultPort(target), d.Username, d.Password, timeout)
	if err != nil {
		return nil, fmt.Errorf("routeros: dial %q: %w", target, err)
	}
	return &apiSession{client: client}, nil
}

// withDefaultPort appends DefaultPort when target carries no port.
func withDefaultPort(target string) string {
	if _, _, err := net.SplitHostPort(target); err == nil {
		return target
	}
	return net.JoinHostPort(target, DefaultPort)
}

// apiSession wraps one logged-in API client.
type apiSession struct {
	client *ros.Client
}

// Run sends one command sentence and reads the full answer. A device
// trap ends the answer cleanly (see package doc). Cancelling ctx closes
// the connection so a blocked read returns instead of hanging.
func (s *apiSession) Run(ctx context.Context, words ...string) ([]Record, error) {
	watchdogDone := make(chan struct{})
	defer close(watchdogDone)
	go func() {
		select {
		case <-ctx.Done():
			s.client.Close()
		case <-watchdogDone:
		}
	}()

	reply, err := s.client.Run(words...)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, mapRunError(words[0], err)
	}

	records := make([]Record, 0, len(reply.Re))
	for _, sentence := range reply.Re {
		r := Record{index: make(map[string]int, len(sentence.List))}
		for _, attr := range sentence.List {
			r = r.set(attr.Key, attr.Value)
		}
		records = append(records, r)
	}
	return records, nil
}

// mapRunError translates a failed command run. A device trap terminates
// the battery exactly like !done: the query was rejected (unsupported on
// this device family), which is not a scrape failure, so the caller gets
// an empty record list and no error. Anything else is a hard error
// naming the command.
func mapRunError(command string, err error) error {
	var devErr *ros.DeviceError
	if errors.As(err, &devErr) {
		return nil
	}
	return fmt.Errorf("routeros: run %q: %w", command, err)
}

// Close shuts the connection down. Safe to call after a cancellation
// watchdog already closed it.
func (s *apiSession) Close() error {
	s.client.Close()
	return nil
}
