package routeros

import "context"

// Session is one open management connection to one device. Run sends a
// single command sentence and reads the full answer as decoded records;
// the record list excludes the terminating !done/!trap marker. Close is
// safe to call more than once.
type Session interface {
	Run(ctx context.Context, words ...string) ([]Record, error)
	Close() error
}

// Dialer opens a fresh Session to a target. One session is opened and
// closed per target per scrape request; nothing is pooled.
type Dialer interface {
	Dial(ctx context.Context, target string) (Session, error)
}
