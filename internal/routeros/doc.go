// Package routeros is the boundary to the device management protocol.
//
// The scrape pipeline only ever sees three things:
//   - Record — the decoded attribute list of one reply sentence, with
//     presence-checked field access and preserved field order
//   - Session — send one command, read the full answer, close
//   - Dialer — open a Session to one target
//
// APIDialer is the production implementation, backed by the RouterOS API
// client library (github.com/go-routeros/routeros). A device !trap reply
// ends the record stream the same way !done does: the session returns an
// empty record list and no error, because a rejected query (unsupported
// battery on that device family) is expected on mixed fleets and must
// not fail the scrape. Records sent before the trap are discarded with
// it — the battery read is all-or-nothing.
package routeros
