// Package scrape implements the concurrent multi-target scrape pipeline.
//
//	Source  — polls one target: opens a session, runs the five query
//	          batteries in a fixed order and emits typed samples
//	Merge   — fans N sources into one channel in real-time arrival order
//	Encoder — renders samples as exposition text, declaring each metric
//	          name's type exactly once per request
//
// Within one source, samples are strictly ordered (battery order, then
// record order, then field order). Across sources there is no ordering
// guarantee — the merged stream interleaves however the devices answer.
//
// Error policy: the first hard error from any source aborts the whole
// request. Merge cancels its group context, every source's emit and
// session read unblock, and every session is closed. A partial stream
// would look like a healthy device reporting fewer metrics; a truncated
// scrape is visible to the monitoring system as a failed scrape.
package scrape
