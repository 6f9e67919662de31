// Package lineage computes data-lineage graphs from provenance event records.
//
// Two pieces:
//
// Compute is the pure, single-threaded graph builder. It sorts records into
// the canonical (event_time, event_id) order and walks them once, producing
// event nodes, flowfile nodes and directed edges. Construction is a pure
// function of the sorted sequence - the same record set always yields the
// same graph, no matter how the records were gathered.
//
// Result is the thread-safe progressive aggregator in front of Compute. An
// a-priori-known number of concurrent query steps each report a batch of
// records (or a failure) exactly once; the report that satisfies the step
// count invokes Compute under the write lock and publishes the graph. Readers
// see a consistent partial view at any time, and AwaitCompletion gives a
// synchronous caller blocking-with-timeout semantics.
package lineage
