// Package query coordinates lineage computations over a partitioned event
// store.
//
// A Manager turns one lineage request into a progressive result with one
// query step per store partition, fans a goroutine out per step, and keeps
// the live submissions in a registry so consumers can poll or await them by
// ID. Expired submissions are advisory-canceled and dropped by the reaper;
// the results themselves never self-evict.
package query
