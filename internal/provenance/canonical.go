package provenance

import "golang.org/x/text/unicode/norm"

// Canonicalize returns a copy of the record with every identifier string
// NFC-normalized.
//
// Flowfile identifiers arrive from external producers and may use different
// Unicode compositions for the same logical identifier. Identity-based set
// semantics (record dedup, node dedup, edge dedup) require a single
// representation, so normalization happens once, at the ingest boundary.
// Everything downstream may compare identifiers byte-wise.
func Canonicalize(r EventRecord) EventRecord {
	r.FlowFileID = norm.NFC.String(r.FlowFileID)
	r.ComponentID = norm.NFC.String(r.ComponentID)
	r.ParentIDs = normalizeAll(r.ParentIDs)
	r.ChildIDs = normalizeAll(r.ChildIDs)
	return r
}

func normalizeAll(ids []string) []string {
	if len(ids) == 0 {
		return ids
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = norm.NFC.String(id)
	}
	return out
}
