package lineage

import (
	"log/slog"
	"sort"

	"github.com/provtrace/provtrace/internal/provenance"
)

// Graph is an immutable set of lineage nodes and directed edges.
//
// Node and edge membership is identity-based: both are comparable value
// types used as map keys, so duplicates collapse on insertion.
type Graph struct {
	nodes map[Node]struct{}
	edges map[Edge]struct{}
}

func newGraph() *Graph {
	return &Graph{
		nodes: make(map[Node]struct{}),
		edges: make(map[Edge]struct{}),
	}
}

// addNode inserts n and reports whether it was genuinely new.
func (g *Graph) addNode(n Node) bool {
	if _, exists := g.nodes[n]; exists {
		return false
	}
	g.nodes[n] = struct{}{}
	return true
}

func (g *Graph) addEdge(e Edge) {
	g.edges[e] = struct{}{}
}

// Nodes returns the node set as a deterministically ordered slice.
func (g *Graph) Nodes() []Node {
	out := make([]Node, 0, len(g.nodes))
	for n := range g.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return compareNodes(out[i], out[j]) < 0 })
	return out
}

// Edges returns the edge set as a deterministically ordered slice.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, len(g.edges))
	for e := range g.edges {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return compareEdges(out[i], out[j]) < 0 })
	return out
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Compute builds the lineage graph for trackedIDs from an unordered bag of
// event records.
//
// Records are first sorted by (event_time, event_id); construction is a pure
// function of that sorted sequence, which makes the result independent of
// how the records were gathered. The input slice is not modified.
//
// On a structural error (*BuildError) the whole computation aborts and no
// graph is returned - callers never see a partially built graph.
func Compute(records []provenance.EventRecord, trackedIDs []string) (*Graph, error) {
	tracked := make(map[string]bool, len(trackedIDs))
	for _, id := range trackedIDs {
		tracked[id] = true
	}

	sorted := make([]provenance.EventRecord, len(records))
	copy(sorted, records)
	provenance.SortRecords(sorted)

	g := newGraph()

	// lastNode maps a flowfile ID to the most recently produced node for
	// that flowfile, in sorted-record order.
	lastNode := make(map[string]Node)

	for _, rec := range sorted {
		eventNode := EventNodeFor(rec)
		// Duplicate event identities are a no-op, not an error.
		g.addNode(eventNode)

		// Connect this node to the previous node for the same flowfile.
		if last, ok := lastNode[rec.FlowFileID]; ok {
			// For JOIN, CLONE and REPLAY the record's own flowfile ID
			// pertains to only one of potentially many flowfiles involved,
			// so the edge carries the previous node's flowfile ID instead.
			edgeID := rec.FlowFileID
			switch rec.EventType {
			case provenance.EventTypeJoin, provenance.EventTypeClone, provenance.EventTypeReplay:
				edgeID = last.FlowFileID
			}
			g.addEdge(Edge{From: last, To: eventNode, FlowFileID: edgeID})
		}
		lastNode[rec.FlowFileID] = eventNode

		switch rec.EventType {
		case provenance.EventTypeFork,
			provenance.EventTypeJoin,
			provenance.EventTypeReplay,
			provenance.EventTypeFetch,
			provenance.EventTypeClone:
			for _, childID := range rec.ChildIDs {
				if !tracked[childID] {
					continue
				}
				child := FlowFileNodeAt(childID, rec.EventTime)
				if !g.addNode(child) {
					return nil, &BuildError{Code: ErrCodeDuplicateProduction, FlowFileID: childID}
				}
				g.addEdge(Edge{From: eventNode, To: child, FlowFileID: childID})
				lastNode[childID] = child
			}
			for _, parentID := range rec.ParentIDs {
				if last, ok := lastNode[parentID]; ok && last != eventNode {
					g.addEdge(Edge{From: last, To: eventNode, FlowFileID: parentID})
				}
				lastNode[parentID] = eventNode
			}

		case provenance.EventTypeReceive, provenance.EventTypeCreate:
			// A birth event produces the flowfile itself: create the
			// flowfile node and an edge from the event to it.
			flowFileNode := FlowFileNodeAt(rec.FlowFileID, rec.EventTime)
			if !g.addNode(flowFileNode) {
				return nil, &BuildError{Code: ErrCodeCycleDetected, FlowFileID: rec.FlowFileID}
			}
			g.addEdge(Edge{From: eventNode, To: flowFileNode, FlowFileID: rec.FlowFileID})
			lastNode[rec.FlowFileID] = flowFileNode
		}
	}

	slog.Debug("built lineage graph",
		"records", len(sorted),
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount())

	return g, nil
}
