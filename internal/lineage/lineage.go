// Package lineage tracks, per user, the directed graph of creation events:
// which experience inspired which creation, and which later experience that
// creation in turn led to. It is purely explanatory — PropagationTracker
// feeds it, and no scoring formula or explanation text consults it.
package lineage

import (
	"fmt"
	"sync"

	"github.com/dominikbraun/graph"
)

// node is a vertex in a user's lineage graph: either an Experience or a
// CreationEvent, distinguished by Kind.
type node struct {
	ID   string
	Kind string // "experience" or "creation"
}

func hash(n node) string {
	return n.Kind + ":" + n.ID
}

// Graph is one user's creation lineage.
type Graph struct {
	mu sync.RWMutex
	g  graph.Graph[string, node]
}

// Tracker holds one Graph per user.
type Tracker struct {
	mu     sync.Mutex
	graphs map[string]*Graph
}

// NewTracker returns an empty lineage tracker.
func NewTracker() *Tracker {
	return &Tracker{graphs: make(map[string]*Graph)}
}

func (t *Tracker) graphFor(userID string) *Graph {
	t.mu.Lock()
	defer t.mu.Unlock()
	g, ok := t.graphs[userID]
	if !ok {
		g = &Graph{g: graph.New(hash, graph.Directed(), graph.PreventCycles())}
		t.graphs[userID] = g
	}
	return g
}

// RecordLink adds sourceExperienceID -> creationID -> destExperienceID to the
// user's lineage graph. destExperienceID may be empty when the creation
// hasn't yet led anywhere observable. Returns the cycle flag rather than an
// error when PreventCycles rejects an edge — a real cycle is interesting
// explanatory signal, not a caller-facing failure.
func (t *Tracker) RecordLink(userID, sourceExperienceID, creationID, destExperienceID string) (cycleDetected bool) {
	g := t.graphFor(userID)
	g.mu.Lock()
	defer g.mu.Unlock()

	src := node{ID: sourceExperienceID, Kind: "experience"}
	ce := node{ID: creationID, Kind: "creation"}
	_ = g.g.AddVertex(src)
	_ = g.g.AddVertex(ce)
	if err := g.g.AddEdge(hash(src), hash(ce)); err != nil && err != graph.ErrEdgeAlreadyExists {
		cycleDetected = true
	}

	if destExperienceID == "" {
		return cycleDetected
	}
	dst := node{ID: destExperienceID, Kind: "experience"}
	_ = g.g.AddVertex(dst)
	if err := g.g.AddEdge(hash(ce), hash(dst)); err != nil && err != graph.ErrEdgeAlreadyExists {
		cycleDetected = true
	}
	return cycleDetected
}

// Depth returns the length of the longest path reachable from any
// experience vertex — how many creation-then-inspiration hops a user's
// lineage has accumulated.
func (t *Tracker) Depth(userID string) int {
	g := t.graphFor(userID)
	g.mu.RLock()
	defer g.mu.RUnlock()

	adjacency, err := g.g.AdjacencyMap()
	if err != nil {
		return 0
	}
	var best int
	var visit func(key string, depth int, seen map[string]bool)
	visit = func(key string, depth int, seen map[string]bool) {
		if depth > best {
			best = depth
		}
		if seen[key] {
			return
		}
		seen[key] = true
		for to := range adjacency[key] {
			visit(to, depth+1, seen)
		}
	}
	for key := range adjacency {
		visit(key, 0, map[string]bool{})
	}
	return best
}

// CreationCount returns the number of distinct creation events recorded for
// a user.
func (t *Tracker) CreationCount(userID string) int {
	g := t.graphFor(userID)
	g.mu.RLock()
	defer g.mu.RUnlock()

	vertices, err := g.g.AdjacencyMap()
	if err != nil {
		return 0
	}
	count := 0
	for key := range vertices {
		if len(key) > len("creation:") && key[:len("creation:")] == "creation:" {
			count++
		}
	}
	return count
}

// Summary returns a short human-readable description of a user's lineage
// shape for use in explanation text.
func (t *Tracker) Summary(userID string) string {
	depth := t.Depth(userID)
	creations := t.CreationCount(userID)
	if creations == 0 {
		return "no recorded creation lineage yet"
	}
	return fmt.Sprintf("%d creation event(s) recorded, longest chain %d hop(s)", creations, depth)
}
