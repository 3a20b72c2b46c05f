// Package canvas owns the mutable graph the UI edits: an undo/redo-capable
// store whose mutation methods re-validate invariants before committing.
// There is no true concurrency in the editing model, only interleaved
// callbacks; the mutex guards against misuse, and asynchronous layout
// results check a revision counter before writing back.
package canvas

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	mdf "github.com/froncalli-softcrylic/MDF-Simulator-sub000"
	"github.com/froncalli-softcrylic/MDF-Simulator-sub000/catalog"
	"github.com/froncalli-softcrylic/MDF-Simulator-sub000/layout"
	"github.com/froncalli-softcrylic/MDF-Simulator-sub000/rules"
)

const (
	// maxHistory bounds the undo stack.
	maxHistory = 50
	// debounceInterval coalesces validation triggers during rapid edits.
	debounceInterval = 500 * time.Millisecond
)

// State is the canvas store. Create with New.
type State struct {
	mu       sync.Mutex
	graph    mdf.Graph
	undo     []mdf.Graph
	redo     []mdf.Graph
	revision uint64

	validateFn    func(mdf.Graph)
	debounceTimer *time.Timer

	layoutRunning bool
	engine        *layout.Engine
	log           *slog.Logger
}

// New returns an empty canvas state.
func New(log *slog.Logger) *State {
	if log == nil {
		log = slog.Default()
	}
	return &State{
		graph:  mdf.Graph{Nodes: []mdf.Node{}, Edges: []mdf.Edge{}},
		engine: layout.New(log),
		log:    log,
	}
}

// Graph returns a copy of the current graph.
func (s *State) Graph() mdf.Graph {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyGraph(s.graph)
}

// OnValidate registers the debounced validation callback. The callback
// always fires once after the last mutation of a burst, with the graph as
// it stood at that point.
func (s *State) OnValidate(fn func(mdf.Graph)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.validateFn = fn
}

// SetGraph replaces the whole graph, e.g. on project load or profile
// switch. The input is sanitized before commit.
func (s *State) SetGraph(g mdf.Graph) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commit(mdf.SanitizeWith(g, s.log))
}

// AddNode places a catalog entry on the canvas and returns its instance id.
func (s *State) AddNode(catalogID string, status mdf.Status, pos mdf.Position) (string, error) {
	cn, ok := catalog.Get(catalogID)
	if !ok {
		return "", fmt.Errorf("canvas: unknown catalog id %q", catalogID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n := mdf.Node{
		ID:       uuid.NewString(),
		Type:     mdf.DefaultNodeType,
		Position: pos,
		Data: mdf.NodeData{
			CatalogID: cn.ID,
			Label:     cn.Name,
			Category:  string(cn.Category),
			Status:    status,
		},
	}
	g := copyGraph(s.graph)
	g.Nodes = append(g.Nodes, n)
	s.commit(g)
	return n.ID, nil
}

// RemoveNode deletes a node and every edge touching it.
func (s *State) RemoveNode(nodeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := mdf.Graph{Nodes: []mdf.Node{}, Edges: []mdf.Edge{}}
	for _, n := range s.graph.Nodes {
		if n.ID != nodeID {
			g.Nodes = append(g.Nodes, n)
		}
	}
	for _, e := range s.graph.Edges {
		if e.Source != nodeID && e.Target != nodeID {
			g.Edges = append(g.Edges, e)
		}
	}
	s.commit(g)
}

// Connect adds an edge after checking it against the connection rules.
// Illegal connections are rejected fail-closed: the mutation never reaches
// the graph and the returned error names the violated rule.
func (s *State) Connect(source, target, sourceHandle, targetHandle string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	src := s.graph.NodeByID(source)
	dst := s.graph.NodeByID(target)
	if src == nil || dst == nil {
		return "", fmt.Errorf("canvas: edge endpoints must exist (%s → %s)", source, target)
	}

	v := rules.Check(
		catalog.Category(src.Data.Category),
		catalog.Category(dst.Data.Category),
		handlePort(*src, sourceHandle, false),
		handlePort(*dst, targetHandle, true),
	)
	if !v.Allowed {
		return "", fmt.Errorf("%w: %s (%s)", mdf.ErrConnectionDenied, v.Reason, v.Rule)
	}

	e := mdf.Edge{
		ID:           uuid.NewString(),
		Source:       source,
		Target:       target,
		SourceHandle: sourceHandle,
		TargetHandle: targetHandle,
	}
	g := copyGraph(s.graph)
	g.Edges = append(g.Edges, e)
	s.commit(g)
	return e.ID, nil
}

// Disconnect removes an edge by id.
func (s *State) Disconnect(edgeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := copyGraph(s.graph)
	g.Edges = g.Edges[:0]
	for _, e := range s.graph.Edges {
		if e.ID != edgeID {
			g.Edges = append(g.Edges, e)
		}
	}
	s.commit(g)
}

// MoveNode updates a node's position. Drags fire at high frequency; the
// debounce on validation is what keeps this cheap.
func (s *State) MoveNode(nodeID string, pos mdf.Position) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := copyGraph(s.graph)
	n := g.NodeByID(nodeID)
	if n == nil {
		return
	}
	n.Position = pos
	s.commit(g)
}

// Undo restores the previous snapshot, if any.
func (s *State) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.undo) == 0 {
		return false
	}
	s.redo = append(s.redo, copyGraph(s.graph))
	s.graph = s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	s.revision++
	s.scheduleValidation()
	return true
}

// Redo reapplies the last undone snapshot, if any.
func (s *State) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.redo) == 0 {
		return false
	}
	s.undo = append(s.undo, copyGraph(s.graph))
	s.graph = s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	s.revision++
	s.scheduleValidation()
	return true
}

// AutoLayout recomputes positions. Re-entrant calls while a layout is in
// flight return ErrLayoutRunning; a result computed against a superseded
// revision is discarded rather than written back.
func (s *State) AutoLayout() error {
	s.mu.Lock()
	if s.layoutRunning {
		s.mu.Unlock()
		return mdf.ErrLayoutRunning
	}
	s.layoutRunning = true
	snapshot := copyGraph(s.graph)
	rev := s.revision
	s.mu.Unlock()

	nodes := s.engine.AutoLayout(snapshot)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.layoutRunning = false
	if s.revision != rev {
		s.log.Warn("discarding stale layout result", "computed_at", rev, "current", s.revision)
		return nil
	}
	g := copyGraph(s.graph)
	g.Nodes = nodes
	s.commit(g)
	return nil
}

// Flush fires any pending debounced validation immediately. Intended for
// tests and for teardown.
func (s *State) Flush() {
	s.mu.Lock()
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
		s.debounceTimer = nil
	}
	fn := s.validateFn
	g := copyGraph(s.graph)
	s.mu.Unlock()

	if fn != nil {
		fn(g)
	}
}

// commit snapshots the current graph onto the undo stack, installs the new
// graph, clears redo and schedules validation. Callers hold s.mu.
func (s *State) commit(g mdf.Graph) {
	s.undo = append(s.undo, copyGraph(s.graph))
	if len(s.undo) > maxHistory {
		s.undo = s.undo[len(s.undo)-maxHistory:]
	}
	s.redo = s.redo[:0]
	s.graph = g
	s.revision++
	s.scheduleValidation()
}

// scheduleValidation resets the debounce timer. A superseded timer is
// stopped, not awaited: stale validation passes are simply discarded.
// Callers hold s.mu.
func (s *State) scheduleValidation() {
	if s.validateFn == nil {
		return
	}
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	s.debounceTimer = time.AfterFunc(debounceInterval, func() {
		s.mu.Lock()
		fn := s.validateFn
		g := copyGraph(s.graph)
		s.debounceTimer = nil
		s.mu.Unlock()
		if fn != nil {
			fn(g)
		}
	})
}

func copyGraph(g mdf.Graph) mdf.Graph {
	return mdf.Graph{
		Nodes: append([]mdf.Node{}, g.Nodes...),
		Edges: append([]mdf.Edge{}, g.Edges...),
	}
}

func handlePort(n mdf.Node, handle string, input bool) catalog.PortType {
	cn, ok := catalog.Get(n.Data.CatalogID)
	if !ok {
		return ""
	}
	ports := cn.Outputs
	if input {
		ports = cn.Inputs
	}
	if len(ports) == 0 {
		return ""
	}
	if handle != "" {
		for _, p := range ports {
			if p.ID == handle {
				return p.Type
			}
		}
	}
	return ports[0].Type
}
