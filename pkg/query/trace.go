package query

import (
	"sort"
	"sync"
)

// TraceEventKind identifies the type of a trace event.
type TraceEventKind string

const (
	// TraceEventExtractedConcept reports the main concept distilled
	// from the question.
	TraceEventExtractedConcept TraceEventKind = "extracted_concept"
	// TraceEventGraphEntities reports the entity names resolved from
	// the concept's graph neighborhood.
	TraceEventGraphEntities TraceEventKind = "graph_entities"
	// TraceEventConsideredChunks reports the chunk ids scored during
	// the vector search.
	TraceEventConsideredChunks TraceEventKind = "considered_chunks"
	// TraceEventUsedChunks reports the chunk ids that survived the
	// relevance floor and made it into the answer context.
	TraceEventUsedChunks TraceEventKind = "used_chunks"
)

// TraceEvent describes one observation made while answering a
// question. Only the fields matching the Kind are populated; the
// envelope leaves room for additive changes without breaking
// implementers.
type TraceEvent struct {
	Kind TraceEventKind

	Concept     string
	EntityNames []string
	ChunkIDs    []string
}

// Tracer receives trace events from a question run. Implementations
// must be safe for concurrent use.
type Tracer interface {
	Record(event TraceEvent)
}

// MultiTracer fans trace events out to all contained tracers.
type MultiTracer []Tracer

func (m MultiTracer) Record(event TraceEvent) {
	for _, tracer := range m {
		if tracer == nil {
			continue
		}
		tracer.Record(event)
	}
}

// RecordExtractedConcept emits an extracted-concept event to the
// tracer, if any.
func RecordExtractedConcept(tracer Tracer, concept string) {
	if tracer == nil {
		return
	}
	tracer.Record(TraceEvent{Kind: TraceEventExtractedConcept, Concept: concept})
}

// RecordGraphEntities emits a graph-entities event to the tracer, if
// any.
func RecordGraphEntities(tracer Tracer, names ...string) {
	if tracer == nil {
		return
	}
	tracer.Record(TraceEvent{Kind: TraceEventGraphEntities, EntityNames: names})
}

// RecordConsideredChunks emits a considered-chunks event to the
// tracer, if any.
func RecordConsideredChunks(tracer Tracer, chunkIDs ...string) {
	if tracer == nil {
		return
	}
	tracer.Record(TraceEvent{Kind: TraceEventConsideredChunks, ChunkIDs: chunkIDs})
}

// RecordUsedChunks emits a used-chunks event to the tracer, if any.
func RecordUsedChunks(tracer Tracer, chunkIDs ...string) {
	if tracer == nil {
		return
	}
	tracer.Record(TraceEvent{Kind: TraceEventUsedChunks, ChunkIDs: chunkIDs})
}

// QueryTrace collects which concept, entities, and chunks a question
// run touched. Attach one to Ask to report afterwards what the answer
// was grounded on.
type QueryTrace struct {
	mu               sync.Mutex
	concept          string
	entityNames      map[string]struct{}
	consideredChunks map[string]struct{}
	usedChunks       map[string]struct{}
}

// NewQueryTrace creates an empty QueryTrace.
func NewQueryTrace() *QueryTrace {
	return &QueryTrace{
		entityNames:      make(map[string]struct{}),
		consideredChunks: make(map[string]struct{}),
		usedChunks:       make(map[string]struct{}),
	}
}

func (t *QueryTrace) Record(event TraceEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch event.Kind {
	case TraceEventExtractedConcept:
		t.concept = event.Concept
	case TraceEventGraphEntities:
		for _, name := range event.EntityNames {
			t.entityNames[name] = struct{}{}
		}
	case TraceEventConsideredChunks:
		for _, id := range event.ChunkIDs {
			t.consideredChunks[id] = struct{}{}
		}
	case TraceEventUsedChunks:
		for _, id := range event.ChunkIDs {
			t.usedChunks[id] = struct{}{}
		}
	}
}

// QueryTraceSnapshot is a point-in-time copy of a QueryTrace with
// deterministic ordering.
type QueryTraceSnapshot struct {
	Concept          string   `json:"concept"`
	EntityNames      []string `json:"entityNames"`
	ConsideredChunks []string `json:"consideredChunks"`
	UsedChunks       []string `json:"usedChunks"`
}

// Snapshot returns a sorted copy of everything recorded so far.
func (t *QueryTrace) Snapshot() QueryTraceSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	return QueryTraceSnapshot{
		Concept:          t.concept,
		EntityNames:      sortedKeys(t.entityNames),
		ConsideredChunks: sortedKeys(t.consideredChunks),
		UsedChunks:       sortedKeys(t.usedChunks),
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
