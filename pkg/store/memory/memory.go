package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/studygraph/backend/pkg/common"
	"github.com/studygraph/backend/pkg/store"
)

type relKey struct {
	from, to string
	relType  common.RelationType
}

type partition struct {
	entities    map[string]common.EntityType
	entityOrder []string
	relations   map[relKey]struct{}
	relOrder    []relKey
	chunks      map[string]store.StoredChunk
}

// GraphMemoryStore implements the store.GraphStore interface entirely
// in process memory. It mirrors the semantics of the PostgreSQL store,
// including the requirement that a partition exists before writes, and
// is used for tests and for running without a database.
type GraphMemoryStore struct {
	mu    sync.RWMutex
	users map[string]*partition
}

func NewGraphMemoryStore() *GraphMemoryStore {
	return &GraphMemoryStore{
		users: make(map[string]*partition),
	}
}

func (s *GraphMemoryStore) EnsurePartition(_ context.Context, userID string) error {
	if userID == "" {
		return errors.New("user id is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		s.users[userID] = &partition{
			entities:  make(map[string]common.EntityType),
			relations: make(map[relKey]struct{}),
			chunks:    make(map[string]store.StoredChunk),
		}
	}
	return nil
}

func (s *GraphMemoryStore) UpsertEntities(
	_ context.Context,
	entities []common.Entity,
	userID string,
) error {
	if len(entities) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	part, ok := s.users[userID]
	if !ok {
		return fmt.Errorf("unknown user partition %q", userID)
	}

	for _, entity := range entities {
		if entity.Name == "" {
			continue
		}
		if _, exists := part.entities[entity.Name]; !exists {
			part.entityOrder = append(part.entityOrder, entity.Name)
		}
		part.entities[entity.Name] = entity.Type
	}
	return nil
}

func (s *GraphMemoryStore) UpsertRelationships(
	_ context.Context,
	relationships []common.Relationship,
	userID string,
) error {
	if len(relationships) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	part, ok := s.users[userID]
	if !ok {
		return fmt.Errorf("unknown user partition %q", userID)
	}

	for _, rel := range relationships {
		// Edges may only connect entities that are already stored.
		if _, ok := part.entities[rel.From]; !ok {
			continue
		}
		if _, ok := part.entities[rel.To]; !ok {
			continue
		}
		key := relKey{from: rel.From, to: rel.To, relType: rel.Type}
		if _, exists := part.relations[key]; exists {
			continue
		}
		part.relations[key] = struct{}{}
		part.relOrder = append(part.relOrder, key)
	}
	return nil
}

func (s *GraphMemoryStore) UpsertChunk(
	_ context.Context,
	chunk store.StoredChunk,
	userID string,
) error {
	if chunk.ID == "" {
		return errors.New("chunk id is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	part, ok := s.users[userID]
	if !ok {
		return fmt.Errorf("unknown user partition %q", userID)
	}

	part.chunks[chunk.ID] = cloneChunk(chunk)
	return nil
}

func (s *GraphMemoryStore) GetNeighborhood(
	_ context.Context,
	name string,
	userID string,
) (common.GraphContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out common.GraphContext
	part, ok := s.users[userID]
	if !ok {
		return out, nil
	}
	centerType, ok := part.entities[name]
	if !ok {
		return out, nil
	}

	seen := map[string]struct{}{name: {}}
	out.Entities = append(out.Entities, common.Entity{Name: name, Type: centerType})
	for _, key := range part.relOrder {
		if key.from != name {
			continue
		}
		if _, added := seen[key.to]; !added {
			seen[key.to] = struct{}{}
			out.Entities = append(out.Entities, common.Entity{
				Name: key.to,
				Type: part.entities[key.to],
			})
		}
		out.Relationships = append(out.Relationships, common.Relationship{
			From: key.from,
			To:   key.to,
			Type: key.relType,
		})
	}
	return out, nil
}

func (s *GraphMemoryStore) ListEntities(
	_ context.Context,
	userID string,
	limit int,
) ([]common.Entity, error) {
	if limit <= 0 {
		limit = 50
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	part, ok := s.users[userID]
	if !ok {
		return []common.Entity{}, nil
	}

	entities := make([]common.Entity, 0, limit)
	for i := len(part.entityOrder) - 1; i >= 0 && len(entities) < limit; i-- {
		name := part.entityOrder[i]
		entities = append(entities, common.Entity{Name: name, Type: part.entities[name]})
	}
	return entities, nil
}

func (s *GraphMemoryStore) ListRelationships(
	_ context.Context,
	userID string,
	limit int,
) ([]common.Relationship, error) {
	if limit <= 0 {
		limit = 100
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	part, ok := s.users[userID]
	if !ok {
		return []common.Relationship{}, nil
	}

	relationships := make([]common.Relationship, 0, limit)
	for i := len(part.relOrder) - 1; i >= 0 && len(relationships) < limit; i-- {
		key := part.relOrder[i]
		relationships = append(relationships, common.Relationship{
			From: key.from,
			To:   key.to,
			Type: key.relType,
		})
	}
	return relationships, nil
}

func (s *GraphMemoryStore) ListChunks(
	_ context.Context,
	userID string,
) ([]store.StoredChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	part, ok := s.users[userID]
	if !ok {
		return nil, nil
	}

	chunks := make([]store.StoredChunk, 0, len(part.chunks))
	for _, chunk := range part.chunks {
		chunks = append(chunks, cloneChunk(chunk))
	}
	sort.Slice(chunks, func(i, j int) bool {
		if chunks[i].SequenceIndex != chunks[j].SequenceIndex {
			return chunks[i].SequenceIndex < chunks[j].SequenceIndex
		}
		return chunks[i].ID < chunks[j].ID
	})
	return chunks, nil
}

func (s *GraphMemoryStore) ExportGraph(
	_ context.Context,
	userID string,
) (common.GraphData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := common.GraphData{
		Nodes: []common.GraphNode{},
		Edges: []common.GraphEdge{},
	}
	part, ok := s.users[userID]
	if !ok {
		return out, nil
	}

	for name, entityType := range part.entities {
		out.Nodes = append(out.Nodes, common.GraphNode{
			ID:    name,
			Label: name,
			Type:  string(entityType),
		})
	}
	sort.Slice(out.Nodes, func(i, j int) bool { return out.Nodes[i].ID < out.Nodes[j].ID })

	for key := range part.relations {
		out.Edges = append(out.Edges, common.GraphEdge{
			From:  key.from,
			To:    key.to,
			Label: string(key.relType),
		})
	}
	sort.Slice(out.Edges, func(i, j int) bool {
		a, b := out.Edges[i], out.Edges[j]
		if a.From != b.From {
			return a.From < b.From
		}
		if a.To != b.To {
			return a.To < b.To
		}
		return a.Label < b.Label
	})
	return out, nil
}

func (s *GraphMemoryStore) DeletePartition(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, userID)
	return nil
}

func cloneChunk(chunk store.StoredChunk) store.StoredChunk {
	out := chunk
	if len(chunk.Embedding) > 0 {
		out.Embedding = make([]float32, len(chunk.Embedding))
		copy(out.Embedding, chunk.Embedding)
	}
	return out
}
