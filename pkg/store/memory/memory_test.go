package memory

import (
	"context"
	"testing"

	"github.com/studygraph/backend/pkg/common"
	"github.com/studygraph/backend/pkg/store"
)

func seedStore(t *testing.T, userID string) *GraphMemoryStore {
	t.Helper()
	s := NewGraphMemoryStore()
	if err := s.EnsurePartition(context.Background(), userID); err != nil {
		t.Fatalf("EnsurePartition failed: %v", err)
	}
	return s
}

func TestUpsertEntitiesRequiresPartition(t *testing.T) {
	s := NewGraphMemoryStore()
	err := s.UpsertEntities(context.Background(), []common.Entity{
		{Name: "Marketing Mix", Type: common.EntityTypeFramework},
	}, "nobody")
	if err == nil {
		t.Fatal("expected error for missing partition, got nil")
	}
}

func TestUpsertEntitiesOverwritesType(t *testing.T) {
	ctx := context.Background()
	s := seedStore(t, "alice")

	first := []common.Entity{{Name: "Promotion Mix", Type: common.EntityTypeConcept}}
	if err := s.UpsertEntities(ctx, first, "alice"); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	second := []common.Entity{{Name: "Promotion Mix", Type: common.EntityTypeFramework}}
	if err := s.UpsertEntities(ctx, second, "alice"); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	entities, err := s.ListEntities(ctx, "alice", 10)
	if err != nil {
		t.Fatalf("ListEntities failed: %v", err)
	}
	if len(entities) != 1 {
		t.Fatalf("expected 1 entity after re-upsert, got %d", len(entities))
	}
	if entities[0].Type != common.EntityTypeFramework {
		t.Errorf("expected type to be overwritten to framework, got %q", entities[0].Type)
	}
}

func TestListEntitiesNewestFirstWithLimit(t *testing.T) {
	ctx := context.Background()
	s := seedStore(t, "alice")

	batch := []common.Entity{
		{Name: "Advertising", Type: common.EntityTypeConcept},
		{Name: "Sales Promotion", Type: common.EntityTypeConcept},
		{Name: "Public Relations", Type: common.EntityTypeConcept},
	}
	if err := s.UpsertEntities(ctx, batch, "alice"); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	entities, err := s.ListEntities(ctx, "alice", 2)
	if err != nil {
		t.Fatalf("ListEntities failed: %v", err)
	}
	if len(entities) != 2 {
		t.Fatalf("expected 2 entities, got %d", len(entities))
	}
	if entities[0].Name != "Public Relations" || entities[1].Name != "Sales Promotion" {
		t.Errorf("expected newest first, got %q then %q", entities[0].Name, entities[1].Name)
	}
}

func TestUpsertRelationshipsSkipsMissingEndpoints(t *testing.T) {
	ctx := context.Background()
	s := seedStore(t, "alice")

	entities := []common.Entity{
		{Name: "Promotion Mix", Type: common.EntityTypeFramework},
		{Name: "Advertising", Type: common.EntityTypeConcept},
	}
	if err := s.UpsertEntities(ctx, entities, "alice"); err != nil {
		t.Fatalf("upsert entities failed: %v", err)
	}

	relationships := []common.Relationship{
		{From: "Promotion Mix", To: "Advertising", Type: common.RelationTypeHasComponent},
		{From: "Promotion Mix", To: "Ghost Entity", Type: common.RelationTypeHasComponent},
		{From: "Ghost Entity", To: "Advertising", Type: common.RelationTypeSupports},
	}
	if err := s.UpsertRelationships(ctx, relationships, "alice"); err != nil {
		t.Fatalf("upsert relationships failed: %v", err)
	}

	stored, err := s.ListRelationships(ctx, "alice", 10)
	if err != nil {
		t.Fatalf("ListRelationships failed: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("expected only the edge with both endpoints, got %d edges", len(stored))
	}
	if stored[0].From != "Promotion Mix" || stored[0].To != "Advertising" {
		t.Errorf("unexpected edge %q -[%s]-> %q", stored[0].From, stored[0].Type, stored[0].To)
	}
}

func TestUpsertRelationshipsDedupes(t *testing.T) {
	ctx := context.Background()
	s := seedStore(t, "alice")

	entities := []common.Entity{
		{Name: "IMC", Type: common.EntityTypeFramework},
		{Name: "Advertising", Type: common.EntityTypeConcept},
	}
	if err := s.UpsertEntities(ctx, entities, "alice"); err != nil {
		t.Fatalf("upsert entities failed: %v", err)
	}

	edge := common.Relationship{From: "IMC", To: "Advertising", Type: common.RelationTypeHasComponent}
	for range 3 {
		if err := s.UpsertRelationships(ctx, []common.Relationship{edge}, "alice"); err != nil {
			t.Fatalf("upsert relationships failed: %v", err)
		}
	}
	// Same endpoints under a different type is a distinct edge.
	other := common.Relationship{From: "IMC", To: "Advertising", Type: common.RelationTypeUsedIn}
	if err := s.UpsertRelationships(ctx, []common.Relationship{other}, "alice"); err != nil {
		t.Fatalf("upsert relationships failed: %v", err)
	}

	stored, err := s.ListRelationships(ctx, "alice", 10)
	if err != nil {
		t.Fatalf("ListRelationships failed: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("expected 2 distinct edges, got %d", len(stored))
	}
}

func TestGetNeighborhoodOutgoingOnly(t *testing.T) {
	ctx := context.Background()
	s := seedStore(t, "alice")

	entities := []common.Entity{
		{Name: "Promotion Mix", Type: common.EntityTypeFramework},
		{Name: "Advertising", Type: common.EntityTypeConcept},
		{Name: "Marketing Strategy", Type: common.EntityTypeConcept},
	}
	if err := s.UpsertEntities(ctx, entities, "alice"); err != nil {
		t.Fatalf("upsert entities failed: %v", err)
	}
	relationships := []common.Relationship{
		{From: "Promotion Mix", To: "Advertising", Type: common.RelationTypeHasComponent},
		{From: "Marketing Strategy", To: "Promotion Mix", Type: common.RelationTypeHasComponent},
	}
	if err := s.UpsertRelationships(ctx, relationships, "alice"); err != nil {
		t.Fatalf("upsert relationships failed: %v", err)
	}

	got, err := s.GetNeighborhood(ctx, "Promotion Mix", "alice")
	if err != nil {
		t.Fatalf("GetNeighborhood failed: %v", err)
	}
	if len(got.Relationships) != 1 {
		t.Fatalf("expected 1 outgoing edge, got %d", len(got.Relationships))
	}
	if got.Relationships[0].To != "Advertising" {
		t.Errorf("expected outgoing edge to Advertising, got %q", got.Relationships[0].To)
	}
	if len(got.Entities) != 2 {
		t.Fatalf("expected center and target entity, got %d entities", len(got.Entities))
	}
	if got.Entities[0].Name != "Promotion Mix" {
		t.Errorf("expected center entity first, got %q", got.Entities[0].Name)
	}
}

func TestGetNeighborhoodUnknownConcept(t *testing.T) {
	ctx := context.Background()
	s := seedStore(t, "alice")

	got, err := s.GetNeighborhood(ctx, "Quantum Chromodynamics", "alice")
	if err != nil {
		t.Fatalf("GetNeighborhood failed: %v", err)
	}
	if !got.Empty() {
		t.Errorf("expected empty neighborhood, got %d entities", len(got.Entities))
	}

	got, err = s.GetNeighborhood(ctx, "Promotion Mix", "nobody")
	if err != nil {
		t.Fatalf("GetNeighborhood for unknown user failed: %v", err)
	}
	if !got.Empty() {
		t.Errorf("expected empty neighborhood for unknown user, got %d entities", len(got.Entities))
	}
}

func TestUpsertChunkOverwrites(t *testing.T) {
	ctx := context.Background()
	s := seedStore(t, "alice")

	chunk := store.StoredChunk{
		ID:            "abc123",
		Text:          "first version",
		SourceHeading: "Chapter 1",
		SequenceIndex: 0,
		Embedding:     []float32{0.1, 0.2},
	}
	if err := s.UpsertChunk(ctx, chunk, "alice"); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	chunk.Text = "second version"
	if err := s.UpsertChunk(ctx, chunk, "alice"); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	chunks, err := s.ListChunks(ctx, "alice")
	if err != nil {
		t.Fatalf("ListChunks failed: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != "second version" {
		t.Errorf("expected overwritten text, got %q", chunks[0].Text)
	}
	if len(chunks[0].Embedding) != 2 {
		t.Errorf("expected embedding to survive, got %d dims", len(chunks[0].Embedding))
	}
}

func TestListChunksOrdersBySequence(t *testing.T) {
	ctx := context.Background()
	s := seedStore(t, "alice")

	for _, chunk := range []store.StoredChunk{
		{ID: "zz", Text: "third", SequenceIndex: 2},
		{ID: "bb", Text: "second", SequenceIndex: 1},
		{ID: "aa", Text: "first", SequenceIndex: 0},
	} {
		if err := s.UpsertChunk(ctx, chunk, "alice"); err != nil {
			t.Fatalf("upsert chunk %s failed: %v", chunk.ID, err)
		}
	}

	chunks, err := s.ListChunks(ctx, "alice")
	if err != nil {
		t.Fatalf("ListChunks failed: %v", err)
	}
	want := []string{"first", "second", "third"}
	if len(chunks) != len(want) {
		t.Fatalf("expected %d chunks, got %d", len(want), len(chunks))
	}
	for i, text := range want {
		if chunks[i].Text != text {
			t.Errorf("chunk %d: expected %q, got %q", i, text, chunks[i].Text)
		}
	}
}

func TestExportGraphSorted(t *testing.T) {
	ctx := context.Background()
	s := seedStore(t, "alice")

	entities := []common.Entity{
		{Name: "Zeta", Type: common.EntityTypeConcept},
		{Name: "Alpha", Type: common.EntityTypeFramework},
	}
	if err := s.UpsertEntities(ctx, entities, "alice"); err != nil {
		t.Fatalf("upsert entities failed: %v", err)
	}
	relationships := []common.Relationship{
		{From: "Zeta", To: "Alpha", Type: common.RelationTypeSupports},
	}
	if err := s.UpsertRelationships(ctx, relationships, "alice"); err != nil {
		t.Fatalf("upsert relationships failed: %v", err)
	}

	data, err := s.ExportGraph(ctx, "alice")
	if err != nil {
		t.Fatalf("ExportGraph failed: %v", err)
	}
	if len(data.Nodes) != 2 || data.Nodes[0].ID != "Alpha" {
		t.Errorf("expected nodes sorted by name, got %+v", data.Nodes)
	}
	if len(data.Edges) != 1 || data.Edges[0].Label != "supports" {
		t.Errorf("expected one supports edge, got %+v", data.Edges)
	}
	if data.Nodes[0].Label != data.Nodes[0].ID {
		t.Errorf("expected node label to mirror id, got %+v", data.Nodes[0])
	}
}

func TestExportGraphUnknownUser(t *testing.T) {
	s := NewGraphMemoryStore()
	data, err := s.ExportGraph(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("ExportGraph failed: %v", err)
	}
	if data.Nodes == nil || data.Edges == nil {
		t.Fatal("expected empty slices, got nil")
	}
	if len(data.Nodes) != 0 || len(data.Edges) != 0 {
		t.Errorf("expected empty graph, got %d nodes and %d edges", len(data.Nodes), len(data.Edges))
	}
}

func TestDeletePartition(t *testing.T) {
	ctx := context.Background()
	s := seedStore(t, "alice")

	if err := s.UpsertEntities(ctx, []common.Entity{
		{Name: "Advertising", Type: common.EntityTypeConcept},
	}, "alice"); err != nil {
		t.Fatalf("upsert entities failed: %v", err)
	}

	if err := s.DeletePartition(ctx, "alice"); err != nil {
		t.Fatalf("DeletePartition failed: %v", err)
	}
	entities, err := s.ListEntities(ctx, "alice", 10)
	if err != nil {
		t.Fatalf("ListEntities after delete failed: %v", err)
	}
	if len(entities) != 0 {
		t.Errorf("expected no entities after delete, got %d", len(entities))
	}

	// Deleting a partition that never existed is not an error.
	if err := s.DeletePartition(ctx, "nobody"); err != nil {
		t.Fatalf("DeletePartition for unknown user failed: %v", err)
	}
}
