package graph

import (
	"testing"

	"github.com/studygraph/backend/pkg/common"
)

func TestSanitizeEntities(t *testing.T) {
	tests := []struct {
		name string
		raw  []extractEntity
		want []common.Entity
	}{
		{
			name: "duplicate name keeps first occurrence",
			raw: []extractEntity{
				{Name: "Promotion Mix", Type: "concept"},
				{Name: "Promotion Mix", Type: "framework"},
				{Name: "", Type: "concept"},
			},
			want: []common.Entity{
				{Name: "Promotion Mix", Type: common.EntityTypeConcept},
			},
		},
		{
			name: "unknown type coerced to concept",
			raw: []extractEntity{
				{Name: "Marketing Mix", Type: "buzzword"},
			},
			want: []common.Entity{
				{Name: "Marketing Mix", Type: common.EntityTypeConcept},
			},
		},
		{
			name: "type is case insensitive",
			raw: []extractEntity{
				{Name: "SWOT Analysis", Type: "FRAMEWORK"},
			},
			want: []common.Entity{
				{Name: "SWOT Analysis", Type: common.EntityTypeFramework},
			},
		},
		{
			name: "names are trimmed",
			raw: []extractEntity{
				{Name: "  Advertising  ", Type: "concept"},
				{Name: "   ", Type: "concept"},
			},
			want: []common.Entity{
				{Name: "Advertising", Type: common.EntityTypeConcept},
			},
		},
		{
			name: "missing type defaults to concept",
			raw: []extractEntity{
				{Name: "Positioning"},
			},
			want: []common.Entity{
				{Name: "Positioning", Type: common.EntityTypeConcept},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizeEntities(tt.raw)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d entities, want %d: %+v", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("entity %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSanitizeRelationships(t *testing.T) {
	tests := []struct {
		name string
		raw  []extractRelationship
		want []common.Relationship
	}{
		{
			name: "self loop dropped",
			raw: []extractRelationship{
				{From: "A", To: "A", Type: "part_of"},
			},
			want: []common.Relationship{},
		},
		{
			name: "unknown type dropped not coerced",
			raw: []extractRelationship{
				{From: "A", To: "B", Type: "bogus"},
			},
			want: []common.Relationship{},
		},
		{
			name: "missing type dropped",
			raw: []extractRelationship{
				{From: "A", To: "B"},
			},
			want: []common.Relationship{},
		},
		{
			name: "duplicate triples collapse",
			raw: []extractRelationship{
				{From: "Promotion Mix", To: "Advertising", Type: "has_component"},
				{From: "Promotion Mix", To: "Advertising", Type: "has_component"},
				{From: "Promotion Mix", To: "Advertising", Type: "used_in"},
			},
			want: []common.Relationship{
				{From: "Promotion Mix", To: "Advertising", Type: common.RelationTypeHasComponent},
				{From: "Promotion Mix", To: "Advertising", Type: common.RelationTypeUsedIn},
			},
		},
		{
			name: "empty endpoints dropped",
			raw: []extractRelationship{
				{From: "", To: "B", Type: "part_of"},
				{From: "A", To: "  ", Type: "part_of"},
			},
			want: []common.Relationship{},
		},
		{
			name: "endpoints trimmed and type case insensitive",
			raw: []extractRelationship{
				{From: " IMC ", To: " Advertising ", Type: "Has_Component"},
			},
			want: []common.Relationship{
				{From: "IMC", To: "Advertising", Type: common.RelationTypeHasComponent},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizeRelationships(tt.raw)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d relationships, want %d: %+v", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("relationship %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}
