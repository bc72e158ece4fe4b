package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func boolPtr(b bool) *bool { return &b }

func TestBuildListQuery(t *testing.T) {
	tests := []struct {
		name      string
		filter    ListFilter
		wantWhere string
		wantArgs  []any
	}{
		{
			name:      "no filters",
			filter:    ListFilter{},
			wantWhere: "",
			wantArgs:  nil,
		},
		{
			name:      "no english",
			filter:    ListFilter{NoEnglish: boolPtr(true)},
			wantWhere: " WHERE requires_english = $1",
			wantArgs:  []any{false},
		},
		{
			name:      "company and location",
			filter:    ListFilter{Company: "TechChile", Location: "Santiago"},
			wantWhere: " WHERE company ILIKE $1 AND location ILIKE $2",
			wantArgs:  []any{"%TechChile%", "%Santiago%"},
		},
		{
			name:      "free text search",
			filter:    ListFilter{Search: "kubernetes"},
			wantWhere: " WHERE (title ILIKE $1 OR company ILIKE $1 OR description ILIKE $1)",
			wantArgs:  []any{"%kubernetes%"},
		},
		{
			name:      "all filters combined",
			filter:    ListFilter{NoEnglish: boolPtr(false), Company: "Banco", Search: "sre"},
			wantWhere: " WHERE requires_english = $1 AND company ILIKE $2 AND (title ILIKE $3 OR company ILIKE $3 OR description ILIKE $3)",
			wantArgs:  []any{true, "%Banco%", "%sre%"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := buildListQuery(tt.filter)
			assert.Equal(t, tt.wantWhere, where)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}
