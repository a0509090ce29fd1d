package rankingdomain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScopeType(t *testing.T) {
	for _, in := range []string{"GLOBAL", "continent", " Country ", "chapter"} {
		_, err := ParseScopeType(in)
		assert.NoError(t, err, in)
	}
	_, err := ParseScopeType("REGION")
	assert.ErrorIs(t, err, ErrInvalidScopeType)
}

func TestScopesFor(t *testing.T) {
	tests := []struct {
		name  string
		attrs MemberScopeAttributes
		want  []Scope
	}{
		{
			name:  "all attributes known",
			attrs: MemberScopeAttributes{ChapterID: "MED-01", Country: "co", Continent: "South America"},
			want: []Scope{
				{Type: ScopeGlobal, ID: GlobalScopeID},
				{Type: ScopeContinent, ID: "South America"},
				{Type: ScopeCountry, ID: "CO"},
				{Type: ScopeChapter, ID: "MED-01"},
			},
		},
		{
			name:  "nothing known still counts globally",
			attrs: MemberScopeAttributes{Country: "  "},
			want:  []Scope{{Type: ScopeGlobal, ID: GlobalScopeID}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScopesFor(tt.attrs))
		})
	}
}

func TestNewPartition(t *testing.T) {
	tenant := uuid.MustParse("6f1c2a1e-0000-4000-8000-000000000001")

	p, err := NewPartition(tenant, 2026, ScopeGlobal, "")
	require.NoError(t, err)
	assert.Equal(t, GlobalScopeID, p.Scope.ID)
	assert.Equal(t, "ranking:6f1c2a1e-0000-4000-8000-000000000001:2026:GLOBAL:GLOBAL", p.Key())

	p, err = NewPartition(tenant, 2026, ScopeCountry, "mx")
	require.NoError(t, err)
	assert.Equal(t, "MX", p.Scope.ID)

	_, err = NewPartition(tenant, 2026, ScopeChapter, "")
	assert.ErrorIs(t, err, ErrMissingScopeID)

	_, err = NewPartition(uuid.Nil, 2026, ScopeGlobal, "")
	assert.ErrorIs(t, err, ErrMissingTenant)

	_, err = NewPartition(tenant, 0, ScopeGlobal, "")
	assert.ErrorIs(t, err, ErrInvalidYear)

	_, err = NewPartition(tenant, 2026, ScopeType("PLANET"), "earth")
	assert.ErrorIs(t, err, ErrInvalidScopeType)

	longest := strings.Repeat("ñ", MaxScopeIDLength)
	p, err = NewPartition(tenant, 2026, ScopeChapter, longest)
	require.NoError(t, err)
	assert.Equal(t, longest, p.Scope.ID)

	_, err = NewPartition(tenant, 2026, ScopeChapter, longest+"x")
	assert.ErrorIs(t, err, ErrScopeIDTooLong)

	// Surrounding spaces are trimmed before the length check.
	_, err = NewPartition(tenant, 2026, ScopeChapter, "  "+longest+"  ")
	assert.NoError(t, err)
}
