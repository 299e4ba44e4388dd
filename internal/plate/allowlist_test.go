package plate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"go-plate-inspector/pkg/models"
)

func TestAllowList_Evaluate(t *testing.T) {
	list := NewAllowList([]string{"ABC123", "MH12AB1234"})

	tests := []struct {
		name string
		text string
		want models.MatchStatus
	}{
		{"exact match", "ABC123", models.Match},
		{"case sensitive", "abc123", models.NoMatch},
		{"second entry", "MH12AB1234", models.Match},
		{"prefix is not a match", "ABC12", models.NoMatch},
		{"empty text", "", models.NoMatch},
		{"sentinel", models.NoPlateText, models.NoMatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, list.Evaluate(tt.text))
		})
	}
}

func TestAllowList_IsACopy(t *testing.T) {
	src := []string{"ABC123"}
	list := NewAllowList(src)
	src[0] = "changed"

	assert.True(t, list.Contains("ABC123"))

	entries := list.Entries()
	entries[0] = "mutated"
	assert.Equal(t, []string{"ABC123"}, list.Entries())
	assert.Equal(t, 1, list.Len())
}

func TestAllowList_Closest(t *testing.T) {
	list := NewAllowList([]string{"MH12AB1234", "KA01XY9999"})

	got, ok := list.Closest("MH12A81234")
	assert.True(t, ok)
	assert.Equal(t, models.NearestEntry{Entry: "MH12AB1234", Distance: 1}, got)

	_, ok = NewAllowList(nil).Closest("ABC")
	assert.False(t, ok)
}
