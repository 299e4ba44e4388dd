package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"go-plate-inspector/pkg/models"
)

func TestFirstFitStrategy(t *testing.T) {
	tests := []struct {
		name       string
		candidates []models.Region
		want       models.Region
		wantFound  bool
	}{
		{
			name:      "no candidates",
			wantFound: false,
		},
		{
			name:       "only small candidates are never selected",
			candidates: []models.Region{{X: 0, Y: 0, Width: 10, Height: 10}, {X: 5, Y: 5, Width: 20, Height: 20}},
			wantFound:  false,
		},
		{
			name:       "area equal to threshold is excluded",
			candidates: []models.Region{{X: 0, Y: 0, Width: 25, Height: 20}},
			wantFound:  false,
		},
		{
			name:       "first qualifying wins over larger later one",
			candidates: []models.Region{{X: 1, Y: 1, Width: 10, Height: 10}, {X: 2, Y: 2, Width: 30, Height: 20}, {X: 3, Y: 3, Width: 100, Height: 40}},
			want:       models.Region{X: 2, Y: 2, Width: 30, Height: 20},
			wantFound:  true,
		},
	}

	s := NewFirstFitStrategy(DefaultMinArea)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := s.Select(tt.candidates)
			assert.Equal(t, tt.wantFound, found)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFirstFitStrategy_OrderDependence(t *testing.T) {
	a := models.Region{X: 0, Y: 0, Width: 30, Height: 20}
	b := models.Region{X: 50, Y: 50, Width: 60, Height: 20}
	s := NewFirstFitStrategy(DefaultMinArea)

	got, _ := s.Select([]models.Region{a, b})
	assert.Equal(t, a, got)

	got, _ = s.Select([]models.Region{b, a})
	assert.Equal(t, b, got)
}

func TestLargestAreaStrategy(t *testing.T) {
	small := models.Region{Width: 10, Height: 10}
	mid := models.Region{X: 1, Width: 30, Height: 20}
	big := models.Region{X: 2, Width: 100, Height: 40}
	twin := models.Region{X: 9, Width: 40, Height: 100}

	s := NewLargestAreaStrategy(DefaultMinArea)

	got, found := s.Select([]models.Region{small, mid, big})
	assert.True(t, found)
	assert.Equal(t, big, got)

	got, found = s.Select([]models.Region{big, twin})
	assert.True(t, found)
	assert.Equal(t, big, got, "ties keep the earliest candidate")

	_, found = s.Select([]models.Region{small})
	assert.False(t, found)
}

func TestSelectionContext(t *testing.T) {
	mid := models.Region{Width: 30, Height: 20}
	big := models.Region{Width: 100, Height: 40}

	ctx := NewSelectionContext(NewFirstFitStrategy(DefaultMinArea))
	assert.Equal(t, FirstFitName, ctx.GetCurrentStrategy())
	got, _ := ctx.ExecuteSelection([]models.Region{mid, big})
	assert.Equal(t, mid, got)

	ctx.SetStrategy(NewLargestAreaStrategy(DefaultMinArea))
	assert.Equal(t, LargestAreaName, ctx.GetCurrentStrategy())
	got, _ = ctx.ExecuteSelection([]models.Region{mid, big})
	assert.Equal(t, big, got)
}
