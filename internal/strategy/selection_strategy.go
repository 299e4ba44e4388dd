package strategy

import (
	"go-plate-inspector/pkg/models"
)

// DefaultMinArea is the pixel area a candidate must exceed to be treated as a plate
const DefaultMinArea = 500

const (
	FirstFitName    = "first_fit"
	LargestAreaName = "largest_area"
)

// SelectionStrategy picks at most one region out of the detector candidates
type SelectionStrategy interface {
	Select(candidates []models.Region) (models.Region, bool)
	GetStrategyName() string
}

// FirstFitStrategy returns the first candidate, in detector order, whose area
// exceeds MinArea. Later candidates are never looked at, so the result depends
// on the order the detector reports regions in.
type FirstFitStrategy struct {
	MinArea int
}

// NewFirstFitStrategy creates a first-fit strategy
func NewFirstFitStrategy(minArea int) SelectionStrategy {
	return &FirstFitStrategy{MinArea: minArea}
}

// Select performs first-fit selection
func (s *FirstFitStrategy) Select(candidates []models.Region) (models.Region, bool) {
	for _, r := range candidates {
		if r.Area() > s.MinArea {
			return r, true
		}
	}
	return models.Region{}, false
}

// GetStrategyName returns the strategy name
func (s *FirstFitStrategy) GetStrategyName() string {
	return FirstFitName
}

// LargestAreaStrategy returns the biggest qualifying candidate. Ties keep the
// earliest one.
type LargestAreaStrategy struct {
	MinArea int
}

// NewLargestAreaStrategy creates a largest-area strategy
func NewLargestAreaStrategy(minArea int) SelectionStrategy {
	return &LargestAreaStrategy{MinArea: minArea}
}

// Select performs largest-area selection
func (s *LargestAreaStrategy) Select(candidates []models.Region) (models.Region, bool) {
	var (
		best  models.Region
		found bool
	)
	for _, r := range candidates {
		if r.Area() <= s.MinArea {
			continue
		}
		if !found || r.Area() > best.Area() {
			best, found = r, true
		}
	}
	return best, found
}

// GetStrategyName returns the strategy name
func (s *LargestAreaStrategy) GetStrategyName() string {
	return LargestAreaName
}

// SelectionContext holds the active strategy and lets callers swap it
type SelectionContext struct {
	strategy SelectionStrategy
}

// NewSelectionContext creates a new selection context
func NewSelectionContext(strategy SelectionStrategy) *SelectionContext {
	return &SelectionContext{
		strategy: strategy,
	}
}

// SetStrategy changes the selection strategy
func (c *SelectionContext) SetStrategy(strategy SelectionStrategy) {
	c.strategy = strategy
}

// ExecuteSelection selects a region using the current strategy
func (c *SelectionContext) ExecuteSelection(candidates []models.Region) (models.Region, bool) {
	return c.strategy.Select(candidates)
}

// GetCurrentStrategy returns the current strategy name
func (c *SelectionContext) GetCurrentStrategy() string {
	return c.strategy.GetStrategyName()
}
