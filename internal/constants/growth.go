package constants

const (
	// Growth stage cut points: counts below GrowthBushAt render as a seedling,
	// counts at or above GrowthTreeAt render as a tree.
	GrowthBushAt = 3
	GrowthTreeAt = 7
)
