package constants

const (
	// Palettes
	PaletteClassic = "classic"
	PaletteRose    = "rose"
	PaletteForest  = "forest"

	// Built-in goal ids
	GoalWater   = "water"
	GoalFruit   = "fruit"
	GoalOutside = "outside"
	GoalMove    = "move"
	GoalPeriod  = "period"

	// CustomGoalPrefix marks user-created goals
	CustomGoalPrefix = "custom-"

	// Affirmation defaults
	AffirmationSourceAuto    = "auto"
	AffirmationSourceLibrary = "library"
	AffirmationSourceGemini  = "gemini"
	DefaultAffirmationModel  = "gemini-3-flash-preview"
	DefaultTemperature       = 1.0
	DefaultTopP              = 0.95
)
