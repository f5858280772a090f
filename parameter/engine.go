package parameter

// Pattern bounds
const (
	MinSteps = 1
	MaxSteps = 128 // upper bound for any generated or quantized pattern

	// DefaultNumericSteps is the length floor for hex, octal and decimal input
	DefaultNumericSteps = 8
)

// Progressive session cache
const (
	// ProgressiveCapacity caps live sessions before LRU eviction
	ProgressiveCapacity = 100

	// MaxLengthenedSteps stops progressive lengthening from growing without bound
	MaxLengthenedSteps = 1024
)

// MaxCombinedSteps caps the LCM length of a combination
const MaxCombinedSteps = 1024

// DefaultSeed seeds unseeded random forms; combined with the expression text
const DefaultSeed uint64 = 0x5eed

// Scene cycling
const (
	// DefaultScenesPerAdvance is how many triggers each scene is held for
	DefaultScenesPerAdvance = 1
)
