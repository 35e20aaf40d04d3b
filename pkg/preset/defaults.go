package preset

// Per-mode default table. The validator substitutes these for missing
// optional fields (with a warning), and the editor seeds new layers from
// them. Defaults are part of the schema contract: changing one changes what
// old documents generate, so treat edits as a minor version bump.
const (
	// Uniform / Padded
	DefaultThickness = 8
	DefaultVariation = 4

	// Vein
	DefaultVeinMinY   = 0
	DefaultVeinMaxY   = 255
	DefaultVeinWidth  = 12
	DefaultVeinHeight = 6
	DefaultVeinCount  = 10

	// Replace
	DefaultPercent = 100.0

	// Pass
	DefaultGravitySolids = false
)

// Replace boolean defaults: a bare replace layer rewrites its own pass's
// buffer, leaves the live grid alone, and keeps particle attributes.
const (
	DefaultInExisting    = false
	DefaultInLayer       = true
	DefaultPreserveProps = true
)

// Field range constraints. Ranges may only widen across minor versions,
// never shrink; that is the forward/backward compatibility contract that
// lets an old engine run a newer-minor document.
const (
	MaxThickness  = 1024
	MaxVariation  = 1024
	MinVeinExtent = 1
	MaxVeinExtent = 128
	MaxVeinCount  = 10000
)
