package gsprite

import "image/color"

// Helper types, constants and small functions shared across the package.

// Frame value for sprites that are not animated. Passing NoFrame skips
// all frame key derivation and frame count lookups.
const NoFrame = -1

// Frame count sentinels returned by [Renderer.FrameCount]().
// Animated sprites report their actual frame count, which is always >= 1.
const (
	FrameCountMissing     = -1 // the sprite does not exist in the theme
	FrameCountNonAnimated = 0  // the sprite exists but has no frames
)

// Strategies allow disabling parts of the rendering pipeline, mostly
// for debugging and testing. See [Renderer.SetStrategyEnabled]().
type Strategy uint8

const (
	// Cache rendered sprites (and sprite metadata) in a disk-backed
	// blob cache shared across program runs.
	UseDiskCache Strategy = 1 << iota

	// Render sprites on background workers instead of blocking the
	// owning goroutine. Only affects [Sprite] requests; the synchronous
	// [Renderer.SpritePixmap]() always blocks.
	UseBackgroundThreads
)

func (self Strategy) String() string {
	switch self {
	case UseDiskCache: return "UseDiskCache"
	case UseBackgroundThreads: return "UseBackgroundThreads"
	case UseDiskCache | UseBackgroundThreads: return "UseDiskCache | UseBackgroundThreads"
	case 0: return "None"
	default:
		return "UnknownStrategy"
	}
}

// A ColorMap requests color substitutions during rendering: every draw
// command using a source color found in the map is painted with the
// replacement color instead. Colors not present in the map pass through
// unchanged. Insertion order is irrelevant; two maps with the same
// pairs always resolve to the same cache entries.
type ColorMap map[color.RGBA]color.RGBA

// Deep copy, so callers can keep mutating their map after configuring
// a [Sprite] with it.
func (self ColorMap) clone() ColorMap {
	if len(self) == 0 { return nil }
	clone := make(ColorMap, len(self))
	for src, dst := range self {
		clone[src] = dst
	}
	return clone
}

// remapFunc returns the substitution strategy to be applied by a render
// job, or nil when no substitution is requested.
func (self ColorMap) remapFunc() func(color.RGBA) color.RGBA {
	if len(self) == 0 { return nil }
	clone := self.clone()
	return func(c color.RGBA) color.RGBA {
		mapped, found := clone[c]
		if found { return mapped }
		return c
	}
}

// Packs a color in AARRGGBB order, matching the serialization used
// in cache keys.
func packRGBA(c color.RGBA) uint32 {
	return uint32(c.A)<<24 | uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}
