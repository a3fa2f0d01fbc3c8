//go:build !gtxt

package gsprite

import "image"

import "github.com/hajimehoshi/ebiten/v2"

// A Pixmap is the displayable form of a rendered sprite, ready to be
// drawn onto the screen.
//
// With Ebitengine, Pixmap defaults to *ebiten.Image. Without Ebitengine
// (gtxt version), Pixmap defaults to [*image.RGBA].
//
// A nil Pixmap is the "empty" result: it's what you get for zero-area
// requests, missing sprites and invalid themes.
type Pixmap = *ebiten.Image

// Based on Ebitengine internals.
const constPixmapSizeFactor = 192

// Converts a raw render result into a displayable Pixmap. This is the
// expensive raster-to-texture step that the renderer defers for pure
// cache-population renders.
func pixmapFromImage(img *image.RGBA) Pixmap {
	if img == nil { return nil }
	return ebiten.NewImageFromImage(img)
}

// Returns an approximation of a [Pixmap] size in bytes.
//
// With Ebitengine, the exact amount of mipmaps and helper fields is not
// known, so the values may not be completely accurate and should be
// treated as a lower bound. With gtxt, the returned values are exact.
func PixmapByteSize(pixmap Pixmap) uint32 {
	if pixmap == nil { return constPixmapSizeFactor }
	bounds := pixmap.Bounds()
	return uint32(bounds.Dx()*bounds.Dy())*4 + constPixmapSizeFactor
}
