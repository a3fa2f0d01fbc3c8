//go:build gtxt

package gsprite

import "image"

// Alias to allow compiling the package without Ebitengine (gtxt version).
type Pixmap = *image.RGBA

const constPixmapSizeFactor = 56

// this doesn't do anything in gtxt, only ebiten needs a conversion
func pixmapFromImage(img *image.RGBA) Pixmap { return img }

// Returns the size of a [Pixmap] in bytes.
func PixmapByteSize(pixmap Pixmap) uint32 {
	if pixmap == nil { return constPixmapSizeFactor }
	return uint32(pixmap.Rect.Dx()*pixmap.Rect.Dy())*4 + constPixmapSizeFactor
}
