// gsprite is a sprite rendering cache engine for Golang, designed to be
// used mainly with the Ebitengine game engine. It turns named elements of
// a scalable vector theme into pixel-perfect pixmaps at any size, while
// amortizing the expensive rasterization step through a two-tier cache
// (in-process pixmaps on top of a size-bounded disk cache shared across
// runs) and offloading rendering to background workers so your game loop
// never blocks on it.
//
// Common usage depends only on a couple types and a few functions...
//
// First, you create a [Renderer] pointing at a theme:
//
//	renderer := gsprite.NewRenderer("themes/classic.svg", 0)
//	defer renderer.Close()
//
// For one-shot lookups you use the synchronous path:
//
//	pixmap := renderer.SpritePixmap("ball", 32, 32, gsprite.NoFrame, nil)
//
// Long-lived objects register a [Sprite] instead and receive updated
// pixmaps asynchronously whenever the theme or their own configuration
// changes:
//
//	sprite := renderer.NewSprite("spin")
//	sprite.SetSize(48, 48)
//	sprite.SetOnChangeFunc(func(pixmap gsprite.Pixmap) { ... })
//
// Asynchronous results are delivered when you call [Renderer.Update](),
// typically once per frame from your game's update function.
//
// Renderers can't be used concurrently: all methods must be called from
// the goroutine that owns the renderer. Only the internal render workers
// run in parallel, and they communicate back exclusively through the
// queue that [Renderer.Update]() drains.
package gsprite
