package gsprite

// Sprite represents one on-screen object rendered from a theme
// element. It remembers the sprite key, frame, size and color
// replacements it was configured with, asks its renderer for a new
// pixmap whenever any of those change, and keeps the most recently
// received pixmap available through [Sprite.Pixmap].
//
// Sprites belong to the goroutine owning their renderer. When
// background threads are enabled, pixmaps arrive during
// [Renderer.Update]; set a change callback with
// [Sprite.SetOnChangeFunc] if you need to react to that.
type Sprite struct {
	renderer *Renderer
	spriteKey string
	frame int
	width int
	height int
	colors ColorMap
	pixmap Pixmap
	onChange func(Pixmap)
	released bool
}

// NewSprite creates a sprite for the given sprite key and registers it
// with the renderer. The sprite starts without a size; nothing is
// rendered until [Sprite.SetSize] gives it one.
//
// Call [Sprite.Release] when done with the sprite, or the renderer
// will keep serving it on every theme change.
func (self *Renderer) NewSprite(spriteKey string) *Sprite {
	sprite := &Sprite{ renderer: self, spriteKey: spriteKey, frame: NoFrame }
	self.clients[sprite] = ""
	return sprite
}

// Release unregisters the sprite from its renderer. The sprite keeps
// its last pixmap but won't receive new ones, and further setter calls
// become no-ops.
func (self *Sprite) Release() {
	if self.released { return }
	self.released = true
	delete(self.renderer.clients, self)
}

// Pixmap returns the most recently rendered pixmap for this sprite,
// or nil if none has been delivered yet.
func (self *Sprite) Pixmap() Pixmap { return self.pixmap }

// SpriteKey returns the sprite key this sprite is rendered from.
func (self *Sprite) SpriteKey() string { return self.spriteKey }

// SetSpriteKey points the sprite at a different theme element.
func (self *Sprite) SetSpriteKey(spriteKey string) {
	self.spriteKey = spriteKey
	self.fetch()
}

// Frame returns the current animation frame, [NoFrame] for
// non-animated sprites.
func (self *Sprite) Frame() int { return self.frame }

// SetFrame sets the animation frame to render. Frame numbers wrap
// around the sprite's frame count, so advancing a plain counter is
// enough for a looping animation.
func (self *Sprite) SetFrame(frame int) {
	self.frame = frame
	self.fetch()
}

// Size returns the sprite's render size.
func (self *Sprite) Size() (width, height int) {
	return self.width, self.height
}

// SetSize sets the size at which the sprite is rasterized.
func (self *Sprite) SetSize(width, height int) {
	self.width, self.height = width, height
	self.fetch()
}

// Colors returns a copy of the sprite's color replacement map.
func (self *Sprite) Colors() ColorMap { return self.colors.clone() }

// SetColors sets the color replacements applied when rasterizing the
// sprite. The map is copied; later mutations by the caller have no
// effect.
func (self *Sprite) SetColors(colors ColorMap) {
	self.colors = colors.clone()
	self.fetch()
}

// SetOnChangeFunc sets a function invoked every time a new pixmap is
// delivered to the sprite, including nil deliveries for empty sizes.
// Pass nil to disable the callback.
func (self *Sprite) SetOnChangeFunc(fn func(Pixmap)) {
	self.onChange = fn
}

// fetch asks the renderer for the pixmap matching the sprite's current
// configuration. Served immediately on a cache hit, later through
// [Renderer.Update] otherwise.
func (self *Sprite) fetch() {
	if self.released { return }
	request := spriteRequest{
		spriteKey: self.spriteKey,
		frame: self.frame,
		width: self.width,
		height: self.height,
		colors: self.colors,
	}
	self.renderer.requestPixmap(request, self, nil)
}

func (self *Sprite) receivePixmap(pixmap Pixmap) {
	self.pixmap = pixmap
	if self.onChange != nil { self.onChange(pixmap) }
}
