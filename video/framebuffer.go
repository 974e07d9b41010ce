// Package video implements the DMG PPU: the dot-driven mode state machine,
// OAM search, per-pixel scanline compositor and the double-buffered screen.
package video

const (
	Width  = 160
	Height = 144
	Size   = Width * Height
)

// FrameBuffer holds two 160x144 buffers of DMG color indices (0-3, not RGBA)
// and swaps which one is "front" on V-Blank entry, per the reference design
// of owning two buffers with a back-index rather than copying pixels.
type FrameBuffer struct {
	buffers [2][Size]byte
	back    int
}

func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{}
}

// Front returns the buffer last completed at V-Blank entry; no references
// into the back buffer ever escape through this method.
func (fb *FrameBuffer) Front() *[Size]byte {
	return &fb.buffers[1-fb.back]
}

func (fb *FrameBuffer) setPixel(x, y int, colorIndex byte) {
	fb.buffers[fb.back][y*Width+x] = colorIndex
}

func (fb *FrameBuffer) clearBack() {
	for i := range fb.buffers[fb.back] {
		fb.buffers[fb.back][i] = 0
	}
}

// Swap makes the back buffer the new front buffer.
func (fb *FrameBuffer) Swap() {
	fb.back = 1 - fb.back
}
