package video

import "github.com/halfcarry/dmg-core/bit"

// TileRow is one 8-pixel row of a tile's bit-plane encoding: bit 7 of Low/High
// is the leftmost pixel, bit 0 the rightmost; each pixel's color index is the
// two bits combined (High<<1 | Low).
type TileRow struct {
	Low  byte
	High byte
}

// Pixel extracts the color index (0-3) at pixelX (0-7, 0=leftmost).
func (t TileRow) Pixel(pixelX int) byte {
	idx := uint8(7 - pixelX)
	var p byte
	if bit.IsSet(idx, t.Low) {
		p |= 1
	}
	if bit.IsSet(idx, t.High) {
		p |= 2
	}
	return p
}

// PixelFlipped extracts the color index with the row read right-to-left,
// for objects with the horizontal flip attribute set.
func (t TileRow) PixelFlipped(pixelX int) byte {
	idx := uint8(pixelX)
	var p byte
	if bit.IsSet(idx, t.Low) {
		p |= 1
	}
	if bit.IsSet(idx, t.High) {
		p |= 2
	}
	return p
}

// MemoryReader is the minimal read surface the video package needs from the bus.
type MemoryReader interface {
	Read(address uint16) byte
}

// FetchTileRow reads the TileRow for a tile's given pixel-Y (0-7) at the
// given 16-byte tile base address.
func FetchTileRow(m MemoryReader, tileBase uint16, pixelY int) TileRow {
	addr := tileBase + uint16(pixelY*2)
	return TileRow{Low: m.Read(addr), High: m.Read(addr + 1)}
}
