package video

import "github.com/halfcarry/dmg-core/addr"

// Object is one decoded OAM entry (Y/X already hardware-offset) plus the
// flags needed by the scanline compositor.
type Object struct {
	OAMIndex int
	Y        int // hardware Y - 16
	X        int // hardware X - 8
	Tile     byte
	Palette1 bool // true selects OBP1, false OBP0
	FlipX    bool
	FlipY    bool
	UnderBG  bool // priority bit: drawn under non-zero background/window
}

func readObject(m MemoryReader, index int) Object {
	base := addr.OAMStart + uint16(index*4)
	y := int(m.Read(base)) - 16
	x := int(m.Read(base+1)) - 8
	tile := m.Read(base + 2)
	flags := m.Read(base + 3)

	return Object{
		OAMIndex: index,
		Y:        y,
		X:        x,
		Tile:     tile,
		Palette1: flags&0x10 != 0,
		FlipX:    flags&0x20 != 0,
		FlipY:    flags&0x40 != 0,
		UnderBG:  flags&0x80 != 0,
	}
}

// searchOAM scans the 40 OAM entries in address order, selecting those that
// overlap scanline ly at the given object height (8 or 16), stopping once 10
// are found. In tall-sprite mode the selected tile index has its LSB forced
// to 0, since the pair of 8-pixel halves is addressed from that base tile.
func searchOAM(m MemoryReader, ly int, height int) []Object {
	var selected []Object
	for i := 0; i < 40 && len(selected) < 10; i++ {
		obj := readObject(m, i)
		if !(obj.Y < ly && ly <= obj.Y+height-1) {
			continue
		}
		if height == 16 {
			obj.Tile &^= 1
		}
		selected = append(selected, obj)
	}
	return selected
}
