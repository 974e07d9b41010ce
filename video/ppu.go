package video

import (
	"sort"

	"github.com/halfcarry/dmg-core/addr"
	"github.com/halfcarry/dmg-core/memory"
)

// Mode is the PPU's current rendering stage; values match STAT bits 1:0.
type Mode byte

const (
	HBlank Mode = iota
	VBlank
	OAMSearch
	Rendering
)

const (
	oamSearchDots = 80
	renderingDots = 168
	hblankDots    = 208
	vblankDots    = 456
)

// PPU implements the dot-driven mode state machine, OAM search and per-pixel
// scanline compositor against the bus's LCD registers (LCDC/STAT/SCX/SCY/
// WX/WY/BGP/OBP0/OBP1/LY/LYC).
type PPU struct {
	bus *memory.Bus
	fb  *FrameBuffer

	mode       Mode
	dotsInMode int
	line       int

	windowLine  int
	statIRQLine bool

	scanlineObjects []Object
}

func NewPPU(bus *memory.Bus) *PPU {
	return &PPU{
		bus:  bus,
		fb:   NewFrameBuffer(),
		mode: OAMSearch,
	}
}

func (p *PPU) FrameBuffer() *FrameBuffer { return p.fb }
func (p *PPU) Mode() Mode                { return p.mode }

// Tick advances the PPU by the given number of dots, one at a time.
func (p *PPU) Tick(dots int) {
	for i := 0; i < dots; i++ {
		p.tickDot()
	}
}

func (p *PPU) tickDot() {
	switch p.mode {
	case OAMSearch:
		if p.dotsInMode == 0 {
			height := 8
			if p.bus.Read(addr.LCDC)&0x04 != 0 {
				height = 16
			}
			p.scanlineObjects = searchOAM(p.bus, p.line, height)
		}
		p.dotsInMode++
		if p.dotsInMode >= oamSearchDots {
			p.dotsInMode = 0
			p.setMode(Rendering)
		}
	case Rendering:
		p.dotsInMode++
		if p.dotsInMode >= renderingDots {
			p.renderScanline()
			p.dotsInMode = 0
			p.setMode(HBlank)
		}
	case HBlank:
		p.dotsInMode++
		if p.dotsInMode >= hblankDots {
			p.dotsInMode = 0
			p.line++
			p.bus.SetLY(byte(p.line))
			if p.line == 144 {
				p.setMode(VBlank)
				p.fb.Swap()
				p.windowLine = 0
				p.bus.RequestInterrupt(addr.VBlankInterrupt)
			} else {
				p.setMode(OAMSearch)
			}
		}
	case VBlank:
		p.dotsInMode++
		if p.dotsInMode >= vblankDots {
			p.dotsInMode = 0
			p.line++
			if p.line > 153 {
				p.line = 0
				p.setMode(OAMSearch)
			}
			p.bus.SetLY(byte(p.line))
		}
	}

	p.updateSTAT()
}

func (p *PPU) setMode(mode Mode) {
	p.mode = mode
	p.bus.SetSTATMode(byte(mode))
}

// updateSTAT recomputes the level-sensitive STAT interrupt line and fires a
// STAT interrupt request only on its rising edge.
func (p *PPU) updateSTAT() {
	stat := p.bus.STAT()
	lyc := p.bus.Read(addr.LYC)
	coincidence := p.bus.LY() == lyc
	p.bus.SetSTATLYCFlag(coincidence)

	hblankEnable := stat&0x08 != 0
	vblankEnable := stat&0x10 != 0
	oamEnable := stat&0x20 != 0
	lycEnable := stat&0x40 != 0

	level := (hblankEnable && p.mode == HBlank) ||
		(vblankEnable && p.mode == VBlank) ||
		(oamEnable && p.mode == OAMSearch) ||
		(lycEnable && coincidence)

	if level && !p.statIRQLine {
		p.bus.RequestInterrupt(addr.LCDSTATInterrupt)
	}
	p.statIRQLine = level
}

func tileBaseAddress(tileIndex byte, unsignedAddressing bool) uint16 {
	if unsignedAddressing {
		return addr.TileData0 + uint16(tileIndex)*16
	}
	return uint16(int(addr.TileData2) + int(int8(tileIndex))*16)
}

// renderScanline composes background, window and object pixels for the
// current line in one shot, matching spec's per-x algorithm.
func (p *PPU) renderScanline() {
	lcdc := p.bus.Read(addr.LCDC)
	if lcdc&0x80 == 0 {
		p.fb.clearBack()
		return
	}

	bgWindowEnable := lcdc&0x01 != 0
	windowEnable := lcdc&0x20 != 0 && bgWindowEnable
	objEnable := lcdc&0x02 != 0
	tallSprites := lcdc&0x04 != 0
	bgTileMapHigh := lcdc&0x08 != 0
	windowTileMapHigh := lcdc&0x40 != 0
	unsignedAddressing := lcdc&0x10 != 0

	scx := int(p.bus.Read(addr.SCX))
	scy := int(p.bus.Read(addr.SCY))
	wx := int(p.bus.Read(addr.WX))
	wy := int(p.bus.Read(addr.WY))
	bgp := p.bus.Read(addr.BGP)
	obp0 := p.bus.Read(addr.OBP0)
	obp1 := p.bus.Read(addr.OBP1)
	ly := p.line

	height := 8
	if tallSprites {
		height = 16
	}

	windowDrawnThisLine := false

	for x := 0; x < Width; x++ {
		var bgWinIndex byte
		if bgWindowEnable {
			px := (x + scx) & 0xFF
			py := (ly + scy) & 0xFF
			tileMapBase := addr.TileMap0
			if bgTileMapHigh {
				tileMapBase = addr.TileMap1
			}
			tileIndexAddr := tileMapBase + uint16((py/8)*32+px/8)
			tileIndex := p.bus.Read(tileIndexAddr)
			tileBase := tileBaseAddress(tileIndex, unsignedAddressing)
			row := FetchTileRow(p.bus, tileBase, py%8)
			bgWinIndex = row.Pixel(px % 8)
		}

		if windowEnable && x+7 >= wx && ly >= wy {
			wxPix := x + 7 - wx
			tileMapBase := addr.TileMap0
			if windowTileMapHigh {
				tileMapBase = addr.TileMap1
			}
			tileIndexAddr := tileMapBase + uint16((p.windowLine/8)*32+wxPix/8)
			tileIndex := p.bus.Read(tileIndexAddr)
			tileBase := tileBaseAddress(tileIndex, unsignedAddressing)
			row := FetchTileRow(p.bus, tileBase, p.windowLine%8)
			bgWinIndex = row.Pixel(wxPix % 8)
			windowDrawnThisLine = true
		}

		objColorIndex, objPalette1, objUnderBG, objFound := p.compositeObjectPixel(x, ly, height, objEnable)

		var outIndex byte
		if objFound && !(objUnderBG && bgWinIndex != 0) {
			paletteReg := obp0
			if objPalette1 {
				paletteReg = obp1
			}
			outIndex = applyPalette(paletteReg, objColorIndex)
		} else {
			outIndex = applyPalette(bgp, bgWinIndex)
		}

		p.fb.setPixel(x, ly, outIndex)
	}

	if windowDrawnThisLine {
		p.windowLine++
	}
}

func (p *PPU) compositeObjectPixel(x, ly, height int, objEnable bool) (colorIndex byte, palette1, underBG, found bool) {
	if !objEnable {
		return 0, false, false, false
	}

	candidates := make([]Object, 0, len(p.scanlineObjects))
	for _, o := range p.scanlineObjects {
		if x >= o.X && x < o.X+8 {
			candidates = append(candidates, o)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].X < candidates[j].X })

	for _, o := range candidates {
		pixelX := x - o.X
		pixelY := ly - o.Y
		if o.FlipY {
			pixelY = height - 1 - pixelY
		}

		tile := o.Tile
		rowWithinTile := pixelY
		if height == 16 {
			if rowWithinTile >= 8 {
				tile |= 1
				rowWithinTile -= 8
			} else {
				tile &^= 1
			}
		}

		tileBase := addr.TileData0 + uint16(tile)*16
		row := FetchTileRow(p.bus, tileBase, rowWithinTile)

		var idx byte
		if o.FlipX {
			idx = row.PixelFlipped(pixelX)
		} else {
			idx = row.Pixel(pixelX)
		}
		if idx == 0 {
			continue
		}

		return idx, o.Palette1, o.UnderBG, true
	}

	return 0, false, false, false
}
