package memory

import "strings"

// Serial models the SB/SC registers far enough to support the Blargg test
// ROMs' convention of polling 0xFF02 for a completed transfer and reading
// the transmitted byte back from 0xFF01: a write to SC with bit 7 set is
// treated as an immediately-completed transfer. The serial link's shift
// clock and a real peer are out of scope.
type Serial struct {
	sb  byte
	sc  byte
	log strings.Builder

	RequestInterrupt func()
}

// Log returns the byte held in SB at each transfer start (a write to SC
// with bit 7 set), in order.
func (s *Serial) Log() string {
	return s.log.String()
}

func (s *Serial) ReadSB() byte { return s.sb }
func (s *Serial) ReadSC() byte { return s.sc }

func (s *Serial) WriteSB(v byte) { s.sb = v }

func (s *Serial) WriteSC(v byte) {
	s.sc = v
	if v&0x80 == 0 {
		return
	}

	s.log.WriteByte(s.sb)
	s.sc &^= 0x80
	if s.RequestInterrupt != nil {
		s.RequestInterrupt()
	}
}
