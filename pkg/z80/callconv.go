package z80

import "zcc/pkg/ir"

// RegSlot names one register slot available to the calling
// convention: an 8-bit slot is a Reg, a 16-bit slot is a Pair.
type RegSlot struct {
	Reg  Reg  // set iff this is an 8-bit slot
	Pair Pair // set iff this is a 16-bit slot
}

// eightBitSlots and sixteenBitSlots are consulted in this fixed order:
// 8-bit slots A,B,C,D,E,H,L; 16-bit slots HL,DE,BC.
var eightBitSlots = []Reg{RegA, RegB, RegC, RegD, RegE, RegH, RegL}
var sixteenBitSlots = []Pair{PairHL, PairDE, PairBC}

// ArgLocation is the per-argument record of the argument-location
// table: an ordered sequence of register slots consuming the
// argument's initial bytes, followed by a byte count on the stack and
// its offset from the base of the stack argument area.
type ArgLocation struct {
	Name        string
	RegSlots    []RegSlot
	StackBytes  int
	StackOffset int
}

// AssignArgLocations builds the argument-location table for a call
// (or procedure entry) with the given argument types, consuming
// 8-bit/16-bit slots in declaration order and spilling the remainder
// to a contiguous, growing stack area. Variadic governs the
// "entirely in registers or entirely on the stack" rule for arguments
// that don't fit completely in the remaining register slots.
func AssignArgLocations(args []ir.Type, names []string, variadic bool) []ArgLocation {
	nextEight, nextSixteen := 0, 0
	stackOff := 0
	out := make([]ArgLocation, len(args))

	for i, t := range args {
		size := t.Size()
		name := ""
		if i < len(names) {
			name = names[i]
		}
		loc := ArgLocation{Name: name}

		switch {
		case size == 1:
			if nextEight < len(eightBitSlots) {
				loc.RegSlots = append(loc.RegSlots, RegSlot{Reg: eightBitSlots[nextEight]})
				nextEight++
			} else {
				loc.StackBytes = 1
			}
		default:
			words := size / 2
			if size%2 != 0 {
				words++
			}
			fits := nextSixteen+words <= len(sixteenBitSlots)
			if variadic && !fits {
				loc.StackBytes = size
			} else {
				taken := 0
				for taken < words && nextSixteen < len(sixteenBitSlots) {
					loc.RegSlots = append(loc.RegSlots, RegSlot{Pair: sixteenBitSlots[nextSixteen]})
					nextSixteen++
					taken++
				}
				if taken < words {
					loc.StackBytes = (words - taken) * 2
				}
			}
		}

		if loc.StackBytes > 0 {
			loc.StackOffset = stackOff
			stackOff += loc.StackBytes
		}
		out[i] = loc
	}
	return out
}
