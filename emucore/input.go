package emucore

// Standard d-pad button bit positions (always bits 0-3).
const (
	ButtonUp    = 0
	ButtonDown  = 1
	ButtonLeft  = 2
	ButtonRight = 3
)

// ButtonA and ButtonB are the first two face buttons.
const (
	ButtonA = 4
	ButtonB = 5
)

// Buttons builds a bitmask from pressed button bit positions.
func Buttons(pressed ...int) uint32 {
	var mask uint32
	for _, bit := range pressed {
		if bit >= 0 && bit < 32 {
			mask |= 1 << bit
		}
	}
	return mask
}
