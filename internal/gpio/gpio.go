// Package gpio provides button input and HPD output access with hardware
// abstraction. The real implementation uses the Linux GPIO character
// device. The fakes allow testing without hardware.
package gpio

// Button reads the push-button input line.
type Button interface {
	// Read returns true while the button is pressed. The raw line is
	// active-low (input with pull-up); Read inverts it so true = pressed.
	Read() (bool, error)

	// Close releases GPIO resources.
	Close() error
}

// Line drives the HPD output line.
type Line interface {
	// Set drives the line high (HPD asserted) when active is true.
	Set(active bool) error

	// Close releases GPIO resources.
	Close() error
}

// Default pin assignments (BCM numbering), from the adapter board
// schematic: the MOSFET stage makes the output non-inverting at the
// HDMI connector.
const (
	DefaultPinButton = 11 // GEN_BTN, active low
	DefaultPinHPD    = 20 // HPD_CNTRL
)
