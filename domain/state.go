// Package domain contains core concepts of the relay.
// This file defines the occupant state container and its seed values.
// No runtime, network, or UI logic should be added here.
package domain

// State is the last payload a connection sent on any relay channel.
// The relay stores and forwards it without interpreting the contents:
// every update replaces the whole document, nothing is ever merged.
type State map[string]any

// Seed field names, kept as-is for client compatibility.
const (
	FieldX    = "x"
	FieldY    = "y"
	FieldRoom = "cRoom"
)

// SeedState is the occupant state installed at join time, before the
// connection has sent any update of its own.
func SeedState(room string) State {
	return State{FieldX: 0, FieldY: 0, FieldRoom: room}
}
