package domain

// Room names come from untrusted clients and end up as keys of a shared
// table. Identifiers that collide with code-level keys in common mapping
// implementations are rejected outright.
var reservedNames = map[string]struct{}{
	"__proto__":   {},
	"constructor": {},
}

// ValidRoomName reports whether name may identify a room: non-empty and
// not one of the reserved identifiers. Invalid names are resolved as
// silent no-ops by every caller, never as errors.
func ValidRoomName(name string) bool {
	if name == "" {
		return false
	}
	_, reserved := reservedNames[name]
	return !reserved
}
