package access

import (
	"strings"

	"github.com/campushq/vaultd/internal/errdefs"
)

// Permission is a bitmask of independent capabilities over a vault label.
// Bits combine with | and are tested with Has. The set is closed: any bit
// outside All is rejected at the service boundary.
type Permission int

const (
	// Read allows reading existing secrets and listing keys.
	Read Permission = 1 << iota
	// Create allows creating secrets under keys that do not exist yet.
	Create
	// Update allows overwriting existing secrets.
	Update
	// Delete allows removing secrets.
	Delete
)

// All combines every defined permission bit.
const All = Read | Create | Update | Delete

// None is the empty mask; a missing grant row is equivalent to None.
const None Permission = 0

var permissionNames = []struct {
	bit  Permission
	name string
}{
	{Read, "READ"},
	{Create, "CREATE"},
	{Update, "UPDATE"},
	{Delete, "DELETE"},
}

// Has reports whether every bit in want is set in p.
func (p Permission) Has(want Permission) bool {
	return p&want == want
}

// Valid reports whether p is non-empty and contains only defined bits.
func (p Permission) Valid() bool {
	return p != None && p&^All == None
}

// Names returns the symbolic names of the bits set in p, in bit order.
func (p Permission) Names() []string {
	var names []string
	for _, pn := range permissionNames {
		if p.Has(pn.bit) {
			names = append(names, pn.name)
		}
	}
	return names
}

// String renders p as a pipe-joined name list, e.g. "READ|CREATE".
func (p Permission) String() string {
	if p == None {
		return "NONE"
	}
	return strings.Join(p.Names(), "|")
}

// Parse converts symbolic permission names ("READ", "CREATE", "UPDATE",
// "DELETE", "ALL", case-insensitive) into a combined mask.
func Parse(names []string) (Permission, error) {
	if len(names) == 0 {
		return None, errdefs.Validationf("no permissions given")
	}
	var mask Permission
	for _, name := range names {
		switch strings.ToUpper(strings.TrimSpace(name)) {
		case "READ":
			mask |= Read
		case "CREATE":
			mask |= Create
		case "UPDATE":
			mask |= Update
		case "DELETE":
			mask |= Delete
		case "ALL":
			mask |= All
		default:
			return None, errdefs.Validationf("unknown permission %q", name)
		}
	}
	return mask, nil
}
