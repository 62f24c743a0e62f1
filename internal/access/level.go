// Package access resolves what a user may do with each shop resource.
package access

import "strings"

// Level is the access a user has to a resource.
type Level int

const (
	// None hides the resource.
	None Level = iota
	// ReadOnly allows listing, viewing and exporting records.
	ReadOnly
	// ReadWrite adds create, update, delete, activate and deactivate.
	ReadWrite
	// Admin adds bulk operations and the session and audit views.
	Admin
)

func (l Level) String() string {
	switch l {
	case None:
		return "none"
	case ReadOnly:
		return "read-only"
	case ReadWrite:
		return "read-write"
	case Admin:
		return "admin"
	default:
		return "unknown"
	}
}

// ParseLevel parses a level name. Unknown names map to None.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "read-only", "readonly", "ro", "read":
		return ReadOnly
	case "read-write", "readwrite", "rw", "write":
		return ReadWrite
	case "admin":
		return Admin
	default:
		return None
	}
}

func (l Level) CanRead() bool  { return l >= ReadOnly }
func (l Level) CanWrite() bool { return l >= ReadWrite }
func (l Level) CanAdmin() bool { return l >= Admin }

// Require returns a DeniedError when l is below need.
func (l Level) Require(need Level, resource string) error {
	if l >= need {
		return nil
	}
	return &DeniedError{Resource: resource, Need: need, Have: l}
}

// DeniedError reports an operation refused by access rules.
type DeniedError struct {
	Resource string
	Need     Level
	Have     Level
}

func (e *DeniedError) Error() string {
	return "access denied: " + e.Need.String() + " access to " + e.Resource + " required (have " + e.Have.String() + ")"
}
