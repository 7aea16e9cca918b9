package models

// Permission is an access level on a relay document.
type Permission string

const (
	PermissionOwner  Permission = "owner"
	PermissionWriter Permission = "writer"
	PermissionReader Permission = "reader"
)

// rank orders permissions so that owner > writer > reader.
func (p Permission) rank() int {
	switch p {
	case PermissionOwner:
		return 3
	case PermissionWriter:
		return 2
	case PermissionReader:
		return 1
	}
	return 0
}

// Valid reports whether p is a known permission.
func (p Permission) Valid() bool {
	return p.rank() > 0
}

// Allows reports whether holding p grants at least the required level.
func (p Permission) Allows(required Permission) bool {
	return p.rank() > 0 && p.rank() >= required.rank()
}

// DocumentPermission is one ACL row on the relay.
type DocumentPermission struct {
	DocID      string     `json:"doc_id"`
	Identity   string     `json:"identity"`
	Permission Permission `json:"permission"`
}

// GrantRequest is the body of an ACL grant call.
type GrantRequest struct {
	Permission Permission `json:"permission"`
}
