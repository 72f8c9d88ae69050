package domain

// Role is what an authenticated caller may do.
type Role string

// Available roles.
const (
	// RoleViewer may search, list and download.
	RoleViewer Role = "viewer"

	// RoleEditor may additionally upload, redact, delete and annotate.
	RoleEditor Role = "editor"
)

// IsValid returns true if the role is recognised.
func (r Role) IsValid() bool {
	return r == RoleViewer || r == RoleEditor
}

// CanWrite reports whether the role permits mutations.
func (r Role) CanWrite() bool {
	return r == RoleEditor
}

// Identity is an authenticated caller as resolved by the HTTP layer.
type Identity struct {
	Subject string
	Role    Role

	// Scheme names the resolver that produced the identity.
	Scheme string
}

// Anonymous is used when authentication is disabled.
var Anonymous = Identity{Subject: "anonymous", Role: RoleEditor, Scheme: "none"}
