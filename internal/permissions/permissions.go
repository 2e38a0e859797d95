package permissions

import "strings"

// Role names recognized by the permission tables.
const (
	RoleOwner   = "owner"
	RoleMember  = "member"
	RoleDefault = "default"
)

// Capability keys checked by the session layer.
const (
	CapabilityInviteUsers       = "user:invite"
	CapabilityDeleteUsers       = "user:delete"
	CapabilityChangeRole        = "user:changeRole"
	CapabilityManageMembers     = "user:manage"
	CapabilityCreateCredentials = "credential:create"
	CapabilityShareCredentials  = "credential:share"
)

// Definition describes a capability grant.
type Definition struct {
	Key    string `json:"key"`
	Label  string `json:"label"`
	Module string `json:"module"`
	Roles  []string
}

// newDefinition builds a Definition with a normalized key.
func newDefinition(key, label, module string, roles ...string) Definition {
	return Definition{
		Key:    strings.TrimSpace(key),
		Label:  label,
		Module: module,
		Roles:  roles,
	}
}

// definitions is the ordered list of capability definitions.
var definitions = []Definition{
	newDefinition(CapabilityInviteUsers, "Invite Users", "Users", RoleOwner),
	newDefinition(CapabilityDeleteUsers, "Delete Users", "Users", RoleOwner),
	newDefinition(CapabilityChangeRole, "Change User Role", "Users", RoleOwner),
	newDefinition(CapabilityManageMembers, "Manage Members", "Users", RoleOwner),
	newDefinition(CapabilityCreateCredentials, "Create Credentials", "Credentials", RoleOwner, RoleMember),
	newDefinition(CapabilityShareCredentials, "Share Credentials", "Credentials", RoleOwner, RoleMember),
}

// definitionMap provides fast lookup for capability definitions.
var definitionMap = func() map[string]Definition {
	out := make(map[string]Definition, len(definitions))
	for _, def := range definitions {
		out[def.Key] = def
	}
	return out
}()

// Definitions returns a copy of all capability definitions.
func Definitions() []Definition {
	out := make([]Definition, len(definitions))
	copy(out, definitions)
	return out
}

// IsAuthorized reports whether the role grants the capability.
func IsAuthorized(role, capability string) bool {
	def, ok := definitionMap[strings.TrimSpace(capability)]
	if !ok {
		return false
	}
	for _, granted := range def.Roles {
		if granted == role {
			return true
		}
	}
	return false
}

// CredentialScope describes what a role may do with a credential.
type CredentialScope struct {
	Use    bool `json:"use"`
	Read   bool `json:"read"`
	Update bool `json:"update"`
	Delete bool `json:"delete"`
	Share  bool `json:"share"`
}

// CredentialPermissions evaluates credential access for a role. Owned
// credentials are fully accessible; owners see everything regardless.
func CredentialPermissions(role string, owned bool) CredentialScope {
	if owned || role == RoleOwner {
		return CredentialScope{Use: true, Read: true, Update: true, Delete: true, Share: true}
	}
	if role == RoleMember {
		return CredentialScope{Use: true, Read: true}
	}
	return CredentialScope{}
}

// Evaluator adapts the package-level functions to the session collaborator
// contract.
type Evaluator struct{}

// IsAuthorized implements the session permission contract.
func (Evaluator) IsAuthorized(role, capability string) bool {
	return IsAuthorized(role, capability)
}

// CredentialPermissions implements the session permission contract.
func (Evaluator) CredentialPermissions(role string, owned bool) CredentialScope {
	return CredentialPermissions(role, owned)
}
