package domain

import "fmt"

// Role is a staff category. The set is closed.
type Role string

const (
	RoleReach        Role = "reach"
	RoleGruas        Role = "gruas"
	RoleOperativo    Role = "operativo"
	RoleCertificador Role = "certificador"
)

// Roles lists every role in display order.
var Roles = []Role{RoleReach, RoleGruas, RoleOperativo, RoleCertificador}

var roleLabels = map[Role]string{
	RoleReach:        "Reach",
	RoleGruas:        "Grúas",
	RoleOperativo:    "Operativo",
	RoleCertificador: "Certificador",
}

func (r Role) Valid() bool {
	_, ok := roleLabels[r]
	return ok
}

// Label is the operator-facing name of the role.
func (r Role) Label() string {
	if l, ok := roleLabels[r]; ok {
		return l
	}
	return string(r)
}

// ParseRole accepts a role id or its label in any case, with or without accents.
func ParseRole(s string) (Role, error) {
	f := Fold(s)
	for _, r := range Roles {
		if f == Fold(string(r)) || f == Fold(r.Label()) {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", s)
}
