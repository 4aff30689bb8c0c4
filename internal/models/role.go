package models

import "strings"

// Role is one of the three account kinds.
type Role string

const (
	RoleResident  Role = "resident"
	RoleAdmin     Role = "admin"
	RoleCollector Role = "collector"
)

// ParseRole normalises a role name. The legacy spellings "user" and
// "garbageCollector" are accepted. An empty string yields RoleResident.
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "resident", "user":
		return RoleResident, true
	case "admin":
		return RoleAdmin, true
	case "collector", "garbagecollector":
		return RoleCollector, true
	}
	return "", false
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleResident || r == RoleAdmin || r == RoleCollector
}
