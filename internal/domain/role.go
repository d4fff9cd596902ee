package domain

import "strings"

// Role is the closed set of account kinds. Every switch over Role lists all
// three cases; unknown values are normalized to RolePatient by ParseRole.
type Role string

const (
	RolePatient      Role = "patient"
	RolePsychologist Role = "psychologist"
	RoleAdmin        Role = "admin"
)

// Roles lists every role in display order.
var Roles = []Role{RolePatient, RolePsychologist, RoleAdmin}

// ParseRole maps a stored or submitted role string onto a Role. Empty and
// unrecognized values become RolePatient, matching how profiles without a
// role were always treated.
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RolePsychologist:
		return RolePsychologist
	case RoleAdmin:
		return RoleAdmin
	default:
		return RolePatient
	}
}

// IsKnownRole reports whether s names a role exactly (after trimming/case folding).
func IsKnownRole(s string) bool {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RolePatient, RolePsychologist, RoleAdmin:
		return true
	}
	return false
}

// View identifies a screen of the client application.
type View string

const (
	ViewDashboard View = "dashboard"
	ViewEmotions  View = "emotions"
	ViewThoughts  View = "thoughts"
	ViewAnalytics View = "analytics"
	ViewResources View = "resources"
	ViewPatients  View = "patients"
	ViewUsers     View = "users"
	ViewAdmin     View = "admin"
)

// NavItem is one entry of the navigation menu.
type NavItem struct {
	View  View   `json:"view"`
	Label string `json:"label"`
}

// Views returns the views available to r, in menu order.
func (r Role) Views() []View {
	switch r {
	case RolePatient:
		return []View{ViewDashboard, ViewEmotions, ViewThoughts, ViewAnalytics, ViewResources}
	case RolePsychologist:
		return []View{ViewDashboard, ViewPatients, ViewAnalytics, ViewResources}
	case RoleAdmin:
		return []View{ViewDashboard, ViewUsers, ViewAnalytics, ViewAdmin}
	}
	return []View{ViewDashboard}
}

// Navigation builds the menu for r.
func (r Role) Navigation() []NavItem {
	views := r.Views()
	items := make([]NavItem, len(views))
	for i, v := range views {
		items[i] = NavItem{View: v, Label: v.Label()}
	}
	return items
}

// CanView reports whether r may open v (and call the API behind it).
func (r Role) CanView(v View) bool {
	for _, allowed := range r.Views() {
		if allowed == v {
			return true
		}
	}
	return false
}

// Label is the default (untranslated) menu caption for v.
func (v View) Label() string {
	switch v {
	case ViewDashboard:
		return "Dashboard"
	case ViewEmotions:
		return "Emotions"
	case ViewThoughts:
		return "Thoughts"
	case ViewAnalytics:
		return "Analytics"
	case ViewResources:
		return "Resources"
	case ViewPatients:
		return "Patients"
	case ViewUsers:
		return "Users"
	case ViewAdmin:
		return "Administration"
	}
	return string(v)
}
