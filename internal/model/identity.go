package model

import "strings"

// Identity uniquely names one live resource instance: kind plus scope
// (subscription and, except for resource groups, resource group) plus name.
type Identity struct {
	Kind          string
	Subscription  string
	ResourceGroup string
	Name          string
}

// Key returns the serialization used for per-identity locks and conflict
// detection. Azure names are case-insensitive, so the key is lowercased.
func (i Identity) Key() string {
	parts := []string{i.Kind, i.Subscription, i.ResourceGroup, i.Name}
	return strings.ToLower(strings.Join(parts, "/"))
}

// String renders a short human-readable form for logs and reports.
func (i Identity) String() string {
	if i.ResourceGroup == "" {
		return i.Kind + " " + i.Name
	}
	return i.Kind + " " + i.ResourceGroup + "/" + i.Name
}
