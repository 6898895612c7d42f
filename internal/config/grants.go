package config

import "strings"

// Grants parses RoleGrants into role -> permission names.
func (c Config) Grants() map[string][]string {
	grants := make(map[string][]string)
	for _, entry := range strings.Split(c.RoleGrants, ";") {
		role, names, ok := strings.Cut(strings.TrimSpace(entry), "=")
		if !ok || role == "" {
			continue
		}
		for _, name := range strings.Split(names, "|") {
			if name = strings.TrimSpace(name); name != "" {
				grants[role] = append(grants[role], name)
			}
		}
	}
	return grants
}
