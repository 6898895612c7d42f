package permissions

import (
	"sort"
	"strings"
	"sync"
)

const (
	NavigateAccountView    = "NavigateAccountView"
	MakeAccountTransaction = "MakeAccountTransaction"
	CreateAccount          = "CreateAccount"

	CategoryNavigation = "Navigation"
	CategoryCash       = "Cash"
	CategoryAccount    = "Account"
)

type Permission struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// Registry holds the permissions known to the service.
type Registry struct {
	mu          sync.RWMutex
	permissions map[string]Permission
}

func NewRegistry() *Registry {
	return &Registry{permissions: make(map[string]Permission)}
}

// NewAccountRegistry returns a registry with the account module permissions.
func NewAccountRegistry() *Registry {
	r := NewRegistry()
	r.Register(NavigateAccountView, CategoryNavigation, "Can navigate account view")
	r.Register(MakeAccountTransaction, CategoryCash, "Can make account transaction")
	r.Register(CreateAccount, CategoryAccount, "Can create account")
	return r
}

func (r *Registry) Register(name, category, description string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.permissions[name] = Permission{Name: name, Category: category, Description: description}
}

func (r *Registry) Lookup(name string) (Permission, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.permissions[name]
	return p, ok
}

// All returns the registered permissions sorted by category and name.
func (r *Registry) All() []Permission {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Permission, 0, len(r.permissions))
	for _, p := range r.permissions {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Category != result[j].Category {
			return result[i].Category < result[j].Category
		}
		return result[i].Name < result[j].Name
	})
	return result
}

// RoleChecker grants permissions per role. The admin role is granted every
// registered permission.
type RoleChecker struct {
	registry *Registry
	grants   map[string]map[string]bool
}

func NewRoleChecker(registry *Registry, grants map[string][]string) *RoleChecker {
	c := &RoleChecker{registry: registry, grants: make(map[string]map[string]bool)}
	for role, names := range grants {
		set := make(map[string]bool, len(names))
		for _, name := range names {
			set[name] = true
		}
		c.grants[strings.ToLower(role)] = set
	}
	return c
}

func (c *RoleChecker) IsPermitted(role, permission string) bool {
	if _, ok := c.registry.Lookup(permission); !ok {
		return false
	}
	role = strings.ToLower(role)
	if role == "admin" {
		return true
	}
	return c.grants[role][permission]
}
