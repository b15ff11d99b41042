package machine

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Registry holds the built-in machine profiles plus any custom ones
// loaded from disk or added at runtime. Custom profiles may not shadow
// built-in names.
type Registry struct {
	builtins []MachineProfile
	custom   []MachineProfile
	validate *validator.Validate
}

// NewRegistry returns a registry with the built-in profiles.
func NewRegistry() *Registry {
	return &Registry{
		builtins: builtinProfiles(),
		validate: validator.New(),
	}
}

// Profiles returns all profiles, built-ins first.
func (r *Registry) Profiles() []MachineProfile {
	all := make([]MachineProfile, 0, len(r.builtins)+len(r.custom))
	all = append(all, r.builtins...)
	all = append(all, r.custom...)
	return all
}

// Names returns all profile names in listing order.
func (r *Registry) Names() []string {
	profiles := r.Profiles()
	names := make([]string, len(profiles))
	for i, p := range profiles {
		names[i] = p.Name()
	}
	return names
}

// Lookup returns the named profile, reporting whether it exists.
func (r *Registry) Lookup(name string) (MachineProfile, bool) {
	for _, p := range r.builtins {
		if p.Name() == name {
			return p, true
		}
	}
	for _, p := range r.custom {
		if p.Name() == name {
			return p, true
		}
	}
	return MachineProfile{}, false
}

// Get returns the named profile, falling back to the Generic built-in
// for unknown names so callers always get a usable profile.
func (r *Registry) Get(name string) MachineProfile {
	if p, ok := r.Lookup(name); ok {
		return p
	}
	return r.builtins[len(r.builtins)-1]
}

// IsBuiltIn reports whether the name belongs to a built-in profile.
func (r *Registry) IsBuiltIn(name string) bool {
	for _, p := range r.builtins {
		if p.Name() == name {
			return true
		}
	}
	return false
}

// Validate checks a profile against the field constraints.
func (r *Registry) Validate(p MachineProfile) error {
	if err := r.validate.Struct(p); err != nil {
		return fmt.Errorf("machine profile %q: %w", p.Name(), err)
	}
	return nil
}

// Add validates and adds a custom profile. A profile with the same name
// as an existing custom profile replaces it; built-in names are
// rejected.
func (r *Registry) Add(p MachineProfile) error {
	if err := r.Validate(p); err != nil {
		return err
	}
	if r.IsBuiltIn(p.Name()) {
		return fmt.Errorf("cannot replace built-in profile %q", p.Name())
	}
	p.IsBuiltIn = false
	for i := range r.custom {
		if r.custom[i].Name() == p.Name() {
			r.custom[i] = p
			return nil
		}
	}
	r.custom = append(r.custom, p)
	return nil
}

// AddAll adds a batch of custom profiles, stopping at the first error.
func (r *Registry) AddAll(profiles []MachineProfile) error {
	for _, p := range profiles {
		if err := r.Add(p); err != nil {
			return err
		}
	}
	return nil
}

// Remove deletes a custom profile. Built-ins cannot be removed.
func (r *Registry) Remove(name string) error {
	if r.IsBuiltIn(name) {
		return fmt.Errorf("cannot remove built-in profile %q", name)
	}
	for i := range r.custom {
		if r.custom[i].Name() == name {
			r.custom = append(r.custom[:i], r.custom[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("profile %q not found", name)
}

// Custom returns the custom profiles only, for persistence.
func (r *Registry) Custom() []MachineProfile {
	return r.custom
}
