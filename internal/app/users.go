package app

import (
	"strings"
	"time"

	"greenlaunch/pkg/domain"
)

// ResolveProfile returns the profile for a verified token subject, creating
// it on first sight. New profiles default to the entrepreneur role. Profiles
// carrying a role outside the allowed set are rejected rather than repaired.
func (a *App) ResolveProfile(uid, email, name string) (domain.Profile, error) {
	profile, ok, err := a.store.GetProfile(uid)
	if err != nil {
		return domain.Profile{}, err
	}
	if !ok {
		now := time.Now().UTC()
		profile = domain.Profile{
			UID:       uid,
			Email:     email,
			Name:      name,
			Role:      domain.RoleEntrepreneur,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := a.store.SaveProfile(profile); err != nil {
			return domain.Profile{}, err
		}
	}
	if !domain.ValidRole(profile.Role) {
		return domain.Profile{}, Forbidden("invalid user role")
	}
	return profile, nil
}

// RegisterProfile lets a user set their display name and pick between the
// self-service roles. An existing admin keeps admin no matter what is sent;
// staff roles are only ever granted through the admin endpoint.
func (a *App) RegisterProfile(caller domain.Profile, name string, role domain.Role) (domain.Profile, error) {
	safeRole := domain.RoleEntrepreneur
	if role == domain.RoleEntrepreneur || role == domain.RoleMentor {
		safeRole = role
	}
	if caller.Role == domain.RoleAdmin {
		safeRole = domain.RoleAdmin
	}
	caller.Role = safeRole
	if strings.TrimSpace(name) != "" {
		caller.Name = strings.TrimSpace(name)
	}
	caller.UpdatedAt = time.Now().UTC()
	if err := a.store.SaveProfile(caller); err != nil {
		return domain.Profile{}, err
	}
	return caller, nil
}

// SetRole is the admin-only role mutation.
func (a *App) SetRole(uid string, role domain.Role) (domain.Profile, error) {
	if !domain.ValidRole(role) {
		return domain.Profile{}, Validationf("invalid role. Allowed: %s", joinRoles())
	}
	profile, ok, err := a.store.GetProfile(uid)
	if err != nil {
		return domain.Profile{}, err
	}
	if !ok {
		return domain.Profile{}, NotFound("user not found")
	}
	profile.Role = role
	profile.UpdatedAt = time.Now().UTC()
	if err := a.store.SaveProfile(profile); err != nil {
		return domain.Profile{}, err
	}
	return profile, nil
}

// ListProfiles returns every profile for the admin surface.
func (a *App) ListProfiles() ([]domain.Profile, error) {
	return a.store.ListProfiles()
}

func joinRoles() string {
	parts := make([]string, 0, len(domain.Roles))
	for _, r := range domain.Roles {
		parts = append(parts, string(r))
	}
	return strings.Join(parts, ", ")
}
