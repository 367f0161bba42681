// Package access decides where an authenticated user lands after login.
//
// PostLoginDestination is the single source of truth for post-auth routing:
// login, email verification and the guard middleware all consult it, so a
// half-onboarded account is steered to the same place no matter which door
// it came through.
package access

import "github.com/plateup-dev/plateup/internal/models"

// Canonical destinations by role.
const (
	PathCustomerApp        = "/app"
	PathCustomerOnboarding = "/onboarding/customer"

	PathRestaurantApp        = "/restaurant"
	PathRestaurantOnboarding = "/onboarding/restaurant"

	PathDriverApp        = "/driver"
	PathDriverOnboarding = "/onboarding/driver"

	PathRoot = "/"
)

// PostLoginDestination maps (role, status) to the path the user should be
// redirected to after authenticating. Total over all inputs; unknown roles
// fall back to the landing page.
func PostLoginDestination(role models.Role, status models.AccountStatus) string {
	switch role {
	case models.RoleCustomer:
		if status == models.StatusProfileCompleted {
			return PathCustomerApp
		}
		return PathCustomerOnboarding

	case models.RoleRestaurant:
		switch status {
		case models.StatusProfileCompleted, models.StatusPendingApproval, models.StatusApproved:
			return PathRestaurantApp
		}
		return PathRestaurantOnboarding

	case models.RoleDriver:
		if status == models.StatusApproved {
			return PathDriverApp
		}
		return PathDriverOnboarding
	}

	return PathRoot
}
