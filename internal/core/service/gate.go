package service

import "github.com/gympulse/gateway/internal/core/domain"

// HomeFor maps a role to its landing route. Unknown roles land on the client
// home.
func HomeFor(role domain.Role) string {
	switch role {
	case domain.RoleSuperAdmin:
		return domain.PathAdminHome
	case domain.RolePT:
		return domain.PathPTHome
	case domain.RoleClient:
		return domain.PathClientHome
	default:
		return domain.PathClientHome
	}
}

// Decide is the authorization gate. It is pure: the same state and rule
// always produce the same decision.
func Decide(state domain.SessionState, rule domain.RouteRule) domain.Decision {
	switch rule.Access {
	case domain.AccessPublic:
		return domain.Decision{Outcome: domain.OutcomeAllow}
	case domain.AccessGuestOnly:
		return decideGuestOnly(state)
	default:
		return decideProtected(state, rule)
	}
}

func decideProtected(state domain.SessionState, rule domain.RouteRule) domain.Decision {
	switch state.Status {
	case domain.StatusLoading:
		return domain.Decision{Outcome: domain.OutcomeWait}
	case domain.StatusAuthenticated:
		if !state.IsAuthenticated() {
			return domain.Decision{Outcome: domain.OutcomeRedirectLogin, Target: domain.PathLogin}
		}
		role := state.Identity.Role
		if role == domain.RoleSuperAdmin || rule.Allows(role) {
			return domain.Decision{Outcome: domain.OutcomeAllow}
		}
		return domain.Decision{Outcome: domain.OutcomeRedirectHome, Target: HomeFor(role)}
	default:
		return domain.Decision{Outcome: domain.OutcomeRedirectLogin, Target: domain.PathLogin}
	}
}

func decideGuestOnly(state domain.SessionState) domain.Decision {
	switch state.Status {
	case domain.StatusLoading:
		return domain.Decision{Outcome: domain.OutcomeWait}
	case domain.StatusAuthenticated:
		return domain.Decision{Outcome: domain.OutcomeRedirectHome, Target: HomeFor(state.Role())}
	default:
		return domain.Decision{Outcome: domain.OutcomeAllow}
	}
}
