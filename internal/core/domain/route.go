package domain

// Access classifies how a route relates to authentication.
type Access uint8

const (
	// AccessProtected routes need an authenticated identity whose role is in
	// AllowedRoles. super_admin satisfies every protected rule.
	AccessProtected Access = iota
	// AccessGuestOnly routes (login, register) are only shown to
	// unauthenticated sessions.
	AccessGuestOnly
	// AccessPublic routes are shown to everyone.
	AccessPublic
)

// Canonical paths.
const (
	PathLanding     = "/"
	PathLogin       = "/login"
	PathRegister    = "/register"
	PathAdminHome   = "/admin"
	PathPTHome      = "/pt/dashboard"
	PathClientHome  = "/dashboard"
	PathAuthSuccess = "/auth/success"
)

// RouteRule is a statically configured authorization rule for one route.
type RouteRule struct {
	Path         string
	Page         string
	Access       Access
	AllowedRoles []Role
}

// Allows reports whether role is listed in the rule. It does not apply the
// super_admin bypass; that belongs to the gate.
func (r RouteRule) Allows(role Role) bool {
	for _, allowed := range r.AllowedRoles {
		if allowed == role {
			return true
		}
	}
	return false
}

// Outcome is the gate's verdict for one navigation.
type Outcome uint8

const (
	// OutcomeWait means the session is still resolving: render nothing and
	// do not redirect.
	OutcomeWait Outcome = iota
	OutcomeAllow
	OutcomeRedirectLogin
	OutcomeRedirectHome
)

func (o Outcome) String() string {
	switch o {
	case OutcomeWait:
		return "wait"
	case OutcomeAllow:
		return "allow"
	case OutcomeRedirectLogin:
		return "redirect_login"
	case OutcomeRedirectHome:
		return "redirect_home"
	default:
		return "invalid"
	}
}

// Decision pairs an outcome with its redirect target, if any.
type Decision struct {
	Outcome Outcome
	Target  string
}

func protected(path, page string, roles ...Role) RouteRule {
	return RouteRule{Path: path, Page: page, Access: AccessProtected, AllowedRoles: roles}
}

// Routes returns the application's route table. Paths use echo's ":param"
// syntax.
func Routes() []RouteRule {
	return []RouteRule{
		{Path: PathLanding, Page: "landing", Access: AccessPublic},
		{Path: PathLogin, Page: "login", Access: AccessGuestOnly},
		{Path: PathRegister, Page: "register", Access: AccessGuestOnly},

		protected("/exercises", "exercise_library", RolePT, RoleClient, RoleSuperAdmin),

		protected(PathPTHome, "pt_dashboard", RolePT),
		protected("/pt/clients", "pt_dashboard", RolePT),
		protected("/pt/workouts", "pt_dashboard", RolePT, RoleSuperAdmin),
		protected("/pt/workouts/new", "workout_builder", RolePT, RoleSuperAdmin),
		protected("/pt/workouts/:id/edit", "workout_builder", RolePT, RoleSuperAdmin),

		protected(PathClientHome, "client_dashboard", RoleClient),
		protected("/workouts", "client_dashboard", RoleClient),
		protected("/workouts/:scheduledId/start", "active_workout", RoleClient),
		protected("/progress", "progress_tracking", RoleClient, RolePT),
		protected("/measurements", "progress_tracking", RoleClient),

		protected(PathAdminHome, "admin_dashboard", RoleSuperAdmin),
		protected("/admin/trainers", "admin_dashboard", RoleSuperAdmin),
		protected("/admin/clients", "admin_dashboard", RoleSuperAdmin),
		protected("/admin/exercises", "admin_dashboard", RoleSuperAdmin),
		protected("/admin/settings", "admin_dashboard", RoleSuperAdmin),
	}
}

// NavItem is one entry of the role-specific sidebar.
type NavItem struct {
	Path  string `json:"path"`
	Icon  string `json:"icon"`
	Label string `json:"label"`
}

// NavItems returns the sidebar for role. Unknown roles get no items.
func NavItems(role Role) []NavItem {
	switch role {
	case RolePT:
		return []NavItem{
			{Path: PathPTHome, Icon: "📊", Label: "Dashboard"},
			{Path: "/pt/clients", Icon: "👥", Label: "My Clients"},
			{Path: "/pt/workouts", Icon: "🏋️", Label: "Workouts"},
			{Path: "/exercises", Icon: "💪", Label: "Exercise Library"},
		}
	case RoleClient:
		return []NavItem{
			{Path: PathClientHome, Icon: "📊", Label: "Dashboard"},
			{Path: "/workouts", Icon: "🏋️", Label: "My Workouts"},
			{Path: "/progress", Icon: "📈", Label: "Progress"},
			{Path: "/measurements", Icon: "📏", Label: "Measurements"},
		}
	case RoleSuperAdmin:
		return []NavItem{
			{Path: PathAdminHome, Icon: "📊", Label: "Dashboard"},
			{Path: "/admin/trainers", Icon: "🏋️", Label: "Personal Trainers"},
			{Path: "/admin/clients", Icon: "👥", Label: "Clients"},
			{Path: "/exercises", Icon: "💪", Label: "Exercises"},
			{Path: "/admin/settings", Icon: "⚙️", Label: "Settings"},
		}
	default:
		return nil
	}
}
