package domain

// Route paths the guard can send a user to.
const (
	PathHome         = "/"
	PathSelectRole   = "/select-role"
	PathAdminHome    = "/admin"
	PathAdminLogin   = "/admin/login"
	PathPartnerHome  = "/partner"
	PathPartnerLogin = "/partner/login"
)

// AuthState is the session state as seen by the guard.
type AuthState string

const (
	AuthLoading       AuthState = "loading"
	AuthAnonymous     AuthState = "anonymous"
	AuthAuthenticated AuthState = "authenticated"
)

// DecisionKind tags a routing decision.
type DecisionKind string

const (
	DecisionLoading      DecisionKind = "loading"
	DecisionRender       DecisionKind = "render"
	DecisionRedirect     DecisionKind = "redirect"
	DecisionShowSelector DecisionKind = "show_selector"
)

// Decision is the guard result. Path is set for redirects and the selector.
type Decision struct {
	Kind DecisionKind
	Path string
	// Rule is the 1-based rule that matched, for logs and debugging.
	Rule int
}

// Input is everything the guard looks at.
type Input struct {
	Auth             AuthState
	Roles            []Role
	StoredPreference *Role
	RequiredRole     *Role
	PreviewMode      bool
}

// LoginPath returns the login page for role. Partner login is the default.
func LoginPath(role *Role) string {
	if role != nil && *role == RoleAdmin {
		return PathAdminLogin
	}
	return PathPartnerLogin
}

// HomePath returns the dashboard root for role.
func HomePath(role Role) string {
	if role == RoleAdmin {
		return PathAdminHome
	}
	return PathPartnerHome
}

// Resolve evaluates the routing rules in order; the first match wins.
func Resolve(in Input) Decision {
	// 1. Never redirect while the session is rehydrating.
	if in.Auth == AuthLoading {
		return Decision{Kind: DecisionLoading, Rule: 1}
	}

	// 2.
	if in.Auth != AuthAuthenticated {
		return redirect(LoginPath(in.RequiredRole), 2)
	}

	if in.RequiredRole != nil {
		required := *in.RequiredRole

		// 3.
		if HasRole(in.Roles, required) {
			return Decision{Kind: DecisionRender, Rule: 3}
		}
		// 4. New user without any role.
		if len(in.Roles) == 0 {
			return redirect(LoginPath(in.RequiredRole), 4)
		}
		// 5. Admin previewing the partner surface.
		if required == RolePartner && HasRole(in.Roles, RoleAdmin) && in.PreviewMode {
			return Decision{Kind: DecisionRender, Rule: 5}
		}
		// 6.
		if home, ok := PreferredHome(in.Roles); ok {
			return redirect(HomePath(home), 6)
		}
		return redirect(PathHome, 6)
	}

	// 7.
	if len(in.Roles) >= 2 && ResolveActiveRole(in.Roles, in.StoredPreference) == nil {
		return Decision{Kind: DecisionShowSelector, Path: PathSelectRole, Rule: 7}
	}

	// 8.
	return Decision{Kind: DecisionRender, Rule: 8}
}

func redirect(path string, rule int) Decision {
	return Decision{Kind: DecisionRedirect, Path: path, Rule: rule}
}
