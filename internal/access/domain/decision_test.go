package domain

import "testing"

func rolePtr(r Role) *Role { return &r }

func TestResolveRules(t *testing.T) {
	admin := rolePtr(RoleAdmin)
	partner := rolePtr(RolePartner)

	cases := []struct {
		name string
		in   Input
		want Decision
	}{
		{
			name: "loading never redirects",
			in:   Input{Auth: AuthLoading, RequiredRole: admin},
			want: Decision{Kind: DecisionLoading, Rule: 1},
		},
		{
			name: "anonymous goes to required role login",
			in:   Input{Auth: AuthAnonymous, RequiredRole: admin},
			want: Decision{Kind: DecisionRedirect, Path: PathAdminLogin, Rule: 2},
		},
		{
			name: "anonymous defaults to partner login",
			in:   Input{Auth: AuthAnonymous},
			want: Decision{Kind: DecisionRedirect, Path: PathPartnerLogin, Rule: 2},
		},
		{
			name: "held role renders",
			in:   Input{Auth: AuthAuthenticated, Roles: []Role{RolePartner}, RequiredRole: partner},
			want: Decision{Kind: DecisionRender, Rule: 3},
		},
		{
			name: "empty roles requiring admin go to admin login",
			in:   Input{Auth: AuthAuthenticated, Roles: nil, RequiredRole: admin},
			want: Decision{Kind: DecisionRedirect, Path: PathAdminLogin, Rule: 4},
		},
		{
			name: "admin previewing partner renders",
			in:   Input{Auth: AuthAuthenticated, Roles: []Role{RoleAdmin}, RequiredRole: partner, PreviewMode: true},
			want: Decision{Kind: DecisionRender, Rule: 5},
		},
		{
			name: "admin without preview is sent to admin home",
			in:   Input{Auth: AuthAuthenticated, Roles: []Role{RoleAdmin}, RequiredRole: partner},
			want: Decision{Kind: DecisionRedirect, Path: PathAdminHome, Rule: 6},
		},
		{
			name: "partner on admin route goes to partner home",
			in:   Input{Auth: AuthAuthenticated, Roles: []Role{RolePartner}, RequiredRole: admin},
			want: Decision{Kind: DecisionRedirect, Path: PathPartnerHome, Rule: 6},
		},
		{
			name: "multi role without preference shows selector",
			in:   Input{Auth: AuthAuthenticated, Roles: []Role{RoleAdmin, RolePartner}},
			want: Decision{Kind: DecisionShowSelector, Path: PathSelectRole, Rule: 7},
		},
		{
			name: "multi role with held preference renders",
			in:   Input{Auth: AuthAuthenticated, Roles: []Role{RoleAdmin, RolePartner}, StoredPreference: partner},
			want: Decision{Kind: DecisionRender, Rule: 8},
		},
		{
			name: "single role without requirement renders",
			in:   Input{Auth: AuthAuthenticated, Roles: []Role{RoleAdmin}},
			want: Decision{Kind: DecisionRender, Rule: 8},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Resolve(tc.in)
			if got != tc.want {
				t.Fatalf("expected %+v, got %+v", tc.want, got)
			}
		})
	}
}

func TestResolveHeldRoleAlwaysRenders(t *testing.T) {
	roleSets := [][]Role{
		{RoleAdmin},
		{RolePartner},
		{RoleAdmin, RolePartner},
	}

	for _, roles := range roleSets {
		for _, required := range roles {
			for _, preview := range []bool{false, true} {
				got := Resolve(Input{Auth: AuthAuthenticated, Roles: roles, RequiredRole: rolePtr(required), PreviewMode: preview})
				if got.Kind != DecisionRender {
					t.Fatalf("roles %v required %s: expected render, got %+v", roles, required, got)
				}
			}
		}
	}
}

func TestResolveEmptyRolesRedirectToRequiredLogin(t *testing.T) {
	for _, required := range AllRoles() {
		got := Resolve(Input{Auth: AuthAuthenticated, RequiredRole: rolePtr(required), PreviewMode: true})
		want := LoginPath(rolePtr(required))
		if got.Kind != DecisionRedirect || got.Path != want {
			t.Fatalf("required %s: expected redirect to %s, got %+v", required, want, got)
		}
	}
}

func TestResolveActiveRole(t *testing.T) {
	cases := []struct {
		name   string
		roles  []Role
		stored *Role
		want   *Role
	}{
		{"no roles default to partner", nil, nil, rolePtr(RolePartner)},
		{"single role wins over preference", []Role{RoleAdmin}, rolePtr(RolePartner), rolePtr(RoleAdmin)},
		{"multi role uses held preference", []Role{RoleAdmin, RolePartner}, rolePtr(RolePartner), rolePtr(RolePartner)},
		{"multi role without preference is unresolved", []Role{RoleAdmin, RolePartner}, nil, nil},
		{"multi role ignores unheld preference", []Role{RoleAdmin, RolePartner}, rolePtr(Role("auditor")), nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ResolveActiveRole(tc.roles, tc.stored)
			switch {
			case tc.want == nil && got != nil:
				t.Fatalf("expected nil, got %s", *got)
			case tc.want != nil && (got == nil || *got != *tc.want):
				t.Fatalf("expected %s, got %v", *tc.want, got)
			}
		})
	}
}

func TestParseRolesFiltersAndOrders(t *testing.T) {
	got := ParseRoles([]string{"partner", "unknown", "admin", "partner"})
	if len(got) != 2 || got[0] != RoleAdmin || got[1] != RolePartner {
		t.Fatalf("expected [admin partner], got %v", got)
	}
}
