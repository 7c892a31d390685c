package domain

import (
	"encoding/json"
	"testing"
)

func TestParseRole(t *testing.T) {
	cases := map[string]Role{
		"client":      RoleClient,
		"pt":          RolePT,
		"super_admin": RoleSuperAdmin,
		" PT ":        RolePT,
		"Super_Admin": RoleSuperAdmin,
		"admin":       RoleUnknown,
		"":            RoleUnknown,
		"trainer":     RoleUnknown,
	}
	for in, want := range cases {
		if got := ParseRole(in); got != want {
			t.Fatalf("ParseRole(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRole_StringRoundTrip(t *testing.T) {
	for _, r := range AllRoles() {
		if !r.IsValid() {
			t.Fatalf("%v should be valid", r)
		}
		if ParseRole(r.String()) != r {
			t.Fatalf("%v does not round trip", r)
		}
	}
	if RoleUnknown.IsValid() || RoleUnknown.String() != "unknown" {
		t.Fatalf("unexpected unknown role behaviour")
	}
}

func TestIdentity_DecodesNumericAndStringIDs(t *testing.T) {
	var a, b, c Identity
	if err := json.Unmarshal([]byte(`{"id":1,"firstName":"Pat","lastName":"T","role":"pt"}`), &a); err != nil {
		t.Fatalf("numeric id: %v", err)
	}
	if a.ID != "1" || a.Role != RolePT || a.FullName() != "Pat T" {
		t.Fatalf("unexpected identity %+v", a)
	}
	if err := json.Unmarshal([]byte(`{"id":"665f0c","role":"wizard"}`), &b); err != nil {
		t.Fatalf("string id: %v", err)
	}
	if b.ID != "665f0c" || b.Role != RoleUnknown {
		t.Fatalf("unexpected identity %+v", b)
	}
	if err := json.Unmarshal([]byte(`{"id":null,"role":"client"}`), &c); err != nil {
		t.Fatalf("null id: %v", err)
	}
	if c.ID != "" || c.Role != RoleClient {
		t.Fatalf("unexpected identity %+v", c)
	}
	if err := json.Unmarshal([]byte(`{"id":{}}`), &c); err == nil {
		t.Fatalf("expected error for object id")
	}
}

func TestIdentity_EncodesRoleByName(t *testing.T) {
	out, err := json.Marshal(Identity{ID: "7", Role: RoleSuperAdmin})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	_ = json.Unmarshal(out, &m)
	if m["role"] != "super_admin" || m["id"] != "7" {
		t.Fatalf("unexpected encoding %s", out)
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(NewAuthError(OpLogin, 401, "Invalid credentials", ErrRejected), OpLogin); got != "Invalid credentials" {
		t.Fatalf("got %q", got)
	}
	if got := UserMessage(NewAuthError(OpRegister, 0, "dial tcp: refused", ErrTransport), OpRegister); got != "Registration failed" {
		t.Fatalf("transport errors must use the generic message, got %q", got)
	}
	if got := UserMessage(NewAuthError(OpLogin, 500, "", nil), OpLogin); got != "Login failed" {
		t.Fatalf("got %q", got)
	}
	if got := UserMessage(ErrSessionNotFound, "other"); got != "Request failed" {
		t.Fatalf("got %q", got)
	}
	if UserMessage(nil, OpLogin) != "" {
		t.Fatalf("nil error should give empty message")
	}
}

func TestSessionState_Authenticated_Copies(t *testing.T) {
	id := Identity{ID: "1", Role: RoleClient}
	s := Authenticated(id)
	id.Role = RoleSuperAdmin
	if s.Role() != RoleClient {
		t.Fatalf("snapshot was mutated")
	}
	if Unauthenticated().Role() != RoleUnknown {
		t.Fatalf("unauthenticated role should be unknown")
	}
}

func TestNavItems(t *testing.T) {
	if len(NavItems(RoleUnknown)) != 0 {
		t.Fatalf("unknown role should get no nav items")
	}
	for _, role := range AllRoles() {
		items := NavItems(role)
		if len(items) == 0 {
			t.Fatalf("%v has no nav items", role)
		}
		for _, item := range items {
			found := false
			for _, r := range Routes() {
				if r.Path == item.Path {
					found = true
					if r.Access == AccessProtected && role != RoleSuperAdmin && !r.Allows(role) {
						t.Fatalf("%v nav item %s is not reachable", role, item.Path)
					}
				}
			}
			if !found {
				t.Fatalf("nav item %s has no route", item.Path)
			}
		}
	}
}
