package session

import (
	"reflect"
	"testing"

	"github.com/nihalmohammedm/n8n/internal/api"
)

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func TestAddUsersIdempotent(t *testing.T) {
	store := NewStore(Deps{})
	resp := api.UserResponse{
		ID:         "1",
		Email:      strPtr("a@x.com"),
		FirstName:  strPtr("Ada"),
		LastName:   strPtr("Lovelace"),
		GlobalRole: &api.Role{Name: RoleMember},
		Settings:   map[string]any{"userActivated": true},
		MFAEnabled: boolPtr(true),
	}

	store.AddUsers([]api.UserResponse{resp})
	first, ok := store.UserByID("1")
	if !ok {
		t.Fatalf("expected user 1 after first merge")
	}

	store.AddUsers([]api.UserResponse{resp})
	second, ok := store.UserByID("1")
	if !ok {
		t.Fatalf("expected user 1 after second merge")
	}

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("merge not idempotent:\nfirst:  %#v\nsecond: %#v", first, second)
	}
}

func TestAddUsersPartialUpdatePreservesFields(t *testing.T) {
	store := NewStore(Deps{})
	store.AddUsers([]api.UserResponse{{
		ID:         "1",
		Email:      strPtr("a@x.com"),
		FirstName:  strPtr("Ada"),
		LastName:   strPtr("Lovelace"),
		GlobalRole: &api.Role{Name: RoleOwner},
	}})

	store.AddUsers([]api.UserResponse{{
		ID:       "1",
		Settings: map[string]any{"userActivated": true},
	}})

	user, _ := store.UserByID("1")
	if user.Email != "a@x.com" {
		t.Fatalf("email lost on partial merge: %q", user.Email)
	}
	if user.FirstName != "Ada" || user.LastName != "Lovelace" {
		t.Fatalf("name lost on partial merge: %q %q", user.FirstName, user.LastName)
	}
	if user.Role == nil || user.Role.Name != RoleOwner {
		t.Fatalf("role lost on partial merge: %#v", user.Role)
	}
	if activated, _ := user.Settings["userActivated"].(bool); !activated {
		t.Fatalf("settings not applied: %#v", user.Settings)
	}
}

func TestDerivedFields(t *testing.T) {
	tests := []struct {
		name          string
		resp          api.UserResponse
		isDefaultUser bool
		isOwner       bool
	}{
		{
			name:          "pending owner is default user",
			resp:          api.UserResponse{ID: "1", IsPending: boolPtr(true), GlobalRole: &api.Role{Name: "owner"}},
			isDefaultUser: true,
			isOwner:       true,
		},
		{
			name:          "active owner is not default user",
			resp:          api.UserResponse{ID: "1", IsPending: boolPtr(false), GlobalRole: &api.Role{Name: "owner"}},
			isDefaultUser: false,
			isOwner:       true,
		},
		{
			name:          "no role",
			resp:          api.UserResponse{ID: "1", IsPending: boolPtr(true)},
			isDefaultUser: false,
			isOwner:       false,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := NewStore(Deps{})
			store.AddUsers([]api.UserResponse{tc.resp})
			user, _ := store.UserByID("1")
			if user.IsDefaultUser != tc.isDefaultUser {
				t.Fatalf("IsDefaultUser = %t, want %t", user.IsDefaultUser, tc.isDefaultUser)
			}
			if user.IsOwner != tc.isOwner {
				t.Fatalf("IsOwner = %t, want %t", user.IsOwner, tc.isOwner)
			}
		})
	}
}

func TestFullNameRequiresFirstName(t *testing.T) {
	store := NewStore(Deps{})
	store.AddUsers([]api.UserResponse{{ID: "1", LastName: strPtr("Lovelace")}})
	user, _ := store.UserByID("1")
	if user.FullName != "" {
		t.Fatalf("FullName = %q, want empty without first name", user.FullName)
	}

	store.AddUsers([]api.UserResponse{{ID: "1", FirstName: strPtr("Ada")}})
	user, _ = store.UserByID("1")
	if user.FullName != "Ada Lovelace" {
		t.Fatalf("FullName = %q, want %q", user.FullName, "Ada Lovelace")
	}
}

func TestFullNameKeepsSeparatorWithoutLastName(t *testing.T) {
	store := NewStore(Deps{})
	store.AddUsers([]api.UserResponse{{
		ID:         "1",
		FirstName:  strPtr("A"),
		IsPending:  boolPtr(true),
		GlobalRole: &api.Role{Name: "owner"},
	}})

	user, _ := store.UserByID("1")
	if !user.IsDefaultUser {
		t.Fatalf("expected IsDefaultUser=true")
	}
	if user.FullName != "A " {
		t.Fatalf("FullName = %q, want %q", user.FullName, "A ")
	}
}

func TestDeleteUserByID(t *testing.T) {
	store := NewStore(Deps{})
	store.AddUsers([]api.UserResponse{{ID: "1"}, {ID: "2", Email: strPtr("b@x.com")}})

	store.DeleteUserByID("1")
	if _, ok := store.UserByID("1"); ok {
		t.Fatalf("user 1 still present after delete")
	}
	other, ok := store.UserByID("2")
	if !ok || other.Email != "b@x.com" {
		t.Fatalf("unrelated user mutated by delete: %#v", other)
	}

	// Absent ids are a no-op.
	store.DeleteUserByID("missing")
}

func TestDeleteCurrentUserLeavesDanglingPointer(t *testing.T) {
	store := NewStore(Deps{})
	store.setCurrentUser(api.UserResponse{ID: "1", GlobalRole: &api.Role{Name: RoleOwner}})

	store.DeleteUserByID("1")
	if store.CurrentUserID() != "1" {
		t.Fatalf("currentUserID reconciled, want dangling pointer")
	}
	if _, ok := store.CurrentUser(); ok {
		t.Fatalf("CurrentUser resolved a deleted record")
	}
	if store.CurrentRoleName() != RoleDefault {
		t.Fatalf("CurrentRoleName = %q, want sentinel %q", store.CurrentRoleName(), RoleDefault)
	}
}

func TestDerivedGettersWithoutCurrentUser(t *testing.T) {
	store := NewStore(Deps{})
	if store.MFAEnabled() {
		t.Fatalf("MFAEnabled true without current user")
	}
	if store.UserActivated() {
		t.Fatalf("UserActivated true without current user")
	}
	if store.IsInstanceOwner() {
		t.Fatalf("IsInstanceOwner true without current user")
	}
	if store.CurrentRoleName() != RoleDefault {
		t.Fatalf("CurrentRoleName = %q, want %q", store.CurrentRoleName(), RoleDefault)
	}
	if got := store.PersonalizedNodeTypes(); len(got) != 0 {
		t.Fatalf("PersonalizedNodeTypes = %v, want empty", got)
	}
}

func TestMFAEnabledDefaultsFalseWhenAbsent(t *testing.T) {
	store := NewStore(Deps{})
	store.setCurrentUser(api.UserResponse{ID: "1"})
	if store.MFAEnabled() {
		t.Fatalf("MFAEnabled true for user without the flag")
	}
}
