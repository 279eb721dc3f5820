package models

import "testing"

// TestUserIsAdmin verifies that IsAdmin returns true only for the admin role.
func TestUserIsAdmin(t *testing.T) {
	tests := []struct {
		name string
		role Role
		want bool
	}{
		{name: "admin role", role: RoleAdmin, want: true},
		{name: "editor role", role: RoleEditor, want: false},
		{name: "author role", role: RoleAuthor, want: false},
		{name: "viewer role", role: RoleViewer, want: false},
		{name: "empty role", role: Role(""), want: false},
		{name: "unknown role", role: Role("superadmin"), want: false},
		{name: "uppercase ADMIN", role: Role("ADMIN"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &User{Role: tt.role}
			if got := u.IsAdmin(); got != tt.want {
				t.Errorf("User{Role: %q}.IsAdmin() = %v, want %v", tt.role, got, tt.want)
			}
		})
	}
}

// TestUserCanManageContent verifies which roles may touch articles they
// do not own.
func TestUserCanManageContent(t *testing.T) {
	tests := []struct {
		role Role
		want bool
	}{
		{RoleAdmin, true},
		{RoleEditor, true},
		{RoleAuthor, false},
		{RoleViewer, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			u := &User{Role: tt.role}
			if got := u.CanManageContent(); got != tt.want {
				t.Errorf("CanManageContent() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestValidRole verifies role string validation.
func TestValidRole(t *testing.T) {
	for _, valid := range []string{"admin", "editor", "author", "viewer"} {
		if !ValidRole(valid) {
			t.Errorf("ValidRole(%q) = false, want true", valid)
		}
	}
	for _, invalid := range []string{"", "root", "Admin", "ADMIN", "owner"} {
		if ValidRole(invalid) {
			t.Errorf("ValidRole(%q) = true, want false", invalid)
		}
	}
}
