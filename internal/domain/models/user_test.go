package models_test

import (
	"testing"

	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/domain/models"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in     string
		want   models.Role
		wantOK bool
	}{
		{"admin", models.RoleAdmin, true},
		{"ADMIN", models.RoleAdmin, true},
		{" user ", models.RoleUser, true},
		{"", models.RoleUser, false},
		{"superadmin", models.RoleUser, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := models.ParseRole(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseRole(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestRoleCapabilities(t *testing.T) {
	if !models.RoleAdmin.IsAdmin() || !models.RoleAdmin.CanManageTracking() || !models.RoleAdmin.CanDeleteAny() {
		t.Error("admin should carry all admin capabilities")
	}
	if models.RoleUser.IsAdmin() || models.RoleUser.CanManageTracking() || models.RoleUser.CanDeleteAny() {
		t.Error("user should carry no admin capabilities")
	}
}
