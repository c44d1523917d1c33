package viewdata_test

import (
	"net/http/httptest"
	"testing"

	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/viewdata"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/testutil"
)

func TestNewBaseVM_Anonymous(t *testing.T) {
	req := httptest.NewRequest("GET", "/listings", nil)

	vm := viewdata.NewBaseVM(req, "All complaints", "/")

	if vm.IsLoggedIn || vm.IsAdmin {
		t.Errorf("anonymous request reported signed in: %+v", vm)
	}
	if vm.Role != "visitor" {
		t.Errorf("Role = %q, want visitor", vm.Role)
	}
	if vm.Title != "All complaints" || vm.SiteName != viewdata.SiteName {
		t.Errorf("unexpected title fields: %+v", vm)
	}
	if len(vm.Flashes) != 0 {
		t.Errorf("Flashes = %+v", vm.Flashes)
	}
	if vm.UserID != "" {
		t.Errorf("UserID = %q", vm.UserID)
	}
}

func TestNewBaseVM_Admin(t *testing.T) {
	req := httptest.NewRequest("GET", "/admin/dashboard", nil)
	req = testutil.WithUser(req, testutil.AdminUser())

	vm := viewdata.NewBaseVM(req, "Admin", "/")

	if !vm.IsLoggedIn || !vm.IsAdmin {
		t.Errorf("admin not recognised: %+v", vm)
	}
	if vm.UserID == "" || vm.UserName == "" {
		t.Errorf("user fields missing: %+v", vm)
	}
}

func TestNewBaseVM_Citizen(t *testing.T) {
	req := httptest.NewRequest("GET", "/user/dashboard", nil)
	req = testutil.WithUser(req, testutil.CitizenUser())

	vm := viewdata.NewBaseVM(req, "My complaints", "/")

	if !vm.IsLoggedIn || vm.IsAdmin {
		t.Errorf("citizen flags wrong: %+v", vm)
	}
	if vm.Role != "user" {
		t.Errorf("Role = %q", vm.Role)
	}
}
