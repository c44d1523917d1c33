// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"net/http"

	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/auth"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/system/authz"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/gorilla/csrf"
)

// SiteName is shown in the page title and header.
const SiteName = "NagarSeva"

// BaseVM contains common fields for all view models.
// Embed this struct in your feature-specific view models.
//
// Usage:
//
//	type myPageData struct {
//	    viewdata.BaseVM
//	    // page-specific fields...
//	}
//
//	data := myPageData{
//	    BaseVM: viewdata.NewBaseVM(r, "Page Title", "/default-back"),
//	}
type BaseVM struct {
	SiteName string

	// User context (from auth middleware)
	IsLoggedIn bool
	IsAdmin    bool
	Role       string
	UserName   string
	UserID     string

	// Page context
	Title       string
	BackURL     string
	CurrentPath string

	// CSRF protection
	CSRFToken string
	CSRFField string // name of the hidden form field carrying CSRFToken

	// Flashes are one-shot notices shown above the page body.
	Flashes []auth.Flash
}

// CSRFFieldName is the form field gorilla/csrf reads the token from.
const CSRFFieldName = "gorilla.csrf.Token"

// NewBaseVM creates a populated BaseVM for a page.
//
// Parameters:
//   - r: the HTTP request
//   - title: the page title
//   - backDefault: default URL for the back button if none in request
func NewBaseVM(r *http.Request, title, backDefault string) BaseVM {
	role, name, uid, signedIn := authz.UserCtx(r)

	vm := BaseVM{
		SiteName:    SiteName,
		IsLoggedIn:  signedIn,
		IsAdmin:     signedIn && authz.IsAdmin(r),
		Role:        role,
		UserName:    name,
		Title:       title,
		BackURL:     httpnav.ResolveBackURL(r, backDefault),
		CurrentPath: httpnav.CurrentPath(r),
		CSRFToken:   csrf.Token(r),
		CSRFField:   CSRFFieldName,
	}
	if signedIn {
		vm.UserID = uid.Hex()
	}
	vm.Flashes = auth.Flashes(r)
	return vm
}
