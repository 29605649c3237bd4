// Package htmx speaks the HTMX request/response header protocol.
package htmx

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Request headers.
const (
	HeaderRequest    = "HX-Request"
	HeaderBoosted    = "HX-Boosted"
	HeaderCurrentURL = "HX-Current-URL"
	HeaderTarget     = "HX-Target"
)

// Response headers.
const (
	HeaderRedirect = "HX-Redirect"
	HeaderRefresh  = "HX-Refresh"
	HeaderTrigger  = "HX-Trigger"
	HeaderReswap   = "HX-Reswap"
	HeaderRetarget = "HX-Retarget"
)

// IsHTMX reports whether the request was issued by HTMX.
func IsHTMX(r *http.Request) bool {
	return r.Header.Get(HeaderRequest) == "true"
}

// IsBoosted reports whether the request comes from an hx-boost link or
// form. Boosted requests follow ordinary redirects.
func IsBoosted(r *http.Request) bool {
	return r.Header.Get(HeaderBoosted) == "true"
}

// IsPartial reports whether the response replaces a fragment rather than
// the whole page.
func IsPartial(r *http.Request) bool {
	return IsHTMX(r) && !IsBoosted(r)
}

// Redirect sends the client to url. Fragment requests get HX-Redirect with
// 200 because XHR follows 3xx transparently; everything else gets a real
// redirect with status.
func Redirect(w http.ResponseWriter, r *http.Request, url string, status int) {
	if IsPartial(r) {
		w.Header().Set(HeaderRedirect, url)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, url, status)
}

// Refresh asks the client to reload the page.
func Refresh(w http.ResponseWriter) {
	w.Header().Set(HeaderRefresh, "true")
}

// Trigger fires client-side events. Events with a detail payload are sent in
// the JSON form, bare names as a comma separated list.
func Trigger(w http.ResponseWriter, events map[string]any) error {
	names := make([]string, 0, len(events))
	detailed := false
	for name, detail := range events {
		names = append(names, name)
		if detail != nil {
			detailed = true
		}
	}
	if len(names) == 0 {
		return nil
	}
	if !detailed {
		w.Header().Set(HeaderTrigger, strings.Join(names, ", "))
		return nil
	}
	b, err := json.Marshal(events)
	if err != nil {
		return err
	}
	w.Header().Set(HeaderTrigger, string(b))
	return nil
}
