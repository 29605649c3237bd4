package health

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Live always answers OK while the process serves requests.
func (c *Checker) Live(w http.ResponseWriter, r *http.Request) {
	write(w, r, Report{Status: StatusHealthy})
}

// Ready answers 200 when every check passes and 503 otherwise.
func (c *Checker) Ready(w http.ResponseWriter, r *http.Request) {
	write(w, r, c.Run(r.Context()))
}

func write(w http.ResponseWriter, r *http.Request, rep Report) {
	status := http.StatusOK
	if !rep.Healthy() {
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Cache-Control", "no-store")
	if r.URL.Query().Get("format") == "json" || strings.Contains(r.Header.Get("Accept"), "application/json") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(rep)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	if rep.Healthy() {
		_, _ = w.Write([]byte("OK"))
	} else {
		_, _ = w.Write([]byte("Service Unavailable"))
	}
}
