package middleware

import (
	"log"
	"net/http"
	"runtime/debug"

	"github.com/algorhythmicdev/reclame-OMS-sub000/pkg/utils"
)

// PanicRecovery turns a panic anywhere below into a 500 response, so one
// malformed order document cannot take the whole server down.
func PanicRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("[Recovery] panic on %s %s: %v\n%s", r.Method, r.URL.Path, rec, debug.Stack())
				utils.Error(w, http.StatusInternalServerError, "Internal server error")
			}
		}()

		next.ServeHTTP(w, r)
	})
}
