package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Recovery turns a panicking handler into a 500 response. A unit of work
// open at the time of the panic is rolled back by its deferred Rollback
// before the panic reaches this point.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			err, ok := rec.(error)
			if !ok {
				err = fmt.Errorf("%v", rec)
			}
			zerolog.Ctx(r.Context()).Error().
				Err(err).
				Str("request_id", chimiddleware.GetReqID(r.Context())).
				Str("route", r.Method+" "+r.URL.Path).
				Bytes("stack", debug.Stack()).
				Msg("handler panicked")

			writeJSONError(w, http.StatusInternalServerError, "internal server error")
		}()

		next.ServeHTTP(w, r)
	})
}
