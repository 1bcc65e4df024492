package chi

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

var (
	allowedMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	allowedHeaders = []string{"Content-Type"}
)

// CORS opens every route to any origin. Browser requests are negotiated by
// go-chi/cors and preflights pass through to the route's OPTIONS handler.
// The allow headers are written on every response, Origin header or not.
func CORS(next http.Handler) http.Handler {
	negotiate := cors.Handler(cors.Options{
		AllowedOrigins:     []string{"*"},
		AllowedMethods:     allowedMethods,
		AllowedHeaders:     allowedHeaders,
		OptionsPassthrough: true,
	})
	return negotiate(openHeaders(next))
}

func openHeaders(next http.Handler) http.Handler {
	methods := strings.Join(allowedMethods, ", ")
	headers := strings.Join(allowedHeaders, ", ")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", methods)
		h.Set("Access-Control-Allow-Headers", headers)
		next.ServeHTTP(w, r)
	})
}

// Preflight answers OPTIONS with 200 and an empty body.
func Preflight(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}
