package httpserver

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

var standardMethods = []string{
	http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut, http.MethodPatch,
	http.MethodDelete, http.MethodConnect, http.MethodOptions, http.MethodTrace,
}

// anyMethodCORS applies base to every method. go-chi/cors only matches
// AllowedMethods against a fixed list, so each request is checked against a
// policy that allows exactly the method it uses or asks for in a preflight.
func anyMethodCORS(base cors.Options) func(http.Handler) http.Handler {
	forMethod := func(method string) *cors.Cors {
		opts := base
		opts.AllowedMethods = []string{method}
		return cors.New(opts)
	}
	known := make(map[string]*cors.Cors, len(standardMethods))
	for _, m := range standardMethods {
		known[m] = forMethod(m)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			method := r.Method
			if r.Method == http.MethodOptions {
				if requested := r.Header.Get("Access-Control-Request-Method"); requested != "" {
					method = strings.ToUpper(requested)
				}
			}
			c, ok := known[method]
			if !ok {
				c = forMethod(method)
			}
			c.Handler(next).ServeHTTP(w, r)
		})
	}
}
