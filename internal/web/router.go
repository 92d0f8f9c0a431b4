package web

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/and161185/policydesk/internal/guard"
	"github.com/and161185/policydesk/internal/metrics"
)

// Routes builds the portal handler. Everything except login, registration and the
// operational endpoints sits behind the route guard.
func (s *Server) Routes() http.Handler {
	r := mux.NewRouter()
	r.Use(LoadSession(s.sessions))

	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", healthz).Methods(http.MethodGet)

	r.HandleFunc(guard.LoginPath, s.loginForm).Methods(http.MethodGet)
	r.HandleFunc(guard.LoginPath, s.login).Methods(http.MethodPost)
	r.HandleFunc("/register", s.registerForm).Methods(http.MethodGet)
	r.HandleFunc("/register", s.register).Methods(http.MethodPost)
	r.HandleFunc("/logout", s.logout).Methods(http.MethodPost)

	app := r.NewRoute().Subrouter()
	app.Use(guard.Middleware(readerFor))

	app.HandleFunc("/", s.home).Methods(http.MethodGet)
	app.HandleFunc("/dashboard", s.dashboard).Methods(http.MethodGet)
	app.HandleFunc("/profile", s.updateProfile).Methods(http.MethodPost)
	app.HandleFunc("/products", s.products).Methods(http.MethodGet)
	app.HandleFunc("/products", s.submitProduct).Methods(http.MethodPost)
	app.HandleFunc("/products/{id:[0-9]+}/buy", s.buy).Methods(http.MethodPost)
	app.HandleFunc("/my-policies", s.policies).Methods(http.MethodGet)
	app.HandleFunc("/my-policies/{id:[0-9]+}/claim", s.claim).Methods(http.MethodPost)
	app.HandleFunc("/my-claims", s.claims).Methods(http.MethodGet)
	app.HandleFunc("/admin", s.adminQueues).Methods(http.MethodGet)
	app.HandleFunc("/admin/{subject:products|policies|claims}/{id:[0-9]+}", s.review).Methods(http.MethodPost)

	return metrics.InstrumentHandler(Recover(s.log)(Logging(s.log)(r)))
}
