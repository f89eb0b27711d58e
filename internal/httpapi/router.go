package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/albarami/idis/internal/app"
	"github.com/albarami/idis/internal/security"
)

// NewRouter assembles the full /v1 middleware chain and route table over a,
// following the teacher's single-router-per-service wiring
// (internal/marble/service.go's mux.NewRouter composed in one place).
func NewRouter(a *app.Application) http.Handler {
	h := &handlers{a: a}

	api := mux.NewRouter()
	api.HandleFunc("/healthz", h.health).Methods(http.MethodGet)

	v1 := api.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/deals", requireRBAC(security.OpMutate, h.createDeal)).Methods(http.MethodPost)
	v1.HandleFunc("/deals", requireRBAC(security.OpRead, h.listDeals)).Methods(http.MethodGet)
	v1.HandleFunc("/deals/{dealID}", requireRBAC(security.OpRead, h.getDeal)).Methods(http.MethodGet)

	v1.HandleFunc("/deals/{dealID}/documents", requireRBAC(security.OpMutate, h.createDocument)).Methods(http.MethodPost)
	v1.HandleFunc("/deals/{dealID}/documents", requireRBAC(security.OpRead, h.listDocuments)).Methods(http.MethodGet)

	v1.HandleFunc("/claims", requireRBAC(security.OpMutate, h.createClaim)).Methods(http.MethodPost)
	v1.HandleFunc("/claims/{claimID}", requireRBAC(security.OpRead, h.getClaim)).Methods(http.MethodGet)
	v1.HandleFunc("/claims/{claimID}/evidence", requireRBAC(security.OpMutate, h.createEvidence)).Methods(http.MethodPost)
	v1.HandleFunc("/claims/{claimID}/evidence", requireRBAC(security.OpRead, h.listEvidence)).Methods(http.MethodGet)

	v1.HandleFunc("/runs", requireRBAC(security.OpMutate, h.createRun)).Methods(http.MethodPost)
	v1.HandleFunc("/runs/{runID}", requireRBAC(security.OpRead, h.getRun)).Methods(http.MethodGet)

	v1.HandleFunc("/deals/{dealID}/deliverables/export", requireRBAC(security.OpRead, h.exportDeliverable)).Methods(http.MethodPost)
	v1.HandleFunc("/deals/{dealID}/deliverables/{deliverableID}", requireRBAC(security.OpMutate, h.deleteDeliverable)).Methods(http.MethodDelete)

	v1.HandleFunc("/deals/{dealID}/truth-stream", h.truthStream).Methods(http.MethodGet)
	v1.HandleFunc("/deals/{dealID}/dashboard", requireRBAC(security.OpRead, h.dashboardQuery)).Methods(http.MethodGet)

	var root http.Handler = api
	root = wrapWithAudit(a.Auditor, a.Log, root)
	root = withIdempotency(a.Idempotency, root)
	root = withResidencyExceptHealth(a.Config.ServiceRegion, root)
	root = withAuthenticationExceptHealth(a.Auth, root)
	root = requestIDMiddleware(root)
	return root
}

// withAuthenticationExceptHealth skips gate 1 for the unauthenticated
// liveness probe, applying it to every other path.
func withAuthenticationExceptHealth(auth *security.TokenAuthenticator, next http.Handler) http.Handler {
	authenticated := withAuthentication(auth, next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" {
			next.ServeHTTP(w, r)
			return
		}
		authenticated.ServeHTTP(w, r)
	})
}

// withResidencyExceptHealth skips gate 2 for the unauthenticated liveness
// probe, applying it to every other path.
func withResidencyExceptHealth(serviceRegion string, next http.Handler) http.Handler {
	residency := withResidency(serviceRegion, next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" {
			next.ServeHTTP(w, r)
			return
		}
		residency.ServeHTTP(w, r)
	})
}
