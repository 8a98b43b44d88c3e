package routes

import (
	"net/http"

	"github.com/veriscope/modelaudit/internal/api/handlers"
	"github.com/veriscope/modelaudit/internal/api/middleware"
	"github.com/veriscope/modelaudit/internal/auth"
	"github.com/veriscope/modelaudit/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	authHandler          *handlers.AuthHandler
	criteriaHandler      *handlers.CriteriaHandler
	investigationHandler *handlers.InvestigationHandler
	assessmentHandler    *handlers.AssessmentHandler
	progressHandler      *handlers.ProgressHandler
	modelHandler         *handlers.ModelHandler

	authService *auth.Service
	metrics     *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	authHandler *handlers.AuthHandler,
	criteriaHandler *handlers.CriteriaHandler,
	investigationHandler *handlers.InvestigationHandler,
	assessmentHandler *handlers.AssessmentHandler,
	progressHandler *handlers.ProgressHandler,
	modelHandler *handlers.ModelHandler,
	authService *auth.Service,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux: http.NewServeMux(),

		authHandler:          authHandler,
		criteriaHandler:      criteriaHandler,
		investigationHandler: investigationHandler,
		assessmentHandler:    assessmentHandler,
		progressHandler:      progressHandler,
		modelHandler:         modelHandler,

		authService: authService,
		metrics:     metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	requireAuth := middleware.AuthMiddleware(r.authService)

	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Session endpoints
	r.mux.HandleFunc("POST /api/login", r.authHandler.Login)
	r.mux.HandleFunc("POST /api/logout", r.authHandler.Logout)

	// Catalog endpoints
	r.mux.HandleFunc("GET /api/criteria", r.criteriaHandler.ListCriteria)

	// Investigation endpoints
	r.mux.Handle("POST /api/investigations", requireAuth(http.HandlerFunc(r.investigationHandler.StartInvestigation)))

	// Assessment endpoints
	r.mux.HandleFunc("GET /api/assessments", r.assessmentHandler.ListAssessments)
	r.mux.HandleFunc("GET /api/assessments/{id}", r.assessmentHandler.GetAssessment)
	r.mux.HandleFunc("GET /api/assessments/{id}/progress", r.progressHandler.GetProgress)

	// Admin maintenance endpoints
	r.mux.Handle("DELETE /api/admin/assessments/stale", requireAuth(http.HandlerFunc(r.assessmentHandler.CleanupStaleAssessments)))
	r.mux.Handle("DELETE /api/admin/assessments/{id}", requireAuth(http.HandlerFunc(r.assessmentHandler.DeleteAssessment)))
	r.mux.Handle("GET /api/admin/models", requireAuth(http.HandlerFunc(r.modelHandler.ListModels)))
	r.mux.Handle("GET /api/admin/models/{id}", requireAuth(http.HandlerFunc(r.modelHandler.GetModel)))
	r.mux.Handle("DELETE /api/admin/models/{id}", requireAuth(http.HandlerFunc(r.modelHandler.DeleteModel)))

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)

	if r.metrics != nil {
		handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	}

	// CORS wraps everything so preflights never hit auth
	handler = middleware.CORSMiddleware(handler)

	return handler
}
