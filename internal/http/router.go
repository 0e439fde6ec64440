package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/chat"
	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/handlers"
	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/middleware"
)

func NewRouter(
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	orderHandler *handlers.OrderHandler,
	vcsHandler *handlers.VCSHandler,
	crHandler *handlers.ChangeRequestHandler,
	revisionHandler *handlers.RevisionHandler,
	reportHandler *handlers.ReportHandler,
	settingHandler *handlers.SettingHandler,
	monitoringHandler *handlers.MonitoringHandler,
	healthHandler *handlers.HealthHandler,
	hub *chat.Hub,
	authMiddleware *middleware.AuthMiddleware,
) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.MetricsMiddleware)

	// Public routes - Authentication
	r.HandleFunc("/auth/setup", authHandler.Setup).Methods("POST")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	meAPI := r.PathPrefix("/auth/me").Subrouter()
	meAPI.Use(authMiddleware.Authenticate)
	meAPI.HandleFunc("", authHandler.Me).Methods("GET")

	// Protected API routes - Users (admin only)
	usersAPI := r.PathPrefix("/api/users").Subrouter()
	usersAPI.Use(authMiddleware.Authenticate)
	usersAPI.HandleFunc("", authMiddleware.RequireRole("admin")(http.HandlerFunc(userHandler.ListUsers)).ServeHTTP).Methods("GET")
	usersAPI.HandleFunc("", authMiddleware.RequireRole("admin")(http.HandlerFunc(userHandler.CreateUser)).ServeHTTP).Methods("POST")
	usersAPI.HandleFunc("/{id}", authMiddleware.RequireRole("admin")(http.HandlerFunc(userHandler.UpdateUser)).ServeHTTP).Methods("PUT")
	usersAPI.HandleFunc("/{id}", authMiddleware.RequireRole("admin")(http.HandlerFunc(userHandler.DeleteUser)).ServeHTTP).Methods("DELETE")
	usersAPI.HandleFunc("/{id}/toggle-active", authMiddleware.RequireRole("admin")(http.HandlerFunc(userHandler.ToggleActive)).ServeHTTP).Methods("PATCH")

	// Protected API routes - Orders
	ordersAPI := r.PathPrefix("/api/orders").Subrouter()
	ordersAPI.Use(authMiddleware.Authenticate)
	ordersAPI.HandleFunc("", orderHandler.ListOrders).Methods("GET")
	ordersAPI.HandleFunc("", orderHandler.CreateOrder).Methods("POST")
	ordersAPI.HandleFunc("/{id}", orderHandler.GetOrder).Methods("GET")
	ordersAPI.HandleFunc("/{id}", authMiddleware.RequireRole("admin")(http.HandlerFunc(orderHandler.DeleteOrder)).ServeHTTP).Methods("DELETE")

	// Badges and redo flags (direct mutations, outside the commit log)
	ordersAPI.HandleFunc("/{id}/badges", orderHandler.AddBadge).Methods("POST")
	ordersAPI.HandleFunc("/{id}/badges", orderHandler.SetBadges).Methods("PUT")
	ordersAPI.HandleFunc("/{id}/badges/{badge}", orderHandler.RemoveBadge).Methods("DELETE")
	ordersAPI.HandleFunc("/{id}/redo", orderHandler.AddRedoFlag).Methods("POST")
	ordersAPI.HandleFunc("/{id}/redo/selection", orderHandler.SetRedoSelection).Methods("PUT")
	ordersAPI.HandleFunc("/{id}/redo/{station}", orderHandler.ClearRedoFlag).Methods("DELETE")

	// Branches, commits, rollback, compare
	ordersAPI.HandleFunc("/{id}/branches", vcsHandler.ListBranches).Methods("GET")
	ordersAPI.HandleFunc("/{id}/branches", vcsHandler.CreateBranch).Methods("POST")
	ordersAPI.HandleFunc("/{id}/branches/default", vcsHandler.SetDefaultBranch).Methods("PUT")
	ordersAPI.HandleFunc("/{id}/branches/{branch}", vcsHandler.DeleteBranch).Methods("DELETE")
	ordersAPI.HandleFunc("/{id}/branches/{branch}/commits", vcsHandler.History).Methods("GET")
	ordersAPI.HandleFunc("/{id}/branches/{branch}/commits", vcsHandler.Commit).Methods("POST")
	ordersAPI.HandleFunc("/{id}/branches/{branch}/rollback", authMiddleware.RequireRole("admin")(http.HandlerFunc(vcsHandler.Rollback)).ServeHTTP).Methods("POST")
	ordersAPI.HandleFunc("/{id}/branches/{branch}/compare", vcsHandler.Compare).Methods("GET")

	// Change requests and stage actions
	ordersAPI.HandleFunc("/{id}/change-requests", crHandler.List).Methods("GET")
	ordersAPI.HandleFunc("/{id}/change-requests", crHandler.Open).Methods("POST")
	ordersAPI.HandleFunc("/{id}/change-requests/{crId}/approve", authMiddleware.RequireRole("admin")(http.HandlerFunc(crHandler.Approve)).ServeHTTP).Methods("POST")
	ordersAPI.HandleFunc("/{id}/change-requests/{crId}/decline", authMiddleware.RequireRole("admin")(http.HandlerFunc(crHandler.Decline)).ServeHTTP).Methods("POST")
	ordersAPI.HandleFunc("/{id}/stage", crHandler.ApplyStage).Methods("POST")
	ordersAPI.HandleFunc("/{id}/rework", crHandler.SendToRework).Methods("POST")

	// File revisions
	ordersAPI.HandleFunc("/{id}/revisions", revisionHandler.List).Methods("GET")
	ordersAPI.HandleFunc("/{id}/revisions", revisionHandler.Upload).Methods("POST")
	ordersAPI.HandleFunc("/{id}/revisions/default", revisionHandler.SetDefault).Methods("PUT")

	// Printable order sheet
	ordersAPI.HandleFunc("/{id}/report.pdf", reportHandler.OrderPDF).Methods("GET")

	// Protected API routes - Settings
	settingsAPI := r.PathPrefix("/api/settings").Subrouter()
	settingsAPI.Use(authMiddleware.Authenticate)
	settingsAPI.HandleFunc("", settingHandler.ListSettings).Methods("GET")
	settingsAPI.HandleFunc("/{key}", settingHandler.GetSetting).Methods("GET")
	settingsAPI.HandleFunc("/{key}", authMiddleware.RequireRole("admin")(http.HandlerFunc(settingHandler.UpdateSetting)).ServeHTTP).Methods("PUT")

	// Protected API routes - Stations
	stationsAPI := r.PathPrefix("/api/stations").Subrouter()
	stationsAPI.Use(authMiddleware.Authenticate)
	stationsAPI.HandleFunc("/{station}/wip", settingHandler.StationWIP).Methods("GET")

	// Protected API routes - Monitoring (admin only)
	monitoringAPI := r.PathPrefix("/api/monitoring").Subrouter()
	monitoringAPI.Use(authMiddleware.Authenticate)
	monitoringAPI.HandleFunc("/system", authMiddleware.RequireRole("admin")(http.HandlerFunc(monitoringHandler.SystemStats)).ServeHTTP).Methods("GET")
	monitoringAPI.HandleFunc("/summary", monitoringHandler.FloorSummary).Methods("GET")
	monitoringAPI.HandleFunc("/requests", authMiddleware.RequireRole("admin")(http.HandlerFunc(monitoringHandler.RecentRequests)).ServeHTTP).Methods("GET")

	// Factory floor chat (websocket)
	r.HandleFunc("/ws", hub.HandleWS)

	// Health endpoint (no auth required - for probes)
	r.HandleFunc("/health", healthHandler.Health).Methods("GET")

	// Metrics endpoint (Prometheus format)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
