// Package httpapi exposes the inventory JSON API over HTTP.
package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/escolar/inventario/internal/service"
)

// Server wires services into HTTP handlers.
type Server struct {
	auth    service.AuthService
	items   service.ItemService
	sectors service.SectorService
	users   service.UserService
}

// New constructs the handler set with injected services.
func New(auth service.AuthService, items service.ItemService, sectors service.SectorService, users service.UserService) *Server {
	return &Server{auth: auth, items: items, sectors: sectors, users: users}
}

// Router builds the full request handler, including middleware.
func (s *Server) Router(log *zap.Logger) http.Handler {
	mux := http.NewServeMux()
	authMW := RequireAuth(s.auth)

	// Public: login only.
	mux.HandleFunc("POST /api/login", s.handleLogin)

	mux.Handle("POST /api/logout", authMW(http.HandlerFunc(s.handleLogout)))

	mux.Handle("GET /api/items", authMW(http.HandlerFunc(s.handleListItems)))
	mux.Handle("POST /api/items", authMW(http.HandlerFunc(s.handleCreateItem)))
	mux.Handle("GET /api/items/{id}", authMW(http.HandlerFunc(s.handleGetItem)))
	mux.Handle("PUT /api/items/{id}", authMW(http.HandlerFunc(s.handleUpdateItem)))
	mux.Handle("DELETE /api/items/{id}", authMW(http.HandlerFunc(s.handleDeleteItem)))
	mux.Handle("GET /api/items/{id}/history", authMW(http.HandlerFunc(s.handleItemHistory)))
	mux.Handle("POST /api/items/move", authMW(http.HandlerFunc(s.handleMoveItem)))

	mux.Handle("GET /api/sectors", authMW(http.HandlerFunc(s.handleListSectors)))
	mux.Handle("POST /api/sectors", authMW(http.HandlerFunc(s.handleCreateSector)))
	mux.Handle("GET /api/sectors/{id}", authMW(http.HandlerFunc(s.handleGetSector)))
	mux.Handle("PUT /api/sectors/{id}", authMW(http.HandlerFunc(s.handleUpdateSector)))
	mux.Handle("DELETE /api/sectors/{id}", authMW(http.HandlerFunc(s.handleDeleteSector)))

	mux.Handle("GET /api/users", authMW(http.HandlerFunc(s.handleListUsers)))
	mux.Handle("POST /api/users", authMW(http.HandlerFunc(s.handleCreateUser)))
	mux.Handle("GET /api/users/{id}", authMW(http.HandlerFunc(s.handleGetUser)))
	mux.Handle("PUT /api/users/{id}", authMW(http.HandlerFunc(s.handleUpdateUser)))
	mux.Handle("DELETE /api/users/{id}", authMW(http.HandlerFunc(s.handleDeleteUser)))

	mux.Handle("GET /api/dashboard/stats", authMW(http.HandlerFunc(s.handleDashboardStats)))

	return Recover(log)(Logging(log)(mux))
}
