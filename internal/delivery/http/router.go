package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"placelists/internal/delivery/http/controllers"
)

// NewRouter initializes the HTTP router with all application routes.
// requireAuth wraps each handler with Bearer token validation.
func NewRouter(listController *controllers.ListController, requireAuth func(http.HandlerFunc) http.HandlerFunc) *http.ServeMux {
	mux := http.NewServeMux()

	// Lists
	mux.HandleFunc("POST /lists", requireAuth(listController.CreateList))
	mux.HandleFunc("GET /lists/{listID}", requireAuth(listController.GetList))

	// Membership
	mux.HandleFunc("POST /lists/{listID}/invitations", requireAuth(listController.Invite))
	mux.HandleFunc("POST /lists/{listID}/invitations/accept", requireAuth(listController.AcceptInvitation))
	mux.HandleFunc("POST /lists/{listID}/invitations/decline", requireAuth(listController.DeclineInvitation))
	mux.HandleFunc("POST /lists/{listID}/join", requireAuth(listController.JoinByCode))
	mux.HandleFunc("GET /lists/{listID}/members", requireAuth(listController.ListMembers))
	mux.HandleFunc("DELETE /lists/{listID}/members/{memberID}", requireAuth(listController.RemoveMember))

	// Places and colors
	mux.HandleFunc("POST /lists/{listID}/places", requireAuth(listController.AddPlace))
	mux.HandleFunc("POST /lists/{listID}/colors/refresh", requireAuth(listController.RefreshColors))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
