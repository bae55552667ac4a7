package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/najdeno/internal/model"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	usersHandler := &UsersHandler{DB: db}
	postsHandler := &PostsHandler{DB: db}

	authMW := AuthMiddleware(jwtSecret, db)
	requireAdmin := RequireRole(model.RoleAdmin)

	// Public.
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/posts/{id}/image", postsHandler.GetImage)

	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Current user.
	mux.Handle("GET /api/users/me", authMW(http.HandlerFunc(usersHandler.Me)))
	mux.Handle("PUT /api/users/me/password", authMW(http.HandlerFunc(usersHandler.ChangePassword)))

	// User administration.
	mux.Handle("GET /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.List))))
	mux.Handle("DELETE /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Delete))))

	// Posts: any signed-in user reads and creates; owner or admin edits.
	mux.Handle("GET /api/posts", authMW(http.HandlerFunc(postsHandler.List)))
	mux.Handle("GET /api/posts/search", authMW(http.HandlerFunc(postsHandler.Search)))
	mux.Handle("GET /api/posts/user/me", authMW(http.HandlerFunc(postsHandler.Mine)))
	mux.Handle("POST /api/posts", authMW(http.HandlerFunc(postsHandler.Create)))
	mux.Handle("GET /api/posts/{id}", authMW(http.HandlerFunc(postsHandler.Get)))
	mux.Handle("PUT /api/posts/{id}", authMW(http.HandlerFunc(postsHandler.Update)))
	mux.Handle("DELETE /api/posts/{id}", authMW(http.HandlerFunc(postsHandler.Delete)))
	mux.Handle("PUT /api/posts/{id}/status", authMW(requireAdmin(http.HandlerFunc(postsHandler.SetStatus))))

	return mux
}
