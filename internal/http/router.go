package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	authHandler "github.com/nileshdj/pavti/internal/http/auth"
	"github.com/nileshdj/pavti/internal/http/middleware"
	receiptHandler "github.com/nileshdj/pavti/internal/http/receipt"
	"github.com/nileshdj/pavti/internal/user"
)

type Options struct {
	// AllowedOrigins for the browser frontend.
	AllowedOrigins []string

	// OpenRead leaves receipt reads unauthenticated.
	OpenRead bool

	// MediaDir is served read-only under /media/.
	MediaDir string
}

func New(
	receiptsV1 *receiptHandler.Handler,
	login *authHandler.Handler,
	users *user.Service,
	opts Options,
) http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	router.Use(middleware.Authenticator(users))

	router.Route("/login", login.Routes)

	router.Route("/api", func(r chi.Router) {
		// Receipt records live under /api/users/, the path the
		// deployed clients already call.
		r.Route("/users", func(r chi.Router) {
			receiptsV1.Routes(r, opts.OpenRead)
		})
	})

	fileServer := http.StripPrefix("/media/", http.FileServer(http.Dir(opts.MediaDir)))
	router.Get("/media/*", func(w http.ResponseWriter, r *http.Request) {
		fileServer.ServeHTTP(w, r)
	})

	return router
}
