package delivery

import (
	"net/http"
	"time"

	"github.com/Vovarama1992/go-utils/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
)

type RouterOptions struct {
	AuthToken string
	// turns per minute per client IP; 0 disables the limit
	TurnRateLimit int
}

func NewRouter(h *TurnHandler, opts RouterOptions) chi.Router {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	r.With(httputil.RecoverMiddleware).Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	RegisterRoutes(r, h, opts)
	return r
}

func RegisterRoutes(r chi.Router, h *TurnHandler, opts RouterOptions) {
	r.Group(func(pr chi.Router) {
		pr.Use(
			httputil.RecoverMiddleware,
			AuthMiddleware(opts.AuthToken),
		)

		turns := pr.With()
		if opts.TurnRateLimit > 0 {
			turns = pr.With(httprate.LimitByIP(opts.TurnRateLimit, time.Minute))
		}
		turns.Post("/turns", h.CreateTurn)

		pr.Get("/transcript", h.GetTranscript)
		pr.Delete("/transcript", h.ResetTranscript)
		pr.Get("/audio/{name}", h.GetAudio)
	})
}
