package httpapi

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/DoyleJ11/monopoly-client/internal/hub"
	"github.com/DoyleJ11/monopoly-client/internal/telemetry"
	"github.com/DoyleJ11/monopoly-client/internal/ws"
)

const maxBody = 4 << 10

// SetupRoutes is the local debug surface: inspect and drive the sessions
// this process runs.
func SetupRoutes(h *hub.Hub, tel *telemetry.Recorder, log *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer)

	r.Get("/healthz", Healthz(tel))
	r.Get("/sessions", ListSessions(h))
	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Get("/", GetView(h))
		r.Get("/ws", ws.ViewHandler(h, log))
		r.Post("/roll", Roll(h))
		r.Post("/draw/{deck}", Draw(h))
		r.Get("/property/{index}", PropertyInfo(h))
		r.Post("/property/{index}/buy", Buy(h))
		r.Post("/property/{index}/auction", Auction(h))
		r.Post("/leave", Leave(h))
	})
	return r
}

func readBody(r *http.Request) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r.Body, maxBody))
}
