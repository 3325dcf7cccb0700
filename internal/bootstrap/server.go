package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nontawat/roombot/api"
	"github.com/nontawat/roombot/config"
	"github.com/nontawat/roombot/internal/catalog"
	"github.com/nontawat/roombot/internal/dispatcher"
	"github.com/nontawat/roombot/internal/service/booking"
	"github.com/nontawat/roombot/internal/service/session"
)

// Run builds the HTTP server and blocks until the context is canceled or the
// server fails.
func Run(ctx context.Context, cfg *config.Config, rooms *catalog.Catalog, bookingSvc booking.BookingUseCase, sessions *session.Engine) error {
	router := NewRouter(rooms, bookingSvc, sessions)

	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

// NewRouter wires the gin engine with the webhook and the read-only views.
func NewRouter(rooms *catalog.Catalog, bookingSvc booking.BookingUseCase, sessions *session.Engine) *gin.Engine {
	router := gin.Default()

	disp := dispatcher.New(sessions, bookingSvc, rooms)

	root := router.Group("/")
	api.NewWebhookHandler(disp).Register(root)
	api.NewRoomHandler(rooms, bookingSvc).Register(root)

	return router
}
