package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"teamboard/stream"
)

// Options tunes handler behaviour; zero values fall back to the defaults
// below.
type Options struct {
	KeepaliveInterval time.Duration
	MessagePageSize   int
	MessagePageMax    int
}

func (o Options) withDefaults() Options {
	if o.KeepaliveInterval <= 0 {
		o.KeepaliveInterval = 30 * time.Second
	}
	if o.MessagePageSize <= 0 {
		o.MessagePageSize = 50
	}
	if o.MessagePageMax <= 0 {
		o.MessagePageMax = 100
	}
	return o
}

// Register wires up all routes on the provided Echo instance.
func Register(e *echo.Echo, store Storage, auth Authenticator, bus Publisher, hub *stream.Hub, opts Options, logger *log.Logger) {
	if logger == nil {
		logger = log.StandardLogger()
	}
	opts = opts.withDefaults()

	e.GET("/api/tasks", listTasks(store, auth, logger))
	e.POST("/api/tasks", createTask(store, auth, bus))
	e.PATCH("/api/tasks/:id", updateTask(store, auth, bus))
	e.DELETE("/api/tasks/:id", deleteTask(store, auth, bus))
	e.POST("/api/tasks/:id/reorder", reorderTask(store, auth, bus))

	e.GET("/api/messages", listMessages(store, auth, opts))
	e.POST("/api/messages", createMessage(store, auth, bus))

	e.GET("/api/events", streamEvents(hub, auth, opts.KeepaliveInterval, logger))
	e.GET("/healthz", healthz())
}

func healthz() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
}
