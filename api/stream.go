package api

import (
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"teamboard/stream"
)

type connectedFrame struct {
	Type   string `json:"type"`
	TeamID string `json:"teamId"`
}

// streamEvents is the long-lived SSE endpoint. The session lives exactly as
// long as the connection: it is registered after the hello frame goes out and
// torn down on any write failure or transport disconnect. The client never
// sends an explicit unsubscribe.
func streamEvents(hub *stream.Hub, auth Authenticator, keepalive time.Duration, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		// EventSource cannot set headers, so a token query parameter is
		// accepted as a fallback.
		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		if authHeader == "" {
			if token := c.QueryParam("token"); token != "" {
				authHeader = "Bearer " + token
			}
		}
		if _, err := auth.UserIDFromAuthHeader(authHeader); err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		teamID := c.QueryParam("teamId")
		if teamID == "" {
			return c.String(http.StatusBadRequest, "missing teamId parameter")
		}

		c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
		c.Response().Header().Set(echo.HeaderCacheControl, "no-cache, no-transform")
		c.Response().Header().Set(echo.HeaderConnection, "keep-alive")
		c.Response().Header().Set("X-Accel-Buffering", "no")
		flusher, ok := c.Response().Writer.(http.Flusher)
		if !ok {
			return c.String(http.StatusInternalServerError, "stream unsupported")
		}
		c.Response().WriteHeader(http.StatusOK)

		sess := stream.NewSession(teamID)
		hub.Register(sess)
		defer func() {
			hub.Unregister(sess)
			sess.Close()
			logger.WithField("team", teamID).Debug("stream session closed")
		}()

		if err := writeDataFrame(c, connectedFrame{Type: "connected", TeamID: teamID}); err != nil {
			return nil
		}
		flusher.Flush()

		ctx := c.Request().Context()
		ticker := time.NewTicker(keepalive)
		defer ticker.Stop()
		for {
			select {
			case ev := <-sess.Events():
				if err := writeDataFrame(c, ev); err != nil {
					return nil
				}
				flusher.Flush()
			case <-ticker.C:
				// Comment frame: keeps intermediaries from timing out the
				// idle connection, carries no payload.
				if _, err := c.Response().Write([]byte(":keepalive\n\n")); err != nil {
					return nil
				}
				flusher.Flush()
			case <-ctx.Done():
				return nil
			}
		}
	}
}

func writeDataFrame(c echo.Context, payload any) error {
	data, err := sonic.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := c.Response().Write([]byte("data: ")); err != nil {
		return err
	}
	if _, err := c.Response().Write(data); err != nil {
		return err
	}
	_, err = c.Response().Write([]byte("\n\n"))
	return err
}
