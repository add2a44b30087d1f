package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"teamboard/domain"
)

type messagesResponse struct {
	Items      []domain.Message `json:"items"`
	NextCursor *string          `json:"nextCursor"`
}

type createMessageRequest struct {
	TeamID  string `json:"teamId" validate:"required"`
	Content string `json:"content" validate:"required,min=1,max=5000"`
}

func listMessages(store Storage, auth Authenticator, opts Options) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization)); err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		teamID := c.QueryParam("teamId")
		if teamID == "" {
			return c.String(http.StatusBadRequest, "missing teamId parameter")
		}

		limit := opts.MessagePageSize
		if raw := strings.TrimSpace(c.QueryParam("limit")); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 || n > opts.MessagePageMax {
				return c.String(http.StatusBadRequest, "invalid limit")
			}
			limit = n
		}

		messages, next, err := store.ListMessages(c.Request().Context(), teamID, c.QueryParam("cursor"), limit)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidCursor) {
				return c.String(http.StatusBadRequest, "invalid cursor")
			}
			c.Logger().Error(err)
			return c.String(http.StatusInternalServerError, "failed to list messages")
		}

		resp := messagesResponse{Items: messages}
		if next != "" {
			resp.NextCursor = &next
		}
		return c.JSON(http.StatusOK, resp)
	}
}

func createMessage(store Storage, auth Authenticator, bus Publisher) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		var req createMessageRequest
		if err := decodeBody(c, &req); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}

		msg, err := store.CreateMessage(c.Request().Context(), req.TeamID, userID, req.Content)
		if err != nil {
			c.Logger().Error(err)
			return c.String(http.StatusInternalServerError, "failed to create message")
		}

		bus.Publish(domain.EventMessageCreated, msg)
		return c.JSON(http.StatusCreated, msg)
	}
}
