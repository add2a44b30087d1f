package api

import (
	"io"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Mutation bodies are small; anything larger is malformed.
const maxBodySize = 64 * 1024 // 64 KiB

var validate = validator.New()

// decodeBody parses a JSON request body into v, bounding the read and
// rejecting unknown fields, then runs struct validation.
func decodeBody(c echo.Context, v any) error {
	lr := io.LimitReader(c.Request().Body, maxBodySize)
	dec := sonic.ConfigStd.NewDecoder(lr)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	return validate.Struct(v)
}
