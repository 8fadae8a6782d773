package handler // handler defines http handlers

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"
)

// getOperatorID extracts the operator_id set by the OperatorAuth
// middleware from echo.Context and converts it to uint64.
func getOperatorID(c echo.Context) (uint64, error) {
	v := c.Get("operator_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid operator_id in context")
}

// pathID parses the named path parameter as a positive integer ID.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
