package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Every response carries a `status` field ("success" or the HTTP status
// code) and a `message` field; error responses additionally carry an
// `error` field with diagnostic detail. These two helpers are the only
// place that contract is spelled out.

func success(c echo.Context, data echo.Map, message string) error {
	if data == nil {
		data = echo.Map{}
	}
	data["status"] = "success"
	if message != "" {
		data["message"] = message
	}
	return c.JSON(http.StatusOK, data)
}

func failure(c echo.Context, status int, message string, err error) error {
	body := echo.Map{"status": status, "message": message}
	if err != nil {
		body["error"] = err.Error()
	}
	return c.JSON(status, body)
}
