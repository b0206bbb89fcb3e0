package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	. "github.com/frostline/fc4tx/node/api/dto"
	cs "github.com/frostline/fc4tx/node/api/http_api/context_service"
	req "github.com/frostline/fc4tx/node/api/http_api/requests"
)

func (a *HTTPApp) SendMessage(c echo.Context) error {
	stx := c.(*cs.ContextService)
	formDTO := &MessageDTO{}
	if err := stx.BindToDTO(&req.MessageForm{}, formDTO); err != nil {
		return stx.JsonError(http.StatusBadRequest, err)
	}

	if err := a.node.SendMessage(formDTO); err != nil {
		return stx.JsonError(http.StatusInternalServerError, err)
	}
	return stx.Json(http.StatusOK, "ok")
}
