package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	. "github.com/frostline/fc4tx/node/api/dto"
	cs "github.com/frostline/fc4tx/node/api/http_api/context_service"
	req "github.com/frostline/fc4tx/node/api/http_api/requests"
)

func (a *HTTPApp) GetFSMDump(c echo.Context) error {
	stx := c.(*cs.ContextService)
	formDTO := &CeremonyIdDTO{}
	if err := stx.BindToDTO(&req.CeremonyIdForm{}, formDTO); err != nil {
		return err
	}

	fsmDump, err := a.ceremony.GetFSMDump(formDTO)
	if err != nil {
		return stx.JsonError(http.StatusInternalServerError, err)
	}
	return stx.Json(http.StatusOK, fsmDump)
}

func (a *HTTPApp) GetFSMList(c echo.Context) error {
	stx := c.(*cs.ContextService)

	fsmList, err := a.ceremony.GetFSMList()
	if err != nil {
		return stx.JsonError(http.StatusInternalServerError, err)
	}
	return stx.Json(http.StatusOK, fsmList)
}
