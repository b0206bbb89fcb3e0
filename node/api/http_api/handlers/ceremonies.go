package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/frostline/fc4tx/ceremony"
	. "github.com/frostline/fc4tx/node/api/dto"
	cs "github.com/frostline/fc4tx/node/api/http_api/context_service"
	req "github.com/frostline/fc4tx/node/api/http_api/requests"
)

func (a *HTTPApp) StartCeremony(c echo.Context) error {
	stx := c.(*cs.ContextService)
	formDTO := &StartCeremonyDTO{}
	if err := stx.BindToDTO(&req.StartCeremonyForm{}, formDTO); err != nil {
		return err
	}

	if err := a.node.StartCeremony(formDTO); err != nil {
		return stx.JsonError(http.StatusInternalServerError, err)
	}
	return stx.Json(http.StatusOK, "ok")
}

func (a *HTTPApp) PostCommitment(c echo.Context) error {
	stx := c.(*cs.ContextService)
	formDTO := &PostCommitmentDTO{}
	if err := stx.BindToDTO(&req.PostCommitmentForm{}, formDTO); err != nil {
		return err
	}

	if err := a.node.PostCommitment(formDTO); err != nil {
		return stx.JsonError(http.StatusInternalServerError, err)
	}
	return stx.Json(http.StatusOK, "ok")
}

func (a *HTTPApp) BuildSigningPackage(c echo.Context) error {
	stx := c.(*cs.ContextService)
	formDTO := &BuildSigningPackageDTO{}
	if err := stx.BindToDTO(&req.BuildSigningPackageForm{}, formDTO); err != nil {
		return err
	}

	signingPackage, err := a.node.BuildSigningPackage(formDTO)
	if err != nil {
		return stx.JsonError(buildErrorStatus(err), err)
	}
	return stx.Json(http.StatusOK, signingPackage)
}

// buildErrorStatus distinguishes defects in the submitted commitment set
// from failures of the cryptographic layer underneath it.
func buildErrorStatus(err error) int {
	switch {
	case errors.Is(err, ceremony.ErrMessageDecoding),
		errors.Is(err, ceremony.ErrEmptyIdentifier),
		errors.Is(err, ceremony.ErrDuplicateIdentifier),
		errors.Is(err, ceremony.ErrEmptyCommitmentSet):
		return http.StatusBadRequest
	case errors.Is(err, ceremony.ErrCryptoPrimitive):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (a *HTTPApp) PostPartialSignature(c echo.Context) error {
	stx := c.(*cs.ContextService)
	formDTO := &PostPartialSignatureDTO{}
	if err := stx.BindToDTO(&req.PostPartialSignatureForm{}, formDTO); err != nil {
		return err
	}

	if err := a.node.PostPartialSignature(formDTO); err != nil {
		return stx.JsonError(http.StatusInternalServerError, err)
	}
	return stx.Json(http.StatusOK, "ok")
}

func (a *HTTPApp) GetSignature(c echo.Context) error {
	stx := c.(*cs.ContextService)
	formDTO := &CeremonyIdDTO{}
	if err := stx.BindToDTO(&req.CeremonyIdForm{}, formDTO); err != nil {
		return err
	}

	signature, err := a.node.GetSignature(formDTO)
	if err != nil {
		return stx.JsonError(http.StatusInternalServerError, err)
	}
	return stx.Json(http.StatusOK, signature)
}

func (a *HTTPApp) GetSignatures(c echo.Context) error {
	stx := c.(*cs.ContextService)
	formDTO := &CeremonyIdDTO{}
	if err := stx.BindToDTO(&req.CeremonyIdForm{}, formDTO); err != nil {
		return err
	}

	signatures, err := a.signature.GetSignatures(formDTO)
	if err != nil {
		return stx.JsonError(http.StatusInternalServerError, err)
	}
	return stx.Json(http.StatusOK, signatures)
}
