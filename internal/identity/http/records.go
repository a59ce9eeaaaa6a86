package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/foodcar/internal/identity/domain"
	"github.com/aussiebroadwan/foodcar/internal/identity/service"
	"github.com/aussiebroadwan/foodcar/pkg/httpx"
	"github.com/aussiebroadwan/foodcar/pkg/phoneauth"
	"github.com/aussiebroadwan/foodcar/pkg/slogx"
)

func recordBody(rec domain.Record) phoneauth.RecordBody {
	return phoneauth.RecordBody{
		ID:         rec.ID,
		Phone:      rec.Phone,
		Name:       rec.Name,
		Email:      rec.Email,
		ProfileURL: rec.ProfileURL,
	}
}

// writeRecordError maps validation failures to 400 and hides the rest.
func writeRecordError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		phoneauth.ErrNotFoundResp.WriteError(w)
	case errors.Is(err, service.ErrAlreadyExists):
		phoneauth.ErrAlreadyExistsResp.WriteError(w)
	case errors.Is(err, service.ErrNoFields),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrInvalidPhone),
		errors.Is(err, service.ErrInvalidRecord):
		phoneauth.NewServiceError(http.StatusBadRequest, phoneauth.CodeInvalidRequest, err.Error()).WriteError(w)
	default:
		slogx.FromContext(r.Context()).Error("record operation failed", "err", err)
		phoneauth.ErrServerErrorResp.WriteError(w)
	}
}

type RecordsHandler struct {
	RecordService *service.RecordService
}

// HandleGet godoc
//
//	@Summary		Read a profile record
//	@Tags			Records
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string					true	"Identity id"
//	@Success		200	{object}	phoneauth.RecordBody	"the record"
//	@Failure		401	{object}	phoneauth.ErrorResponse	"invalid_token"
//	@Failure		403	{object}	phoneauth.ErrorResponse	"access_denied"
//	@Failure		404	{object}	phoneauth.ErrorResponse	"not_found"
//	@Router			/v1/records/{id} [get].
func (h *RecordsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := h.RecordService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeRecordError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, recordBody(rec))
}

// HandlePut godoc
//
//	@Summary		Write a profile record
//	@Description	Replaces the record. With If-None-Match: * the record is only created and an existing one is left
//	@Description	alone with 412.
//	@Tags			Records
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id				path		string					true	"Identity id"
//	@Param			If-None-Match	header		string					false	"* for create only"
//	@Param			request			body		phoneauth.RecordBody	true	"record"
//	@Success		200				{object}	phoneauth.RecordBody	"replaced"
//	@Success		201				{object}	phoneauth.RecordBody	"created"
//	@Failure		400				{object}	phoneauth.ErrorResponse	"invalid_request"
//	@Failure		403				{object}	phoneauth.ErrorResponse	"access_denied"
//	@Failure		412				{object}	phoneauth.ErrorResponse	"already_exists"
//	@Router			/v1/records/{id} [put].
func (h *RecordsHandler) HandlePut(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var body phoneauth.RecordBody
	if err := httpx.DecodeJSON(w, r, &body); err != nil {
		phoneauth.ErrInvalidRequest.WriteError(w)
		return
	}
	if body.ID != "" && body.ID != id {
		phoneauth.NewServiceError(http.StatusBadRequest, phoneauth.CodeInvalidRequest, "id does not match the path").WriteError(w)
		return
	}

	createOnly := r.Header.Get("If-None-Match") == "*"
	rec, err := h.RecordService.Put(r.Context(), domain.Record{
		ID:         id,
		Phone:      body.Phone,
		Name:       body.Name,
		Email:      body.Email,
		ProfileURL: body.ProfileURL,
	}, createOnly)
	if err != nil {
		writeRecordError(w, r, err)
		return
	}

	status := http.StatusOK
	if createOnly {
		status = http.StatusCreated
	}
	httpx.WriteJSON(w, status, recordBody(rec))
}

type UpdateUserHandler struct {
	RecordService *service.RecordService
}

// ServeHTTP godoc
//
//	@Summary		Update the caller's profile
//	@Description	Changes any of name, email and phone on the caller's record. Empty fields are left as they are.
//	@Tags			Records
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		phoneauth.UpdateUserRequest	true	"name, email, phone"
//	@Success		200		{object}	phoneauth.RecordBody		"the updated record"
//	@Failure		400		{object}	phoneauth.ErrorResponse		"invalid_request"
//	@Failure		401		{object}	phoneauth.ErrorResponse		"invalid_token"
//	@Failure		404		{object}	phoneauth.ErrorResponse		"not_found"
//	@Router			/auth/update-user [put].
func (h *UpdateUserHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sub, ok := httpx.SubjectFromContext(r.Context())
	if !ok {
		phoneauth.ErrInvalidTokenResp.WriteError(w)
		return
	}

	var req phoneauth.UpdateUserRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		phoneauth.ErrInvalidRequest.WriteError(w)
		return
	}

	rec, err := h.RecordService.UpdateUser(r.Context(), sub, service.UpdateUserInput{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		writeRecordError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, recordBody(rec))
}
