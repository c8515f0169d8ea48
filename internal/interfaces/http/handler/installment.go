package handler

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	bookingapp "github.com/estatebook/backend/internal/application/booking"
	"github.com/estatebook/backend/internal/domain/shared"
)

// UpdateInstallmentStatus godoc
// @ID           updateInstallmentStatus
//
//	@Summary		Change one installment's status
//	@Description	Updates the status (and optionally late fees) of one installment and appends to the payment history
//	@Tags			installments
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string										true	"Booking ID"	format(uuid)
//	@Param			request	body		bookingapp.UpdateInstallmentStatusRequest	true	"Status change"
//	@Success		200		{object}	APIResponse[bookingapp.BookingResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/bookings/{id}/installments/status [put]
func (h *BookingHandler) UpdateInstallmentStatus(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req bookingapp.UpdateInstallmentStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.bookingService.UpdateInstallmentStatus(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// BatchUpdateInstallments godoc
// @ID           batchUpdateInstallments
//
//	@Summary		Save several installment status changes
//	@Description	Applies the updates in order, one save each. If a save fails after others succeeded the
//	@Description	response is still 200 with partial=true, the failed and skipped updates, and the message
//	@Description	"some changes may have been saved". A failure before anything was saved is an error response.
//	@Tags			installments
//	@Accept			json
//	@Produce		json
//	@Param			id				path		string										true	"Booking ID"	format(uuid)
//	@Param			Idempotency-Key	header		string										false	"Retry key; duplicates within the TTL get 409"
//	@Param			request			body		bookingapp.BatchUpdateInstallmentsRequest	true	"Updates"
//	@Success		200				{object}	APIResponse[bookingapp.BatchUpdateResult]
//	@Failure		400				{object}	ErrorResponse
//	@Failure		404				{object}	ErrorResponse
//	@Failure		502				{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/bookings/{id}/installments/batch [put]
func (h *BookingHandler) BatchUpdateInstallments(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req bookingapp.BatchUpdateInstallmentsRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.bookingService.BatchUpdateInstallmentStatuses(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// UpdateInstallmentNotes godoc
// @ID           updateInstallmentNotes
//
//	@Summary		Replace an installment's notes
//	@Tags			installments
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string										true	"Booking ID"	format(uuid)
//	@Param			number	path		int											true	"Installment number"	minimum(1)
//	@Param			request	body		bookingapp.UpdateInstallmentNotesRequest	true	"Notes"
//	@Success		200		{object}	APIResponse[bookingapp.BookingResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/bookings/{id}/installments/{number}/notes [put]
func (h *BookingHandler) UpdateInstallmentNotes(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	number, ok := h.intParam(c, "number")
	if !ok {
		return
	}
	var req bookingapp.UpdateInstallmentNotesRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.bookingService.UpdateInstallmentNotes(c.Request.Context(), actor, id, number, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ApplyLateFee godoc
// @ID           applyInstallmentLateFee
//
//	@Summary		Set an installment's late fee
//	@Description	Negative fees are rejected. Reports show outstanding = amount + late fees.
//	@Tags			installments
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Booking ID"	format(uuid)
//	@Param			number	path		int								true	"Installment number"	minimum(1)
//	@Param			request	body		bookingapp.ApplyLateFeeRequest	true	"Late fee"
//	@Success		200		{object}	APIResponse[bookingapp.BookingResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/bookings/{id}/installments/{number}/late-fee [put]
func (h *BookingHandler) ApplyLateFee(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	number, ok := h.intParam(c, "number")
	if !ok {
		return
	}
	var req bookingapp.ApplyLateFeeRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.bookingService.ApplyLateFee(c.Request.Context(), actor, id, number, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UploadInstallmentProof godoc
// @ID           uploadInstallmentProof
//
//	@Summary		Upload proof of payment for an installment
//	@Description	PDF only, at most 10 MB. Replaces the installment's existing proof.
//	@Tags			installments
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			id		path		string	true	"Booking ID"	format(uuid)
//	@Param			number	path		int		true	"Installment number"	minimum(1)
//	@Param			file	formData	file	true	"Proof PDF"
//	@Success		200		{object}	APIResponse[bookingapp.BookingResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		413		{object}	ErrorResponse
//	@Failure		502		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/bookings/{id}/installments/{number}/proof [post]
func (h *BookingHandler) UploadInstallmentProof(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	number, ok := h.intParam(c, "number")
	if !ok {
		return
	}
	file, closeFile, ok := h.formFile(c)
	if !ok {
		return
	}
	defer closeFile()

	resp, err := h.bookingService.UploadInstallmentProof(c.Request.Context(), actor, id, number, file)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListInstallmentDocuments godoc
// @ID           listInstallmentDocuments
//
//	@Summary		Documents proving an installment
//	@Description	Every matching document plus the preview (first PDF) with a signed download URL
//	@Tags			installments
//	@Produce		json
//	@Param			id		path		string	true	"Booking ID"	format(uuid)
//	@Param			number	path		int		true	"Installment number"	minimum(1)
//	@Success		200		{object}	APIResponse[bookingapp.InstallmentDocumentsResponse]
//	@Failure		404		{object}	ErrorResponse
//	@Failure		502		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/bookings/{id}/installments/{number}/documents [get]
func (h *BookingHandler) ListInstallmentDocuments(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	number, ok := h.intParam(c, "number")
	if !ok {
		return
	}

	resp, err := h.bookingService.ListInstallmentDocuments(c.Request.Context(), actor, id, number)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// formFile opens the multipart "file" field. The returned func closes it.
func (h *BookingHandler) formFile(c *gin.Context) (bookingapp.UploadFile, func(), bool) {
	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			h.HandleError(c, bodyTooLarge())
		case errors.Is(err, http.ErrMissingFile):
			h.HandleError(c, shared.NewValidationError("file is required", "file"))
		default:
			h.HandleError(c, shared.NewValidationError("malformed multipart body", "file"))
		}
		return bookingapp.UploadFile{}, nil, false
	}

	f, err := header.Open()
	if err != nil {
		h.HandleError(c, shared.NewUpstreamError("read upload", err))
		return bookingapp.UploadFile{}, nil, false
	}
	return uploadFile(header, f), func() { _ = f.Close() }, true
}

func uploadFile(header *multipart.FileHeader, body multipart.File) bookingapp.UploadFile {
	return bookingapp.UploadFile{
		Name:        header.Filename,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
		Body:        body,
	}
}
