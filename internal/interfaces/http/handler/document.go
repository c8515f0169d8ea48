package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	bookingapp "github.com/estatebook/backend/internal/application/booking"
	"github.com/estatebook/backend/internal/domain/shared"
)

// AddDocument godoc
// @ID           addBookingDocument
//
//	@Summary		Attach a document to a booking
//	@Description	document_type defaults to OTHER. An INSTALLMENT_PROOF with installment_number replaces that installment's proof.
//	@Tags			documents
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			id					path		string	true	"Booking ID"	format(uuid)
//	@Param			file				formData	file	true	"PDF document"
//	@Param			document_type		formData	string	false	"Document type"	Enums(INSTALLMENT_PROOF, ID_PROOF, BANK_STATEMENT, AGREEMENT, PAYMENT_RECEIPT, OTHER)
//	@Param			installment_number	formData	int		false	"Installment the document proves"
//	@Success		201					{object}	APIResponse[DocumentsData[bookingapp.DocumentResponse]]
//	@Failure		400					{object}	ErrorResponse
//	@Failure		404					{object}	ErrorResponse
//	@Failure		413					{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/bookings/{id}/documents [post]
func (h *BookingHandler) AddDocument(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	file, closeFile, ok := h.formFile(c)
	if !ok {
		return
	}
	defer closeFile()

	var installmentNumber *int
	if raw := c.PostForm("installment_number"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.HandleError(c, shared.NewValidationError("invalid request", "installment_number"))
			return
		}
		installmentNumber = &n
	}

	resp, err := h.bookingService.AddDocument(c.Request.Context(), actor, id, c.PostForm("document_type"), installmentNumber, file)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, DocumentsData[bookingapp.DocumentResponse]{Documents: resp.Documents})
}

// UpdateDocument godoc
// @ID           updateBookingDocument
//
//	@Summary		Replace a document's file
//	@Description	Overwrites the stored object and refreshes the document metadata
//	@Tags			documents
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			id			path		string	true	"Booking ID"	format(uuid)
//	@Param			documentId	path		string	true	"Document ID"	format(uuid)
//	@Param			file		formData	file	true	"PDF document"
//	@Success		200			{object}	APIResponse[DocumentsData[bookingapp.DocumentResponse]]
//	@Failure		400			{object}	ErrorResponse
//	@Failure		404			{object}	ErrorResponse
//	@Failure		413			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/bookings/{id}/documents/{documentId} [put]
func (h *BookingHandler) UpdateDocument(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	documentID, ok := h.uuidParam(c, "documentId")
	if !ok {
		return
	}
	file, closeFile, ok := h.formFile(c)
	if !ok {
		return
	}
	defer closeFile()

	resp, err := h.bookingService.UpdateDocument(c.Request.Context(), actor, id, documentID, file)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, DocumentsData[bookingapp.DocumentResponse]{Documents: resp.Documents})
}
