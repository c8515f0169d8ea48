package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	bookingapp "github.com/estatebook/backend/internal/application/booking"
)

// BookingHandler handles booking and installment endpoints
type BookingHandler struct {
	BaseHandler
	bookingService *bookingapp.BookingService
	exportService  *bookingapp.ExportService
	now            func() time.Time
}

// NewBookingHandler creates a new BookingHandler
func NewBookingHandler(bookingService *bookingapp.BookingService, exportService *bookingapp.ExportService) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
		exportService:  exportService,
		now:            time.Now,
	}
}

// List godoc
// @ID           listBookings
//
//	@Summary		List bookings
//	@Description	Page through bookings with search (booking number, customer, property) and filters
//	@Tags			bookings
//	@Produce		json
//	@Param			search		query		string	false	"Search text"
//	@Param			status		query		string	false	"Booking status"	Enums(PENDING, CONFIRMED, REJECTED, COMPLETED, CANCELLED)
//	@Param			type		query		string	false	"Booking type"		Enums(PURCHASE, RENTAL)
//	@Param			customer_id	query		string	false	"Customer ID"		format(uuid)
//	@Param			active_only	query		bool	false	"Exclude cancelled, rejected and completed bookings"
//	@Param			page		query		int		false	"Page number"		default(1)
//	@Param			page_size	query		int		false	"Page size"			default(20)	maximum(100)
//	@Param			order_by	query		string	false	"Sort field"		default(created_at)
//	@Param			order_dir	query		string	false	"Sort direction"	Enums(asc, desc)
//	@Success		200			{object}	ListResponse[bookingapp.BookingListItem]
//	@Failure		400			{object}	ErrorResponse
//	@Failure		401			{object}	ErrorResponse
//	@Failure		502			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/bookings [get]
func (h *BookingHandler) List(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var q bookingapp.ListBookingsQuery
	if !h.bindQuery(c, &q) {
		return
	}

	page, err := h.bookingService.List(c.Request.Context(), actor, q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	paged(c, page)
}

// Get godoc
// @ID           getBooking
//
//	@Summary		Get a booking
//	@Description	Booking with its installment schedule and documents
//	@Tags			bookings
//	@Produce		json
//	@Param			id	path		string	true	"Booking ID"	format(uuid)
//	@Success		200	{object}	APIResponse[bookingapp.BookingResponse]
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/bookings/{id} [get]
func (h *BookingHandler) Get(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.bookingService.Get(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetByNumber godoc
// @ID           getBookingByNumber
//
//	@Summary		Get a booking by its booking number
//	@Tags			bookings
//	@Produce		json
//	@Param			number	path		string	true	"Booking number"	example(BK-20240115-7F3A2C)
//	@Success		200		{object}	APIResponse[bookingapp.BookingResponse]
//	@Failure		404		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/bookings/by-number/{number} [get]
func (h *BookingHandler) GetByNumber(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	resp, err := h.bookingService.GetByNumber(c.Request.Context(), actor, c.Param("number"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Create godoc
// @ID           createBooking
//
//	@Summary		Create a booking
//	@Description	Creates a purchase or rental booking and generates its installment schedule
//	@Tags			bookings
//	@Accept			json
//	@Produce		json
//	@Param			Idempotency-Key	header		string							false	"Retry key; duplicates within the TTL get 409"
//	@Param			request			body		bookingapp.CreateBookingRequest	true	"Booking"
//	@Success		201				{object}	APIResponse[bookingapp.BookingResponse]
//	@Failure		400				{object}	ErrorResponse
//	@Failure		409				{object}	ErrorResponse
//	@Failure		502				{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/bookings [post]
func (h *BookingHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req bookingapp.CreateBookingRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.bookingService.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Update godoc
// @ID           updateBooking
//
//	@Summary		Update a booking
//	@Description	Applies an edit-form patch. Send version to reject stale edits with 409.
//	@Tags			bookings
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Booking ID"	format(uuid)
//	@Param			request	body		bookingapp.UpdateBookingRequest	true	"Fields to change"
//	@Success		200		{object}	APIResponse[bookingapp.BookingResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/bookings/{id} [put]
func (h *BookingHandler) Update(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req bookingapp.UpdateBookingRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.bookingService.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Cancel godoc
// @ID           cancelBooking
//
//	@Summary		Cancel a booking
//	@Description	Soft cancel; the booking and its history are kept
//	@Tags			bookings
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Booking ID"	format(uuid)
//	@Param			request	body		bookingapp.CancelBookingRequest	false	"Reason"
//	@Success		200		{object}	APIResponse[bookingapp.BookingResponse]
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/bookings/{id}/cancel [post]
func (h *BookingHandler) Cancel(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req bookingapp.CancelBookingRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.bookingService.Cancel(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Export godoc
// @ID           exportBookings
//
//	@Summary		Export bookings
//	@Description	Every booking matching the list filters as CSV or XLSX (paging is ignored)
//	@Tags			bookings
//	@Produce		text/csv
//	@Produce		application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
//	@Param			format	query		string	false	"File format"	Enums(csv, xlsx)	default(csv)
//	@Param			search	query		string	false	"Search text"
//	@Param			status	query		string	false	"Booking status"
//	@Success		200		{file}		binary
//	@Failure		400		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/bookings/export [get]
func (h *BookingHandler) Export(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	format, err := bookingapp.ParseExportFormat(c.Query("format"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	var q bookingapp.ListBookingsQuery
	if !h.bindQuery(c, &q) {
		return
	}

	var buf bytes.Buffer
	if err := h.exportService.Export(c.Request.Context(), actor, format, q, &buf); err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, format.FileName(h.now())))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}
