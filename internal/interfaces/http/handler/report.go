package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	bookingapp "github.com/estatebook/backend/internal/application/booking"
	"github.com/estatebook/backend/internal/domain/shared"
)

// ReportHandler serves the installment and payment reports
type ReportHandler struct {
	BaseHandler
	reportService *bookingapp.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *bookingapp.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// PendingInstallments godoc
// @ID           reportPendingInstallments
// @Summary      Pending installments
// @Description  PENDING installments of active bookings that are not yet due, ordered by due date
// @Tags         reports
// @Produce      json
// @Param        as_of query string false "Reference date (YYYY-MM-DD), defaults to today"
// @Success      200 {object} APIResponse[[]bookingapp.InstallmentViewResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reports/installments/pending [get]
func (h *ReportHandler) PendingInstallments(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	asOf, ok := h.asOf(c)
	if !ok {
		return
	}

	views, err := h.reportService.PendingInstallments(c.Request.Context(), actor, asOf)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, views)
}

// OverdueInstallments godoc
// @ID           reportOverdueInstallments
// @Summary      Overdue installments
// @Description  Installments of active bookings that are past due and unpaid, or explicitly marked OVERDUE
// @Tags         reports
// @Produce      json
// @Param        as_of query string false "Reference date (YYYY-MM-DD), defaults to today"
// @Success      200 {object} APIResponse[[]bookingapp.InstallmentViewResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reports/installments/overdue [get]
func (h *ReportHandler) OverdueInstallments(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	asOf, ok := h.asOf(c)
	if !ok {
		return
	}

	views, err := h.reportService.OverdueInstallments(c.Request.Context(), actor, asOf)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, views)
}

// UnreconciledPayments godoc
// @ID           reportUnreconciledPayments
// @Summary      Payments awaiting reconciliation
// @Tags         reports
// @Produce      json
// @Success      200 {object} APIResponse[[]bookingapp.PaymentRecordResponse]
// @Security     BearerAuth
// @Router       /reports/payments/unreconciled [get]
func (h *ReportHandler) UnreconciledPayments(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	records, err := h.reportService.UnreconciledPayments(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, records)
}

// PaymentSummary godoc
// @ID           reportPaymentSummary
// @Summary      Totals of recorded payments
// @Tags         reports
// @Produce      json
// @Success      200 {object} APIResponse[bookingapp.PaymentSummaryResponse]
// @Security     BearerAuth
// @Router       /reports/payments/summary [get]
func (h *ReportHandler) PaymentSummary(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	summary, err := h.reportService.PaymentSummary(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// PaymentHistory godoc
// @ID           bookingPaymentHistory
// @Summary      Payment records of a booking
// @Description  Every recorded installment status change of the booking, oldest first
// @Tags         payments
// @Produce      json
// @Param        id path string true "Booking ID" format(uuid)
// @Success      200 {object} APIResponse[[]bookingapp.PaymentRecordResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /bookings/{id}/payments [get]
func (h *ReportHandler) PaymentHistory(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	records, err := h.reportService.PaymentHistory(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, records)
}

// Reconcile godoc
// @ID           reconcilePayment
// @Summary      Mark a payment record reconciled
// @Tags         payments
// @Produce      json
// @Param        id path string true "Payment record ID" format(uuid)
// @Success      200 {object} APIResponse[bookingapp.PaymentRecordResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /payments/{id}/reconcile [post]
func (h *ReportHandler) Reconcile(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	record, err := h.reportService.Reconcile(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, record)
}

// asOf parses the optional as_of query parameter. Nil means today.
func (h *ReportHandler) asOf(c *gin.Context) (*time.Time, bool) {
	raw := c.Query("as_of")
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(bookingapp.DateLayout, raw)
	if err != nil {
		h.HandleError(c, shared.NewValidationError("as_of must be a YYYY-MM-DD date", "as_of"))
		return nil, false
	}
	return &t, true
}
