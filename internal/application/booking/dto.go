package booking

import (
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/estatebook/backend/internal/domain/booking"
)

// DateLayout is the wire format of calendar dates (start_date, due_date, as_of)
const DateLayout = "2006-01-02"

// FinancingRequest carries bank loan details for a financed purchase
type FinancingRequest struct {
	IsFinanced   bool            `json:"is_financed"`
	BankName     string          `json:"bank_name" binding:"max=120"`
	LoanTenure   int             `json:"loan_tenure" binding:"min=0,max=600"`
	InterestRate decimal.Decimal `json:"interest_rate"`
	EMIAmount    decimal.Decimal `json:"emi_amount"`
}

// CreateBookingRequest represents a request to create a booking
type CreateBookingRequest struct {
	Type               string            `json:"type" binding:"required,oneof=PURCHASE RENTAL"`
	CustomerID         uuid.UUID         `json:"customer_id" binding:"required"`
	CustomerName       string            `json:"customer_name" binding:"required,max=200"`
	PropertyID         uuid.UUID         `json:"property_id" binding:"required"`
	PropertyName       string            `json:"property_name" binding:"required,max=200"`
	SalespersonID      *uuid.UUID        `json:"salesperson_id"`
	SalespersonName    string            `json:"salesperson_name" binding:"max=200"`
	Currency           string            `json:"currency" binding:"omitempty,oneof=INR USD EUR GBP AED"`
	TotalPropertyValue decimal.Decimal   `json:"total_property_value"`
	DownPayment        decimal.Decimal   `json:"down_payment"`
	MonthlyRent        decimal.Decimal   `json:"monthly_rent"`
	SecurityDeposit    decimal.Decimal   `json:"security_deposit"`
	PaymentTerms       string            `json:"payment_terms" binding:"required,oneof=INSTALLMENTS FULL_PAYMENT PARTIAL_PAYMENT MILESTONE"`
	InstallmentCount   int               `json:"installment_count" binding:"min=0,max=600"`
	StartDate          string            `json:"start_date" binding:"omitempty,datetime=2006-01-02"`
	Financing          *FinancingRequest `json:"financing"`
	Notes              string            `json:"notes" binding:"max=2000"`
}

// UpdateBookingRequest represents an edit-form save; nil fields are unchanged.
// When Version is set the save fails with CONCURRENCY_CONFLICT if the booking
// changed since that version was read.
type UpdateBookingRequest struct {
	CustomerName       *string           `json:"customer_name" binding:"omitempty,max=200"`
	PropertyName       *string           `json:"property_name" binding:"omitempty,max=200"`
	SalespersonID      *uuid.UUID        `json:"salesperson_id"`
	SalespersonName    *string           `json:"salesperson_name" binding:"omitempty,max=200"`
	TotalPropertyValue *decimal.Decimal  `json:"total_property_value"`
	DownPayment        *decimal.Decimal  `json:"down_payment"`
	MonthlyRent        *decimal.Decimal  `json:"monthly_rent"`
	SecurityDeposit    *decimal.Decimal  `json:"security_deposit"`
	PaymentTerms       *string           `json:"payment_terms" binding:"omitempty,oneof=INSTALLMENTS FULL_PAYMENT PARTIAL_PAYMENT MILESTONE"`
	InstallmentCount   *int              `json:"installment_count" binding:"omitempty,min=0,max=600"`
	Status             *string           `json:"status" binding:"omitempty,oneof=PENDING CONFIRMED REJECTED COMPLETED CANCELLED"`
	Financing          *FinancingRequest `json:"financing"`
	Notes              *string           `json:"notes" binding:"omitempty,max=2000"`
	Version            *int              `json:"version" binding:"omitempty,min=1"`
}

// CancelBookingRequest represents a soft cancellation
type CancelBookingRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// ListBookingsQuery holds list filters bound from the query string
type ListBookingsQuery struct {
	Search     string `form:"search" json:"search" binding:"max=100"`
	Status     string `form:"status" json:"status" binding:"omitempty,oneof=PENDING CONFIRMED REJECTED COMPLETED CANCELLED"`
	Type       string `form:"type" json:"type" binding:"omitempty,oneof=PURCHASE RENTAL"`
	CustomerID string `form:"customer_id" json:"customer_id" binding:"omitempty,uuid"`
	ActiveOnly bool   `form:"active_only" json:"active_only"`
	Page       int    `form:"page" json:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" json:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string `form:"order_by" json:"order_by"`
	OrderDir   string `form:"order_dir" json:"order_dir" binding:"omitempty,oneof=asc desc ASC DESC"`
}

// UpdateInstallmentStatusRequest records a status change of one installment
type UpdateInstallmentStatusRequest struct {
	InstallmentNumber int              `json:"installment_number" binding:"required,min=1"`
	Status            string           `json:"status" binding:"required,oneof=PENDING PAID OVERDUE LATE"`
	LateFees          *decimal.Decimal `json:"late_fees"`
}

// BatchUpdateInstallmentsRequest saves several installment status changes in order
type BatchUpdateInstallmentsRequest struct {
	Updates []UpdateInstallmentStatusRequest `json:"updates" binding:"required,min=1,max=600,dive"`
}

// UpdateInstallmentNotesRequest replaces an installment's notes
type UpdateInstallmentNotesRequest struct {
	Notes string `json:"notes" binding:"max=2000"`
}

// ApplyLateFeeRequest sets an installment's late fee
type ApplyLateFeeRequest struct {
	LateFees decimal.Decimal `json:"late_fees"`
}

// UploadFile is a file received from the client, not yet stored
type UploadFile struct {
	Name        string
	Size        int64
	ContentType string
	Body        io.Reader
}

// InstallmentResponse is one schedule entry in API responses
type InstallmentResponse struct {
	InstallmentNumber int             `json:"installment_number"`
	Amount            decimal.Decimal `json:"amount"`
	DueDate           string          `json:"due_date"`
	Status            string          `json:"status"`
	EffectiveStatus   string          `json:"effective_status"`
	LateFees          decimal.Decimal `json:"late_fees"`
	Outstanding       decimal.Decimal `json:"outstanding"`
	Notes             string          `json:"notes,omitempty"`
	HasProof          bool            `json:"has_proof"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// DocumentResponse is a stored document in API responses
type DocumentResponse struct {
	ID                uuid.UUID  `json:"id"`
	URL               string     `json:"document_url"`
	DownloadURL       string     `json:"download_url,omitempty"`
	OriginalName      string     `json:"original_name"`
	MimeType          string     `json:"mime_type"`
	DocumentType      string     `json:"document_type"`
	Size              int64      `json:"size"`
	InstallmentNumber *int       `json:"installment_number,omitempty"`
	UploadedBy        *uuid.UUID `json:"uploaded_by,omitempty"`
	UploadedAt        time.Time  `json:"uploaded_at"`
}

// FinancingResponse mirrors FinancingRequest
type FinancingResponse struct {
	IsFinanced   bool            `json:"is_financed"`
	BankName     string          `json:"bank_name,omitempty"`
	LoanTenure   int             `json:"loan_tenure,omitempty"`
	InterestRate decimal.Decimal `json:"interest_rate"`
	EMIAmount    decimal.Decimal `json:"emi_amount"`
}

// BookingResponse represents a booking in API responses
type BookingResponse struct {
	ID                 uuid.UUID             `json:"id"`
	TenantID           uuid.UUID             `json:"tenant_id"`
	BookingNumber      string                `json:"booking_number"`
	Type               string                `json:"type"`
	CustomerID         uuid.UUID             `json:"customer_id"`
	CustomerName       string                `json:"customer_name"`
	PropertyID         uuid.UUID             `json:"property_id"`
	PropertyName       string                `json:"property_name"`
	SalespersonID      *uuid.UUID            `json:"salesperson_id,omitempty"`
	SalespersonName    string                `json:"salesperson_name,omitempty"`
	Currency           string                `json:"currency"`
	TotalPropertyValue decimal.Decimal       `json:"total_property_value"`
	DownPayment        decimal.Decimal       `json:"down_payment"`
	LoanAmount         decimal.Decimal       `json:"loan_amount"`
	MonthlyRent        decimal.Decimal       `json:"monthly_rent"`
	SecurityDeposit    decimal.Decimal       `json:"security_deposit"`
	PaymentTerms       string                `json:"payment_terms"`
	InstallmentCount   int                   `json:"installment_count"`
	StartDate          string                `json:"start_date"`
	Status             string                `json:"status"`
	Financing          FinancingResponse     `json:"financing"`
	Schedule           []InstallmentResponse `json:"schedule"`
	Documents          []DocumentResponse    `json:"documents"`
	Notes              string                `json:"notes,omitempty"`
	CancelledAt        *time.Time            `json:"cancelled_at,omitempty"`
	CancelReason       string                `json:"cancel_reason,omitempty"`
	CreatedBy          *uuid.UUID            `json:"created_by,omitempty"`
	CreatedAt          time.Time             `json:"created_at"`
	UpdatedAt          time.Time             `json:"updated_at"`
	Version            int                   `json:"version"`
}

// BookingListItem is the summary row returned by list-bookings
type BookingListItem struct {
	ID                 uuid.UUID       `json:"id"`
	BookingNumber      string          `json:"booking_number"`
	Type               string          `json:"type"`
	CustomerName       string          `json:"customer_name"`
	PropertyName       string          `json:"property_name"`
	Currency           string          `json:"currency"`
	TotalPropertyValue decimal.Decimal `json:"total_property_value"`
	PaymentTerms       string          `json:"payment_terms"`
	Status             string          `json:"status"`
	InstallmentCount   int             `json:"installment_count"`
	PaidInstallments   int             `json:"paid_installments"`
	CreatedAt          time.Time       `json:"created_at"`
}

// BatchFailure describes the installment update that stopped a batch
type BatchFailure struct {
	InstallmentNumber int    `json:"installment_number"`
	Code              string `json:"code"`
	Error             string `json:"error"`
}

// BatchUpdateResult reports which installment updates of a batch were saved.
// Updates after the first failure are not attempted and listed in Skipped.
type BatchUpdateResult struct {
	Booking *BookingResponse `json:"booking"`
	Applied []int            `json:"applied"`
	Failed  []BatchFailure   `json:"failed"`
	Skipped []int            `json:"skipped"`
	Partial bool             `json:"partial"`
	Message string           `json:"message,omitempty"`
}

// InstallmentDocumentsResponse lists the documents proving one installment
type InstallmentDocumentsResponse struct {
	InstallmentNumber int                `json:"installment_number"`
	HasProof          bool               `json:"has_proof"`
	Preview           *DocumentResponse  `json:"preview,omitempty"`
	Documents         []DocumentResponse `json:"documents"`
}

// InstallmentViewResponse is one row of the pending/overdue reports
type InstallmentViewResponse struct {
	BookingID         uuid.UUID       `json:"booking_id"`
	BookingNumber     string          `json:"booking_number"`
	CustomerName      string          `json:"customer_name"`
	PropertyName      string          `json:"property_name"`
	Currency          string          `json:"currency"`
	InstallmentNumber int             `json:"installment_number"`
	Amount            decimal.Decimal `json:"amount"`
	LateFees          decimal.Decimal `json:"late_fees"`
	Outstanding       decimal.Decimal `json:"outstanding"`
	DueDate           string          `json:"due_date"`
	Status            string          `json:"status"`
	EffectiveStatus   string          `json:"effective_status"`
	DaysOverdue       int             `json:"days_overdue,omitempty"`
}

// PaymentRecordResponse represents a payment-history entry
type PaymentRecordResponse struct {
	ID                  uuid.UUID       `json:"id"`
	BookingID           uuid.UUID       `json:"booking_id"`
	BookingNumber       string          `json:"booking_number"`
	InstallmentNumber   int             `json:"installment_number"`
	Amount              decimal.Decimal `json:"amount"`
	Currency            string          `json:"currency"`
	PaymentStatus       string          `json:"payment_status"`
	PaymentDate         time.Time       `json:"payment_date"`
	IsReconciled        bool            `json:"is_reconciled"`
	ReconciliationDate  *time.Time      `json:"reconciliation_date,omitempty"`
	ApprovedByUserID    *uuid.UUID      `json:"approved_by_user_id,omitempty"`
	ResponsiblePersonID *uuid.UUID      `json:"responsible_person_id,omitempty"`
	Notes               string          `json:"notes,omitempty"`
}

// PaymentSummaryResponse aggregates payment history for the dashboard
type PaymentSummaryResponse struct {
	Total                    int             `json:"total"`
	CountByStatus            map[string]int  `json:"count_by_status"`
	CompletedAmount          decimal.Decimal `json:"completed_amount"`
	Currency                 string          `json:"currency"`
	CompletedAmountFormatted string          `json:"completed_amount_formatted"`
	Unreconciled             int             `json:"unreconciled"`
}

// ToBookingResponse converts a domain booking; asOf drives effective statuses
func ToBookingResponse(b *booking.Booking, asOf time.Time) BookingResponse {
	resp := BookingResponse{
		ID:                 b.ID,
		TenantID:           b.TenantID,
		BookingNumber:      b.BookingNumber,
		Type:               string(b.Type),
		CustomerID:         b.CustomerID,
		CustomerName:       b.CustomerName,
		PropertyID:         b.PropertyID,
		PropertyName:       b.PropertyName,
		SalespersonID:      b.SalespersonID,
		SalespersonName:    b.SalespersonName,
		Currency:           string(b.Currency),
		TotalPropertyValue: b.TotalPropertyValue,
		DownPayment:        b.DownPayment,
		LoanAmount:         b.LoanAmount,
		MonthlyRent:        b.MonthlyRent,
		SecurityDeposit:    b.SecurityDeposit,
		PaymentTerms:       string(b.PaymentTerms),
		InstallmentCount:   b.InstallmentCount,
		StartDate:          b.StartDate.Format(DateLayout),
		Status:             string(b.Status),
		Financing: FinancingResponse{
			IsFinanced:   b.Financing.IsFinanced,
			BankName:     b.Financing.BankName,
			LoanTenure:   b.Financing.LoanTenure,
			InterestRate: b.Financing.InterestRate,
			EMIAmount:    b.Financing.EMIAmount,
		},
		Schedule:     make([]InstallmentResponse, 0, len(b.Schedule)),
		Documents:    make([]DocumentResponse, 0, len(b.Documents)),
		Notes:        b.Notes,
		CancelledAt:  b.CancelledAt,
		CancelReason: b.CancelReason,
		CreatedBy:    b.CreatedBy,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
		Version:      b.Version,
	}
	for _, inst := range b.Schedule {
		resp.Schedule = append(resp.Schedule, InstallmentResponse{
			InstallmentNumber: inst.Number,
			Amount:            inst.Amount,
			DueDate:           inst.DueDate.Format(DateLayout),
			Status:            string(inst.Status),
			EffectiveStatus:   string(booking.DerivedStatus(inst, asOf)),
			LateFees:          inst.LateFees,
			Outstanding:       inst.Outstanding(),
			Notes:             inst.Notes,
			HasProof:          len(booking.FindDocumentsForInstallment(b.Documents, inst.Number)) > 0,
			UpdatedAt:         inst.UpdatedAt,
		})
	}
	for _, d := range b.Documents {
		resp.Documents = append(resp.Documents, ToDocumentResponse(d))
	}
	return resp
}

// ToBookingListItem converts a domain booking into a list row
func ToBookingListItem(b *booking.Booking) BookingListItem {
	paid := 0
	for _, inst := range b.Schedule {
		if inst.Status.IsSettled() {
			paid++
		}
	}
	return BookingListItem{
		ID:                 b.ID,
		BookingNumber:      b.BookingNumber,
		Type:               string(b.Type),
		CustomerName:       b.CustomerName,
		PropertyName:       b.PropertyName,
		Currency:           string(b.Currency),
		TotalPropertyValue: b.TotalPropertyValue,
		PaymentTerms:       string(b.PaymentTerms),
		Status:             string(b.Status),
		InstallmentCount:   len(b.Schedule),
		PaidInstallments:   paid,
		CreatedAt:          b.CreatedAt,
	}
}

// ToDocumentResponse converts a domain document
func ToDocumentResponse(d booking.Document) DocumentResponse {
	return DocumentResponse{
		ID:                d.ID,
		URL:               d.URL,
		OriginalName:      d.OriginalName,
		MimeType:          d.MimeType,
		DocumentType:      string(d.DocumentType),
		Size:              d.Size,
		InstallmentNumber: d.InstallmentNumber,
		UploadedBy:        d.UploadedBy,
		UploadedAt:        d.UploadedAt,
	}
}

// ToInstallmentViewResponse converts a report row
func ToInstallmentViewResponse(v booking.InstallmentView) InstallmentViewResponse {
	return InstallmentViewResponse{
		BookingID:         v.BookingID,
		BookingNumber:     v.BookingNumber,
		CustomerName:      v.CustomerName,
		PropertyName:      v.PropertyName,
		Currency:          string(v.Currency),
		InstallmentNumber: v.Installment.Number,
		Amount:            v.Installment.Amount,
		LateFees:          v.Installment.LateFees,
		Outstanding:       v.Installment.Outstanding(),
		DueDate:           v.Installment.DueDate.Format(DateLayout),
		Status:            string(v.Installment.Status),
		EffectiveStatus:   string(v.EffectiveStatus),
		DaysOverdue:       v.DaysOverdue,
	}
}

// ToPaymentRecordResponse converts a payment record
func ToPaymentRecordResponse(p *booking.PaymentRecord) PaymentRecordResponse {
	return PaymentRecordResponse{
		ID:                  p.ID,
		BookingID:           p.BookingID,
		BookingNumber:       p.BookingNumber,
		InstallmentNumber:   p.InstallmentNumber,
		Amount:              p.Amount,
		Currency:            string(p.Currency),
		PaymentStatus:       string(p.PaymentStatus),
		PaymentDate:         p.PaymentDate,
		IsReconciled:        p.IsReconciled,
		ReconciliationDate:  p.ReconciliationDate,
		ApprovedByUserID:    p.ApprovedByUserID,
		ResponsiblePersonID: p.ResponsiblePersonID,
		Notes:               p.Notes,
	}
}
