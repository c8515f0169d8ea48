package booking

import (
	"testing"
	"time"

	"github.com/estatebook/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testActor = shared.Actor{TenantID: uuid.New(), UserID: uuid.New(), Username: "agent"}

func purchaseParams() NewBookingParams {
	start := day(2024, 1, 1)
	return NewBookingParams{
		Type:               BookingTypePurchase,
		CustomerID:         uuid.New(),
		CustomerName:       "Asha Rao",
		PropertyID:         uuid.New(),
		PropertyName:       "Palm Grove 4B",
		TotalPropertyValue: dec("500000"),
		DownPayment:        dec("100000"),
		PaymentTerms:       PaymentTermsInstallments,
		InstallmentCount:   4,
		StartDate:          &start,
	}
}

func newTestBooking(t *testing.T) *Booking {
	t.Helper()
	b, err := NewBooking(testActor, purchaseParams(), day(2024, 1, 1))
	require.NoError(t, err)
	return b
}

// ==================== NewBooking Tests ====================

func TestNewBooking_InstallmentPurchase(t *testing.T) {
	b := newTestBooking(t)

	assert.Equal(t, BookingStatusPending, b.Status)
	assert.Equal(t, testActor.TenantID, b.TenantID)
	assert.Equal(t, testActor.UserID, *b.CreatedBy)
	assert.Regexp(t, `^BK-20240101-[0-9A-F]{6}$`, b.BookingNumber)
	assert.True(t, b.LoanAmount.Equal(dec("400000")))

	require.Len(t, b.Schedule, 4)
	for i, inst := range b.Schedule {
		assert.Equal(t, i+1, inst.Number)
		assert.True(t, inst.Amount.Equal(dec("100000")))
		assert.Equal(t, InstallmentStatusPending, inst.Status)
	}

	events := b.GetDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventTypeBookingCreated, events[0].EventType())
	assert.Equal(t, day(2024, 1, 1), events[0].OccurredAt())
	assert.Equal(t, b.ID, events[0].AggregateID())
	assert.Equal(t, testActor.TenantID, events[0].TenantID())
}

func TestNewBooking_DownPaymentExceedsTotal(t *testing.T) {
	p := purchaseParams()
	p.TotalPropertyValue = dec("100000")
	p.DownPayment = dec("150000")

	_, err := NewBooking(testActor, p, time.Now())
	require.Error(t, err)
	assert.Equal(t, shared.CodeValidation, shared.ErrorCode(err))
}

func TestNewBooking_FinancingListsMissingFields(t *testing.T) {
	p := purchaseParams()
	p.Financing = Financing{IsFinanced: true, BankName: "HDFC", InterestRate: dec("8.5")}

	_, err := NewBooking(testActor, p, time.Now())
	require.Error(t, err)

	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, shared.CodeValidation, de.Code)
	assert.Equal(t, []string{"loan_tenure", "emi_amount"}, de.Fields)
	assert.Contains(t, de.Message, "loan_tenure, emi_amount")
}

func TestNewBooking_FinancedComplete(t *testing.T) {
	p := purchaseParams()
	p.Financing = Financing{IsFinanced: true, BankName: "HDFC", LoanTenure: 240, InterestRate: dec("8.5"), EMIAmount: dec("3471")}

	b, err := NewBooking(testActor, p, time.Now())
	require.NoError(t, err)
	assert.True(t, b.Financing.IsFinanced)
}

func TestNewBooking_RequiredFields(t *testing.T) {
	p := purchaseParams()
	p.CustomerID = uuid.Nil
	p.InstallmentCount = 0

	_, err := NewBooking(testActor, p, time.Now())
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.ElementsMatch(t, []string{"customer_id", "installment_count"}, de.Fields)
}

func TestNewBooking_FullPaymentHasNoSchedule(t *testing.T) {
	p := purchaseParams()
	p.PaymentTerms = PaymentTermsFullPayment
	p.InstallmentCount = 0

	b, err := NewBooking(testActor, p, time.Now())
	require.NoError(t, err)
	assert.Empty(t, b.Schedule)
}

func TestNewBooking_RentalRentSchedule(t *testing.T) {
	p := purchaseParams()
	p.Type = BookingTypeRental
	p.TotalPropertyValue = decimal.Zero
	p.DownPayment = decimal.Zero
	p.MonthlyRent = dec("30000")
	p.SecurityDeposit = dec("90000")
	p.InstallmentCount = 11

	b, err := NewBooking(testActor, p, time.Now())
	require.NoError(t, err)
	require.Len(t, b.Schedule, 11)
	assert.True(t, b.Schedule[10].Amount.Equal(dec("30000")))
	assert.True(t, b.LoanAmount.IsZero())
}

// ==================== Update Tests ====================

func TestBookingUpdate_PreservesScheduleForOtherFields(t *testing.T) {
	b := newTestBooking(t)
	_, err := b.ChangeInstallmentStatus(1, InstallmentStatusPaid, nil, day(2024, 2, 1))
	require.NoError(t, err)

	notes := "corner unit"
	down := dec("120000")
	regenerated, err := b.Update(BookingPatch{Notes: &notes, DownPayment: &down}, day(2024, 2, 2))
	require.NoError(t, err)

	assert.False(t, regenerated)
	assert.Equal(t, InstallmentStatusPaid, b.Schedule[0].Status)
	assert.True(t, b.LoanAmount.Equal(dec("380000")), "loan amount is always re-derived")
}

func TestBookingUpdate_RegeneratesOnCountOrTotalChange(t *testing.T) {
	b := newTestBooking(t)
	_, err := b.ChangeInstallmentStatus(1, InstallmentStatusPaid, nil, day(2024, 2, 1))
	require.NoError(t, err)

	count := 8
	regenerated, err := b.Update(BookingPatch{InstallmentCount: &count}, day(2024, 2, 2))
	require.NoError(t, err)
	assert.True(t, regenerated)
	require.Len(t, b.Schedule, 8)
	assert.Equal(t, InstallmentStatusPending, b.Schedule[0].Status)

	total := dec("900000")
	regenerated, err = b.Update(BookingPatch{TotalPropertyValue: &total}, day(2024, 2, 3))
	require.NoError(t, err)
	assert.True(t, regenerated)
	assert.True(t, b.Schedule.Total().Equal(dec("800000")))
}

func TestBookingUpdate_RentalRegeneratesOnRentChange(t *testing.T) {
	p := purchaseParams()
	p.Type = BookingTypeRental
	p.TotalPropertyValue = decimal.Zero
	p.DownPayment = decimal.Zero
	p.MonthlyRent = dec("30000")
	p.InstallmentCount = 11
	b, err := NewBooking(testActor, p, day(2024, 1, 1))
	require.NoError(t, err)
	_, err = b.ChangeInstallmentStatus(1, InstallmentStatusPaid, nil, day(2024, 2, 1))
	require.NoError(t, err)

	total := dec("7500000")
	regenerated, err := b.Update(BookingPatch{TotalPropertyValue: &total}, day(2024, 2, 2))
	require.NoError(t, err)
	assert.False(t, regenerated, "total value does not feed a rent schedule")
	assert.Equal(t, InstallmentStatusPaid, b.Schedule[0].Status)

	rent := dec("32000")
	regenerated, err = b.Update(BookingPatch{MonthlyRent: &rent}, day(2024, 2, 3))
	require.NoError(t, err)
	assert.True(t, regenerated)
	require.Len(t, b.Schedule, 11)
	assert.True(t, b.Schedule[0].Amount.Equal(rent))
	assert.Equal(t, InstallmentStatusPending, b.Schedule[0].Status)
}

func TestBookingUpdate_RejectsInvalidPatchWithoutMutating(t *testing.T) {
	b := newTestBooking(t)
	down := dec("600000")

	_, err := b.Update(BookingPatch{DownPayment: &down}, time.Now())
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	assert.True(t, b.DownPayment.Equal(dec("100000")))
}

func TestBookingUpdate_StatusTransitions(t *testing.T) {
	b := newTestBooking(t)

	confirmed := BookingStatusConfirmed
	_, err := b.Update(BookingPatch{Status: &confirmed}, time.Now())
	require.NoError(t, err)

	pending := BookingStatusPending
	_, err = b.Update(BookingPatch{Status: &pending}, time.Now())
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

// ==================== Installment & Document Tests ====================

func TestChangeInstallmentStatus(t *testing.T) {
	b := newTestBooking(t)
	b.ClearDomainEvents()
	fee := dec("500")

	inst, err := b.ChangeInstallmentStatus(2, InstallmentStatusLate, &fee, day(2024, 4, 1))
	require.NoError(t, err)
	assert.Equal(t, InstallmentStatusLate, inst.Status)
	assert.True(t, inst.LateFees.Equal(fee))

	events := b.GetDomainEvents()
	require.Len(t, events, 1)
	changed := events[0].(*InstallmentStatusChangedEvent)
	assert.Equal(t, InstallmentStatusPending, changed.OldStatus)
	assert.Equal(t, InstallmentStatusLate, changed.NewStatus)
	assert.Equal(t, day(2024, 4, 1), changed.OccurredAt())

	_, err = b.ChangeInstallmentStatus(9, InstallmentStatusPaid, nil, time.Now())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestChangeInstallmentStatus_CancelledBooking(t *testing.T) {
	b := newTestBooking(t)
	require.NoError(t, b.Cancel("customer withdrew", time.Now()))

	_, err := b.ChangeInstallmentStatus(1, InstallmentStatusPaid, nil, time.Now())
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestAttachInstallmentProof_AppendThenReplace(t *testing.T) {
	b := newTestBooking(t)

	first := Document{OriginalName: "Installment_2_receipt.pdf", MimeType: PDFMimeType, URL: "u1"}
	replaced, err := b.AttachInstallmentProof(2, first, time.Now())
	require.NoError(t, err)
	assert.False(t, replaced)
	require.Len(t, b.Documents, 1)
	id := b.Documents[0].ID
	require.NotNil(t, b.Documents[0].InstallmentNumber)
	assert.Equal(t, 2, *b.Documents[0].InstallmentNumber)

	second := Document{OriginalName: "Installment_2_new.pdf", MimeType: PDFMimeType, URL: "u2"}
	replaced, err = b.AttachInstallmentProof(2, second, time.Now())
	require.NoError(t, err)
	assert.True(t, replaced)
	require.Len(t, b.Documents, 1)
	assert.Equal(t, id, b.Documents[0].ID)
	assert.Equal(t, "u2", b.Documents[0].URL)

	_, err = b.AttachInstallmentProof(7, second, time.Now())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestAttachInstallmentProof_ReplacesLegacyNameMatch(t *testing.T) {
	b := newTestBooking(t)
	legacy := proof("installment_3_old.pdf")
	b.Documents = Documents{legacy}

	replaced, err := b.AttachInstallmentProof(3, Document{OriginalName: "Installment_3_new.pdf"}, time.Now())
	require.NoError(t, err)
	assert.True(t, replaced)
	assert.Equal(t, legacy.ID, b.Documents[0].ID)
	assert.Equal(t, 3, *b.Documents[0].InstallmentNumber)
}

func TestReplaceDocumentFile(t *testing.T) {
	b := newTestBooking(t)
	require.NoError(t, b.AddDocument(Document{OriginalName: "pan.pdf", DocumentType: DocumentTypeIDProof}, time.Now()))
	id := b.Documents[0].ID

	doc, err := b.ReplaceDocumentFile(id, Document{OriginalName: "pan-v2.pdf"}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, id, doc.ID)
	assert.Equal(t, DocumentTypeIDProof, doc.DocumentType)
	assert.Equal(t, "pan-v2.pdf", b.Documents[0].OriginalName)

	_, err = b.ReplaceDocumentFile(uuid.New(), Document{}, time.Now())
	assert.ErrorIs(t, err, shared.ErrNotFound)

	assert.ErrorIs(t, b.AddDocument(Document{DocumentType: "SELFIE"}, time.Now()), shared.ErrInvalidInput)
}

func TestReplaceDocumentFile_LinksLegacyProof(t *testing.T) {
	b := newTestBooking(t)
	legacy := proof("installment_2_bank.pdf")
	b.Documents = Documents{legacy}

	got, ok := b.ProofInstallment(legacy)
	require.True(t, ok)
	assert.Equal(t, 2, got)

	doc, err := b.ReplaceDocumentFile(legacy.ID, Document{OriginalName: "receipt.pdf"}, time.Now())
	require.NoError(t, err)
	require.NotNil(t, doc.InstallmentNumber)
	assert.Equal(t, 2, *doc.InstallmentNumber)
	assert.Len(t, FindDocumentsForInstallment(b.Documents, 2), 1)

	_, ok = b.ProofInstallment(proof("statement.pdf"))
	assert.False(t, ok)
	_, ok = b.ProofInstallment(Document{OriginalName: "installment_2.pdf", DocumentType: DocumentTypeIDProof})
	assert.False(t, ok)
}

// ==================== Cancel Tests ====================

func TestBookingCancel(t *testing.T) {
	b := newTestBooking(t)
	now := day(2024, 3, 1)

	require.NoError(t, b.Cancel("duplicate", now))
	assert.Equal(t, BookingStatusCancelled, b.Status)
	assert.Equal(t, now, *b.CancelledAt)
	assert.Len(t, b.Schedule, 4, "soft cancel keeps the schedule")
	assert.False(t, b.IsActive())

	assert.ErrorIs(t, b.Cancel("again", now), shared.ErrInvalidState)
}

func TestBookingStatus_CanTransitionTo(t *testing.T) {
	assert.True(t, BookingStatusPending.CanTransitionTo(BookingStatusConfirmed))
	assert.True(t, BookingStatusConfirmed.CanTransitionTo(BookingStatusCompleted))
	assert.False(t, BookingStatusCompleted.CanTransitionTo(BookingStatusCancelled))
	assert.False(t, BookingStatusRejected.CanTransitionTo(BookingStatusConfirmed))
	assert.True(t, BookingStatusCancelled.IsTerminal())
}
