package booking

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/estatebook/backend/internal/domain/shared"
	"github.com/estatebook/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BookingType distinguishes purchase from rental bookings
type BookingType string

const (
	BookingTypePurchase BookingType = "PURCHASE"
	BookingTypeRental   BookingType = "RENTAL"
)

// IsValid checks if the booking type is valid
func (t BookingType) IsValid() bool {
	return t == BookingTypePurchase || t == BookingTypeRental
}

// PaymentTerms describes how the booking is paid
type PaymentTerms string

const (
	PaymentTermsInstallments PaymentTerms = "INSTALLMENTS"
	PaymentTermsFullPayment  PaymentTerms = "FULL_PAYMENT"
	PaymentTermsPartial      PaymentTerms = "PARTIAL_PAYMENT"
	PaymentTermsMilestone    PaymentTerms = "MILESTONE"
)

// IsValid checks if the payment terms are valid
func (p PaymentTerms) IsValid() bool {
	switch p {
	case PaymentTermsInstallments, PaymentTermsFullPayment, PaymentTermsPartial, PaymentTermsMilestone:
		return true
	}
	return false
}

// BookingStatus represents the lifecycle of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusRejected  BookingStatus = "REJECTED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

// IsValid checks if the status is a valid BookingStatus
func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusRejected,
		BookingStatusCompleted, BookingStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of BookingStatus
func (s BookingStatus) String() string {
	return string(s)
}

// IsTerminal returns true if no further transitions are allowed
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusRejected || s == BookingStatusCompleted || s == BookingStatusCancelled
}

// CanTransitionTo reports whether the status may move to next
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case BookingStatusPending:
		return next == BookingStatusConfirmed || next == BookingStatusRejected || next == BookingStatusCancelled
	case BookingStatusConfirmed:
		return next == BookingStatusCompleted || next == BookingStatusCancelled
	}
	return false
}

// Financing holds bank loan details for a financed purchase
type Financing struct {
	IsFinanced   bool
	BankName     string
	LoanTenure   int // months
	InterestRate decimal.Decimal
	EMIAmount    decimal.Decimal
}

// missingFields lists the loan fields that must be present when financed
func (f Financing) missingFields() []string {
	if !f.IsFinanced {
		return nil
	}
	var missing []string
	if strings.TrimSpace(f.BankName) == "" {
		missing = append(missing, "bank_name")
	}
	if f.LoanTenure <= 0 {
		missing = append(missing, "loan_tenure")
	}
	if !f.InterestRate.IsPositive() {
		missing = append(missing, "interest_rate")
	}
	if !f.EMIAmount.IsPositive() {
		missing = append(missing, "emi_amount")
	}
	return missing
}

// Booking is the aggregate root for a purchase or rental booking.
// It owns the installment (or rent) schedule and the uploaded documents.
type Booking struct {
	shared.TenantAggregateRoot
	BookingNumber      string
	Type               BookingType
	CustomerID         uuid.UUID
	CustomerName       string
	PropertyID         uuid.UUID
	PropertyName       string
	SalespersonID      *uuid.UUID
	SalespersonName    string
	Currency           valueobject.Currency
	TotalPropertyValue decimal.Decimal
	DownPayment        decimal.Decimal
	LoanAmount         decimal.Decimal
	MonthlyRent        decimal.Decimal
	SecurityDeposit    decimal.Decimal
	PaymentTerms       PaymentTerms
	InstallmentCount   int
	StartDate          time.Time
	Status             BookingStatus
	Financing          Financing
	Schedule           Schedule
	Documents          Documents
	Notes              string
	CancelledAt        *time.Time
	CancelReason       string
}

// NewBookingParams carries the create-form input
type NewBookingParams struct {
	Type               BookingType
	CustomerID         uuid.UUID
	CustomerName       string
	PropertyID         uuid.UUID
	PropertyName       string
	SalespersonID      *uuid.UUID
	SalespersonName    string
	Currency           valueobject.Currency
	TotalPropertyValue decimal.Decimal
	DownPayment        decimal.Decimal
	MonthlyRent        decimal.Decimal
	SecurityDeposit    decimal.Decimal
	PaymentTerms       PaymentTerms
	InstallmentCount   int
	StartDate          *time.Time
	Financing          Financing
	Notes              string
}

// NewBooking validates the input and builds a PENDING booking.
// INSTALLMENTS bookings get their schedule generated immediately.
func NewBooking(actor shared.Actor, p NewBookingParams, now time.Time) (*Booking, error) {
	if p.Currency == "" {
		p.Currency = valueobject.DefaultCurrency
	}

	b := &Booking{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(actor, now),
		BookingNumber:       GenerateBookingNumber(now),
		Type:                p.Type,
		CustomerID:          p.CustomerID,
		CustomerName:        strings.TrimSpace(p.CustomerName),
		PropertyID:          p.PropertyID,
		PropertyName:        strings.TrimSpace(p.PropertyName),
		SalespersonID:       p.SalespersonID,
		SalespersonName:     p.SalespersonName,
		Currency:            p.Currency,
		TotalPropertyValue:  p.TotalPropertyValue,
		DownPayment:         p.DownPayment,
		MonthlyRent:         p.MonthlyRent,
		SecurityDeposit:     p.SecurityDeposit,
		PaymentTerms:        p.PaymentTerms,
		InstallmentCount:    p.InstallmentCount,
		StartDate:           now,
		Status:              BookingStatusPending,
		Financing:           p.Financing,
		Schedule:            Schedule{},
		Documents:           Documents{},
		Notes:               p.Notes,
	}
	if p.StartDate != nil {
		b.StartDate = *p.StartDate
	}

	if err := b.validate(); err != nil {
		return nil, err
	}
	b.deriveLoanAmount()

	if b.PaymentTerms == PaymentTermsInstallments {
		if err := b.regenerateSchedule(); err != nil {
			return nil, err
		}
	}

	b.AddDomainEvent(NewBookingCreatedEvent(b))
	return b, nil
}

// GenerateBookingNumber returns a human-facing id like BK-20240115-1A2B3C
func GenerateBookingNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("BK-%s-%s", now.Format("20060102"), suffix)
}

// validate checks the booking-level invariants, reporting every missing field at once
func (b *Booking) validate() error {
	var missing []string
	if !b.Type.IsValid() {
		missing = append(missing, "type")
	}
	if !b.PaymentTerms.IsValid() {
		missing = append(missing, "payment_terms")
	}
	if b.CustomerID == uuid.Nil {
		missing = append(missing, "customer_id")
	}
	if b.PropertyID == uuid.Nil {
		missing = append(missing, "property_id")
	}
	if !b.Currency.IsValid() {
		missing = append(missing, "currency")
	}
	if b.PaymentTerms == PaymentTermsInstallments && b.InstallmentCount <= 0 {
		missing = append(missing, "installment_count")
	}
	if b.Type == BookingTypeRental && b.PaymentTerms == PaymentTermsInstallments && !b.MonthlyRent.IsPositive() {
		missing = append(missing, "monthly_rent")
	}
	if len(missing) > 0 {
		return shared.NewValidationError("missing or invalid fields", missing...)
	}

	if b.TotalPropertyValue.IsNegative() || b.DownPayment.IsNegative() ||
		b.MonthlyRent.IsNegative() || b.SecurityDeposit.IsNegative() {
		return shared.NewValidationError("amounts cannot be negative")
	}
	if b.DownPayment.GreaterThan(b.TotalPropertyValue) {
		return shared.NewValidationError("down payment cannot exceed total property value")
	}

	if b.Type == BookingTypePurchase {
		if fields := b.Financing.missingFields(); len(fields) > 0 {
			return shared.NewValidationError("financed booking is missing loan details", fields...)
		}
	}
	return nil
}

func (b *Booking) deriveLoanAmount() {
	if b.Type == BookingTypePurchase {
		b.LoanAmount = b.TotalPropertyValue.Sub(b.DownPayment)
		return
	}
	b.LoanAmount = decimal.Zero
}

func (b *Booking) regenerateSchedule() error {
	var (
		schedule Schedule
		err      error
	)
	if b.Type == BookingTypeRental {
		schedule, err = GenerateRentSchedule(b.MonthlyRent, b.InstallmentCount, b.StartDate)
	} else {
		schedule, err = GenerateSchedule(b.TotalPropertyValue, b.DownPayment, b.InstallmentCount, b.StartDate)
	}
	if err != nil {
		return err
	}
	b.Schedule = schedule
	return nil
}

// BookingPatch carries edit-form changes; nil fields are left unchanged
type BookingPatch struct {
	CustomerName       *string
	PropertyName       *string
	SalespersonID      *uuid.UUID
	SalespersonName    *string
	TotalPropertyValue *decimal.Decimal
	DownPayment        *decimal.Decimal
	MonthlyRent        *decimal.Decimal
	SecurityDeposit    *decimal.Decimal
	PaymentTerms       *PaymentTerms
	InstallmentCount   *int
	Status             *BookingStatus
	Financing          *Financing
	Notes              *string
}

// Update merges the patch and re-validates. The schedule is regenerated only
// when the installment count or the amount it is built from changed (total
// property value, or monthly rent for a rental), or when the booking switches
// to INSTALLMENTS without a schedule; otherwise recorded payments are preserved.
func (b *Booking) Update(patch BookingPatch, now time.Time) (scheduleRegenerated bool, err error) {
	if b.Status == BookingStatusCancelled || b.Status == BookingStatusRejected {
		return false, shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("cannot edit a %s booking", strings.ToLower(b.Status.String())))
	}

	next := *b
	countChanged := patch.InstallmentCount != nil && *patch.InstallmentCount != b.InstallmentCount
	amountChanged := patch.TotalPropertyValue != nil && !patch.TotalPropertyValue.Equal(b.TotalPropertyValue)
	if b.Type == BookingTypeRental {
		amountChanged = patch.MonthlyRent != nil && !patch.MonthlyRent.Equal(b.MonthlyRent)
	}

	if patch.CustomerName != nil {
		next.CustomerName = strings.TrimSpace(*patch.CustomerName)
	}
	if patch.PropertyName != nil {
		next.PropertyName = strings.TrimSpace(*patch.PropertyName)
	}
	if patch.SalespersonID != nil {
		id := *patch.SalespersonID
		next.SalespersonID = &id
	}
	if patch.SalespersonName != nil {
		next.SalespersonName = *patch.SalespersonName
	}
	if patch.TotalPropertyValue != nil {
		next.TotalPropertyValue = *patch.TotalPropertyValue
	}
	if patch.DownPayment != nil {
		next.DownPayment = *patch.DownPayment
	}
	if patch.MonthlyRent != nil {
		next.MonthlyRent = *patch.MonthlyRent
	}
	if patch.SecurityDeposit != nil {
		next.SecurityDeposit = *patch.SecurityDeposit
	}
	if patch.PaymentTerms != nil {
		next.PaymentTerms = *patch.PaymentTerms
	}
	if patch.InstallmentCount != nil {
		next.InstallmentCount = *patch.InstallmentCount
	}
	if patch.Financing != nil {
		next.Financing = *patch.Financing
	}
	if patch.Notes != nil {
		next.Notes = *patch.Notes
	}
	if patch.Status != nil {
		if !patch.Status.IsValid() {
			return false, shared.NewValidationError("invalid booking status", "status")
		}
		if !b.Status.CanTransitionTo(*patch.Status) {
			return false, shared.NewDomainError(shared.CodeInvalidState,
				fmt.Sprintf("cannot change booking status from %s to %s", b.Status, *patch.Status))
		}
		next.Status = *patch.Status
	}

	if err := next.validate(); err != nil {
		return false, err
	}
	next.deriveLoanAmount()

	if next.PaymentTerms == PaymentTermsInstallments &&
		(countChanged || amountChanged || len(next.Schedule) == 0) {
		if err := next.regenerateSchedule(); err != nil {
			return false, err
		}
		scheduleRegenerated = true
	}

	next.Touch(now)
	*b = next
	b.AddDomainEvent(NewBookingUpdatedEvent(b, scheduleRegenerated))
	return scheduleRegenerated, nil
}

func (b *Booking) ensureMutable() error {
	if b.Status == BookingStatusCancelled || b.Status == BookingStatusRejected {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("booking %s is %s", b.BookingNumber, strings.ToLower(b.Status.String())))
	}
	return nil
}

// ChangeInstallmentStatus sets an installment's status and, when given, its late fee.
// It returns the updated installment.
func (b *Booking) ChangeInstallmentStatus(number int, status InstallmentStatus, lateFees *decimal.Decimal, now time.Time) (Installment, error) {
	if err := b.ensureMutable(); err != nil {
		return Installment{}, err
	}

	previous, ok := b.Schedule.Find(number)
	if !ok {
		return Installment{}, shared.NewNotFoundError("installment", number)
	}

	schedule, err := UpdateStatus(b.Schedule, number, status, now)
	if err != nil {
		return Installment{}, err
	}
	if lateFees != nil {
		schedule, err = ApplyLateFee(schedule, number, *lateFees, now)
		if err != nil {
			return Installment{}, err
		}
	}

	b.Schedule = schedule
	b.Touch(now)
	updated, _ := b.Schedule.Find(number)
	b.AddDomainEvent(NewInstallmentStatusChangedEvent(b, previous.Status, updated))
	return updated, nil
}

// ApplyInstallmentLateFee sets the late fee on one installment
func (b *Booking) ApplyInstallmentLateFee(number int, fee decimal.Decimal, now time.Time) error {
	if err := b.ensureMutable(); err != nil {
		return err
	}
	schedule, err := ApplyLateFee(b.Schedule, number, fee, now)
	if err != nil {
		return err
	}
	b.Schedule = schedule
	b.Touch(now)
	return nil
}

// UpdateInstallmentNotes replaces the notes on one installment
func (b *Booking) UpdateInstallmentNotes(number int, notes string, now time.Time) error {
	if err := b.ensureMutable(); err != nil {
		return err
	}
	schedule, err := UpdateNotes(b.Schedule, number, notes, now)
	if err != nil {
		return err
	}
	b.Schedule = schedule
	b.Touch(now)
	return nil
}

// ExistingInstallmentProof returns the proof already attached to an installment, if any.
// Explicitly linked proofs win over name-matched legacy ones.
func (b *Booking) ExistingInstallmentProof(number int) (Document, bool) {
	matches := FindDocumentsForInstallment(b.Documents, number)
	for _, d := range matches {
		if d.InstallmentNumber != nil {
			return d, true
		}
	}
	if len(matches) > 0 {
		return matches[0], true
	}
	return Document{}, false
}

// AttachInstallmentProof stores doc as the proof of an installment. An existing
// proof for the same installment is replaced in place (keeping its id);
// otherwise the document is appended. Reports whether a document was replaced.
func (b *Booking) AttachInstallmentProof(number int, doc Document, now time.Time) (replaced bool, err error) {
	if err := b.ensureMutable(); err != nil {
		return false, err
	}
	if _, ok := b.Schedule.Find(number); !ok {
		return false, shared.NewNotFoundError("installment", number)
	}

	n := number
	doc.InstallmentNumber = &n
	doc.DocumentType = DocumentTypeInstallmentProof

	if existing, ok := b.ExistingInstallmentProof(number); ok {
		doc.ID = existing.ID
		b.replaceDocument(doc)
		replaced = true
	} else {
		if doc.ID == uuid.Nil {
			doc.ID = uuid.New()
		}
		b.Documents = append(slices.Clone(b.Documents), doc)
	}

	b.Touch(now)
	b.AddDomainEvent(NewInstallmentProofAttachedEvent(b, number, doc, replaced))
	return replaced, nil
}

// AddDocument appends a new document of any type
func (b *Booking) AddDocument(doc Document, now time.Time) error {
	if err := b.ensureMutable(); err != nil {
		return err
	}
	if !doc.DocumentType.IsValid() {
		return shared.NewValidationError("invalid document type", "document_type")
	}
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	b.Documents = append(slices.Clone(b.Documents), doc)
	b.Touch(now)
	return nil
}

// FindDocument returns the document with the given id
func (b *Booking) FindDocument(id uuid.UUID) (Document, bool) {
	idx := slices.IndexFunc(b.Documents, func(d Document) bool { return d.ID == id })
	if idx < 0 {
		return Document{}, false
	}
	return b.Documents[idx], true
}

// ProofInstallment returns the installment an INSTALLMENT_PROOF document proves:
// its explicit link, or else the first scheduled installment its name matches.
func (b *Booking) ProofInstallment(doc Document) (int, bool) {
	if doc.DocumentType != DocumentTypeInstallmentProof {
		return 0, false
	}
	if doc.InstallmentNumber != nil {
		return *doc.InstallmentNumber, true
	}
	for _, inst := range b.Schedule {
		if MatchesInstallment(doc, inst.Number) {
			return inst.Number, true
		}
	}
	return 0, false
}

// ReplaceDocumentFile swaps the file behind an existing document, keeping its id
// and type. A proof keeps the installment it proved; a legacy name match becomes
// an explicit link so the new file name no longer matters.
func (b *Booking) ReplaceDocumentFile(id uuid.UUID, file Document, now time.Time) (Document, error) {
	if err := b.ensureMutable(); err != nil {
		return Document{}, err
	}
	existing, ok := b.FindDocument(id)
	if !ok {
		return Document{}, shared.NewNotFoundError("document", id)
	}
	file.ID = existing.ID
	file.DocumentType = existing.DocumentType
	file.InstallmentNumber = nil
	if number, ok := b.ProofInstallment(existing); ok {
		file.InstallmentNumber = &number
	}
	b.replaceDocument(file)
	b.Touch(now)
	return file, nil
}

func (b *Booking) replaceDocument(doc Document) {
	docs := slices.Clone(b.Documents)
	for i := range docs {
		if docs[i].ID == doc.ID {
			docs[i] = doc
		}
	}
	b.Documents = docs
}

// Cancel soft-cancels the booking; the record and its schedule are kept
func (b *Booking) Cancel(reason string, now time.Time) error {
	if b.Status == BookingStatusCancelled {
		return shared.NewDomainError(shared.CodeInvalidState, "booking is already cancelled")
	}
	if !b.Status.CanTransitionTo(BookingStatusCancelled) {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("cannot cancel a %s booking", strings.ToLower(b.Status.String())))
	}
	b.Status = BookingStatusCancelled
	b.CancelledAt = &now
	b.CancelReason = reason
	b.Touch(now)
	b.AddDomainEvent(NewBookingCancelledEvent(b, reason))
	return nil
}

// IsActive reports whether the booking still takes part in reporting
func (b *Booking) IsActive() bool {
	return b.Status != BookingStatusCancelled && b.Status != BookingStatusRejected
}
