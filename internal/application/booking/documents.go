package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/estatebook/backend/internal/domain/booking"
	"github.com/estatebook/backend/internal/domain/shared"
	"github.com/estatebook/backend/internal/infrastructure/telemetry"
)

// ProofStorageKey is the object key of an installment's proof. It is stable per
// installment, so re-uploading overwrites the previous object with one write.
func ProofStorageKey(bookingID uuid.UUID, number int) string {
	return fmt.Sprintf("bookings/%s/installment-proofs/installment_%d.pdf", bookingID, number)
}

func documentStorageKey(bookingID, documentID uuid.UUID) string {
	return fmt.Sprintf("bookings/%s/documents/%s.pdf", bookingID, documentID)
}

// checkFile rejects non-PDF or oversized files before anything else happens
func (s *BookingService) checkFile(ctx context.Context, file UploadFile) error {
	err := booking.ValidateDocumentFile(file.Name, file.Size, s.opts.uploadLimit)
	if err == nil {
		return nil
	}
	reason := "invalid"
	var de *shared.DomainError
	if errors.As(err, &de) && len(de.Fields) > 0 {
		reason = de.Fields[0]
	}
	s.opts.metrics.UploadRejected(ctx, reason)
	s.log(ctx).Info("Upload rejected",
		zap.String("file_name", file.Name),
		zap.Int64("size", file.Size),
		zap.String("reason", reason),
	)
	return err
}

func (s *BookingService) put(ctx context.Context, key string, file UploadFile) (string, error) {
	url, err := s.storage.Put(ctx, key, file.Body, file.Size, booking.PDFMimeType)
	if err != nil {
		if shared.ErrorCode(err) != "" {
			return "", err
		}
		return "", shared.NewUpstreamError("upload document", err)
	}
	return url, nil
}

// UploadInstallmentProof stores a PDF as the proof of one installment. The file
// is checked before any repository or storage call. A replaced proof is written
// over its existing object; a first proof goes under ProofStorageKey.
func (s *BookingService) UploadInstallmentProof(ctx context.Context, actor shared.Actor, id uuid.UUID, number int, file UploadFile) (*BookingResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, "UploadInstallmentProof",
		telemetry.WithActor(actor),
		telemetry.WithAttribute(telemetry.SpanAttrBookingID, id.String()),
		telemetry.WithAttribute(telemetry.SpanAttrInstallmentNumber, number),
		telemetry.WithAttribute(telemetry.SpanAttrFileSize, file.Size),
	)
	defer span.End()

	if err := validateInstallmentNumber(number); err != nil {
		return nil, err
	}
	if err := s.checkFile(ctx, file); err != nil {
		return nil, err
	}

	b, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !b.IsActive() {
		return nil, shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("booking %s is %s", b.BookingNumber, b.Status))
	}
	if _, ok := b.Schedule.Find(number); !ok {
		return nil, shared.NewNotFoundError("installment", number)
	}

	key := ProofStorageKey(b.ID, number)
	if existing, ok := b.ExistingInstallmentProof(number); ok && existing.StorageKey != "" {
		key = existing.StorageKey
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrStorageKey, key)
	url, err := s.put(ctx, key, file)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	now := s.opts.now()
	replaced, err := b.AttachInstallmentProof(number, booking.Document{
		URL:          url,
		StorageKey:   key,
		OriginalName: booking.RenameForUpload(file.Name, number),
		MimeType:     booking.PDFMimeType,
		Size:         file.Size,
		UploadedBy:   actor.UserRef(),
		UploadedAt:   now,
	}, now)
	if err != nil {
		return nil, err
	}
	if err := s.bookings.Save(ctx, b); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.publishEvents(ctx, b)
	s.opts.metrics.ProofUploaded(ctx, file.Size, replaced)

	s.log(ctx).Info("Installment proof uploaded",
		zap.String("booking_id", b.ID.String()),
		zap.Int("installment_number", number),
		zap.Bool("replaced", replaced),
	)
	resp := ToBookingResponse(b, now)
	return &resp, nil
}

// AddDocument stores a new document of any type. An INSTALLMENT_PROOF with an
// installment number goes through UploadInstallmentProof.
func (s *BookingService) AddDocument(ctx context.Context, actor shared.Actor, id uuid.UUID, documentType string, installmentNumber *int, file UploadFile) (*BookingResponse, error) {
	docType := booking.DocumentType(strings.ToUpper(strings.TrimSpace(documentType)))
	if docType == "" {
		docType = booking.DocumentTypeOther
	}
	if !docType.IsValid() {
		return nil, shared.NewValidationError("invalid document type", "document_type")
	}
	if docType == booking.DocumentTypeInstallmentProof && installmentNumber != nil {
		return s.UploadInstallmentProof(ctx, actor, id, *installmentNumber, file)
	}

	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, "AddDocument",
		telemetry.WithActor(actor),
		telemetry.WithAttribute(telemetry.SpanAttrBookingID, id.String()),
		telemetry.WithAttribute(telemetry.SpanAttrDocumentType, string(docType)),
		telemetry.WithAttribute(telemetry.SpanAttrFileSize, file.Size),
	)
	defer span.End()

	if err := s.checkFile(ctx, file); err != nil {
		return nil, err
	}
	b, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !b.IsActive() {
		return nil, shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("booking %s is %s", b.BookingNumber, b.Status))
	}

	docID := uuid.New()
	key := documentStorageKey(b.ID, docID)
	url, err := s.put(ctx, key, file)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	now := s.opts.now()
	if err := b.AddDocument(booking.Document{
		ID:           docID,
		URL:          url,
		StorageKey:   key,
		OriginalName: file.Name,
		MimeType:     booking.PDFMimeType,
		DocumentType: docType,
		Size:         file.Size,
		UploadedBy:   actor.UserRef(),
		UploadedAt:   now,
	}, now); err != nil {
		return nil, err
	}
	if err := s.bookings.Save(ctx, b); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.publishEvents(ctx, b)
	s.opts.metrics.ProofUploaded(ctx, file.Size, false)

	resp := ToBookingResponse(b, now)
	return &resp, nil
}

// UpdateDocument replaces the file behind an existing document. The new file is
// written over the document's existing object key.
func (s *BookingService) UpdateDocument(ctx context.Context, actor shared.Actor, id, documentID uuid.UUID, file UploadFile) (*BookingResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, "UpdateDocument",
		telemetry.WithActor(actor),
		telemetry.WithAttribute(telemetry.SpanAttrBookingID, id.String()),
		telemetry.WithAttribute(telemetry.SpanAttrFileSize, file.Size),
	)
	defer span.End()

	if err := s.checkFile(ctx, file); err != nil {
		return nil, err
	}
	b, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	existing, ok := b.FindDocument(documentID)
	if !ok {
		return nil, shared.NewNotFoundError("document", documentID)
	}
	if !b.IsActive() {
		return nil, shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("booking %s is %s", b.BookingNumber, b.Status))
	}

	key := existing.StorageKey
	if key == "" {
		key = documentStorageKey(b.ID, existing.ID)
	}
	name := file.Name
	if number, ok := b.ProofInstallment(existing); ok {
		name = booking.RenameForUpload(file.Name, number)
	}

	url, err := s.put(ctx, key, file)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	now := s.opts.now()
	if _, err := b.ReplaceDocumentFile(documentID, booking.Document{
		URL:          url,
		StorageKey:   key,
		OriginalName: name,
		MimeType:     booking.PDFMimeType,
		Size:         file.Size,
		UploadedBy:   actor.UserRef(),
		UploadedAt:   now,
	}, now); err != nil {
		return nil, err
	}
	if err := s.bookings.Save(ctx, b); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.publishEvents(ctx, b)
	s.opts.metrics.ProofUploaded(ctx, file.Size, true)

	resp := ToBookingResponse(b, now)
	return &resp, nil
}

// ListInstallmentDocuments returns the documents proving an installment and the
// one to preview, with a short-lived download URL for the preview.
func (s *BookingService) ListInstallmentDocuments(ctx context.Context, actor shared.Actor, id uuid.UUID, number int) (*InstallmentDocumentsResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, "ListInstallmentDocuments",
		telemetry.WithActor(actor),
		telemetry.WithAttribute(telemetry.SpanAttrBookingID, id.String()),
		telemetry.WithAttribute(telemetry.SpanAttrInstallmentNumber, number),
	)
	defer span.End()

	if err := validateInstallmentNumber(number); err != nil {
		return nil, err
	}
	b, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if _, ok := b.Schedule.Find(number); !ok {
		return nil, shared.NewNotFoundError("installment", number)
	}

	matches := booking.FindDocumentsForInstallment(b.Documents, number)
	resp := &InstallmentDocumentsResponse{
		InstallmentNumber: number,
		HasProof:          len(matches) > 0,
		Documents:         make([]DocumentResponse, 0, len(matches)),
	}
	for _, d := range matches {
		resp.Documents = append(resp.Documents, ToDocumentResponse(d))
	}

	if doc, ok := booking.PreviewDocument(b.Documents, number); ok {
		preview := ToDocumentResponse(doc)
		if doc.StorageKey != "" {
			url, err := s.storage.DownloadURL(ctx, doc.StorageKey)
			if err != nil {
				telemetry.RecordError(span, err)
				return nil, shared.NewUpstreamError("sign download URL", err)
			}
			preview.DownloadURL = url
		}
		resp.Preview = &preview
	}
	return resp, nil
}
