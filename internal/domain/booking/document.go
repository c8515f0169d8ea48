package booking

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/estatebook/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// DocumentType classifies an uploaded document
type DocumentType string

const (
	DocumentTypeInstallmentProof DocumentType = "INSTALLMENT_PROOF"
	DocumentTypeIDProof          DocumentType = "ID_PROOF"
	DocumentTypeBankStatement    DocumentType = "BANK_STATEMENT"
	DocumentTypeAgreement        DocumentType = "AGREEMENT"
	DocumentTypePaymentReceipt   DocumentType = "PAYMENT_RECEIPT"
	DocumentTypeOther            DocumentType = "OTHER"
)

// IsValid checks if the document type is valid
func (t DocumentType) IsValid() bool {
	switch t {
	case DocumentTypeInstallmentProof, DocumentTypeIDProof, DocumentTypeBankStatement,
		DocumentTypeAgreement, DocumentTypePaymentReceipt, DocumentTypeOther:
		return true
	}
	return false
}

const (
	// MaxDocumentSize is the hard upper bound for any uploaded document (10 MB)
	MaxDocumentSize int64 = 10 << 20
	// PDFMimeType is the only accepted content type for documents
	PDFMimeType = "application/pdf"
)

// Document is an uploaded proof artifact attached to a booking
type Document struct {
	ID           uuid.UUID    `json:"id"`
	URL          string       `json:"document_url"`
	StorageKey   string       `json:"storage_key"`
	OriginalName string       `json:"original_name"`
	MimeType     string       `json:"mime_type"`
	DocumentType DocumentType `json:"document_type"`
	Size         int64        `json:"size"`
	// InstallmentNumber links proof documents to an installment explicitly.
	// Nil for documents uploaded before the link existed; those are matched by name.
	InstallmentNumber *int       `json:"installment_number,omitempty"`
	UploadedBy        *uuid.UUID `json:"uploaded_by,omitempty"`
	UploadedAt        time.Time  `json:"uploaded_at"`
}

// IsPDF reports whether the document is a PDF by mime type or extension
func (d Document) IsPDF() bool {
	return strings.EqualFold(d.MimeType, PDFMimeType) ||
		strings.EqualFold(filepath.Ext(d.OriginalName), ".pdf")
}

// Documents is a slice of Document that implements GORM Scanner/Valuer for JSONB storage
type Documents []Document

// Value implements driver.Valuer interface for GORM to store as JSONB
func (d Documents) Value() (driver.Value, error) {
	if d == nil {
		return "[]", nil
	}
	return json.Marshal(d)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (d *Documents) Scan(value interface{}) error {
	if value == nil {
		*d = Documents{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan Documents: unsupported type")
	}

	return json.Unmarshal(bytes, d)
}

// MatchesInstallment reports whether doc is proof for the given installment.
// An explicit InstallmentNumber wins; otherwise the original file name must
// contain "installment" followed by an optional '_' or '-' and the number, with
// no further digit after it (so installment 3 never matches "installment_30").
func MatchesInstallment(doc Document, number int) bool {
	if doc.DocumentType != DocumentTypeInstallmentProof || number <= 0 {
		return false
	}
	if doc.InstallmentNumber != nil {
		return *doc.InstallmentNumber == number
	}
	return nameMentionsInstallment(strings.ToLower(doc.OriginalName), strconv.Itoa(number))
}

const installmentWord = "installment"

// nameMentionsInstallment scans every "installment" in name for a digit run,
// after at most one '_' or '-', that is exactly want.
func nameMentionsInstallment(name, want string) bool {
	for {
		i := strings.Index(name, installmentWord)
		if i < 0 {
			return false
		}
		name = name[i+len(installmentWord):]
		rest := name
		if rest != "" && (rest[0] == '_' || rest[0] == '-') {
			rest = rest[1:]
		}
		end := 0
		for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
			end++
		}
		if rest[:end] == want {
			return true
		}
	}
}

// FindDocumentsForInstallment returns every document that matches the installment, in order
func FindDocumentsForInstallment(docs []Document, number int) []Document {
	var out []Document
	for _, d := range docs {
		if MatchesInstallment(d, number) {
			out = append(out, d)
		}
	}
	return out
}

// PreviewDocument picks the document to show for an installment: the first PDF
// match, else the first match.
func PreviewDocument(docs []Document, number int) (Document, bool) {
	matches := FindDocumentsForInstallment(docs, number)
	if len(matches) == 0 {
		return Document{}, false
	}
	for _, d := range matches {
		if d.IsPDF() {
			return d, true
		}
	}
	return matches[0], true
}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// RenameForUpload builds "Installment_{n}_{base}.{ext}" so the name matcher
// recognises the file later. An existing Installment_{n}_ prefix is not repeated.
func RenameForUpload(originalName string, number int) string {
	name := filepath.Base(originalName)
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	base = strings.Trim(unsafeNameChars.ReplaceAllString(base, "_"), "_")

	prefix := fmt.Sprintf("Installment_%d_", number)
	if len(base) >= len(prefix) && strings.EqualFold(base[:len(prefix)], prefix) {
		base = base[len(prefix):]
	}
	if base == "" {
		base = "proof"
	}

	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ext == "" {
		ext = "pdf"
	}
	return fmt.Sprintf("%s%s.%s", prefix, base, ext)
}

// ValidateDocumentFile rejects anything that is not a PDF of at most limit bytes.
// A limit <= 0 or above MaxDocumentSize falls back to MaxDocumentSize.
// The returned error names the offending attribute ("extension", "size" or "file") in Fields.
func ValidateDocumentFile(name string, size, limit int64) error {
	if limit <= 0 || limit > MaxDocumentSize {
		limit = MaxDocumentSize
	}
	if !strings.EqualFold(filepath.Ext(name), ".pdf") {
		return uploadError("only PDF files are accepted", "extension")
	}
	if size <= 0 {
		return uploadError("file is empty", "file")
	}
	if size > limit {
		return uploadError(fmt.Sprintf("file exceeds the %d MB limit", limit>>20), "size")
	}
	return nil
}

func uploadError(message, field string) *shared.DomainError {
	err := shared.NewUploadError(message)
	err.Fields = []string{field}
	return err
}
