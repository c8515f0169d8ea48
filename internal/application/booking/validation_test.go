package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estatebook/backend/internal/domain/shared"
)

func TestValidateRequest_NestedFields(t *testing.T) {
	err := validateRequest(BatchUpdateInstallmentsRequest{
		Updates: []UpdateInstallmentStatusRequest{
			{InstallmentNumber: 1, Status: "PAID"},
			{InstallmentNumber: 0, Status: "PAID"},
		},
	})

	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, []string{"updates[1].installment_number"}, de.Fields)
}

func TestValidateRequest_EmptyBatch(t *testing.T) {
	err := validateRequest(BatchUpdateInstallmentsRequest{})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestValidateRequest_StartDateFormat(t *testing.T) {
	req := createRequest()
	req.StartDate = "15/01/2024"

	var de *shared.DomainError
	require.ErrorAs(t, validateRequest(req), &de)
	assert.Equal(t, []string{"start_date"}, de.Fields)
}

func TestFieldPath(t *testing.T) {
	assert.Equal(t, "customer_name", fieldPath("CreateBookingRequest.customer_name"))
	assert.Equal(t, "plain", fieldPath("plain"))
}
