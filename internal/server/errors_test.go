package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	invoicedomain "github.com/smallledger/arview/internal/invoice/domain"
	kpidomain "github.com/smallledger/arview/internal/kpi/domain"
	"github.com/smallledger/arview/internal/qbo"
	riskdomain "github.com/smallledger/arview/internal/risk/domain"
	"github.com/smallledger/arview/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"invalid page", pagination.ErrInvalidPage, http.StatusBadRequest, "validation_error"},
		{"invalid size", pagination.ErrInvalidSize, http.StatusBadRequest, "validation_error"},
		{"invalid rank mode", riskdomain.ErrInvalidMode, http.StatusBadRequest, "validation_error"},
		{"inverted window", kpidomain.ErrInvalidWindow, http.StatusBadRequest, "validation_error"},
		{"invalid amount", invoicedomain.ErrInvalidAmount, http.StatusBadRequest, "validation_error"},
		{"not connected", qbo.ErrNotConnected, http.StatusUnauthorized, "not_connected"},
		{"reauthorize", qbo.ErrReauthorize, http.StatusUnauthorized, "reauthorize"},
		{"bad oauth state", qbo.ErrInvalidState, http.StatusUnauthorized, "reauthorize"},
		{"wrapped upstream", fmt.Errorf("%w: status 500", qbo.ErrUpstream), http.StatusBadGateway, "upstream_error"},
		{"record not found", gorm.ErrRecordNotFound, http.StatusNotFound, "not_found"},
		{"anything else", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, payload := mapError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantType, payload.Type)
		})
	}
}

func TestMapErrorValidationDetails(t *testing.T) {
	status, payload := mapError(newValidationError("from", "required", "from is required"))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Len(t, payload.Errors, 1)
	assert.Equal(t, "from", payload.Errors[0].Field)
	assert.Equal(t, "required", payload.Errors[0].Code)
}
