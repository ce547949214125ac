package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nathan-Yinka/autochek-API/internal/application/apperr"
	"github.com/Nathan-Yinka/autochek-API/internal/application/dto"
	"github.com/Nathan-Yinka/autochek-API/internal/application/usecase"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/event"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/model"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/valueobject"
	"github.com/Nathan-Yinka/autochek-API/pkg/testutil"
)

func TestUpdateApplicationStatus_Execute(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		from       valueobject.LoanApplicationStatus
		target     string
		reason     string
		caller     dto.Caller
		wantErr    error
		wantNotify model.NotificationType
	}{
		{"submitted to under review", valueobject.LoanApplicationStatusSubmitted, "UNDER_REVIEW", "", admin, nil, model.NotificationLoanStatusUpdated},
		{"pending offer to approved", valueobject.LoanApplicationStatusPendingOffer, "APPROVED", "", admin, nil, model.NotificationLoanApproved},
		{"rejected with reason", valueobject.LoanApplicationStatusUnderReview, "REJECTED", "Income not verified", admin, nil, model.NotificationLoanRejected},
		{"rejected without reason", valueobject.LoanApplicationStatusSubmitted, "REJECTED", "", admin, nil, model.NotificationLoanRejected},
		{"submitted straight to approved", valueobject.LoanApplicationStatusSubmitted, "APPROVED", "", admin, apperr.ErrConflict, ""},
		{"terminal state", valueobject.LoanApplicationStatusRejected, "UNDER_REVIEW", "", admin, apperr.ErrConflict, ""},
		{"unknown status", valueobject.LoanApplicationStatusSubmitted, "ARCHIVED", "", admin, apperr.ErrInvalidRequest, ""},
		{"non admin", valueobject.LoanApplicationStatusSubmitted, "UNDER_REVIEW", "", owner, apperr.ErrForbidden, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			app := h.seedApplication(testutil.TestUserID, "a@b.com", tt.from)

			resp, err := usecase.NewUpdateApplicationStatusUseCase(h.uow, h.dispatcher, h.clock).
				Execute(ctx, dto.UpdateApplicationStatusRequest{
					Caller:          tt.caller,
					ApplicationID:   app.ID,
					Status:          tt.target,
					RejectionReason: tt.reason,
				})
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				assert.Equal(t, tt.from, h.store.app(app.ID).Status)
				assert.Empty(t, h.sink.users)
				return
			}
			require.NoError(t, err)

			assert.Equal(t, tt.target, resp.Status)
			assert.Equal(t, tt.target, h.store.app(app.ID).Status.String())
			require.Len(t, h.sink.users, 1)
			assert.Equal(t, tt.wantNotify, h.sink.users[0].n.Type)
			assert.Equal(t, testutil.TestUserID, h.sink.users[0].userID)
			assert.Equal(t, []string{event.TypeLoanApplicationStatusChanged}, h.publisher.types())
		})
	}
}

func TestUpdateApplicationStatus_RejectionReasonReplacesReasons(t *testing.T) {
	h := newHarness()
	app := h.seedApplication(testutil.TestUserID, "a@b.com", valueobject.LoanApplicationStatusSubmitted)

	resp, err := usecase.NewUpdateApplicationStatusUseCase(h.uow, h.dispatcher, h.clock).
		Execute(context.Background(), dto.UpdateApplicationStatusRequest{
			Caller:          admin,
			ApplicationID:   app.ID,
			Status:          "REJECTED",
			RejectionReason: "Income not verified",
		})
	require.NoError(t, err)
	assert.Equal(t, []string{"Income not verified"}, resp.EligibilityReasons)
	assert.Contains(t, h.sink.users[0].n.Message, "Income not verified")
}
