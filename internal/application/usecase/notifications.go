package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Nathan-Yinka/autochek-API/internal/application/apperr"
	"github.com/Nathan-Yinka/autochek-API/internal/application/dto"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/model"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/port"
)

// ListNotificationsUseCase returns the caller's inbox, newest first.
type ListNotificationsUseCase struct {
	inbox port.NotificationInbox
}

// NewListNotificationsUseCase wires dependencies.
func NewListNotificationsUseCase(inbox port.NotificationInbox) *ListNotificationsUseCase {
	return &ListNotificationsUseCase{inbox: inbox}
}

// Execute lists the caller's notifications.
func (uc *ListNotificationsUseCase) Execute(ctx context.Context, caller dto.Caller) ([]dto.NotificationResponse, error) {
	if err := requireUser(caller); err != nil {
		return nil, err
	}
	entries, err := uc.inbox.Inbox(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("load inbox: %w", err)
	}
	out := make([]dto.NotificationResponse, len(entries))
	for i, e := range entries {
		out[i] = toNotificationResponse(e)
	}
	return out, nil
}

// MarkNotificationsReadUseCase marks entries in the caller's inbox read.
// Only the caller's own notifications are touched.
type MarkNotificationsReadUseCase struct {
	inbox port.NotificationInbox
	clock Clock
}

// NewMarkNotificationsReadUseCase wires dependencies.
func NewMarkNotificationsReadUseCase(inbox port.NotificationInbox, clock Clock) *MarkNotificationsReadUseCase {
	return &MarkNotificationsReadUseCase{inbox: inbox, clock: clock}
}

// Execute marks every listed notification read and reports how many were in
// the inbox.
func (uc *MarkNotificationsReadUseCase) Execute(ctx context.Context, req dto.MarkNotificationsReadRequest) (dto.MarkNotificationsReadResponse, error) {
	if err := requireUser(req.Caller); err != nil {
		return dto.MarkNotificationsReadResponse{}, err
	}
	if len(req.NotificationIDs) == 0 {
		return dto.MarkNotificationsReadResponse{}, apperr.New(apperr.ErrInvalidRequest, "notification_ids must not be empty")
	}
	for _, id := range req.NotificationIDs {
		if err := validNotificationID(id); err != nil {
			return dto.MarkNotificationsReadResponse{}, err
		}
	}

	n, err := uc.inbox.MarkRead(ctx, req.Caller.UserID, req.NotificationIDs, uc.clock())
	if err != nil {
		return dto.MarkNotificationsReadResponse{}, fmt.Errorf("mark read: %w", err)
	}
	return dto.MarkNotificationsReadResponse{Updated: n}, nil
}

// One marks a single notification read and returns it.
func (uc *MarkNotificationsReadUseCase) One(ctx context.Context, req dto.NotificationRef) (dto.NotificationResponse, error) {
	if err := requireUser(req.Caller); err != nil {
		return dto.NotificationResponse{}, err
	}
	if err := validNotificationID(req.NotificationID); err != nil {
		return dto.NotificationResponse{}, err
	}

	n, err := uc.inbox.MarkRead(ctx, req.Caller.UserID, []string{req.NotificationID}, uc.clock())
	if err != nil {
		return dto.NotificationResponse{}, fmt.Errorf("mark read: %w", err)
	}
	if n == 0 {
		return dto.NotificationResponse{}, apperr.NotFound("notification", req.NotificationID)
	}

	entries, err := uc.inbox.Inbox(ctx, req.Caller.UserID)
	if err != nil {
		return dto.NotificationResponse{}, fmt.Errorf("load inbox: %w", err)
	}
	for _, e := range entries {
		if e.ID == req.NotificationID {
			return toNotificationResponse(e), nil
		}
	}
	// Trimmed by a delivery between the two calls.
	return dto.NotificationResponse{}, apperr.NotFound("notification", req.NotificationID)
}

func validNotificationID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperr.New(apperr.ErrInvalidRequest, "notification id %q is not a valid UUID", id)
	}
	return nil
}

func toNotificationResponse(e model.InboxEntry) dto.NotificationResponse {
	return dto.NotificationResponse{
		ID:        e.ID,
		Type:      string(e.Type),
		Title:     e.Title,
		Message:   e.Message,
		Data:      e.Data,
		Read:      e.Read(),
		ReadAt:    e.ReadAt,
		CreatedAt: e.CreatedAt,
	}
}
