package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Nathan-Yinka/autochek-API/internal/application/apperr"
	"github.com/Nathan-Yinka/autochek-API/internal/domain/port"
)

// Code maps an application error to its gRPC status code.
func Code(err error) codes.Code {
	switch {
	case err == nil:
		return codes.OK
	case errors.Is(err, port.ErrStaleVersion):
		return codes.Aborted
	case errors.Is(err, apperr.ErrNotFound):
		return codes.NotFound
	case errors.Is(err, apperr.ErrInvalidRequest):
		return codes.InvalidArgument
	case errors.Is(err, apperr.ErrConflict), errors.Is(err, apperr.ErrExpired):
		return codes.FailedPrecondition
	case errors.Is(err, apperr.ErrForbidden):
		return codes.PermissionDenied
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	}
	if s, ok := status.FromError(err); ok {
		return s.Code()
	}
	return codes.Internal
}

// toStatus converts err into a gRPC status error. Internal failures are logged
// and their detail withheld from the client.
func (h *FinancingHandler) toStatus(ctx context.Context, err error) error {
	code := Code(err)
	if code == codes.Internal || code == codes.Unknown {
		h.logger.ErrorContext(ctx, "request failed", "error", err)
		return status.Error(codes.Internal, "internal error")
	}
	return status.Error(code, err.Error())
}
