package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/nexus-tpv/internal/application/dto"
	"github.com/jhoicas/nexus-tpv/internal/application/pos"
	"github.com/jhoicas/nexus-tpv/internal/application/view"
	"github.com/jhoicas/nexus-tpv/internal/domain"
)

// statusFor traduce la taxonomía de errores a código HTTP.
func statusFor(err error) (int, string) {
	var be *domain.BusinessError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, dto.CodeBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, dto.CodeNotFound
	case errors.Is(err, domain.ErrTicketBusy), errors.Is(err, domain.ErrFinalizeInProgress):
		return fiber.StatusConflict, dto.CodeBusy
	case errors.As(err, &be):
		return fiber.StatusUnprocessableEntity, dto.CodeRejected
	case errors.Is(err, domain.ErrTransport), errors.Is(err, domain.ErrMalformedResponse):
		return fiber.StatusBadGateway, dto.CodeUpstream
	case errors.Is(err, pos.ErrLoopStopped), errors.Is(err, context.Canceled):
		return fiber.StatusServiceUnavailable, dto.CodeInternal
	default:
		return fiber.StatusInternalServerError, dto.CodeInternal
	}
}

// writeError responde con el mismo mensaje que vería el cajero en pantalla.
func writeError(c *fiber.Ctx, err error, fallback string) error {
	status, code := statusFor(err)
	return c.Status(status).JSON(dto.ErrorResponse{
		Code:    code,
		Message: view.ToastFromError(err, fallback).Message,
	})
}
