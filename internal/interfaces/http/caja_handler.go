package http

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/nexus-tpv/internal/application/dto"
	"github.com/jhoicas/nexus-tpv/internal/application/ports"
	"github.com/jhoicas/nexus-tpv/internal/application/pos"
	"github.com/jhoicas/nexus-tpv/internal/application/usecase"
	"github.com/jhoicas/nexus-tpv/internal/application/view"
	"github.com/jhoicas/nexus-tpv/internal/domain"
	"github.com/jhoicas/nexus-tpv/internal/domain/ticket"
	"github.com/jhoicas/nexus-tpv/pkg/logger"
)

// PhotoField campo multipart con la foto del código.
const PhotoField = "foto"

// CajaHandler órdenes del móvil sobre el ticket de la caja. Todas pasan por el
// bucle de la caja, igual que las del teclado y el lector.
type CajaHandler struct {
	loop    *pos.Loop
	decoder ports.BarcodeDecoder
	f       *view.Formatter
	log     *logger.Logger
}

// NewCajaHandler construye el handler.
func NewCajaHandler(loop *pos.Loop, decoder ports.BarcodeDecoder, f *view.Formatter, log *logger.Logger) *CajaHandler {
	return &CajaHandler{loop: loop, decoder: decoder, f: f, log: log}
}

// Ticket devuelve el ticket en curso.
// GET /api/caja/ticket
func (h *CajaHandler) Ticket(c *fiber.Ctx) error {
	t, err := h.ticket(c.UserContext())
	if err != nil {
		return writeError(c, err, "No se pudo leer el ticket")
	}
	return c.JSON(t)
}

// Scan añade un producto por código.
// POST /api/caja/scan {"code": "8412345678905"}
func (h *CajaHandler) Scan(c *fiber.Ctx) error {
	var req dto.ScanRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: dto.CodeBadRequest, Message: "cuerpo JSON inválido"})
	}
	code := strings.TrimSpace(req.Code)
	if code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: dto.CodeBadRequest, Message: "Introduce un código"})
	}
	return h.scan(c, code, "")
}

// ScanImage decodifica el código de una foto y lo añade.
// POST /api/caja/scan-image (multipart, campo "foto")
func (h *CajaHandler) ScanImage(c *fiber.Ctx) error {
	fh, err := c.FormFile(PhotoField)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: dto.CodeBadRequest, Message: "falta la foto"})
	}
	if fh.Size > usecase.MaxUploadBytes {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(dto.ErrorResponse{Code: dto.CodeBadRequest, Message: "La foto supera los 16 MB"})
	}
	f, err := fh.Open()
	if err != nil {
		return writeError(c, err, "No se pudo leer la foto")
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, usecase.MaxUploadBytes))
	if err != nil {
		return writeError(c, err, "No se pudo leer la foto")
	}

	code, format, err := h.decoder.DecodeImage(data)
	if errors.Is(err, domain.ErrImageTooLarge) {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(dto.ErrorResponse{Code: dto.CodeBadRequest, Message: "La foto tiene demasiada resolución"})
	}
	if err != nil {
		h.log.Debug().Err(err).Str("terminal", GetTerminal(c)).Msg("foto sin código legible")
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: dto.CodeNoBarcode, Message: "No se detectó ningún código en la foto"})
	}
	return h.scan(c, code, format)
}

// RemoveLine quita una línea; idx es la posición mostrada (base 1).
// DELETE /api/caja/lineas/:idx
func (h *CajaHandler) RemoveLine(c *fiber.Ctx) error {
	idx, err := c.ParamsInt("idx")
	if err != nil || idx < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: dto.CodeBadRequest, Message: "línea inválida"})
	}
	var removeErr error
	if err := h.loop.Do(c.UserContext(), func(ctrl *pos.Controller) { removeErr = ctrl.RemoveLine(idx - 1) }); err != nil {
		return writeError(c, err, "Caja no disponible")
	}
	if removeErr != nil {
		return writeError(c, removeErr, "No se pudo quitar la línea")
	}
	t, err := h.ticket(c.UserContext())
	if err != nil {
		return writeError(c, err, "No se pudo leer el ticket")
	}
	return c.JSON(t)
}

func (h *CajaHandler) scan(c *fiber.Ctx, code, format string) error {
	ctx := c.UserContext()
	p, err := h.loop.Scan(ctx, code, pos.SourceAssistant)
	if err != nil {
		h.log.Debug().Err(err).Str("codigo", code).Str("terminal", GetTerminal(c)).Msg("escaneo desde el móvil fallido")
		return writeError(c, err, "Error al escanear")
	}
	t, err := h.ticket(ctx)
	if err != nil {
		return writeError(c, err, "No se pudo leer el ticket")
	}
	return c.JSON(dto.ScanResponse{
		Codigo:  p.Codigo,
		Nombre:  p.Nombre,
		Formato: format,
		Message: "Añadido: " + p.Nombre,
		Ticket:  t,
	})
}

func (h *CajaHandler) ticket(ctx context.Context) (dto.TicketDTO, error) {
	var (
		lines []ticket.Line
		state ticket.State
	)
	if err := h.loop.Do(ctx, func(ctrl *pos.Controller) {
		lines = ctrl.Lines()
		state = ctrl.State()
	}); err != nil {
		return dto.TicketDTO{}, err
	}
	return dto.NewTicketDTO(view.Ticket(lines, h.f), state == ticket.StateFinalizing), nil
}
