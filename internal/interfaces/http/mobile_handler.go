package http

import (
	_ "embed"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/nexus-tpv/internal/application/dto"
)

//go:embed static/movil.html
var mobilePage []byte

// QRSize lado en píxeles del QR de emparejamiento.
const QRSize = 320

// QREncoder genera el PNG de un QR.
type QREncoder interface {
	QRPNG(content string, size int) ([]byte, error)
}

// MobileHandler página del móvil y QR de emparejamiento.
type MobileHandler struct {
	url string
	qr  QREncoder
}

// NewMobileHandler url es la dirección completa (con token) que abre el móvil.
func NewMobileHandler(url string, qr QREncoder) *MobileHandler {
	return &MobileHandler{url: url, qr: qr}
}

// Page sirve la página del asistente. El token lo lee la propia página de la URL.
// GET /movil
func (h *MobileHandler) Page(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Send(mobilePage)
}

// QR PNG con la URL de emparejamiento, para enlazar otro móvil desde uno ya emparejado.
// GET /movil/qr
func (h *MobileHandler) QR(c *fiber.Ctx) error {
	png, err := h.qr.QRPNG(h.url, QRSize)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: dto.CodeInternal, Message: err.Error()})
	}
	c.Set(fiber.HeaderContentType, "image/png")
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Send(png)
}
