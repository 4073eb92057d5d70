// Package http asistente móvil de la caja: un teléfono en la misma red escanea
// el QR de emparejamiento y puede añadir productos al ticket (tecleando el código
// o con una foto) y quitar líneas.
package http

import (
	nethttp "net/http"
	"os"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/nexus-tpv/internal/application/dto"
	"github.com/jhoicas/nexus-tpv/internal/application/ports"
	"github.com/jhoicas/nexus-tpv/internal/application/pos"
	"github.com/jhoicas/nexus-tpv/internal/application/view"
	"github.com/jhoicas/nexus-tpv/pkg/logger"
)

// SwaggerFile documentación OpenAPI servida en /docs si existe.
const SwaggerFile = "./docs/swagger.json"

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Loop        *pos.Loop
	Decoder     ports.BarcodeDecoder
	QR          QREncoder
	Formatter   *view.Formatter
	MobileURL   string // URL completa del QR, con token
	TokenSecret string
	Metrics     nethttp.Handler // opcional
	Log         *logger.Logger
}

// NewApp crea la aplicación Fiber con recuperación de pánicos, log de peticiones
// y Swagger UI en /docs cuando docsFile existe.
func NewApp(name, docsFile string, log *logger.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               name,
		ReadTimeout:           time.Second * 10,
		WriteTimeout:          time.Second * 10,
		IdleTimeout:           time.Second * 60,
		BodyLimit:             17 << 20,
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				code = fe.Code
			}
			return c.Status(code).JSON(dto.ErrorResponse{Code: dto.CodeInternal, Message: err.Error()})
		},
	})
	app.Use(recover.New())
	app.Use(requestLogger(log))

	if docsFile != "" {
		if _, err := os.Stat(docsFile); err == nil {
			app.Use(swagger.New(swagger.Config{
				BasePath: "/",
				FilePath: docsFile,
				Path:     "docs",
				Title:    "Nexus TPV · Asistente móvil",
			}))
		}
	}
	return app
}

// Router registra las rutas del asistente.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics))
	}

	// La página es pública; las llamadas que hace llevan el token.
	mobile := NewMobileHandler(deps.MobileURL, deps.QR)
	app.Get("/movil", mobile.Page)

	pairing := PairingMiddleware(deps.TokenSecret)
	app.Get("/movil/qr", pairing, mobile.QR)

	caja := app.Group("/api/caja", pairing)
	cajaHandler := NewCajaHandler(deps.Loop, deps.Decoder, deps.Formatter, deps.Log)
	caja.Get("/ticket", cajaHandler.Ticket)
	caja.Post("/scan", cajaHandler.Scan)
	caja.Post("/scan-image", cajaHandler.ScanImage)
	caja.Delete("/lineas/:idx", cajaHandler.RemoveLine)
}

func requestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		log.Debug().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Dur("latency", time.Since(start)).
			Str("ip", c.IP()).
			Msg("petición del asistente")
		return err
	}
}
