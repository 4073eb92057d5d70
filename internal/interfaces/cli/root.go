// Package cli interfaz de terminal del TPV: comandos de gestión (inventario,
// gastos, ventas, importación) y la caja interactiva.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/jhoicas/nexus-tpv/internal/application/pos"
	"github.com/jhoicas/nexus-tpv/internal/application/usecase"
	"github.com/jhoicas/nexus-tpv/internal/application/view"
	"github.com/jhoicas/nexus-tpv/internal/domain/receipt"
	"github.com/jhoicas/nexus-tpv/pkg/config"
	"github.com/jhoicas/nexus-tpv/pkg/jwt"
	"github.com/jhoicas/nexus-tpv/pkg/logger"
)

// TokenIssuer emisor de los tokens de emparejamiento.
const TokenIssuer = "nexus-tpv"

// AssistantStarter arranca el asistente móvil sobre el bucle de la caja y
// devuelve la URL de emparejamiento. El servidor se detiene al cancelar ctx.
type AssistantStarter func(ctx context.Context, loop *pos.Loop) (string, error)

// QRRenderer dibuja un QR con caracteres de bloque.
type QRRenderer interface {
	QRTerminal(content string) (string, error)
}

// ReceiptRenderer texto del ticket que se muestra al cobrar.
type ReceiptRenderer interface {
	Render(r receipt.Receipt) []byte
}

// Pairing datos para firmar el token del móvil.
type Pairing struct {
	Secret   string
	Terminal string
	TTL      time.Duration
	// Persistent el secreto viene de la configuración y sobrevive a reinicios.
	Persistent bool
}

// Token firma un token nuevo.
func (p Pairing) Token() (string, error) {
	return jwt.Generate(p.Secret, p.Terminal, TokenIssuer, p.TTL)
}

// Deps dependencias de los comandos.
type Deps struct {
	Config    *config.Config
	Log       *logger.Logger
	Format    *view.Formatter
	Products  *usecase.ProductUseCase
	Expenses  *usecase.ExpenseUseCase
	Reports   *usecase.ReportUseCase
	Import    *usecase.ImportUseCase
	Settings  *usecase.ConfigUseCase
	Caja      *pos.Controller
	Receipt   ReceiptRenderer // opcional
	QR        QRRenderer
	Pairing   Pairing
	Assistant AssistantStarter // nil = sin asistente
	// OpenScanner abre el lector de códigos; nil = no hay lector de dispositivo.
	OpenScanner func(device string) (io.ReadCloser, error)
}

// NewRootCommand construye el árbol de comandos.
func NewRootCommand(d *Deps) *cobra.Command {
	root := &cobra.Command{
		Use:           "tpv",
		Short:         "Terminal punto de venta Nexus",
		Long:          "Caja, inventario, gastos y ventas contra el servidor del TPV.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newDashboardCmd(d),
		newInventarioCmd(d),
		newGastosCmd(d),
		newVentasCmd(d),
		newImportarCmd(d),
		newAPIKeyCmd(d),
		newMovilCmd(d),
		newCajaCmd(d),
	)
	return root
}
