package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jhoicas/nexus-tpv/internal/application/ports"
	"github.com/jhoicas/nexus-tpv/internal/application/pos"
	"github.com/jhoicas/nexus-tpv/internal/application/usecase"
	"github.com/jhoicas/nexus-tpv/internal/application/view"
	"github.com/jhoicas/nexus-tpv/internal/domain/receipt"
	"github.com/jhoicas/nexus-tpv/internal/domain/scan"
	"github.com/jhoicas/nexus-tpv/internal/infrastructure/barcode"
	"github.com/jhoicas/nexus-tpv/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/nexus-tpv/internal/infrastructure/pdf"
	"github.com/jhoicas/nexus-tpv/internal/infrastructure/printer"
	"github.com/jhoicas/nexus-tpv/internal/infrastructure/scanner"
	"github.com/jhoicas/nexus-tpv/internal/infrastructure/tpvapi"
	"github.com/jhoicas/nexus-tpv/internal/interfaces/cli"
	httpRouter "github.com/jhoicas/nexus-tpv/internal/interfaces/http"
	"github.com/jhoicas/nexus-tpv/pkg/config"
	"github.com/jhoicas/nexus-tpv/pkg/jwt"
	"github.com/jhoicas/nexus-tpv/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cargar configuración:", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Debug().
		Str("env", cfg.App.Env).
		Str("api", cfg.API.BaseURL).
		Msg("iniciando terminal")

	m := metrics.New()
	client := tpvapi.NewClient(cfg.API.BaseURL, cfg.API.Timeout, log.Component("tpvapi"), tpvapi.WithObserver(m))
	format := view.NewFormatter(cfg.Store.Locale, cfg.Store.Currency, time.Local)

	// Tickets: texto en la terminal y, si hay carpeta, copia en disco (texto y/o PDF).
	textReceipt := printer.NewTextRenderer(format, printer.DefaultWidth)
	var receiptPrinter ports.ReceiptPrinter
	if cfg.Receipt.Dir != "" {
		fp, err := printer.NewFilePrinter(cfg.Receipt.Dir, cfg.Receipt.Format, textReceipt, infrapdf.NewReceiptPDF(format), log.Component("printer"))
		if err != nil {
			log.Fatal().Err(err).Msg("configurar impresión de tickets")
		}
		receiptPrinter = fp
	}

	codes := barcode.NewGenerator()
	caja := pos.NewController(pos.Deps{
		Catalog: client,
		Sales:   client,
		Printer: receiptPrinter,
		Metrics: m,
		Log:     log.Component("caja"),
		Receipt: receipt.Settings{
			StoreName: cfg.Store.Name,
			CIF:       cfg.Store.CIF,
			TaxRate:   cfg.Store.TaxRate,
			Footer:    cfg.Store.Footer,
		},
		Scanner: scan.Config{
			GapThreshold: cfg.Scanner.GapThreshold,
			MinLength:    cfg.Scanner.MinLength,
		},
	})

	// Sin secreto configurado cada arranque firma con uno nuevo: los móviles
	// emparejados antes dejan de tener acceso.
	secret := cfg.Assistant.TokenSecret
	persistent := secret != ""
	if !persistent {
		if secret, err = jwt.RandomSecret(); err != nil {
			log.Fatal().Err(err).Msg("generar secreto del asistente")
		}
	}
	pairing := cli.Pairing{
		Secret:     secret,
		Terminal:   cfg.App.Name,
		TTL:        cfg.Assistant.TokenTTL,
		Persistent: persistent,
	}
	settings := usecase.NewConfigUseCase(client, log.Component("config"))

	deps := &cli.Deps{
		Config:   cfg,
		Log:      log,
		Format:   format,
		Products: usecase.NewProductUseCase(client, codes, log.Component("inventario")),
		Expenses: usecase.NewExpenseUseCase(client, log.Component("gastos")),
		Reports:  usecase.NewReportUseCase(client, client),
		Import:   usecase.NewImportUseCase(client, client, log.Component("importar")),
		Settings: settings,
		Caja:     caja,
		Receipt:  textReceipt,
		QR:       codes,
		Pairing:  pairing,
		Assistant: func(ctx context.Context, loop *pos.Loop) (string, error) {
			return startAssistant(ctx, cfg, log.Component("asistente"), loop, pairing, settings, codes, format, m)
		},
		OpenScanner: func(device string) (io.ReadCloser, error) {
			return scanner.Open(device)
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand(deps).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "✗", view.ToastFromError(err, err.Error()).Message)
		stop()
		os.Exit(1)
	}
}

// startAssistant arranca el servidor del móvil y devuelve la URL del QR. El
// servidor se apaga cuando ctx se cancela.
func startAssistant(
	ctx context.Context,
	cfg *config.Config,
	log *logger.Logger,
	loop *pos.Loop,
	pairing cli.Pairing,
	settings *usecase.ConfigUseCase,
	codes *barcode.Generator,
	format *view.Formatter,
	m *metrics.Metrics,
) (string, error) {
	token, err := pairing.Token()
	if err != nil {
		return "", fmt.Errorf("firmar token: %w", err)
	}
	url := settings.MobileURL(ctx, cfg.Assistant.Port, token)

	app := httpRouter.NewApp(cfg.App.Name, httpRouter.SwaggerFile, log)
	httpRouter.Router(app, httpRouter.RouterDeps{
		Loop:        loop,
		Decoder:     barcode.NewDecoder(),
		QR:          codes,
		Formatter:   format,
		MobileURL:   url,
		TokenSecret: pairing.Secret,
		Metrics:     m.Handler(),
		Log:         log,
	})

	// Escuchar aquí para informar de un puerto ocupado antes de mostrar el QR.
	ln, err := net.Listen("tcp", cfg.Assistant.Addr())
	if err != nil {
		return "", fmt.Errorf("escuchar en %s: %w", cfg.Assistant.Addr(), err)
	}
	go func() {
		if err := app.Listener(ln); err != nil {
			log.Error().Err(err).Msg("servidor del asistente finalizado")
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("apagado del asistente")
		}
	}()
	log.Info().Str("addr", cfg.Assistant.Addr()).Msg("asistente móvil escuchando")
	return url, nil
}
