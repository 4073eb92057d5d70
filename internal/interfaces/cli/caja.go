package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/jhoicas/nexus-tpv/internal/application/pos"
	"github.com/jhoicas/nexus-tpv/internal/application/view"
	"github.com/jhoicas/nexus-tpv/internal/domain/entity"
	"github.com/jhoicas/nexus-tpv/internal/domain/scan"
	"github.com/jhoicas/nexus-tpv/internal/domain/ticket"
	"github.com/jhoicas/nexus-tpv/internal/infrastructure/scanner"
)

const cajaHelp = `Escribe un código y pulsa Enter para añadirlo al ticket.
  quitar N       quita la línea N
  vaciar         vacía el ticket
  entregado X    importe entregado por el cliente (muestra el cambio)
  cobrar [X]     cobra el ticket; X = importe entregado (por defecto exacto)
  catalogo       muestra el catálogo rápido; +N añade el producto N
  ayuda          esta ayuda
  salir          cierra la caja`

func newCajaCmd(d *Deps) *cobra.Command {
	var (
		device    string
		asistente bool
	)
	cmd := &cobra.Command{
		Use:   "caja",
		Short: "Caja interactiva: escanea, cobra e imprime tickets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if device == "" {
				device = d.Config.Scanner.Device
			}
			return runCaja(cmd.Context(), d, cmd.InOrStdin(), NewPresenter(cmd.OutOrStdout()), device, asistente)
		},
	}
	cmd.Flags().StringVar(&device, "escaner", "", "dispositivo del lector de códigos (ej. /dev/ttyACM0)")
	cmd.Flags().BoolVar(&asistente, "asistente", false, "arranca el asistente móvil y muestra el QR")
	return cmd
}

// cajaSession una sesión de caja en la terminal. Todas las órdenes pasan por
// el bucle; la sesión sólo guarda el último catálogo mostrado.
type cajaSession struct {
	d       *Deps
	loop    *pos.Loop
	p       *Presenter
	catalog []entity.Producto
}

func runCaja(ctx context.Context, d *Deps, in io.Reader, p *Presenter, device string, asistente bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loop := pos.NewLoop(d.Caja)
	loopDone := make(chan error, 1)
	go func() { loopDone <- loop.Run(ctx) }()
	defer func() {
		cancel()
		<-loopDone
	}()

	s := &cajaSession{d: d, loop: loop, p: p}

	if asistente {
		if d.Assistant == nil {
			return errors.New("asistente móvil no disponible")
		}
		url, err := d.Assistant(ctx, loop)
		if err != nil {
			return fmt.Errorf("arrancar asistente: %w", err)
		}
		if err := showQR(p, d.QR, url); err != nil {
			return err
		}
	}

	if device != "" {
		if err := s.startScanner(ctx, device); err != nil {
			return err
		}
	}

	p.Println(cajaHelp)
	s.showTicket(ctx)

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if quit := s.handle(ctx, line); quit {
				return nil
			}
		}
	}
}

// startScanner lee el lector de códigos y entrega cada pulsación al bucle.
func (s *cajaSession) startScanner(ctx context.Context, device string) error {
	if s.d.OpenScanner == nil {
		return errors.New("lector de códigos no disponible")
	}
	dev, err := s.d.OpenScanner(device)
	if err != nil {
		return fmt.Errorf("abrir lector %s: %w", device, err)
	}
	keys := make(chan scan.Key, 64)
	reader := scanner.NewReader(dev, time.Now)
	// Run queda bloqueado en la lectura; cerrar el dispositivo lo desbloquea.
	go func() {
		<-ctx.Done()
		_ = dev.Close()
	}()
	go func() {
		if err := reader.Run(ctx, keys); err != nil && ctx.Err() == nil {
			s.d.Log.Warn().Err(err).Str("device", device).Msg("lector de códigos detenido")
		}
	}()
	go func() {
		for k := range keys {
			p, err := s.loop.Key(ctx, k)
			if err != nil {
				s.p.Toast(view.ToastFromError(err, "Error al escanear"))
				continue
			}
			if p != nil {
				s.p.Toast(view.Success("Añadido: " + p.Nombre))
				s.showTicket(ctx)
			}
		}
	}()
	s.p.Println("Lector de códigos:", device)
	return nil
}

// handle ejecuta una línea de la terminal. Devuelve true para salir.
func (s *cajaSession) handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(cmd) {
	case "salir":
		return true
	case "ayuda":
		s.p.Println(cajaHelp)
	case "vaciar":
		s.do(ctx, "No se pudo vaciar el ticket", func(c *pos.Controller) error { return c.Clear() })
		s.showTicket(ctx)
	case "quitar":
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 {
			s.p.Toast(view.Failure("Uso: quitar N"))
			return false
		}
		s.do(ctx, "No existe la línea "+arg, func(c *pos.Controller) error { return c.RemoveLine(n - 1) })
		s.showTicket(ctx)
	case "entregado":
		if s.setReceived(ctx, arg) {
			s.showChange(ctx)
		}
	case "cobrar":
		if arg != "" && !s.setReceived(ctx, arg) {
			return false
		}
		s.checkout(ctx)
	case "catalogo", "catálogo":
		s.showCatalog(ctx)
	default:
		if strings.HasPrefix(line, "+") {
			s.addFromCatalog(ctx, line[1:])
			return false
		}
		s.scan(ctx, line)
	}
	return false
}

func (s *cajaSession) do(ctx context.Context, fallback string, fn func(*pos.Controller) error) bool {
	var err error
	if doErr := s.loop.Do(ctx, func(c *pos.Controller) { err = fn(c) }); doErr != nil {
		err = doErr
	}
	if err != nil {
		s.p.Toast(view.ToastFromError(err, fallback))
		return false
	}
	return true
}

func (s *cajaSession) scan(ctx context.Context, code string) {
	p, err := s.loop.Scan(ctx, code, pos.SourceKeyboard)
	if err != nil {
		s.p.Toast(view.ToastFromError(err, "Error al escanear"))
		return
	}
	s.p.Toast(view.Success("Añadido: " + p.Nombre))
	s.showTicket(ctx)
}

func (s *cajaSession) setReceived(ctx context.Context, arg string) bool {
	v, err := parseAmount("entregado", arg)
	if err != nil {
		s.p.Toast(view.ToastFromError(err, "Importe no válido"))
		return false
	}
	var received *decimal.Decimal
	if arg != "" {
		received = &v
	}
	return s.do(ctx, "Importe no válido", func(c *pos.Controller) error { return c.SetReceived(received) })
}

func (s *cajaSession) checkout(ctx context.Context) {
	co, err := s.loop.Checkout(ctx)
	if err != nil {
		s.p.Toast(view.ToastFromError(err, "Error al cobrar"))
		return
	}
	if co == nil {
		s.p.Toast(view.Failure(view.EmptySaleMessage))
		return
	}
	var text []byte
	if s.d.Receipt != nil {
		text = s.d.Receipt.Render(co.Receipt)
	}
	s.p.Checkout(co, text)
	s.p.Toast(view.Success("Venta registrada: " + s.d.Format.Money(co.Total)))
	s.showTicket(ctx)
}

func (s *cajaSession) showCatalog(ctx context.Context) {
	ps, err := s.d.Products.List(ctx, "")
	if err != nil {
		s.p.Toast(view.ToastFromError(err, "Error cargando el catálogo"))
		return
	}
	n := s.d.Config.UI.QuickCatalogSize
	if n > 0 && len(ps) > n {
		ps = ps[:n]
	}
	s.catalog = ps
	s.p.Catalog(view.QuickCatalog(ps, len(ps), s.d.Format))
}

// addFromCatalog añade el producto N del último catálogo mostrado sin
// volver a consultar al servidor.
func (s *cajaSession) addFromCatalog(ctx context.Context, arg string) {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || n < 1 || n > len(s.catalog) {
		s.p.Toast(view.Failure("Muestra el catálogo y elige un número de la lista"))
		return
	}
	p := s.catalog[n-1]
	if s.do(ctx, "No se pudo añadir", func(c *pos.Controller) error { return c.AddProduct(p, pos.SourceCatalog) }) {
		s.p.Toast(view.Success("Añadido: " + p.Nombre))
		s.showTicket(ctx)
	}
}

func (s *cajaSession) showTicket(ctx context.Context) {
	var (
		lines []ticket.Line
		state ticket.State
	)
	if err := s.loop.Do(ctx, func(c *pos.Controller) {
		lines = c.Lines()
		state = c.State()
	}); err != nil {
		return
	}
	s.p.Ticket(view.Ticket(lines, s.d.Format))
	if state == ticket.StateFinalizing {
		s.p.Println("  (" + view.BusyMessage + ")")
	}
}

func (s *cajaSession) showChange(ctx context.Context) {
	var (
		total    decimal.Decimal
		received *decimal.Decimal
	)
	if err := s.loop.Do(ctx, func(c *pos.Controller) {
		total = c.Total()
		received = c.Received()
	}); err != nil {
		return
	}
	s.p.Change(view.Change(total, received, s.d.Format))
}
