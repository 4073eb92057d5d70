package pos

import (
	"context"
	"errors"

	"github.com/jhoicas/nexus-tpv/internal/domain/entity"
	"github.com/jhoicas/nexus-tpv/internal/domain/scan"
)

// ErrLoopStopped el bucle de la caja ya no acepta órdenes.
var ErrLoopStopped = errors.New("caja detenida")

// Loop ejecuta en un único goroutine todas las operaciones sobre el Controller.
type Loop struct {
	ctrl    *Controller
	reqs    chan func(*Controller)
	stopped chan struct{}
}

// NewLoop crea el bucle; hay que arrancarlo con Run.
func NewLoop(c *Controller) *Loop {
	return &Loop{
		ctrl:    c,
		reqs:    make(chan func(*Controller)),
		stopped: make(chan struct{}),
	}
}

// Run procesa órdenes hasta que ctx se cancela.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.stopped)
	for {
		select {
		case fn := <-l.reqs:
			fn(l.ctrl)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Do ejecuta fn dentro del bucle y espera a que termine. fn no debe bloquear.
func (l *Loop) Do(ctx context.Context, fn func(*Controller)) error {
	done := make(chan struct{})
	wrapped := func(c *Controller) {
		defer close(done)
		fn(c)
	}
	select {
	case l.reqs <- wrapped:
	case <-ctx.Done():
		return ctx.Err()
	case <-l.stopped:
		return ErrLoopStopped
	}
	// Una vez aceptada, la orden se ejecuta completa antes de la siguiente.
	<-done
	return nil
}

// Scan busca el código fuera del bucle y añade el producto dentro.
func (l *Loop) Scan(ctx context.Context, code, source string) (*entity.Producto, error) {
	var err error
	if doErr := l.Do(ctx, func(c *Controller) { err = c.checkScannable(code, source) }); doErr != nil {
		return nil, doErr
	}
	if err != nil {
		return nil, err
	}

	p, err := l.ctrl.Lookup(ctx, code, source)
	if err != nil {
		return nil, err
	}

	if doErr := l.Do(ctx, func(c *Controller) { err = c.AddProduct(*p, source) }); doErr != nil {
		return nil, doErr
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Key entrega una pulsación del lector; si completa un código lo escanea.
func (l *Loop) Key(ctx context.Context, k scan.Key) (*entity.Producto, error) {
	var (
		code string
		ok   bool
	)
	if err := l.Do(ctx, func(c *Controller) { code, ok = c.Key(k) }); err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return l.Scan(ctx, code, SourceScanner)
}

// Checkout cobra el ticket. Mientras la venta viaja al servidor el bucle sigue
// atendiendo órdenes; las que modifican el ticket reciben domain.ErrTicketBusy.
func (l *Loop) Checkout(ctx context.Context) (*Checkout, error) {
	var (
		sale *Sale
		err  error
	)
	if doErr := l.Do(ctx, func(c *Controller) { sale, err = c.BeginSale() }); doErr != nil {
		return nil, doErr
	}
	if err != nil || sale == nil {
		return nil, err
	}

	conf, submitErr := l.ctrl.Submit(ctx, sale)

	var out *Checkout
	// El ticket está congelado: la respuesta se aplica aunque ctx ya no sea válido.
	if doErr := l.Do(context.WithoutCancel(ctx), func(c *Controller) { out, err = c.EndSale(ctx, sale, conf, submitErr) }); doErr != nil {
		return nil, doErr
	}
	return out, err
}
