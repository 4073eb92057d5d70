package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/jhoicas/nexus-tpv/internal/application/pos"
	"github.com/jhoicas/nexus-tpv/internal/application/view"
)

const barWidth = 24

// Presenter escribe las vistas en la terminal. Es seguro para uso concurrente:
// la caja escribe desde el teclado y desde el lector a la vez.
type Presenter struct {
	mu  sync.Mutex
	out io.Writer
}

// NewPresenter crea un presentador sobre out.
func NewPresenter(out io.Writer) *Presenter {
	return &Presenter{out: out}
}

func (p *Presenter) table(fn func(w *tabwriter.Writer)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	w := tabwriter.NewWriter(p.out, 0, 0, 2, ' ', 0)
	fn(w)
	_ = w.Flush()
}

// Println escribe una línea.
func (p *Presenter) Println(a ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, a...)
}

// Printf escribe con formato.
func (p *Presenter) Printf(format string, a ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, format, a...)
}

// Toast aviso de éxito (✓) o error (✗).
func (p *Presenter) Toast(t view.Toast) {
	if t.Message == "" {
		return
	}
	mark := "✓"
	if t.Kind == view.ToastError {
		mark = "✗"
	}
	p.Println(mark, t.Message)
}

// Ticket panel del ticket en curso.
func (p *Presenter) Ticket(v view.TicketView) {
	if v.Empty {
		p.Println("  " + v.Message)
		return
	}
	p.table(func(w *tabwriter.Writer) {
		for _, l := range v.Lines {
			fmt.Fprintf(w, "  %d\t%s\t%s\t%s\n", l.Index, l.Nombre, l.Detail, l.Subtotal)
		}
		fmt.Fprintf(w, "  \tTOTAL (%d uds)\t\t%s\n", v.Units, v.Total)
	})
}

// Change vista previa del cambio.
func (p *Presenter) Change(v view.ChangeView) {
	line := fmt.Sprintf("  Total %s · Entregado %s · Cambio %s", v.Total, v.Entregado, v.Cambio)
	if v.Short {
		line += " (falta importe)"
	}
	p.Println(line)
}

// Checkout resultado del cobro; text es el ticket impreso, si hay.
func (p *Presenter) Checkout(co *pos.Checkout, text []byte) {
	if len(text) > 0 {
		p.Println(string(text))
	}
	if co.Printed != "" {
		p.Println("  Ticket guardado en", co.Printed)
	}
	if co.PrintErr != nil {
		p.Println("✗ La venta está registrada pero no se pudo imprimir:", co.PrintErr)
	}
}

// Dashboard resumen del día.
func (p *Presenter) Dashboard(v view.DashboardView) {
	beneficio := v.BeneficioHoy
	if !v.BeneficioPositivo {
		beneficio += " ▼"
	}
	p.table(func(w *tabwriter.Writer) {
		fmt.Fprintf(w, "Ventas hoy\t%s\n", v.VentasHoy)
		fmt.Fprintf(w, "Gastos hoy\t%s\n", v.GastosHoy)
		fmt.Fprintf(w, "Beneficio\t%s\n", beneficio)
		fmt.Fprintf(w, "Valor inventario (venta)\t%s\n", v.ValorVenta)
		fmt.Fprintf(w, "Valor inventario (coste)\t%s\n", v.ValorCosto)
		fmt.Fprintf(w, "Artículos en stock\t%s\n", v.TotalItems)
	})
	if len(v.History) > 0 {
		p.Println("\nÚltimos 7 días")
		p.table(func(w *tabwriter.Writer) {
			for _, b := range v.History {
				fmt.Fprintf(w, "  %s\t%s\t%s\n", b.Label, bar(b.Ratio), b.Value)
			}
		})
	}
	if len(v.TopSelling) > 0 {
		p.Println("\nMás vendidos")
		p.table(func(w *tabwriter.Writer) {
			for _, t := range v.TopSelling {
				fmt.Fprintf(w, "  %s\t%s\n", t.Nombre, t.Cantidad)
			}
		})
	}
	p.Println("\nStock bajo")
	if len(v.LowStock) == 0 {
		p.Println("  " + v.StockMessage)
		return
	}
	p.table(func(w *tabwriter.Writer) {
		for _, a := range v.LowStock {
			fmt.Fprintf(w, "  %s\t%s\t%s\n", a.Codigo, a.Nombre, a.Stock)
		}
	})
}

func bar(ratio float64) string {
	n := int(ratio*barWidth + 0.5)
	if n < 0 {
		n = 0
	}
	if n > barWidth {
		n = barWidth
	}
	return strings.Repeat("█", n) + strings.Repeat("·", barWidth-n)
}

// Inventory tabla de productos; el stock bajo se marca con "!".
func (p *Presenter) Inventory(rows []view.InventoryRow) {
	if len(rows) == 0 {
		p.Println("Sin productos")
		return
	}
	p.table(func(w *tabwriter.Writer) {
		fmt.Fprintln(w, "ID\tCÓDIGO\tNOMBRE\tSTOCK\tCOSTE\tVENTA")
		for _, r := range rows {
			stock := fmt.Sprint(r.Stock)
			if r.LowStock {
				stock += " !"
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", r.ID, r.Codigo, r.Nombre, stock, r.Costo, r.Venta)
		}
	})
}

// Expenses tabla de gastos.
func (p *Presenter) Expenses(rows []view.ExpenseRow) {
	if len(rows) == 0 {
		p.Println("Sin gastos")
		return
	}
	p.table(func(w *tabwriter.Writer) {
		fmt.Fprintln(w, "ID\tFECHA\tCONCEPTO\tCATEGORÍA\tIMPORTE")
		for _, r := range rows {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", r.ID, r.Fecha, r.Concepto, r.Categoria, r.Monto)
		}
	})
}

// Sales historial de ventas.
func (p *Presenter) Sales(rows []view.SaleRow) {
	if len(rows) == 0 {
		p.Println("Sin ventas")
		return
	}
	p.table(func(w *tabwriter.Writer) {
		fmt.Fprintln(w, "VENTA\tFECHA\tTOTAL\tPRODUCTOS")
		for _, r := range rows {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.ID, r.Fecha, r.Total, r.Summary)
		}
	})
}

// Catalog catálogo rápido numerado (se añade con "+N").
func (p *Presenter) Catalog(cards []view.CatalogCard) {
	if len(cards) == 0 {
		p.Println("  Catálogo vacío")
		return
	}
	p.table(func(w *tabwriter.Writer) {
		for i, c := range cards {
			fmt.Fprintf(w, "  +%d\t%s\t%s\n", i+1, c.Nombre, c.Venta)
		}
	})
}

// Detected productos extraídos de un albarán.
func (p *Presenter) Detected(rows []view.DetectedRow) {
	if len(rows) == 0 {
		p.Println("No se detectaron productos")
		return
	}
	p.table(func(w *tabwriter.Writer) {
		fmt.Fprintln(w, "#\tCÓDIGO\tNOMBRE\tUDS\tCOSTE\tVENTA")
		for _, r := range rows {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\n", r.Index, r.Codigo, r.Nombre, r.Unidades, r.Costo, r.Venta)
		}
	})
}
