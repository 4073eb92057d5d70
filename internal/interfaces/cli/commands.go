package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/jhoicas/nexus-tpv/internal/application/dto"
	"github.com/jhoicas/nexus-tpv/internal/application/view"
	"github.com/jhoicas/nexus-tpv/internal/domain"
)

func newDashboardCmd(d *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Resumen del día: ventas, gastos, beneficio y stock",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := d.Reports.Dashboard(cmd.Context())
			if err != nil {
				return fmt.Errorf("cargar dashboard: %w", err)
			}
			NewPresenter(cmd.OutOrStdout()).Dashboard(view.Dashboard(data, d.Format))
			return nil
		},
	}
}

// ── Inventario ────────────────────────────────────────────────────────────────

func newInventarioCmd(d *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "inventario",
		Aliases: []string{"inv"},
		Short:   "Consulta y mantenimiento del catálogo",
	}

	var buscar string
	listar := &cobra.Command{
		Use:   "listar",
		Short: "Lista los productos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ps, err := d.Products.List(cmd.Context(), buscar)
			if err != nil {
				return fmt.Errorf("listar productos: %w", err)
			}
			NewPresenter(cmd.OutOrStdout()).Inventory(view.Inventory(ps, d.Config.UI.LowStockBadge, d.Format))
			return nil
		},
	}
	listar.Flags().StringVarP(&buscar, "buscar", "b", "", "filtra por código o nombre")

	var in dto.ProductoInput
	var costo, venta string
	alta := &cobra.Command{
		Use:   "alta",
		Short: "Crea un producto o suma stock si el código ya existe",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if in.Costo, err = parseAmount("costo", costo); err != nil {
				return err
			}
			if in.Venta, err = parseAmount("venta", venta); err != nil {
				return err
			}
			action, err := d.Products.Save(cmd.Context(), in)
			if err != nil {
				return err
			}
			msg := "Producto guardado"
			switch action {
			case "created":
				msg = "Producto creado"
			case "updated":
				msg = "Producto actualizado"
			}
			NewPresenter(cmd.OutOrStdout()).Toast(view.Success(msg))
			return nil
		},
	}
	alta.Flags().StringVar(&in.Codigo, "codigo", "", "código de barras")
	alta.Flags().StringVar(&in.Nombre, "nombre", "", "nombre del producto")
	alta.Flags().StringVar(&costo, "costo", "0", "precio de coste")
	alta.Flags().StringVar(&venta, "venta", "0", "precio de venta (IVA incluido)")
	alta.Flags().IntVar(&in.Stock, "stock", 0, "unidades a sumar")

	borrar := &cobra.Command{
		Use:   "borrar <id>",
		Short: "Elimina un producto",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := d.Products.Delete(cmd.Context(), id); err != nil {
				return err
			}
			NewPresenter(cmd.OutOrStdout()).Toast(view.Success("Producto eliminado"))
			return nil
		},
	}

	stock := &cobra.Command{
		Use:   "stock <id> <+N|-N>",
		Short: "Ajusta el stock de un producto",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			delta, err := strconv.Atoi(strings.TrimPrefix(args[1], "+"))
			if err != nil {
				return domain.Invalid("delta", "La variación debe ser un entero, ej. +1 o -1")
			}
			p, err := d.Products.AdjustStock(cmd.Context(), id, delta)
			if err != nil {
				return err
			}
			NewPresenter(cmd.OutOrStdout()).Toast(view.Success(fmt.Sprintf("%s: stock %d", p.Nombre, p.Stock)))
			return nil
		},
	}

	var salida string
	etiqueta := &cobra.Command{
		Use:   "etiqueta <codigo>",
		Short: "Genera la etiqueta Code128 de un código en PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			png, err := d.Products.Label(args[0])
			if err != nil {
				return err
			}
			path := salida
			if path == "" {
				path = strings.TrimSpace(args[0]) + ".png"
			}
			if err := os.WriteFile(path, png, 0o644); err != nil {
				return fmt.Errorf("guardar etiqueta: %w", err)
			}
			NewPresenter(cmd.OutOrStdout()).Toast(view.Success("Etiqueta guardada en " + path))
			return nil
		},
	}
	etiqueta.Flags().StringVarP(&salida, "salida", "o", "", "archivo PNG de salida (por defecto <codigo>.png)")

	cmd.AddCommand(listar, alta, borrar, stock, etiqueta)
	return cmd
}

// ── Gastos ────────────────────────────────────────────────────────────────────

func newGastosCmd(d *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gastos",
		Short: "Gastos del negocio",
	}

	listar := &cobra.Command{
		Use:   "listar",
		Short: "Lista los gastos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			gs, err := d.Expenses.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("listar gastos: %w", err)
			}
			NewPresenter(cmd.OutOrStdout()).Expenses(view.Expenses(gs, d.Format))
			return nil
		},
	}

	var in dto.GastoInput
	var monto string
	alta := &cobra.Command{
		Use:   "alta",
		Short: "Registra un gasto",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if in.Monto, err = parseAmount("monto", monto); err != nil {
				return err
			}
			if err := d.Expenses.Add(cmd.Context(), in); err != nil {
				return err
			}
			NewPresenter(cmd.OutOrStdout()).Toast(view.Success("Gasto registrado"))
			return nil
		},
	}
	alta.Flags().StringVar(&in.Concepto, "concepto", "", "concepto del gasto")
	alta.Flags().StringVar(&monto, "monto", "", "importe")
	alta.Flags().StringVar(&in.Categoria, "categoria", dto.DefaultCategoria, "categoría")

	borrar := &cobra.Command{
		Use:   "borrar <id>",
		Short: "Elimina un gasto",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := d.Expenses.Delete(cmd.Context(), id); err != nil {
				return err
			}
			NewPresenter(cmd.OutOrStdout()).Toast(view.Success("Gasto eliminado"))
			return nil
		},
	}

	cmd.AddCommand(listar, alta, borrar)
	return cmd
}

// ── Ventas ────────────────────────────────────────────────────────────────────

func newVentasCmd(d *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ventas",
		Short: "Consulta de ventas",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "historial",
		Short: "Ventas recientes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			vs, err := d.Reports.SalesHistory(cmd.Context())
			if err != nil {
				return fmt.Errorf("cargar historial: %w", err)
			}
			NewPresenter(cmd.OutOrStdout()).Sales(view.SalesHistory(vs, d.Format))
			return nil
		},
	})
	return cmd
}

// ── Importación ───────────────────────────────────────────────────────────────

func newImportarCmd(d *Deps) *cobra.Command {
	var guardar bool
	cmd := &cobra.Command{
		Use:   "importar <archivo>",
		Short: "Sube un albarán (foto o CSV) y muestra los productos detectados",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := NewPresenter(cmd.OutOrStdout())
			items, err := d.Import.UploadFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			p.Detected(view.Detected(items, d.Format))
			if !guardar || len(items) == 0 {
				return nil
			}
			n, err := d.Import.SaveAll(cmd.Context(), items)
			if err != nil {
				p.Printf("Guardados %d de %d productos\n", n, len(items))
				return err
			}
			p.Toast(view.Success(fmt.Sprintf("%d productos guardados", n)))
			return nil
		},
	}
	cmd.Flags().BoolVar(&guardar, "guardar", false, "guarda los productos detectados en el inventario")
	return cmd
}

// ── Configuración ─────────────────────────────────────────────────────────────

func newAPIKeyCmd(d *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "apikey <clave>",
		Short: "Configura la API key del lector de albaranes del servidor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := d.Settings.SetAPIKey(cmd.Context(), args[0]); err != nil {
				return err
			}
			NewPresenter(cmd.OutOrStdout()).Toast(view.Success("API key guardada"))
			return nil
		},
	}
}

func newMovilCmd(d *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "movil",
		Short: "Muestra el QR para emparejar el móvil con la caja",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := NewPresenter(cmd.OutOrStdout())
			token := ""
			if d.Pairing.Persistent {
				var err error
				if token, err = d.Pairing.Token(); err != nil {
					return fmt.Errorf("firmar token: %w", err)
				}
			}
			url := d.Settings.MobileURL(cmd.Context(), d.Config.Assistant.Port, token)
			if err := showQR(p, d.QR, url); err != nil {
				return err
			}
			if !d.Pairing.Persistent {
				p.Println("Sin ASSISTANT_TOKEN_SECRET el emparejamiento cambia en cada arranque: usa `tpv caja --asistente`.")
			}
			return nil
		},
	}
}

func showQR(p *Presenter, qr QRRenderer, url string) error {
	art, err := qr.QRTerminal(url)
	if err != nil {
		return fmt.Errorf("generar QR: %w", err)
	}
	p.Println(art)
	p.Println("Abre en el móvil:", url)
	return nil
}

// ── Utilidades ────────────────────────────────────────────────────────────────

// parseAmount acepta "12,50", "12.50", "12,50 €" y "1.234,50". Con coma
// decimal los puntos son separadores de miles.
func parseAmount(field, s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "€"))
	if s == "" {
		return decimal.Zero, nil
	}
	num := s
	if strings.Contains(num, ",") {
		num = strings.ReplaceAll(num, ".", "")
		num = strings.ReplaceAll(num, ",", ".")
	}
	v, err := decimal.NewFromString(num)
	if err != nil {
		return decimal.Zero, domain.Invalid(field, fmt.Sprintf("Importe no válido: %q", s))
	}
	return v, nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Invalid("id", fmt.Sprintf("ID no válido: %q", s))
	}
	return id, nil
}
