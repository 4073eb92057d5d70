package usecase

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jhoicas/nexus-tpv/internal/application/dto"
	"github.com/jhoicas/nexus-tpv/internal/application/ports"
	"github.com/jhoicas/nexus-tpv/internal/domain"
	"github.com/jhoicas/nexus-tpv/internal/domain/entity"
	"github.com/jhoicas/nexus-tpv/pkg/logger"
)

// MaxUploadBytes tamaño máximo que acepta el servidor para un albarán.
const MaxUploadBytes = 16 << 20

// AllowedExtensions formatos de albarán aceptados (foto o CSV).
var AllowedExtensions = []string{".png", ".jpg", ".jpeg", ".webp", ".csv"}

// ImportUseCase importación de albaranes: el servidor extrae los productos y
// el usuario los revisa antes de guardarlos.
type ImportUseCase struct {
	importer ports.ImportGateway
	catalog  ports.CatalogGateway
	log      *logger.Logger
}

// NewImportUseCase construye el caso de uso.
func NewImportUseCase(importer ports.ImportGateway, catalog ports.CatalogGateway, log *logger.Logger) *ImportUseCase {
	return &ImportUseCase{importer: importer, catalog: catalog, log: log}
}

// CheckFile valida extensión y tamaño antes de subir nada.
func CheckFile(name string, size int64) error {
	ext := strings.ToLower(filepath.Ext(name))
	allowed := false
	for _, a := range AllowedExtensions {
		if ext == a {
			allowed = true
			break
		}
	}
	if !allowed {
		return domain.Invalid("file", "Formato no permitido (png, jpg, jpeg, webp o csv)")
	}
	if size > MaxUploadBytes {
		return domain.Invalid("file", "El archivo supera los 16 MB")
	}
	return nil
}

// UploadFile abre path y lo sube.
func (uc *ImportUseCase) UploadFile(ctx context.Context, path string) ([]entity.ProductoDetectado, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("abrir albarán: %w", err)
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("abrir albarán: %w", err)
	}
	return uc.Upload(ctx, filepath.Base(path), f, st.Size())
}

// Upload sube el albarán y devuelve los productos detectados.
func (uc *ImportUseCase) Upload(ctx context.Context, name string, r io.Reader, size int64) ([]entity.ProductoDetectado, error) {
	if err := CheckFile(name, size); err != nil {
		return nil, err
	}
	items, err := uc.importer.UploadDeliveryNote(ctx, name, r)
	if err != nil {
		return nil, fmt.Errorf("importar %s: %w", name, err)
	}
	uc.log.Info().Str("archivo", name).Int("productos", len(items)).Msg("albarán procesado")
	return items, nil
}

// SaveAll guarda las filas revisadas una a una, en orden, sumando Unidades al
// stock. Se detiene en el primer fallo y devuelve cuántas filas se guardaron.
func (uc *ImportUseCase) SaveAll(ctx context.Context, items []entity.ProductoDetectado) (int, error) {
	saved := 0
	for i, it := range items {
		unidades := it.Unidades
		if unidades <= 0 {
			unidades = 1
		}
		in := dto.ProductoInput{
			Codigo: it.Codigo,
			Nombre: it.Nombre,
			Costo:  it.Costo,
			Venta:  it.Venta,
			Stock:  unidades,
		}
		in.Normalize()
		if err := in.Validate(); err != nil {
			return saved, fmt.Errorf("fila %d: %w", i+1, err)
		}
		if _, err := uc.catalog.SaveProduct(ctx, in); err != nil {
			uc.log.Warn().Err(err).Int("fila", i+1).Int("guardadas", saved).Msg("importación interrumpida")
			return saved, fmt.Errorf("fila %d (%s): %w", i+1, in.Codigo, err)
		}
		saved++
	}
	uc.log.Info().Int("guardadas", saved).Msg("importación guardada")
	return saved, nil
}
