package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config agrupa la configuración del terminal TPV (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App       AppConfig
	API       APIConfig
	Store     StoreConfig
	Scanner   ScannerConfig
	Assistant AssistantConfig
	Receipt   ReceiptConfig
	UI        UIConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, production
	Name     string
	LogLevel string // trace, debug, info, warn, error
}

// APIConfig configuración del backend REST del TPV.
type APIConfig struct {
	BaseURL string
	Timeout time.Duration // 0 = sin timeout (la petición espera indefinidamente)
}

// StoreConfig datos fiscales y de formato de la tienda (cabecera del ticket, moneda, IVA).
type StoreConfig struct {
	Name     string
	CIF      string
	Currency string
	Locale   string          // BCP 47, ej. "es-ES"
	TaxRate  decimal.Decimal // IVA incluido en el precio, ej. 0.21
	Footer   string
}

// ScannerConfig parámetros del lector de códigos de barras tipo teclado.
type ScannerConfig struct {
	GapThreshold time.Duration // pausa máxima entre teclas de un mismo escaneo
	MinLength    int           // longitud mínima del código al recibir Enter
	Device       string        // ruta opcional del lector (ej. /dev/ttyACM0)
}

// AssistantConfig asistente móvil (servidor HTTP emparejado por QR).
type AssistantConfig struct {
	Host        string
	Port        int
	TokenSecret string // vacío = se genera uno aleatorio en cada arranque
	TokenTTL    time.Duration
}

// Addr devuelve la dirección de escucha (host:port).
func (c AssistantConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ReceiptConfig salida de los tickets impresos.
type ReceiptConfig struct {
	Dir    string
	Format string // text, pdf, both
}

// UIConfig ajustes de presentación.
type UIConfig struct {
	QuickCatalogSize int
	LowStockBadge    int
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, API_BASE_URL, STORE_TAX_RATE, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo de configuración (.env o config.env)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	taxRate, err := decimal.NewFromString(getString(v, "STORE_TAX_RATE", "0.21"))
	if err != nil {
		return nil, fmt.Errorf("config: STORE_TAX_RATE inválido: %w", err)
	}
	if taxRate.IsNegative() {
		return nil, fmt.Errorf("config: STORE_TAX_RATE no puede ser negativo")
	}

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "nexus-tpv"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		API: APIConfig{
			BaseURL: strings.TrimRight(getString(v, "API_BASE_URL", "http://127.0.0.1:5000"), "/"),
			Timeout: time.Duration(getInt(v, "API_TIMEOUT_SECONDS", 0)) * time.Second,
		},
		Store: StoreConfig{
			Name:     getString(v, "STORE_NAME", "Nexus Store"),
			CIF:      getString(v, "STORE_CIF", "B12345678"),
			Currency: getString(v, "STORE_CURRENCY", "€"),
			Locale:   getString(v, "STORE_LOCALE", "es-ES"),
			TaxRate:  taxRate,
			Footer:   getString(v, "STORE_FOOTER", "¡Gracias por su visita!"),
		},
		Scanner: ScannerConfig{
			GapThreshold: time.Duration(getInt(v, "SCANNER_GAP_MS", 50)) * time.Millisecond,
			MinLength:    getInt(v, "SCANNER_MIN_LENGTH", 3),
			Device:       getString(v, "SCANNER_DEVICE", ""),
		},
		Assistant: AssistantConfig{
			Host:        getString(v, "ASSISTANT_HOST", "0.0.0.0"),
			Port:        getInt(v, "ASSISTANT_PORT", 5050),
			TokenSecret: getString(v, "ASSISTANT_TOKEN_SECRET", ""),
			TokenTTL:    time.Duration(getInt(v, "ASSISTANT_TOKEN_TTL_MINUTES", 720)) * time.Minute,
		},
		Receipt: ReceiptConfig{
			Dir:    getString(v, "RECEIPT_DIR", "tickets"),
			Format: strings.ToLower(getString(v, "RECEIPT_FORMAT", "text")),
		},
		UI: UIConfig{
			QuickCatalogSize: getInt(v, "QUICK_CATALOG_SIZE", 15),
			LowStockBadge:    getInt(v, "LOW_STOCK_BADGE", 5),
		},
	}

	switch cfg.Receipt.Format {
	case "text", "pdf", "both":
	default:
		return nil, fmt.Errorf("config: RECEIPT_FORMAT debe ser text, pdf o both (recibido %q)", cfg.Receipt.Format)
	}
	if cfg.Scanner.MinLength < 1 {
		cfg.Scanner.MinLength = 1
	}

	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}
