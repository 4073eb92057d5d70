package usecase

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/jhoicas/nexus-tpv/internal/application/ports"
	"github.com/jhoicas/nexus-tpv/internal/domain"
	"github.com/jhoicas/nexus-tpv/pkg/logger"
)

// ConfigUseCase ajustes del servidor y enlace del asistente móvil.
type ConfigUseCase struct {
	config ports.ConfigGateway
	log    *logger.Logger
}

// NewConfigUseCase construye el caso de uso.
func NewConfigUseCase(config ports.ConfigGateway, log *logger.Logger) *ConfigUseCase {
	return &ConfigUseCase{config: config, log: log}
}

// SetAPIKey envía la clave del servicio de extracción de albaranes.
func (uc *ConfigUseCase) SetAPIKey(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return domain.Invalid("key", "Introduce la API Key")
	}
	if err := uc.config.SetAPIKey(ctx, key); err != nil {
		return fmt.Errorf("guardar API key: %w", err)
	}
	uc.log.Info().Msg("API key actualizada")
	return nil
}

// MobileURL dirección que abre el móvil al escanear el QR:
// http://<ip de la red local>:<port>/movil?token=<token>.
// La IP la informa el servidor; si no responde se usa la IP de salida de este equipo.
func (uc *ConfigUseCase) MobileURL(ctx context.Context, port int, token string) string {
	ip, err := uc.config.LocalIP(ctx)
	if err != nil {
		uc.log.Warn().Err(err).Msg("el servidor no informó la IP; se usa la local")
		ip = outboundIP()
	}
	u := url.URL{
		Scheme: "http",
		Host:   net.JoinHostPort(ip, strconv.Itoa(port)),
		Path:   "/movil",
	}
	if token != "" {
		u.RawQuery = url.Values{"token": {token}}.Encode()
	}
	return u.String()
}

// outboundIP IP de la interfaz con ruta por defecto (no envía tráfico).
func outboundIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "127.0.0.1"
	}
	defer conn.Close()
	if addr, ok := conn.LocalAddr().(*net.UDPAddr); ok {
		return addr.IP.String()
	}
	return "127.0.0.1"
}
