package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/nexus-tpv/internal/application/dto"
	"github.com/jhoicas/nexus-tpv/pkg/jwt"
)

// LocalTerminal clave en c.Locals con el nombre de la caja emparejada.
const LocalTerminal = "terminal"

// PairingMiddleware valida el token de emparejamiento del móvil. El token llega
// como "Authorization: Bearer <token>" o en el parámetro ?token= (la URL del QR).
func PairingMiddleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, ok := bearerToken(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: dto.CodeInvalidToken, Message: "formato: Bearer <token>"})
		}
		if tokenString == "" {
			tokenString = strings.TrimSpace(c.Query("token"))
		}
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: dto.CodeMissingToken, Message: "Escanea el QR de la caja para emparejar el móvil"})
		}
		claims, err := jwt.Parse(secret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: dto.CodeInvalidToken, Message: "token inválido o expirado"})
		}
		c.Locals(LocalTerminal, claims.Terminal)
		return c.Next()
	}
}

// bearerToken token de la cabecera Authorization; ok=false si la cabecera
// existe pero no tiene el formato Bearer.
func bearerToken(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return "", true
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// GetTerminal devuelve la caja emparejada (después de PairingMiddleware).
func GetTerminal(c *fiber.Ctx) string {
	v := c.Locals(LocalTerminal)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
