package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-ventas-api/internal/application/dto"
	"github.com/jhoicas/pos-ventas-api/internal/domain/auth"
	"github.com/jhoicas/pos-ventas-api/pkg/jwt"
)

// Locals keys para la identidad del actor en Fiber.
const (
	LocalUserID       = "user_id"
	LocalStoreID      = "store_id"
	LocalCapabilities = "capabilities"
)

// AuthMiddleware valida el Bearer Token JWT y carga usuario, tienda y capacidades en c.Locals.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		return authenticateHeader(c, jwtSecret, authHeader)
	}
}

// WebSocketAuthMiddleware como AuthMiddleware, pero sin cabecera toma el token de ?access_token=.
func WebSocketAuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if authHeader := c.Get("Authorization"); authHeader != "" {
			return authenticateHeader(c, jwtSecret, authHeader)
		}
		tokenString := strings.TrimSpace(c.Query("access_token"))
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token requerido"})
		}
		return authenticate(c, jwtSecret, tokenString)
	}
}

func authenticateHeader(c *fiber.Ctx, jwtSecret, authHeader string) error {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
	}
	tokenString := strings.TrimSpace(parts[1])
	if tokenString == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
	}
	return authenticate(c, jwtSecret, tokenString)
}

func authenticate(c *fiber.Ctx, jwtSecret, tokenString string) error {
	id, err := jwt.Parse(jwtSecret, tokenString)
	if err != nil || id.UserID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
	}
	c.Locals(LocalUserID, id.UserID)
	c.Locals(LocalStoreID, id.StoreID)
	c.Locals(LocalCapabilities, auth.NewCapabilitySet(id.Capabilities...))
	return c.Next()
}

// RequireCapability autoriza si el actor tiene todas las capacidades pedidas.
// Debe usarse DESPUÉS de AuthMiddleware.
func RequireCapability(caps ...auth.Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		set, ok := c.Locals(LocalCapabilities).(auth.CapabilitySet)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "sesión no autenticada"})
		}
		if !set.HasAll(caps...) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "capacidad requerida no concedida"})
		}
		return c.Next()
	}
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalUserID).(string)
	return s
}

// GetStoreID tienda por defecto del actor; puede venir vacía.
func GetStoreID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalStoreID).(string)
	return s
}
