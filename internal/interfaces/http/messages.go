package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain"
)

// Códigos de error estables de la API (el mensaje se localiza, el código no).
const (
	CodeValidation     = "VALIDATION"
	CodeInvalidBody    = "INVALID_BODY"
	CodeNotFound       = "NOT_FOUND"
	CodeStockUnderflow = "STOCK_UNDERFLOW"
	CodeDuplicate      = "DUPLICATE"
	CodeConflict       = "CONFLICT"
	CodeLockTimeout    = "LOCK_TIMEOUT"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeForbidden      = "FORBIDDEN"
	CodeInternal       = "INTERNAL"
)

// El primer idioma es el de respaldo.
var supported = []language.Tag{language.Spanish, language.English, language.Korean}

var (
	matcher  = language.NewMatcher(supported)
	messages = buildCatalog()
)

func buildCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.Spanish))
	set := func(code, es, en, ko string) {
		_ = b.SetString(language.Spanish, code, es)
		_ = b.SetString(language.English, code, en)
		_ = b.SetString(language.Korean, code, ko)
	}
	set(CodeValidation, "datos inválidos", "invalid input", "입력값이 올바르지 않습니다.")
	set(CodeInvalidBody, "cuerpo inválido", "invalid request body", "요청 본문이 올바르지 않습니다.")
	set(CodeNotFound, "recurso no encontrado", "resource not found", "대상을 찾을 수 없습니다.")
	set(CodeStockUnderflow, "la salida excede el total disponible", "release exceeds total count", "총 갯수보다 출고가 많습니다.")
	set(CodeDuplicate, "recurso duplicado", "duplicate resource", "이미 존재합니다.")
	set(CodeConflict, "conflicto con el estado actual", "conflicts with current state", "현재 상태와 충돌합니다.")
	set(CodeLockTimeout, "el ítem está ocupado, intente de nuevo", "item is busy, please retry", "다른 작업이 진행 중입니다. 다시 시도하세요.")
	set(CodeUnauthorized, "no autorizado", "unauthorized", "인증이 필요합니다.")
	set(CodeForbidden, "acceso denegado", "access denied", "권한이 없습니다.")
	set(CodeInternal, "error interno", "internal error", "내부 오류가 발생했습니다.")
	return b
}

// printerFor elige el idioma según Accept-Language (español por defecto).
func printerFor(c *fiber.Ctx) *message.Printer {
	tags, _, _ := language.ParseAcceptLanguage(c.Get(fiber.HeaderAcceptLanguage))
	_, idx, _ := matcher.Match(tags...)
	return message.NewPrinter(supported[idx], message.Catalog(messages))
}

// Localize devuelve el mensaje del código en el idioma pedido por el cliente.
func Localize(c *fiber.Ctx, code string) string {
	return printerFor(c).Sprintf(code)
}

// errorStatus traduce un error de dominio a status HTTP y código de API.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrStockUnderflow):
		return fiber.StatusConflict, CodeStockUnderflow
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, CodeValidation
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, CodeNotFound
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, CodeDuplicate
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, CodeConflict
	case errors.Is(err, domain.ErrLockTimeout):
		return fiber.StatusServiceUnavailable, CodeLockTimeout
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, CodeUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, CodeForbidden
	default:
		return fiber.StatusInternalServerError, CodeInternal
	}
}

// respondError escribe dto.ErrorResponse con el mensaje localizado.
func respondError(c *fiber.Ctx, err error) error {
	status, code := errorStatus(err)
	if status == fiber.StatusServiceUnavailable {
		c.Set(fiber.HeaderRetryAfter, "1")
	}
	return respondCode(c, status, code)
}

func respondCode(c *fiber.Ctx, status int, code string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: Localize(c, code)})
}
