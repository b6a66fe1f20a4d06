package dto

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// PageRequest paginación de listados (?limit=&offset=).
type PageRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// Normalize aplica el límite por defecto y el tope de MaxPageLimit.
func (p *PageRequest) Normalize() {
	switch {
	case p.Limit <= 0:
		p.Limit = DefaultPageLimit
	case p.Limit > MaxPageLimit:
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse metadatos de página; Count es la cantidad de elementos devueltos.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Count  int `json:"count"`
}

// ErrorResponse cuerpo de error HTTP. Message está localizado según Accept-Language.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
