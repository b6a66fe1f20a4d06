package dto

import "time"

// CreateItemRequest body para POST /api/items.
type CreateItemRequest struct {
	Name string `json:"name"`
}

// ItemResponse ítem con su agregado.
type ItemResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Store      int64     `json:"store"`
	Release    int64     `json:"release"`
	TotalCount int64     `json:"total_count"`
	StaffID    string    `json:"staff_id"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}

// ItemListResponse listado paginado de ítems.
type ItemListResponse struct {
	Items []ItemResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}
