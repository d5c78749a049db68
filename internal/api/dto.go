package api

import "github.com/starford/menushell/internal/menuservice"

// MenuDetail is one menu with its metadata and numbered options.
type MenuDetail = menuservice.MenuDetail

// MenuListItem summarizes a menu in listings.
type MenuListItem = menuservice.MenuListItem

// MenuListResponse wraps menu listings.
type MenuListResponse struct {
	Menus []MenuListItem `json:"menus" validate:"required"`
	Total int            `json:"total" example:"42" validate:"required"`
}

// SearchResult is a single search hit.
type SearchResult = menuservice.SearchHit

// SearchResponse wraps search results and echoes the query.
type SearchResponse struct {
	Query   string         `json:"query" example:"deploy"`
	Results []SearchResult `json:"results" validate:"required"`
	Total   int            `json:"total" example:"3"`
}
