package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	menuapp "github.com/hostly/ordercore/internal/application/menu"
	"github.com/hostly/ordercore/internal/interfaces/http/dto"
)

// MenuHandler serves the public menu and dish maintenance
type MenuHandler struct {
	BaseHandler
	menu *menuapp.Service
}

// NewMenuHandler creates a menu handler
func NewMenuHandler(menu *menuapp.Service) *MenuHandler {
	return &MenuHandler{menu: menu}
}

// PublicList returns every available dish
// GET /api/v1/public/menu
func (h *MenuHandler) PublicList(c *gin.Context) {
	var q dto.DishListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.ValidationError(c, err)
		return
	}
	page, err := h.menu.PublicList(c.Request.Context(), menuapp.ListInput{Category: q.Category, Page: q.Page()})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(page, dto.ToDishResponse))
}

// List returns the dishes the caller may maintain
// GET /api/v1/dishes
func (h *MenuHandler) List(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var q dto.DishListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.ValidationError(c, err)
		return
	}
	page, err := h.menu.List(c.Request.Context(), p, menuapp.ListInput{
		Category:      q.Category,
		AvailableOnly: q.AvailableOnly,
		Page:          q.Page(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(page, dto.ToDishResponse))
}

// Get returns one dish
// GET /api/v1/dishes/:id
func (h *MenuHandler) Get(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	d, err := h.menu.Get(c.Request.Context(), p, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToDishResponse(d))
}

// Create adds a dish
// POST /api/v1/dishes
func (h *MenuHandler) Create(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req dto.DishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	d, err := h.menu.Create(c.Request.Context(), p, dishInput(req))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.ToDishResponse(d))
}

// Update replaces the editable fields of a dish
// PUT /api/v1/dishes/:id
func (h *MenuHandler) Update(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req dto.DishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	d, err := h.menu.Update(c.Request.Context(), p, id, dishInput(req))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToDishResponse(d))
}

// Delete removes a dish
// DELETE /api/v1/dishes/:id
func (h *MenuHandler) Delete(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.menu.Delete(c.Request.Context(), p, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func dishInput(req dto.DishRequest) menuapp.DishInput {
	return menuapp.DishInput{
		TenantID:    req.TenantID,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Available:   req.Available,
	}
}
