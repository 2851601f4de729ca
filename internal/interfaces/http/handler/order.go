package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	orderapp "github.com/hostly/ordercore/internal/application/order"
	"github.com/hostly/ordercore/internal/domain/order"
	"github.com/hostly/ordercore/internal/interfaces/http/dto"
)

// OrderHandler serves the guest order entry and the staff order board
type OrderHandler struct {
	BaseHandler
	orders *orderapp.Service
}

// NewOrderHandler creates an order handler
func NewOrderHandler(orders *orderapp.Service) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// Create places a guest order. It is unauthenticated; prices and owners are
// taken from the menu.
// POST /api/v1/public/orders
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	items := make([]orderapp.CreateItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		id, err := uuid.Parse(it.DishID)
		if err != nil {
			h.BadRequest(c, "Invalid dish ID format")
			return
		}
		items = append(items, orderapp.CreateItemInput{DishID: id, Quantity: it.Quantity})
	}

	o, err := h.orders.Create(c.Request.Context(), orderapp.CreateOrderInput{
		LocationID:    req.LocationID,
		PaymentMethod: order.PaymentMethod(req.PaymentMethod),
		PaymentProof:  req.PaymentProof,
		Items:         items,
		OriginSession: c.GetHeader(SessionHeader),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.ToOrderResponse(o))
}

// List returns the orders visible to the caller, newest first
// GET /api/v1/orders
func (h *OrderHandler) List(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var q dto.OrderListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.ValidationError(c, err)
		return
	}

	in := orderapp.ListInput{LocationID: q.LocationID, Page: q.Page()}
	if q.Status != "" {
		s := order.Status(q.Status)
		in.Status = &s
	}
	page, err := h.orders.List(c.Request.Context(), p, in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(page, dto.ToOrderResponse))
}

// Get returns one order
// GET /api/v1/orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	o, err := h.orders.Get(c.Request.Context(), p, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToOrderResponse(o))
}

// Transition moves an order to a new status
// PATCH /api/v1/orders/:id/status
func (h *OrderHandler) Transition(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req dto.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	o, err := h.orders.Transition(c.Request.Context(), p, orderapp.TransitionInput{
		OrderID:         id,
		Target:          order.Status(req.Status),
		ExpectedVersion: req.ExpectedVersion,
		OriginSession:   c.GetHeader(SessionHeader),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToOrderResponse(o))
}

// MarkPrinted records that the kitchen ticket was printed
// POST /api/v1/orders/:id/print
func (h *OrderHandler) MarkPrinted(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.orders.MarkPrinted(c.Request.Context(), p, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
