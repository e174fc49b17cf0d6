package http

import (
	"net/http"

	"miru/internal/booking"
	"miru/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service booking.Service
}

func NewHandler(service booking.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) List(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, list)
}

func (h *Handler) Create(c *gin.Context) {
	var req BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.MsgInvalidBody)
		return
	}
	fields, err := req.Draft().Validate()
	if err != nil {
		response.Error(c, err)
		return
	}

	b, err := h.service.Create(c.Request.Context(), fields)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusCreated, b)
}

// Update replaces all editable fields of the booking.
func (h *Handler) Update(c *gin.Context) {
	var req BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.MsgInvalidBody)
		return
	}
	fields, err := req.Draft().Validate()
	if err != nil {
		response.Error(c, err)
		return
	}

	b, err := h.service.Update(c.Request.Context(), c.Param("id"), fields)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, b)
}

func (h *Handler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, DeleteResponse{ID: id})
}
