package profile

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Get(c *gin.Context) {
	p, err := h.service.Get(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, p)
}

func (h *Handler) Update(c *gin.Context) {
	var req Update
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	p, err := h.service.Update(c.Request.Context(), c.GetString("userID"), req)
	switch {
	case errors.Is(err, ErrInvalidPhone), errors.Is(err, ErrInvalidPhoto):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, p)
}

// --------------------------------------------------
// Payment preference
// --------------------------------------------------

type paymentResponse struct {
	Brand  string `json:"brand"`
	Masked string `json:"masked"`
	Holder string `json:"holder"`
	Label  string `json:"label"`
}

func toPaymentResponse(p *PaymentPreference) paymentResponse {
	return paymentResponse{
		Brand:  p.Brand,
		Masked: p.Masked(),
		Holder: p.Holder,
		Label:  p.Label(),
	}
}

func (h *Handler) GetPayment(c *gin.Context) {
	p, err := h.service.Payment(c.Request.Context(), c.GetString("userID"))
	if errors.Is(err, ErrNoPayment) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, toPaymentResponse(p))
}

func (h *Handler) SetPayment(c *gin.Context) {
	var req CardInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	p, err := h.service.SetPayment(c.Request.Context(), c.GetString("userID"), req)
	switch {
	case errors.Is(err, ErrInvalidCard), errors.Is(err, ErrHolderEmpty):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, toPaymentResponse(p))
}
