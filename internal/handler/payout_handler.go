package handler

import (
	"credit-core/internal/handler/request"
	"credit-core/internal/handler/response"
	"credit-core/internal/model"
	"credit-core/internal/service/payout"
	"credit-core/pkg/errno"

	"github.com/gin-gonic/gin"
)

// PayoutSummary GET /api/v1/payouts/summary
func (h *Handler) PayoutSummary(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	sum, err := h.Payouts.Summary(c.Request.Context(), uid)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, sum)
}

// ListEarnings GET /api/v1/earnings
func (h *Handler) ListEarnings(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	page := pageOf(c)
	items, total, err := h.Payouts.ListEarnings(c.Request.Context(), uid, page)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, paged(items, total, page))
}

// GetPayoutSettings GET /api/v1/payouts/settings
func (h *Handler) GetPayoutSettings(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	s, err := h.Payouts.GetSettings(c.Request.Context(), uid)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, s)
}

// UpdatePayoutSettings PUT /api/v1/payouts/settings
func (h *Handler) UpdatePayoutSettings(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	var req request.UpdatePayoutSettingsRequest
	if !bind(c, &req) {
		return
	}

	upd := payout.SettingsUpdate{
		MinimumPayout: req.MinimumPayout,
		PayoutEmail:   req.PayoutEmail,
		AutoPayout:    req.AutoPayout,
	}
	if req.Frequency != nil {
		f := model.PayoutFrequency(*req.Frequency)
		upd.Frequency = &f
	}

	s, err := h.Payouts.UpdateSettings(c.Request.Context(), uid, upd)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, s)
}

// RequestPayout POST /api/v1/payouts
func (h *Handler) RequestPayout(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	var req request.RequestPayoutRequest
	if !bind(c, &req) {
		return
	}

	p, err := h.Payouts.RequestPayout(c.Request.Context(), uid, req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, p)
}

// ListMyPayouts GET /api/v1/payouts
func (h *Handler) ListMyPayouts(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	page := pageOf(c)
	items, total, err := h.Payouts.ListPayouts(c.Request.Context(), payout.Filter{AuthorID: uid}, page)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, paged(items, total, page))
}

// GetMyPayout GET /api/v1/payouts/:id. Other authors' payouts are reported
// as not found.
func (h *Handler) GetMyPayout(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	p, err := h.Payouts.GetPayout(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if p.AuthorID != uid {
		response.Error(c, errno.ErrPayoutNotFound)
		return
	}
	response.Success(c, p)
}
