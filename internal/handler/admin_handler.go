package handler

import (
	"credit-core/internal/handler/request"
	"credit-core/internal/handler/response"
	"credit-core/internal/model"
	"credit-core/internal/service/payout"
	"credit-core/pkg/errno"
	"credit-core/pkg/validator"

	"github.com/gin-gonic/gin"
)

// ListPayouts GET /api/v1/admin/payouts?author_id=&status=
func (h *Handler) ListPayouts(c *gin.Context) {
	var q request.ListPayoutsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BindError(c, validator.GetErrorMsg(err))
		return
	}

	page := model.Page{Number: q.Page, Size: q.Size}
	f := payout.Filter{AuthorID: q.AuthorID, Status: model.PayoutStatus(q.Status)}
	items, total, err := h.Payouts.ListPayouts(c.Request.Context(), f, page)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, paged(items, total, page))
}

// ResubmitPayout POST /api/v1/admin/payouts/:id/resubmit
func (h *Handler) ResubmitPayout(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, err := h.Payouts.Resubmit(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, p)
}

// RunPass POST /api/v1/admin/passes/:pass with pass one of submit, poll, auto.
func (h *Handler) RunPass(c *gin.Context) {
	ctx := c.Request.Context()
	var ran bool
	switch pass := c.Param("pass"); pass {
	case "submit":
		ran = h.Passes.RunSubmitPass(ctx)
	case "poll":
		ran = h.Passes.RunPollPass(ctx)
	case "auto":
		ran = h.Passes.RunAutoPayoutPass(ctx)
	default:
		response.BindError(c, "pass must be one of [submit poll auto]")
		return
	}
	response.Success(c, gin.H{"pass": c.Param("pass"), "ran": ran})
}

// CreatePackage POST /api/v1/admin/packages
func (h *Handler) CreatePackage(c *gin.Context) {
	var req request.CreatePackageRequest
	if !bind(c, &req) {
		return
	}
	p, err := h.Packages.CreatePackage(c.Request.Context(), req.Name, req.CreditAmount, req.PriceUSD)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, p)
}

// UpdatePackage PUT /api/v1/admin/packages/:id
func (h *Handler) UpdatePackage(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req request.UpdatePackageRequest
	if !bind(c, &req) {
		return
	}
	p, err := h.Packages.UpdatePricing(c.Request.Context(), id, req.CreditAmount, req.PriceUSD)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, p)
}

// SetPackageActive PUT /api/v1/admin/packages/:id/active
func (h *Handler) SetPackageActive(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req request.SetPackageActiveRequest
	if !bind(c, &req) {
		return
	}
	if req.Active == nil {
		response.Error(c, errno.ErrBind)
		return
	}
	if err := h.Packages.SetActive(c.Request.Context(), id, *req.Active); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"id": id, "active": *req.Active})
}
