package handler

import (
	"credit-core/internal/handler/request"
	"credit-core/internal/handler/response"
	"credit-core/internal/model"

	"github.com/gin-gonic/gin"
)

// GetBalance GET /api/v1/wallet
func (h *Handler) GetBalance(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	balance, err := h.Wallets.GetBalance(c.Request.Context(), uid)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"user_id": uid, "balance": balance})
}

// ListPackages GET /api/v1/packages
func (h *Handler) ListPackages(c *gin.Context) {
	pkgs, err := h.Ledger.ListActivePackages(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, pkgs)
}

// ConfirmPurchase POST /api/v1/purchases/confirm
func (h *Handler) ConfirmPurchase(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	var req request.ConfirmPurchaseRequest
	if !bind(c, &req) {
		return
	}

	p, err := h.Ledger.ConfirmPayment(c.Request.Context(), uid, req.PackageID, req.PaymentRef, model.PaymentProvider(req.Provider))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, p)
}

// ListPurchases GET /api/v1/purchases
func (h *Handler) ListPurchases(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	page := pageOf(c)
	items, total, err := h.Ledger.ListPurchases(c.Request.Context(), uid, page)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, paged(items, total, page))
}

// UnlockChapter POST /api/v1/chapters/:id/unlock
func (h *Handler) UnlockChapter(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	chapterID, ok := pathID(c, "id")
	if !ok {
		return
	}

	res, err := h.Unlocks.UnlockChapter(c.Request.Context(), uid, chapterID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"unlock": res.Unlock, "balance": res.Balance})
}

// UnlockStatus GET /api/v1/chapters/:id/unlock
func (h *Handler) UnlockStatus(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	chapterID, ok := pathID(c, "id")
	if !ok {
		return
	}

	unlocked, err := h.Unlocks.IsUnlocked(c.Request.Context(), uid, chapterID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"chapter_id": chapterID, "unlocked": unlocked})
}

// ListUnlocks GET /api/v1/unlocks
func (h *Handler) ListUnlocks(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	page := pageOf(c)
	items, total, err := h.Unlocks.ListUnlocks(c.Request.Context(), uid, page)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, paged(items, total, page))
}

// GetRate GET /api/v1/rate
func (h *Handler) GetRate(c *gin.Context) {
	rate, err := h.Rates.CurrentRate(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, rate)
}
