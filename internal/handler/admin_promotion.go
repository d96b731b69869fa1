package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-booking/internal/service"
)

type promotionReq struct {
	Code               string   `json:"code" validate:"required,max=50"`
	Name               string   `json:"name" validate:"required,max=255"`
	Description        *string  `json:"description"`
	DiscountPercentage *float64 `json:"discount_percentage"`
	DiscountAmount     *float64 `json:"discount_amount"`
	ValidFrom          string   `json:"valid_from" validate:"required"`
	ValidTo            string   `json:"valid_to" validate:"required"`
	UsageLimit         *int     `json:"usage_limit"`
	IsActive           *bool    `json:"is_active"`
}

type promotionPatchReq struct {
	Code               *string  `json:"code" validate:"omitnil,max=50"`
	Name               *string  `json:"name" validate:"omitnil,max=255"`
	Description        *string  `json:"description"`
	DiscountPercentage *float64 `json:"discount_percentage"`
	DiscountAmount     *float64 `json:"discount_amount"`
	ValidFrom          *string  `json:"valid_from"`
	ValidTo            *string  `json:"valid_to"`
	UsageLimit         *int     `json:"usage_limit"`
	IsActive           *bool    `json:"is_active"`
}

func (h *AdminHandler) ListPromotions(c echo.Context) error {
	active, err := queryBool(c, "is_active")
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	items, err := h.Promotions.List(ctx, active)
	if err != nil {
		return err
	}
	return ok(c, items, "")
}

func (h *AdminHandler) GetPromotion(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Promotions.Get(ctx, id)
	if err != nil {
		return err
	}
	return ok(c, p, "")
}

func (h *AdminHandler) CreatePromotion(c echo.Context) error {
	var req promotionReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Promotions.Create(ctx, service.PromotionInput(req))
	if err != nil {
		return err
	}
	return created(c, p, "Promotion created successfully")
}

func (h *AdminHandler) UpdatePromotion(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req promotionPatchReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Promotions.Update(ctx, id, service.PromotionPatch(req))
	if err != nil {
		return err
	}
	return ok(c, p, "Promotion updated successfully")
}

func (h *AdminHandler) DeletePromotion(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Promotions.Delete(ctx, id); err != nil {
		return err
	}
	return ok(c, nil, "Promotion deleted successfully")
}
