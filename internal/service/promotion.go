package service

import (
	"context"
	"errors"
	"strings"

	"github.com/iliyamo/movie-ticket-booking/internal/apperr"
	"github.com/iliyamo/movie-ticket-booking/internal/model"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
)

// PromotionService manages discount codes.
type PromotionService struct {
	uow repository.UnitOfWork
}

func NewPromotionService(uow repository.UnitOfWork) *PromotionService {
	return &PromotionService{uow: uow}
}

type PromotionInput struct {
	Code               string
	Name               string
	Description        *string
	DiscountPercentage *float64
	DiscountAmount     *float64
	ValidFrom          string
	ValidTo            string
	UsageLimit         *int
	IsActive           *bool
}

// PromotionPatch changes the non-nil fields. A zero discount or usage
// limit clears it.
type PromotionPatch struct {
	Code               *string
	Name               *string
	Description        *string
	DiscountPercentage *float64
	DiscountAmount     *float64
	ValidFrom          *string
	ValidTo            *string
	UsageLimit         *int
	IsActive           *bool
}

const msgPromotionNotFound = "Promotion not found"

func normalizeCode(c string) string { return strings.ToUpper(strings.TrimSpace(c)) }

func positiveOrNil(f *float64) *float64 {
	if f == nil || *f == 0 {
		return nil
	}
	return f
}

// checkPromotion validates the merged promotion.
func checkPromotion(p *model.Promotion) error {
	if p.Code == "" || p.Name == "" {
		return apperr.Validation("Code and name are required")
	}
	if p.ValidTo.Before(p.ValidFrom) {
		return apperr.Validation("End date must be after start date")
	}
	if p.DiscountPercentage == nil && p.DiscountAmount == nil {
		return apperr.Validation("Either discount_percentage or discount_amount is required")
	}
	if v := p.DiscountPercentage; v != nil && (*v <= 0 || *v > 100) {
		return apperr.Validation("Discount percentage must be between 0 and 100")
	}
	if v := p.DiscountAmount; v != nil && *v <= 0 {
		return apperr.Validation("Discount amount must be positive")
	}
	if p.UsageLimit != nil && *p.UsageLimit <= 0 {
		return apperr.Validation("Usage limit must be positive")
	}
	return nil
}

func requiredDate(s, field string) (model.Date, error) {
	d, err := optionalDate(s, field)
	if err != nil {
		return model.Date{}, err
	}
	if d == nil {
		return model.Date{}, apperr.Validation("%s is required", field)
	}
	return *d, nil
}

func (s *PromotionService) List(ctx context.Context, active *bool) ([]model.Promotion, error) {
	var out []model.Promotion
	err := s.uow.Run(ctx, func(r repository.Repos) error {
		var err error
		out, err = r.Promotions.List(ctx, active)
		return err
	})
	return out, err
}

func (s *PromotionService) Get(ctx context.Context, id uint64) (*model.Promotion, error) {
	var p *model.Promotion
	err := s.uow.Run(ctx, func(r repository.Repos) error {
		var err error
		p, err = r.Promotions.GetByID(ctx, id)
		return notFound(err, msgPromotionNotFound)
	})
	return p, err
}

func (s *PromotionService) Create(ctx context.Context, in PromotionInput) (*model.Promotion, error) {
	p := &model.Promotion{
		Code:               normalizeCode(in.Code),
		Name:               strings.TrimSpace(in.Name),
		Description:        clean(in.Description),
		DiscountPercentage: positiveOrNil(in.DiscountPercentage),
		DiscountAmount:     positiveOrNil(in.DiscountAmount),
		UsageLimit:         in.UsageLimit,
		IsActive:           true,
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	var err error
	if p.ValidFrom, err = requiredDate(in.ValidFrom, "valid_from"); err != nil {
		return nil, err
	}
	if p.ValidTo, err = requiredDate(in.ValidTo, "valid_to"); err != nil {
		return nil, err
	}
	if err := checkPromotion(p); err != nil {
		return nil, err
	}
	err = s.uow.Run(ctx, func(r repository.Repos) error {
		if err := r.Promotions.Create(ctx, p); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return apperr.Conflict("Promotion code already exists")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PromotionService) Update(ctx context.Context, id uint64, in PromotionPatch) (*model.Promotion, error) {
	var p *model.Promotion
	err := s.uow.Run(ctx, func(r repository.Repos) error {
		var err error
		if p, err = r.Promotions.GetByID(ctx, id); err != nil {
			return notFound(err, msgPromotionNotFound)
		}
		if in.Code != nil {
			p.Code = normalizeCode(*in.Code)
		}
		if in.Name != nil {
			p.Name = strings.TrimSpace(*in.Name)
		}
		if in.Description != nil {
			p.Description = clean(in.Description)
		}
		if in.DiscountPercentage != nil {
			p.DiscountPercentage = positiveOrNil(in.DiscountPercentage)
		}
		if in.DiscountAmount != nil {
			p.DiscountAmount = positiveOrNil(in.DiscountAmount)
		}
		if in.ValidFrom != nil {
			if p.ValidFrom, err = requiredDate(*in.ValidFrom, "valid_from"); err != nil {
				return err
			}
		}
		if in.ValidTo != nil {
			if p.ValidTo, err = requiredDate(*in.ValidTo, "valid_to"); err != nil {
				return err
			}
		}
		if in.UsageLimit != nil {
			p.UsageLimit = in.UsageLimit
			if *in.UsageLimit == 0 {
				p.UsageLimit = nil
			}
		}
		if in.IsActive != nil {
			p.IsActive = *in.IsActive
		}
		if err := checkPromotion(p); err != nil {
			return err
		}
		if err := r.Promotions.Update(ctx, p); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return apperr.Conflict("Promotion code already exists")
			}
			return notFound(err, msgPromotionNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PromotionService) Delete(ctx context.Context, id uint64) error {
	return s.uow.Run(ctx, func(r repository.Repos) error {
		p, err := r.Promotions.GetByID(ctx, id)
		if err != nil {
			return notFound(err, msgPromotionNotFound)
		}
		if p.UsedCount > 0 {
			return apperr.Conflict("Cannot delete promotion that has been used. Consider deactivating it instead.")
		}
		return notFound(r.Promotions.Delete(ctx, id), msgPromotionNotFound)
	})
}
