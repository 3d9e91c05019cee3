package catalog

import (
	"context"
	"errors"
	"fmt"

	"credit-core/internal/model"
	"credit-core/pkg/errno"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Catalog is the read side of the user, chapter and credit package data the
// ledger depends on.
type Catalog interface {
	GetUser(ctx context.Context, id uint64) (*model.User, error)
	GetChapter(ctx context.Context, id uint64) (*model.Chapter, error)
	// GetPackage returns active packages only.
	GetPackage(ctx context.Context, id uint64) (*model.CreditPackage, error)
	ListActivePackages(ctx context.Context) ([]model.CreditPackage, error)
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) GetUser(ctx context.Context, id uint64) (*model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, notFound(err, errno.ErrUserNotFound)
	}
	return &u, nil
}

func (s *Service) GetChapter(ctx context.Context, id uint64) (*model.Chapter, error) {
	var c model.Chapter
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, notFound(err, errno.ErrChapterNotFound)
	}
	return &c, nil
}

func (s *Service) GetPackage(ctx context.Context, id uint64) (*model.CreditPackage, error) {
	var p model.CreditPackage
	if err := s.db.WithContext(ctx).Where("active = ?", true).First(&p, id).Error; err != nil {
		return nil, notFound(err, errno.ErrPackageNotFound)
	}
	return &p, nil
}

func (s *Service) ListActivePackages(ctx context.Context) ([]model.CreditPackage, error) {
	var pkgs []model.CreditPackage
	err := s.db.WithContext(ctx).
		Where("active = ?", true).
		Order("price_usd ASC, id ASC").
		Find(&pkgs).Error
	return pkgs, err
}

// CreatePackage adds a purchasable package.
func (s *Service) CreatePackage(ctx context.Context, name string, credits int64, price decimal.Decimal) (*model.CreditPackage, error) {
	if credits <= 0 || !price.IsPositive() {
		return nil, errno.ErrInvalidAmount
	}
	p := &model.CreditPackage{Name: name, CreditAmount: credits, PriceUSD: price, Active: true}
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, fmt.Errorf("create package: %w", err)
	}
	return p, nil
}

// UpdatePricing changes credits and price. Packages already referenced by a
// completed purchase are frozen; retire them with SetActive instead.
func (s *Service) UpdatePricing(ctx context.Context, id uint64, credits int64, price decimal.Decimal) (*model.CreditPackage, error) {
	if credits <= 0 || !price.IsPositive() {
		return nil, errno.ErrInvalidAmount
	}

	var p model.CreditPackage
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&p, id).Error; err != nil {
			return notFound(err, errno.ErrPackageNotFound)
		}

		var referenced int64
		err := tx.Model(&model.Purchase{}).
			Where("credit_package_id = ? AND status = ?", id, model.PurchaseCompleted).
			Count(&referenced).Error
		if err != nil {
			return err
		}
		if referenced > 0 {
			return errno.ErrPackageImmutable
		}

		p.CreditAmount = credits
		p.PriceUSD = price
		return tx.Save(&p).Error
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Service) SetActive(ctx context.Context, id uint64, active bool) error {
	res := s.db.WithContext(ctx).Model(&model.CreditPackage{}).Where("id = ?", id).Update("active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errno.ErrPackageNotFound
	}
	return nil
}

func notFound(err error, nf errno.Errno) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nf
	}
	return err
}
