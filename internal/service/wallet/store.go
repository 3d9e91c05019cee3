package wallet

import (
	"context"
	"errors"
	"fmt"

	"credit-core/internal/model"
	"credit-core/pkg/errno"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store owns wallet balances. Every balance change happens inside a
// transaction that holds the wallet row lock.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// GetOrCreate returns the user's wallet, creating an empty one if needed.
func (s *Store) GetOrCreate(ctx context.Context, userID uint64) (*model.Wallet, error) {
	var w *model.Wallet
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		w, err = lockWallet(tx, userID)
		return err
	})
	return w, err
}

// GetBalance reads the balance without creating a wallet; no wallet is zero.
func (s *Store) GetBalance(ctx context.Context, userID uint64) (int64, error) {
	var w model.Wallet
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&w).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get balance: %w", err)
	}
	return w.Balance, nil
}

func (s *Store) AddCredits(ctx context.Context, userID uint64, amount int64) (*model.Wallet, error) {
	var w *model.Wallet
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		w, err = AddCreditsTx(tx, userID, amount)
		return err
	})
	return w, err
}

func (s *Store) DeductCredits(ctx context.Context, userID uint64, amount int64) (*model.Wallet, error) {
	var w *model.Wallet
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		w, err = DeductCreditsTx(tx, userID, amount)
		return err
	})
	return w, err
}

// Delete removes the wallet together with the account it belongs to.
func (s *Store) Delete(ctx context.Context, userID uint64) error {
	return s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.Wallet{}).Error
}

// AddCreditsTx credits the wallet inside the caller's transaction.
func AddCreditsTx(tx *gorm.DB, userID uint64, amount int64) (*model.Wallet, error) {
	if amount <= 0 {
		return nil, errno.ErrInvalidAmount
	}
	w, err := lockWallet(tx, userID)
	if err != nil {
		return nil, err
	}

	err = tx.Model(&model.Wallet{}).
		Where("id = ?", w.ID).
		Updates(map[string]interface{}{
			"balance": gorm.Expr("balance + ?", amount),
			"version": gorm.Expr("version + 1"),
		}).Error
	if err != nil {
		return nil, fmt.Errorf("credit wallet: %w", err)
	}

	w.Balance += amount
	w.Version++
	return w, nil
}

// DeductCreditsTx debits the wallet inside the caller's transaction and
// fails with ErrInsufficientCredits rather than going negative.
func DeductCreditsTx(tx *gorm.DB, userID uint64, amount int64) (*model.Wallet, error) {
	if amount <= 0 {
		return nil, errno.ErrInvalidAmount
	}
	w, err := lockWallet(tx, userID)
	if err != nil {
		return nil, err
	}
	if w.Balance < amount {
		return nil, errno.ErrInsufficientCredits
	}

	res := tx.Model(&model.Wallet{}).
		Where("id = ? AND balance >= ?", w.ID, amount).
		Updates(map[string]interface{}{
			"balance": gorm.Expr("balance - ?", amount),
			"version": gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return nil, fmt.Errorf("debit wallet: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, errno.ErrInsufficientCredits
	}

	w.Balance -= amount
	w.Version++
	return w, nil
}

// lockWallet creates the wallet if missing and returns it locked FOR UPDATE.
func lockWallet(tx *gorm.DB, userID uint64) (*model.Wallet, error) {
	fresh := model.Wallet{UserID: userID}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&fresh).Error
	if err != nil {
		return nil, fmt.Errorf("create wallet: %w", err)
	}

	var w model.Wallet
	err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&w).Error
	if err != nil {
		return nil, fmt.Errorf("lock wallet: %w", err)
	}
	return &w, nil
}
