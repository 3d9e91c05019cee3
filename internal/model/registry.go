package model

// AllModels lists every table for development AutoMigrate and test setup.
// Production schema lives in migrations/.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Chapter{},
		&Wallet{},
		&CreditPackage{},
		&Purchase{},
		&UnlockRecord{},
		&Payout{},
		&Earning{},
		&PayoutSettings{},
		&OutboxMessage{},
	}
}
