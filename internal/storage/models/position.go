package models

import (
	"time"

	"gorm.io/gorm"
)

// BaseModel carries the common persistence columns.
type BaseModel struct {
	ID        uint           `gorm:"primarykey"`
	CreatedAt time.Time      `gorm:"index"`
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// Position is a persisted liquidity-position record. Amounts are stored
// human-readable: all base-unit math happens before a record reaches the
// store, never after.
type Position struct {
	BaseModel
	Owner     string `gorm:"index;not null;type:varchar(66)"`
	PairID    string `gorm:"index;not null;type:varchar(66)"`
	Asset0    string `gorm:"not null;type:varchar(66)"`
	Asset1    string `gorm:"not null;type:varchar(66)"`
	Symbol0   string `gorm:"type:varchar(16)"`
	Symbol1   string `gorm:"type:varchar(16)"`
	Amount0   string `gorm:"type:varchar(80)"`
	Amount1   string `gorm:"type:varchar(80)"`
	Liquidity string `gorm:"type:varchar(80)"`
	TxID      string `gorm:"uniqueIndex;not null;type:varchar(80)"`
	Action    string `gorm:"not null;type:varchar(16)"` // "add" or "remove"
}

// TransactionRecord archives every submitted transaction with its outcome,
// distinguishing user cancellation from on-chain failure.
type TransactionRecord struct {
	BaseModel
	TxID      string `gorm:"uniqueIndex;not null;type:varchar(80)"`
	Owner     string `gorm:"index;type:varchar(66)"`
	Operation string `gorm:"not null;type:varchar(24)"`
	Status    string `gorm:"not null;type:varchar(16)"`
	Detail    string `gorm:"type:text"`
}
