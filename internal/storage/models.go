package storage

import (
	"gorm.io/gorm"
)

// Setting is a persisted key/value pair.
type Setting struct {
	gorm.Model
	Name  string `gorm:"uniqueIndex;not null"`
	Value string `gorm:"not null"`
}

// KeyLastDeposit holds the last deposit time in epoch milliseconds.
const KeyLastDeposit = "lastDepositTime"
