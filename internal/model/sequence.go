package model

// NumberSequence is an atomic per-scope document counter. Scope encodes
// what is being numbered and for whom, e.g. "deal", "purchase",
// "bill:<userID>". The value is bumped with a single in-database
// increment inside the same transaction as the document write, so two
// concurrent creations can never draw the same number.
type NumberSequence struct {
	Scope string `gorm:"type:varchar(64);primaryKey" json:"scope"`
	Value int64  `gorm:"type:bigint;not null;default:0" json:"value"`
}
