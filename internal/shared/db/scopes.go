// Package db provides reusable gorm query scopes.
package db

import (
	"gorm.io/gorm"
)

// NotDeleted is a GORM scope that filters out soft-deleted records.
//
//	db.Model(&Model{}).Scopes(db.NotDeleted()).Where("status = ?", status).Find(&rows)
func NotDeleted() func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("deleted_at IS NULL")
	}
}

// AfterCursor keeps rows whose id sorts after cursor, in ascending id order.
// An empty cursor starts from the beginning.
func AfterCursor(cursor string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if cursor != "" {
			db = db.Where("id > ?", cursor)
		}
		return db.Order("id ASC")
	}
}
