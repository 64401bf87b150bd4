package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// nextYearlyNumber returns the next PREFIX-YYYY-NNNNN value of column in table.
// Numbers restart at 00001 every calendar year.
func nextYearlyNumber(ctx context.Context, db *gorm.DB, table, column, prefix string) (string, error) {
	yearPrefix := fmt.Sprintf("%s-%d-", prefix, time.Now().Year())

	var last string
	err := db.WithContext(ctx).
		Table(table).
		Select(column).
		Where(column+" LIKE ?", yearPrefix+"%").
		Order(column + " DESC").
		Limit(1).
		Row().
		Scan(&last)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}

	var nextNum int64 = 1
	if last != "" {
		parts := strings.Split(last, "-")
		if len(parts) == 3 {
			var num int64
			if _, parseErr := fmt.Sscanf(parts[2], "%d", &num); parseErr == nil {
				nextNum = num + 1
			}
		}
	}

	number := fmt.Sprintf("%s%05d", yearPrefix, nextNum)

	// Skip values taken by a concurrent writer since the read above
	for i := 0; i < 100; i++ {
		var count int64
		if err := db.WithContext(ctx).Table(table).Where(column+" = ?", number).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			break
		}
		nextNum++
		number = fmt.Sprintf("%s%05d", yearPrefix, nextNum)
	}

	return number, nil
}
