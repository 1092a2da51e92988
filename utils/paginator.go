package utils

import (
	"strconv"

	"gorm.io/gorm"
)

// Pagination describes one page of an ordered result set.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// ParsePage turns a raw query value into a page number. Absent or invalid
// values mean page 1.
func ParsePage(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// Paginate counts the filtered query, clamps page into the valid range and
// loads one page into dest. The last page holds the remainder; a page
// beyond the end resolves to the last page rather than an empty one.
func Paginate(query *gorm.DB, model interface{}, page, pageSize int, dest interface{}) (Pagination, error) {
	if pageSize < 1 {
		pageSize = 10
	}
	if page < 1 {
		page = 1
	}

	var total int64
	if err := query.Model(model).Count(&total).Error; err != nil {
		return Pagination{}, err
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	if totalPages < 1 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}

	if err := query.Offset((page - 1) * pageSize).Limit(pageSize).Find(dest).Error; err != nil {
		return Pagination{}, err
	}

	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}
