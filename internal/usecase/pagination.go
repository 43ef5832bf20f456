package usecase

import "strconv"

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
)

type PageInfo struct {
	Page       int64 `json:"page"`
	Limit      int64 `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

func normalizePage(page, limit int64) (int64, int64) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

func newPageInfo(page, limit, total int64) *PageInfo {
	totalPages := (total + limit - 1) / limit
	return &PageInfo{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}

func formatUserID(userID int64) string {
	return strconv.FormatInt(userID, 10)
}
