// Package utils 提供分页与重试等通用工具
package utils

import (
	"context"
	"time"
)

// Pagination 分页信息
type Pagination struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
	Pages    int64 `json:"pages"`
}

// NewPagination 创建分页信息
func NewPagination(page, pageSize int, total int64) *Pagination {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 1000 {
		pageSize = 1000
	}

	pages := (total + int64(pageSize) - 1) / int64(pageSize)

	return &Pagination{
		Page:     page,
		PageSize: pageSize,
		Total:    total,
		Pages:    pages,
	}
}

// Offset 获取数据库查询偏移量
func (p *Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Limit 获取数据库查询限制
func (p *Pagination) Limit() int {
	return p.PageSize
}

// RetryWithBackoff 带指数退避的重试，ctx 取消时立即返回
func RetryWithBackoff(ctx context.Context, maxAttempts int, initialDelay, maxDelay time.Duration, fn func() error) error {
	var lastErr error
	delay := initialDelay

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if lastErr = fn(); lastErr == nil {
			return nil
		}

		if attempt < maxAttempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * 1.5)
			if delay > maxDelay {
				delay = maxDelay
			}
		}
	}
	return lastErr
}
