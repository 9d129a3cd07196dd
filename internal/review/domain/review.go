// Package domain 商品评论，文档存储，与关系库中的商品只按名称关联
package domain

import (
	"context"
	"strings"
	"time"

	"github.com/wyfcoding/smarthome/pkg/apperror"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Review 评论文档，字段名沿用前端表单的 PascalCase
type Review struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	ProductModelName    string             `bson:"ProductModelName" json:"ProductModelName"`
	ProductCategoryName string             `bson:"ProductCategoryName,omitempty" json:"ProductCategoryName,omitempty"`
	ProductPrice        float64            `bson:"ProductPrice,omitempty" json:"ProductPrice,omitempty"`
	StoreID             string             `bson:"StoreID,omitempty" json:"StoreID,omitempty"`
	StoreZip            string             `bson:"StoreZip,omitempty" json:"StoreZip,omitempty"`
	StoreCity           string             `bson:"StoreCity,omitempty" json:"StoreCity,omitempty"`
	StoreState          string             `bson:"StoreState,omitempty" json:"StoreState,omitempty"`
	ProductOnSale       string             `bson:"ProductOnSale,omitempty" json:"ProductOnSale,omitempty"`
	ManufacturerName    string             `bson:"ManufacturerName,omitempty" json:"ManufacturerName,omitempty"`
	ManufacturerRebate  string             `bson:"ManufacturerRebate,omitempty" json:"ManufacturerRebate,omitempty"`
	UserID              string             `bson:"UserID,omitempty" json:"UserID,omitempty"`
	UserAge             int                `bson:"UserAge,omitempty" json:"UserAge,omitempty"`
	UserGender          string             `bson:"UserGender,omitempty" json:"UserGender,omitempty"`
	UserOccupation      string             `bson:"UserOccupation,omitempty" json:"UserOccupation,omitempty"`
	ReviewRating        int                `bson:"ReviewRating" json:"ReviewRating"`
	ReviewDate          string             `bson:"ReviewDate,omitempty" json:"ReviewDate,omitempty"`
	ReviewText          string             `bson:"ReviewText,omitempty" json:"ReviewText,omitempty"`
	DeliveryType        string             `bson:"DeliveryType,omitempty" json:"DeliveryType,omitempty"`
	Timestamp           time.Time          `bson:"timestamp" json:"timestamp"`
}

// Validate 校验必填字段与评分范围
func (r *Review) Validate() error {
	r.ProductModelName = strings.TrimSpace(r.ProductModelName)
	if r.ProductModelName == "" {
		return apperror.Validation("ProductModelName is required")
	}
	if r.ReviewRating < MinRating || r.ReviewRating > MaxRating {
		return apperror.Validation("ReviewRating must be between %d and %d, got %d", MinRating, MaxRating, r.ReviewRating)
	}
	return nil
}

// ReviewRepository 评论仓储
type ReviewRepository interface {
	// Insert 保存评论并返回文档 ID
	Insert(ctx context.Context, review *Review) (string, error)
	// List 按提交时间倒序
	List(ctx context.Context) ([]*Review, error)
	ListByProduct(ctx context.Context, productModelName string) ([]*Review, error)
	// TopRated 评分最高的 limit 条，同分时较新的在前
	TopRated(ctx context.Context, limit int) ([]*Review, error)
}
