package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/smarthome/pkg/apperror"
)

// DefaultWarrantyOptions 商品未配置保修选项时使用的默认值
var DefaultWarrantyOptions = []string{"No Warranty", "1 Year", "2 Years"}

// Accessory 商品可选配件
type Accessory struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// Product 商品
// AvailableItems 只允许被下单流程（条件扣减）与商品管理（直接设置）修改
type Product struct {
	ID                 string              `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	Name               string              `gorm:"column:name;type:varchar(100);not null;index" json:"name"`
	Description        string              `gorm:"column:description;type:text" json:"description"`
	Price              decimal.Decimal     `gorm:"column:price;type:decimal(12,2);not null" json:"price"`
	CategoryID         uint                `gorm:"column:category_id;index;not null" json:"category_id"`
	Manufacturer       string              `gorm:"column:manufacturer;type:varchar(100)" json:"manufacturer"`
	ImageURL           string              `gorm:"column:image_url;type:varchar(255)" json:"image_url"`
	Accessories        []Accessory         `gorm:"column:accessories;type:text;serializer:json" json:"accessories"`
	WarrantyOptions    []string            `gorm:"column:warranty_options;type:text;serializer:json" json:"warranty_options"`
	RetailerDiscount   decimal.NullDecimal `gorm:"column:retailer_discount;type:decimal(12,2)" json:"retailer_discount"`
	ManufacturerRebate decimal.NullDecimal `gorm:"column:manufacturer_rebate;type:decimal(12,2)" json:"manufacturer_rebate"`
	AvailableItems     int                 `gorm:"column:available_items;not null;default:0" json:"available_items"`
	CreatedAt          time.Time           `gorm:"column:created_at" json:"created_at"`
	UpdatedAt          time.Time           `gorm:"column:updated_at" json:"updated_at"`
}

func (Product) TableName() string { return "products" }

// Validate 校验商品字段
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return apperror.Validation("product name is required")
	}
	if p.Price.IsNegative() {
		return apperror.Validation("product price must not be negative")
	}
	if p.CategoryID == 0 {
		return apperror.Validation("product category is required")
	}
	if p.AvailableItems < 0 {
		return apperror.Validation("available_items must not be negative")
	}
	if p.RetailerDiscount.Valid && p.RetailerDiscount.Decimal.IsNegative() {
		return apperror.Validation("retailer discount must not be negative")
	}
	if p.ManufacturerRebate.Valid && p.ManufacturerRebate.Decimal.IsNegative() {
		return apperror.Validation("manufacturer rebate must not be negative")
	}
	for _, a := range p.Accessories {
		if strings.TrimSpace(a.Name) == "" {
			return apperror.Validation("accessory name is required")
		}
		if a.Price.IsNegative() {
			return apperror.Validation("accessory %q price must not be negative", a.Name)
		}
	}
	return nil
}

// Warranties 返回可选保修项
func (p *Product) Warranties() []string {
	if len(p.WarrantyOptions) == 0 {
		return DefaultWarrantyOptions
	}
	return p.WarrantyOptions
}

// OnSale 是否有零售折扣
func (p *Product) OnSale() bool { return p.RetailerDiscount.Valid }

// SalePrice 折后价，不低于 0
func (p *Product) SalePrice() decimal.Decimal {
	if !p.RetailerDiscount.Valid {
		return p.Price
	}
	return decimal.Max(p.Price.Sub(p.RetailerDiscount.Decimal), decimal.Zero)
}

// HasRebate 是否有厂商返利
func (p *Product) HasRebate() bool { return p.ManufacturerRebate.Valid }

// NetPrice 扣除厂商返利后的价格，不低于 0
func (p *Product) NetPrice() decimal.Decimal {
	if !p.ManufacturerRebate.Valid {
		return p.Price
	}
	return decimal.Max(p.Price.Sub(p.ManufacturerRebate.Decimal), decimal.Zero)
}

// FindAccessory 按 ID 或名称匹配目录中的配件
func (p *Product) FindAccessory(sel Accessory) (Accessory, bool) {
	for _, a := range p.Accessories {
		if sel.ID != "" && a.ID == sel.ID {
			return a, true
		}
	}
	for _, a := range p.Accessories {
		if sel.Name != "" && strings.EqualFold(a.Name, sel.Name) {
			return a, true
		}
	}
	return Accessory{}, false
}

// Category 商品分类
type Category struct {
	ID   uint   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"column:name;type:varchar(100);not null" json:"name"`
}

func (Category) TableName() string { return "categories" }

// StoreLocation 门店，自提订单的取货地点
type StoreLocation struct {
	ID      uint   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Street  string `gorm:"column:street;type:varchar(120);not null" json:"street"`
	City    string `gorm:"column:city;type:varchar(80);not null" json:"city"`
	State   string `gorm:"column:state;type:varchar(50);not null" json:"state"`
	ZipCode string `gorm:"column:zip_code;type:varchar(20);not null" json:"zip_code"`
}

func (StoreLocation) TableName() string { return "store_locations" }

// Validate 校验门店地址
func (s *StoreLocation) Validate() error {
	if strings.TrimSpace(s.Street) == "" || strings.TrimSpace(s.City) == "" ||
		strings.TrimSpace(s.State) == "" || strings.TrimSpace(s.ZipCode) == "" {
		return apperror.Validation("street, city, state and zip_code are required")
	}
	return nil
}
