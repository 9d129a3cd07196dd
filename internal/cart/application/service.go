package application

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/smarthome/internal/cart/domain"
	catalog "github.com/wyfcoding/smarthome/internal/catalog/domain"
	"github.com/wyfcoding/smarthome/pkg/apperror"
	"github.com/wyfcoding/smarthome/pkg/logger"
)

// AddItemCommand 添加商品到购物车命令
type AddItemCommand struct {
	UserID      string
	ProductID   string
	Quantity    int
	Accessories []domain.SelectedAccessory
	Warranty    string
	TotalPrice  decimal.NullDecimal
}

// CartService 购物车应用服务
type CartService struct {
	repo      domain.CartRepository
	products  domain.ProductLookup
	publisher domain.EventPublisher
}

// NewCartService 创建购物车应用服务实例
func NewCartService(repo domain.CartRepository, products domain.ProductLookup, publisher domain.EventPublisher) *CartService {
	return &CartService{
		repo:      repo,
		products:  products,
		publisher: publisher,
	}
}

// AddItem 处理添加商品到购物车
func (s *CartService) AddItem(ctx context.Context, cmd AddItemCommand) (*domain.CartItem, error) {
	if !cmd.TotalPrice.Valid {
		return nil, apperror.Validation("total price cannot be null")
	}
	if strings.TrimSpace(cmd.Warranty) == "" {
		return nil, apperror.Validation("product_id, quantity and warranty are required")
	}

	item := &domain.CartItem{
		UserID:      strings.TrimSpace(cmd.UserID),
		ProductID:   strings.TrimSpace(cmd.ProductID),
		Accessories: cmd.Accessories,
		Warranty:    cmd.Warranty,
		Quantity:    cmd.Quantity,
		TotalPrice:  cmd.TotalPrice.Decimal,
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}

	product, err := s.products.GetByID(ctx, item.ProductID)
	if err != nil {
		return nil, apperror.Internal(err, "failed to load product")
	}
	if product == nil {
		return nil, apperror.Validation("product %s not found", item.ProductID)
	}
	if err := matchCatalog(product, item); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, apperror.Internal(err, "failed to add cart item")
	}

	s.publish(ctx, domain.TopicCartItemAdded, item.ProductID, domain.CartItemAddedEvent{
		ItemID:     item.ID,
		UserID:     item.UserID,
		ProductID:  item.ProductID,
		Quantity:   item.Quantity,
		TotalPrice: item.TotalPrice,
		Timestamp:  time.Now(),
	})
	return item, nil
}

// matchCatalog 保修与配件必须是商品提供的选项，匹配后改写为目录中的规范名称与价格
func matchCatalog(p *catalog.Product, item *domain.CartItem) error {
	warranty := strings.TrimSpace(item.Warranty)
	offered := false
	for _, opt := range p.Warranties() {
		if strings.EqualFold(opt, warranty) {
			item.Warranty = opt
			offered = true
			break
		}
	}
	if !offered {
		return apperror.Validation("warranty %q is not offered for product %s", warranty, p.Name)
	}

	for i, sel := range item.Accessories {
		acc, ok := p.FindAccessory(catalog.Accessory{ID: sel.ID, Name: sel.Name})
		if !ok {
			label := sel.Name
			if label == "" {
				label = sel.ID
			}
			return apperror.Validation("accessory %q is not offered for product %s", label, p.Name)
		}
		item.Accessories[i] = domain.SelectedAccessory{ID: acc.ID, Name: acc.Name, Price: acc.Price}
	}
	return nil
}

// UpdateQuantity 修改条目数量
func (s *CartService) UpdateQuantity(ctx context.Context, id uint, quantity int) error {
	if quantity <= 0 {
		return apperror.Validation("quantity must be greater than 0")
	}
	ok, err := s.repo.UpdateQuantity(ctx, id, quantity)
	if err != nil {
		return apperror.Internal(err, "failed to update cart item")
	}
	if !ok {
		return apperror.NotFound("item not found")
	}
	return nil
}

// RemoveItem 移除条目
func (s *CartService) RemoveItem(ctx context.Context, id uint) error {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return apperror.Internal(err, "failed to load cart item")
	}
	if item == nil {
		return apperror.NotFound("item not found")
	}
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return apperror.Internal(err, "failed to remove cart item")
	}
	if !ok {
		return apperror.NotFound("item not found")
	}

	s.publish(ctx, domain.TopicCartItemRemoved, item.ProductID, domain.CartItemRemovedEvent{
		ItemID:    item.ID,
		UserID:    item.UserID,
		ProductID: item.ProductID,
		Timestamp: time.Now(),
	})
	return nil
}

// ClearCart 清空购物车，userID 为空时清空全部
func (s *CartService) ClearCart(ctx context.Context, userID string) error {
	n, err := s.repo.Clear(ctx, userID)
	if err != nil {
		return apperror.Internal(err, "failed to clear cart")
	}
	if n > 0 {
		s.publish(ctx, domain.TopicCartCleared, userID, domain.CartClearedEvent{
			UserID:    userID,
			Removed:   n,
			Timestamp: time.Now(),
		})
	}
	return nil
}

// ListItems 列出购物车条目并补全商品名
func (s *CartService) ListItems(ctx context.Context, userID string) ([]domain.CartLine, error) {
	items, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(err, "failed to list cart items")
	}

	ids := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if _, ok := seen[it.ProductID]; !ok {
			seen[it.ProductID] = struct{}{}
			ids = append(ids, it.ProductID)
		}
	}
	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, apperror.Internal(err, "failed to load products")
	}
	names := make(map[string]string, len(products))
	for _, p := range products {
		names[p.ID] = p.Name
	}

	lines := make([]domain.CartLine, 0, len(items))
	for _, it := range items {
		lines = append(lines, domain.CartLine{CartItem: *it, ProductName: names[it.ProductID]})
	}
	return lines, nil
}

// 购物车事件仅用于下游统计，发布失败不影响主流程
func (s *CartService) publish(ctx context.Context, topic, key string, event any) {
	if key == "" {
		key = "anonymous"
	}
	if err := s.publisher.Publish(ctx, topic, key, event); err != nil {
		logger.Warn(ctx, "Failed to publish cart event", "topic", topic, "error", err)
	}
}

// ParseItemID 解析路径中的条目 ID
func ParseItemID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, apperror.Validation("invalid item id %q", raw)
	}
	return uint(id), nil
}
