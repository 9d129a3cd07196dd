package application

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	catalog "github.com/wyfcoding/smarthome/internal/catalog/domain"
	"github.com/wyfcoding/smarthome/internal/order/domain"
	"github.com/wyfcoding/smarthome/pkg/apperror"
	"github.com/wyfcoding/smarthome/pkg/db"
	"github.com/wyfcoding/smarthome/pkg/logger"
	"github.com/wyfcoding/smarthome/pkg/metrics"
)

// OrderLine 下单行
type OrderLine struct {
	CartItemID  uint
	ProductID   string
	Quantity    int
	Accessories []AccessorySelection
	Warranty    string
}

// AccessorySelection 所选配件，按 ID 或名称匹配商品目录
type AccessorySelection struct {
	ID   string
	Name string
}

// PlaceOrderCommand 下单命令
type PlaceOrderCommand struct {
	UserID         string
	UserName       string
	Street         string
	City           string
	State          string
	ZipCode        string
	CreditCard     string
	DeliveryOption string
	PickupLocation string
	// 客户端计算的总额，仅用于比对
	ClientTotal decimal.NullDecimal
	Lines       []OrderLine
}

// Options 下单流程参数
type Options struct {
	DeliveryLeadDays int
	MaxPlaceAttempts int
}

// OrderCommandService 订单命令服务
type OrderCommandService struct {
	repo      domain.OrderRepository
	products  domain.ProductStore
	locations domain.StoreLocator
	carts     domain.CartCleaner
	publisher domain.EventPublisher
	ids       domain.ConfirmationGenerator
	tx        db.TxManager
	metrics   metrics.MetricsCollector
	opts      Options
	now       func() time.Time
}

// NewOrderCommandService 创建订单命令服务实例
func NewOrderCommandService(
	repo domain.OrderRepository,
	products domain.ProductStore,
	locations domain.StoreLocator,
	carts domain.CartCleaner,
	publisher domain.EventPublisher,
	ids domain.ConfirmationGenerator,
	tx db.TxManager,
	collector metrics.MetricsCollector,
	opts Options,
) *OrderCommandService {
	if opts.MaxPlaceAttempts < 1 {
		opts.MaxPlaceAttempts = 1
	}
	if collector == nil {
		collector = metrics.NopCollector{}
	}
	return &OrderCommandService{
		repo:      repo,
		products:  products,
		locations: locations,
		carts:     carts,
		publisher: publisher,
		ids:       ids,
		tx:        tx,
		metrics:   collector,
		opts:      opts,
		now:       time.Now,
	}
}

// PlaceOrder 下单：校验、扣减库存、保存订单、清理购物车与写入事件在同一事务内完成
func (s *OrderCommandService) PlaceOrder(ctx context.Context, cmd PlaceOrderCommand) (*domain.Order, error) {
	start := time.Now()

	option, pickup, err := s.validate(ctx, &cmd)
	if err != nil {
		return nil, err
	}

	var order *domain.Order
	for attempt := 1; attempt <= s.opts.MaxPlaceAttempts; attempt++ {
		err = s.tx.Transaction(ctx, func(ctx context.Context) error {
			var txErr error
			order, txErr = s.placeInTx(ctx, cmd, option, pickup)
			return txErr
		})
		if !errors.Is(err, domain.ErrDuplicateConfirmation) {
			break
		}
		logger.Warn(ctx, "Confirmation number collision, retrying", "attempt", attempt)
	}

	if err != nil {
		var inv *domain.InsufficientInventoryError
		switch {
		case errors.As(err, &inv):
			s.metrics.RecordInventoryRejection()
			logger.Info(ctx, "Order rejected", "product_id", inv.ProductID, "requested", inv.Requested)
			return nil, err
		case errors.Is(err, domain.ErrDuplicateConfirmation):
			return nil, apperror.Internal(err, "failed to allocate a unique confirmation number")
		case apperror.KindOf(err) != apperror.KindInternal:
			return nil, err
		default:
			return nil, apperror.Internal(err, "failed to place order")
		}
	}

	s.metrics.RecordOrderPlaced(time.Since(start).Seconds())
	logger.Info(ctx, "Order placed",
		"confirmation_number", order.ConfirmationNumber,
		"user_name", order.UserName,
		"total_amount", order.TotalAmount.StringFixed(2),
		"items", len(order.Items),
	)
	return order, nil
}

func (s *OrderCommandService) validate(ctx context.Context, cmd *PlaceOrderCommand) (domain.DeliveryOption, string, error) {
	cmd.UserName = strings.TrimSpace(cmd.UserName)
	for _, f := range []struct{ name, value string }{
		{"name", cmd.UserName},
		{"street", cmd.Street},
		{"city", cmd.City},
		{"state", cmd.State},
		{"zip code", cmd.ZipCode},
	} {
		if strings.TrimSpace(f.value) == "" {
			return "", "", apperror.Validation("%s is required", f.name)
		}
	}
	if len(cmd.Lines) == 0 {
		return "", "", apperror.Validation("order must contain at least one item")
	}
	for _, l := range cmd.Lines {
		if strings.TrimSpace(l.ProductID) == "" {
			return "", "", apperror.Validation("product_id is required for every item")
		}
		if l.Quantity <= 0 {
			return "", "", apperror.Validation("quantity for product %s must be greater than 0", l.ProductID)
		}
	}

	option, err := domain.ParseDeliveryOption(cmd.DeliveryOption)
	if err != nil {
		return "", "", err
	}
	if option == domain.DeliveryHome {
		return option, "", nil
	}

	pickup := strings.TrimSpace(cmd.PickupLocation)
	if pickup == "" {
		return "", "", apperror.Validation("pickup location is required for pickup orders")
	}
	loc, err := s.resolveStore(ctx, pickup)
	if err != nil {
		return "", "", err
	}
	if loc == nil {
		return "", "", apperror.Validation("unknown pickup location %q", pickup)
	}
	return option, loc.Street, nil
}

// resolveStore 自提地点可以是门店 ID，也可以是门店街道地址
func (s *OrderCommandService) resolveStore(ctx context.Context, pickup string) (*catalog.StoreLocation, error) {
	if id, err := strconv.ParseUint(pickup, 10, 32); err == nil {
		loc, err := s.locations.GetByID(ctx, uint(id))
		if err != nil {
			return nil, apperror.Internal(err, "failed to load store location")
		}
		if loc != nil {
			return loc, nil
		}
	}
	loc, err := s.locations.FindByStreet(ctx, pickup)
	if err != nil {
		return nil, apperror.Internal(err, "failed to load store location")
	}
	return loc, nil
}

func (s *OrderCommandService) placeInTx(ctx context.Context, cmd PlaceOrderCommand, option domain.DeliveryOption, pickup string) (*domain.Order, error) {
	ids := make([]string, 0, len(cmd.Lines))
	seen := make(map[string]struct{}, len(cmd.Lines))
	for _, l := range cmd.Lines {
		if _, ok := seen[l.ProductID]; !ok {
			seen[l.ProductID] = struct{}{}
			ids = append(ids, l.ProductID)
		}
	}
	found, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, apperror.Internal(err, "failed to load products")
	}
	products := make(map[string]*catalog.Product, len(found))
	for _, p := range found {
		products[p.ID] = p
	}

	items := make([]domain.OrderItem, 0, len(cmd.Lines))
	total := decimal.Zero
	checkedOut := make(map[uint]string)
	for _, l := range cmd.Lines {
		p, ok := products[l.ProductID]
		if !ok {
			return nil, apperror.Validation("product %s not found", l.ProductID)
		}
		item, err := snapshotLine(p, l)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		total = total.Add(item.LineTotal)
		if l.CartItemID != 0 {
			checkedOut[l.CartItemID] = l.ProductID
		}
	}

	// 条件扣减：任何一行失败都会让整个事务回滚
	for _, item := range items {
		ok, err := s.products.DecrementStock(ctx, item.ID, item.Quantity)
		if err != nil {
			return nil, apperror.Internal(err, "failed to decrement inventory")
		}
		if !ok {
			return nil, &domain.InsufficientInventoryError{ProductID: item.ID, ProductName: item.Name, Requested: item.Quantity}
		}
	}

	if cmd.ClientTotal.Valid && !cmd.ClientTotal.Decimal.Equal(total) {
		logger.Warn(ctx, "Client total differs from recomputed total",
			"client_total", cmd.ClientTotal.Decimal.String(),
			"total", total.String(),
		)
	}

	now := s.now()
	order := &domain.Order{
		ConfirmationNumber: s.ids.Confirmation(),
		UserID:             strings.TrimSpace(cmd.UserID),
		UserName:           cmd.UserName,
		Street:             strings.TrimSpace(cmd.Street),
		City:               strings.TrimSpace(cmd.City),
		State:              strings.TrimSpace(cmd.State),
		ZipCode:            strings.TrimSpace(cmd.ZipCode),
		CreditCard:         domain.MaskCard(cmd.CreditCard),
		DeliveryOption:     option,
		PickupLocation:     pickup,
		TotalAmount:        total,
		OrderDate:          now,
		DeliveryDate:       now.AddDate(0, 0, s.opts.DeliveryLeadDays),
		Items:              items,
		Status:             domain.OrderStatusPending,
	}
	if err := s.repo.Create(ctx, order); err != nil {
		if errors.Is(err, domain.ErrDuplicateConfirmation) {
			return nil, err
		}
		return nil, apperror.Internal(err, "failed to save order")
	}

	// 只删除属于下单用户且商品一致的条目
	if err := s.carts.DeleteCheckedOut(ctx, order.UserID, checkedOut); err != nil {
		return nil, apperror.Internal(err, "failed to clear checked out cart items")
	}

	if err := s.publisher.Publish(ctx, domain.TopicOrderPlaced, order.ConfirmationNumber, domain.OrderPlacedEvent{
		ConfirmationNumber: order.ConfirmationNumber,
		OrderID:            order.ID,
		UserName:           order.UserName,
		ZipCode:            order.ZipCode,
		DeliveryOption:     order.DeliveryOption,
		TotalAmount:        order.TotalAmount,
		Items:              order.Items,
		OccurredOn:         now,
	}); err != nil {
		return nil, apperror.Internal(err, "failed to record order event")
	}
	return order, nil
}

// snapshotLine 以目录价格生成快照行：(单价 + 配件价) × 数量
func snapshotLine(p *catalog.Product, l OrderLine) (domain.OrderItem, error) {
	item := domain.OrderItem{
		ID:         p.ID,
		Name:       p.Name,
		Price:      p.SalePrice(),
		Quantity:   l.Quantity,
		CategoryID: p.CategoryID,
		CartItemID: l.CartItemID,
	}

	unit := item.Price
	for _, sel := range l.Accessories {
		acc, ok := p.FindAccessory(catalog.Accessory{ID: sel.ID, Name: sel.Name})
		if !ok {
			label := sel.Name
			if label == "" {
				label = sel.ID
			}
			return domain.OrderItem{}, apperror.Validation("accessory %q is not offered for product %s", label, p.Name)
		}
		item.Accessories = append(item.Accessories, domain.ItemAccessory{ID: acc.ID, Name: acc.Name, Price: acc.Price})
		unit = unit.Add(acc.Price)
	}

	if w := strings.TrimSpace(l.Warranty); w != "" {
		valid := false
		for _, opt := range p.Warranties() {
			if strings.EqualFold(opt, w) {
				item.Warranty = opt
				valid = true
				break
			}
		}
		if !valid {
			return domain.OrderItem{}, apperror.Validation("warranty %q is not offered for product %s", w, p.Name)
		}
	}

	item.LineTotal = unit.Mul(decimal.NewFromInt(int64(l.Quantity)))
	return item, nil
}

// CancelOrder 取消订单，不恢复库存
func (s *OrderCommandService) CancelOrder(ctx context.Context, confirmation string) (*domain.Order, error) {
	var cancelled *domain.Order
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		order, err := s.repo.GetByConfirmation(ctx, confirmation)
		if err != nil {
			return apperror.Internal(err, "failed to load order")
		}
		if order == nil {
			return apperror.NotFound("order not found")
		}
		if err := order.Cancel(); err != nil {
			return err
		}

		ok, err := s.repo.UpdateStatus(ctx, confirmation, domain.OrderStatusPending, domain.OrderStatusCancelled)
		if err != nil {
			return apperror.Internal(err, "failed to cancel order")
		}
		if !ok {
			return apperror.Conflict("order %s is already cancelled", confirmation)
		}

		if err := s.publisher.Publish(ctx, domain.TopicOrderCancelled, confirmation, domain.OrderCancelledEvent{
			ConfirmationNumber: confirmation,
			TotalAmount:        order.TotalAmount,
			OccurredOn:         s.now(),
		}); err != nil {
			return apperror.Internal(err, "failed to record order event")
		}
		cancelled = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordOrderCancelled()
	logger.Info(ctx, "Order cancelled", "confirmation_number", confirmation)
	return cancelled, nil
}
