package application

// OrderService 订单应用服务，聚合命令与查询
type OrderService struct {
	*OrderCommandService
	*OrderQueryService
}

// NewOrderService 创建订单应用服务
func NewOrderService(cmd *OrderCommandService, query *OrderQueryService) *OrderService {
	return &OrderService{
		OrderCommandService: cmd,
		OrderQueryService:   query,
	}
}
