package application

// CatalogService 商品目录应用服务，聚合命令与查询两侧
type CatalogService struct {
	*CatalogCommandService
	*CatalogQueryService
}

// NewCatalogService 创建商品目录应用服务
func NewCatalogService(cmd *CatalogCommandService, query *CatalogQueryService) *CatalogService {
	return &CatalogService{
		CatalogCommandService: cmd,
		CatalogQueryService:   query,
	}
}
