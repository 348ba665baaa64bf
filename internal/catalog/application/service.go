package application

// Service 商品目录应用服务门面，聚合命令与查询服务
type Service struct {
	*CatalogCommandService
	*CatalogQueryService
}

// NewService 创建商品目录应用服务
func NewService(commands *CatalogCommandService, queries *CatalogQueryService) *Service {
	return &Service{
		CatalogCommandService: commands,
		CatalogQueryService:   queries,
	}
}
