package application

// Service 购物车应用服务门面，聚合命令与查询
type Service struct {
	*CartCommandService
	*CartQueryService
}

// NewService 创建购物车应用服务实例
func NewService(command *CartCommandService, query *CartQueryService) *Service {
	return &Service{
		CartCommandService: command,
		CartQueryService:   query,
	}
}
