package application

// Service 分类应用服务门面，聚合命令与查询服务
type Service struct {
	*CategoryCommandService
	*CategoryQueryService
}

// NewService 创建分类应用服务
func NewService(commands *CategoryCommandService, queries *CategoryQueryService) *Service {
	return &Service{
		CategoryCommandService: commands,
		CategoryQueryService:   queries,
	}
}
