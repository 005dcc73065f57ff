package dto

// CreateProjectReq 创建项目
type CreateProjectReq struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// UpdateProjectReq 更新项目，零值字段不修改
type UpdateProjectReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
	ImageModel  string `json:"image_model"`  // 项目级图像模型配置
	AspectRatio string `json:"aspect_ratio"`
	Quality     string `json:"quality"`
}

// ListProjectsReq 分页查询
type ListProjectsReq struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

type ListProjectsResData struct {
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Projects any   `json:"projects"`
}
