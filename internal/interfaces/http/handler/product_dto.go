package handler

// ProductListQuery represents the query parameters for product listing
type ProductListQuery struct {
	Search         string   `form:"search"`
	Status         string   `form:"status" binding:"omitempty,oneof=draft published archived"`
	ManufacturerID string   `form:"manufacturer_id" binding:"omitempty,uuid"`
	MinPrice       *float64 `form:"min_price" binding:"omitempty,gte=0"`
	MaxPrice       *float64 `form:"max_price" binding:"omitempty,gte=0"`
	InStock        *bool    `form:"in_stock"`
	Tag            string   `form:"tag" binding:"omitempty,min=1,max=50"`
	Page           int      `form:"page" binding:"omitempty,min=1"`
	PageSize       int      `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy        string   `form:"order_by" binding:"omitempty,oneof=sku name price stock_quantity status created_at updated_at"`
	OrderDir       string   `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ManufacturerListQuery represents the query parameters for manufacturer listing
type ManufacturerListQuery struct {
	Search   string `form:"search"`
	Country  string `form:"country" binding:"omitempty,max=100"`
	Active   *bool  `form:"active"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by" binding:"omitempty,oneof=name country created_at updated_at"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}
