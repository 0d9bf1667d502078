package repository

import "time"

// ProductListFilter 商品列表查询条件
type ProductListFilter struct {
	Page           int
	PageSize       int
	MerchantID     uint
	ApprovalStatus string
	OnlyVisible    bool
}

// OrderListFilter 订单列表查询条件
type OrderListFilter struct {
	Page     int
	PageSize int
	UserID   uint
	Status   string
	AgentID  uint
}

// DocumentListFilter 资质文件列表查询条件
type DocumentListFilter struct {
	Page           int
	PageSize       int
	MerchantID     uint
	ApprovalStatus string
}

// AgentSaleListFilter 代理销售记录查询条件
type AgentSaleListFilter struct {
	Page             int
	PageSize         int
	AgentID          uint
	CommissionStatus string
	From             *time.Time
	To               *time.Time
}
