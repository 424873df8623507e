package dao

// 表结构只覆盖销售与进度计算依赖的字段, 完整 schema 由同步任务维护

// Inscription 铭文库存表
type Inscription struct {
	Id             int64  `gorm:"column:id;primaryKey"`
	CollectionSlug string `gorm:"column:collection_slug"`
	InscriptionId  string `gorm:"column:inscription_id"`
	State          string `gorm:"column:state"`
	UpdateTime     int64  `gorm:"column:update_time"`
}

func InscriptionTableName() string {
	return "ls_inscription"
}

// Order 销售订单表, status=pending 表示已广播未确认
type Order struct {
	Id             int64  `gorm:"column:id;primaryKey"`
	CollectionSlug string `gorm:"column:collection_slug"`
	InscriptionId  string `gorm:"column:inscription_id"`
	Status         string `gorm:"column:status"`
	Txid           string `gorm:"column:txid"`
}

func OrderTableName() string {
	return "ls_order"
}

const OrderStatusPending = "pending"

// ParentInscription 父铭文 / gallery 铭文的统计信息
type ParentInscription struct {
	InscriptionId string `gorm:"column:inscription_id;primaryKey"`
	GalleryCount  *int64 `gorm:"column:gallery_count"`
	ChildCount    *int64 `gorm:"column:child_count"`
}

func ParentInscriptionTableName() string {
	return "ls_parent_inscription"
}
