package types

// SupplySourceKind 集合总量的计算来源
type SupplySourceKind int

const (
	SupplySourceNone    SupplySourceKind = iota // 未配置, 总量为 0
	SupplySourceGallery                         // 关联 gallery 铭文, 总量取 gallery 条目数
	SupplySourceParent                          // 关联父铭文, 总量取子铭文数
	SupplySourceList                            // 显式静态列表, 总量取列表长度
)

func (k SupplySourceKind) String() string {
	switch k {
	case SupplySourceGallery:
		return "gallery"
	case SupplySourceParent:
		return "parent"
	case SupplySourceList:
		return "list"
	default:
		return "none"
	}
}

// SupplySource 集合总量来源, Kind 决定哪个字段有效
type SupplySource struct {
	Kind                 SupplySourceKind `json:"kind"`
	GalleryInscriptionID string           `json:"gallery_inscription_id,omitempty"`
	ParentInscriptionID  string           `json:"parent_inscription_id,omitempty"`
	InscriptionIDs       []string         `json:"inscription_ids,omitempty"`
}

// Collection 集合 (一组共享总量来源的铭文)
type Collection struct {
	Slug        string       `json:"slug"`
	Title       string       `json:"title"`
	IsLaunchpad bool         `json:"is_launchpad"` // 是否为正在发售的 launchpad
	Supply      SupplySource `json:"supply"`
}

// ParentContext 父铭文上下文, 由外部同步任务写入
// 字段可能缺失, 缺失时由 SupplyAccountant 按 0 处理
type ParentContext struct {
	InscriptionID string `json:"inscription_id"`
	GalleryCount  *int64 `json:"gallery_count,omitempty"`
	ChildCount    *int64 `json:"child_count,omitempty"`
}

// SupplySnapshot 集合供应量快照 (派生数据, 不落库)
// unavailable = total - available, minted == unavailable
type SupplySnapshot struct {
	Total       int64 `json:"total"`
	Available   int64 `json:"available"`
	Pending     int64 `json:"pending"`
	Unavailable int64 `json:"unavailable"`
	Minted      int64 `json:"minted"`
	Mintable    int64 `json:"mintable"`
	Progress    int64 `json:"progress"`
	IsSoldOut   bool  `json:"is_sold_out"`
	HasMintable bool  `json:"has_mintable"`
}

// LaunchpadProgressResp 进度接口响应
type LaunchpadProgressResp struct {
	Slug   string         `json:"slug"`
	Title  string         `json:"title"`
	Supply SupplySnapshot `json:"supply"`
}
