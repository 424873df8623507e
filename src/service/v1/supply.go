package service

import (
	"github.com/shopspring/decimal"

	"github.com/ProjectsTask/EasySwapLaunchpad/src/types/v1"
)

var (
	hundred = decimal.NewFromInt(100)
	half    = decimal.NewFromFloat(0.5)
)

// ComputeSupply 根据集合描述与实时计数计算供应量快照
// 纯函数, 缺失的输入按 0 处理, 不返回错误
// 1. total: gallery 条目数 -> 子铭文数 -> 显式列表长度 -> 0
// 2. unavailable = total - available, minted 与之相同
// 3. progress = round(unavailable / total * 100), total 为 0 时为 0
// 计数不一致 (available > total) 时不截断, unavailable 与 progress 可能为负
func ComputeSupply(collection *types.Collection, parent *types.ParentContext, availableCount, pendingCount *int64) types.SupplySnapshot {
	var available, pending int64
	if availableCount != nil {
		available = *availableCount
	}
	if pendingCount != nil {
		pending = *pendingCount
	}

	total := supplyTotal(collection, parent)
	unavailable := total - available

	return types.SupplySnapshot{
		Total:       total,
		Available:   available,
		Pending:     pending,
		Unavailable: unavailable,
		Minted:      unavailable,
		Mintable:    available,
		Progress:    progressPercent(unavailable, total),
		IsSoldOut:   available <= 0,
		HasMintable: available > 0,
	}
}

func supplyTotal(collection *types.Collection, parent *types.ParentContext) int64 {
	if collection == nil {
		return 0
	}

	var total int64
	switch collection.Supply.Kind {
	case types.SupplySourceGallery:
		if parent != nil && parent.GalleryCount != nil {
			total = *parent.GalleryCount
		}
	case types.SupplySourceParent:
		if parent != nil && parent.ChildCount != nil {
			total = *parent.ChildCount
		}
	case types.SupplySourceList:
		total = int64(len(collection.Supply.InscriptionIDs))
	}

	if total < 0 {
		return 0
	}
	return total
}

// progressPercent 四舍五入到整数, .5 向正无穷方向取整
func progressPercent(unavailable, total int64) int64 {
	if total <= 0 {
		return 0
	}
	return decimal.NewFromInt(unavailable).
		Mul(hundred).
		Div(decimal.NewFromInt(total)).
		Add(half).
		Floor().
		IntPart()
}
