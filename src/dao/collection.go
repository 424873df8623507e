package dao

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/ProjectsTask/EasySwapLaunchpad/src/types/v1"
)

// LoadParentContext 查询集合关联的父铭文统计信息
// 功能: gallery 集合返回 gallery_count, parent 集合返回 child_count
// 集合没有关联铭文或记录不存在时返回 nil, 由调用方按缺失处理
// SQL逻辑:
// SELECT inscription_id, gallery_count, child_count FROM ls_parent_inscription
// WHERE inscription_id = ? LIMIT 1
func (d *Dao) LoadParentContext(ctx context.Context, collection *types.Collection) (*types.ParentContext, error) {
	var inscriptionID string
	switch collection.Supply.Kind {
	case types.SupplySourceGallery:
		inscriptionID = collection.Supply.GalleryInscriptionID
	case types.SupplySourceParent:
		inscriptionID = collection.Supply.ParentInscriptionID
	default:
		return nil, nil
	}

	var parent ParentInscription
	err := d.DB.WithContext(ctx).
		Table(ParentInscriptionTableName()).
		Select("inscription_id", "gallery_count", "child_count").
		Where("inscription_id = ?", inscriptionID).
		Take(&parent).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed on get parent inscription")
	}

	return &types.ParentContext{
		InscriptionID: parent.InscriptionId,
		GalleryCount:  parent.GalleryCount,
		ChildCount:    parent.ChildCount,
	}, nil
}

// CountPending 统计集合中已广播未确认的订单数
// SQL逻辑:
// SELECT count(*) FROM ls_order WHERE collection_slug = ? AND status = 'pending'
func (d *Dao) CountPending(ctx context.Context, collectionSlug string) (int64, error) {
	var count int64
	if err := d.DB.WithContext(ctx).
		Table(OrderTableName()).
		Where("collection_slug = ? and status = ?", collectionSlug, OrderStatusPending).
		Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "failed on count pending orders")
	}
	return count, nil
}
