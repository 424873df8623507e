package dao

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/ProjectsTask/EasySwapLaunchpad/src/types/v1"
)

// CountAvailable 统计集合中仍可售的铭文数量
// SQL逻辑:
// SELECT count(*) FROM ls_inscription WHERE collection_slug = ? AND state = 'available'
func (d *Dao) CountAvailable(ctx context.Context, collectionSlug string) (int64, error) {
	var count int64
	if err := d.DB.WithContext(ctx).
		Table(InscriptionTableName()).
		Where("collection_slug = ? and state = ?", collectionSlug, string(types.ItemStateAvailable)).
		Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "failed on count available inscriptions")
	}
	return count, nil
}

// LoadItem 查询单个铭文
// 不存在时返回 (nil, nil)
func (d *Dao) LoadItem(ctx context.Context, collectionSlug, inscriptionID string) (*types.Item, error) {
	var row Inscription
	err := d.DB.WithContext(ctx).
		Table(InscriptionTableName()).
		Select("collection_slug", "inscription_id", "state").
		Where("collection_slug = ? and inscription_id = ?", collectionSlug, inscriptionID).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed on get inscription")
	}

	return &types.Item{
		CollectionSlug: row.CollectionSlug,
		InscriptionID:  row.InscriptionId,
		State:          types.ItemState(row.State),
	}, nil
}

// MarkItemState 更新铭文可售状态
// 只有该铭文对应的 sale agent 会调用, 每次销售决策调用一次
// SQL逻辑:
// UPDATE ls_inscription SET state = ?, update_time = ? WHERE collection_slug = ? AND inscription_id = ?
func (d *Dao) MarkItemState(ctx context.Context, collectionSlug, inscriptionID string, state types.ItemState) error {
	if err := d.DB.WithContext(ctx).
		Table(InscriptionTableName()).
		Where("collection_slug = ? and inscription_id = ?", collectionSlug, inscriptionID).
		Updates(map[string]interface{}{
			"state":       string(state),
			"update_time": time.Now().Unix(),
		}).Error; err != nil {
		return errors.Wrap(err, "failed on update inscription state")
	}
	return nil
}
