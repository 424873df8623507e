package catalog

import (
	"github.com/ProjectsTask/EasySwapLaunchpad/src/config"
	"github.com/ProjectsTask/EasySwapLaunchpad/src/types/v1"
)

// Catalog 静态集合目录, 启动时从配置加载, 运行期只读
type Catalog struct {
	collections map[string]*types.Collection
}

func New(policies []config.CollectionPolicy) *Catalog {
	c := &Catalog{collections: make(map[string]*types.Collection, len(policies))}
	for _, p := range policies {
		c.collections[p.Slug] = toCollection(p)
	}
	return c
}

// Lookup 按 slug 查找集合
func (c *Catalog) Lookup(slug string) (*types.Collection, bool) {
	col, ok := c.collections[slug]
	return col, ok
}

func (c *Catalog) Len() int {
	return len(c.collections)
}

func toCollection(p config.CollectionPolicy) *types.Collection {
	col := &types.Collection{
		Slug:        p.Slug,
		Title:       p.Title,
		IsLaunchpad: p.IsLaunchpad,
	}

	switch {
	case p.GalleryInscriptionID != "":
		col.Supply = types.SupplySource{Kind: types.SupplySourceGallery, GalleryInscriptionID: p.GalleryInscriptionID}
	case p.ParentInscriptionID != "":
		col.Supply = types.SupplySource{Kind: types.SupplySourceParent, ParentInscriptionID: p.ParentInscriptionID}
	case p.InscriptionIDs != nil:
		ids := make([]string, len(p.InscriptionIDs))
		copy(ids, p.InscriptionIDs)
		col.Supply = types.SupplySource{Kind: types.SupplySourceList, InscriptionIDs: ids}
	}
	return col
}
