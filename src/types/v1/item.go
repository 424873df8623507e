package types

// ItemState 铭文的可售状态, 销售流程只修改这个字段
type ItemState string

const (
	ItemStateAvailable ItemState = "available"
	ItemStatePending   ItemState = "pending" // 已结算广播, 等待链上确认
	ItemStateSold      ItemState = "sold"
)

// Item 集合中的单个可售铭文
type Item struct {
	CollectionSlug string    `json:"collection_slug"`
	InscriptionID  string    `json:"inscription_id"`
	State          ItemState `json:"state"`
}

// Purchasable 是否可以发起购买
func (i *Item) Purchasable() bool {
	return i != nil && i.State == ItemStateAvailable
}
