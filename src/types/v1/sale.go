package types

// SaleReq 购买请求体
// inscriptionId 与 signedPsbt 为前端约定的字段名
// signedPsbt 缺失由 Service 层单独报错, 这里只校验格式
type SaleReq struct {
	InscriptionID string `json:"inscriptionId"`
	SignedPsbt    string `json:"signedPsbt" binding:"omitempty,psbt"`
}

// SaleRequest 转发给 sale agent 的请求, 集合与铭文 ID 已由网关绑定
type SaleRequest struct {
	CollectionSlug string `json:"collectionSlug"`
	InscriptionID  string `json:"inscriptionId"`
	SignedPsbt     string `json:"signedPsbt"`
}

// SaleDecision 销售决策结果, 对同一 payload 的重放原样返回
type SaleDecision struct {
	DecisionID     string                 `json:"decisionId,omitempty"`
	Accepted       bool                   `json:"accepted"`
	CollectionSlug string                 `json:"collectionSlug"`
	InscriptionID  string                 `json:"inscriptionId"`
	Txid           string                 `json:"txid,omitempty"`
	Details        map[string]interface{} `json:"details,omitempty"`
	Code           int                    `json:"code,omitempty"`
	Error          string                 `json:"error,omitempty"`
}

// SettleResult 签名服务的结算结果
type SettleResult struct {
	Accepted bool                   `json:"accepted"`
	Txid     string                 `json:"txid"`
	Details  map[string]interface{} `json:"details"`
}

// PolicyResp 售卖策略接口响应
type PolicyResp struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	FeeRate       string `json:"fee_rate"`
	WalletAddress string `json:"wallet_address"`
}

// SettlementEvent 成交事件, 推送给链上确认任务
type SettlementEvent struct {
	DecisionID     string `json:"decision_id"`
	CollectionSlug string `json:"collection_slug"`
	InscriptionID  string `json:"inscription_id"`
	Txid           string `json:"txid"`
	SettledAt      int64  `json:"settled_at"`
}
