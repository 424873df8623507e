package service

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/ProjectsTask/EasySwapLaunchpad/src/common/utils"
	"github.com/ProjectsTask/EasySwapLaunchpad/src/errcode"
	"github.com/ProjectsTask/EasySwapLaunchpad/src/service/saleagent"
	"github.com/ProjectsTask/EasySwapLaunchpad/src/service/svc"
	"github.com/ProjectsTask/EasySwapLaunchpad/src/types/v1"
)

const (
	msgMissingPsbt  = "Missing signedPsbt"
	msgInvalidPsbt  = "Invalid signedPsbt"
	msgNotAvailable = "Inscription is not available"
)

var emptyBody = []byte(`{}`)

// ExecuteSale 提交一次购买
// 功能:
// 1. 校验 signedPsbt, 缺失或格式错误返回 400
// 2. 校验 slug 并查找集合与铭文, 不存在或不可售返回 404, 不会触达 sale agent
// 3. 按 slug:inscriptionId 投递给对应的 sale agent, 集合与铭文 ID 以查询结果为准
// 4. agent 的状态码与响应体原样返回, 响应体无法解析时返回 {}
func ExecuteSale(ctx context.Context, svcCtx *svc.ServerCtx, slug string, req types.SaleReq) (*saleagent.Response, error) {
	// 1. 校验 PSBT
	if req.SignedPsbt == "" {
		return nil, errcode.NewCustomErr(msgMissingPsbt)
	}
	if err := utils.ValidateStruct(&req); err != nil {
		return nil, errcode.NewCustomErr(msgInvalidPsbt)
	}

	// 2. 查找铭文
	if !utils.IsValidSlug(slug) {
		return nil, errcode.NewNotFoundErr(msgNotAvailable)
	}
	collection, ok := svcCtx.Catalog.Lookup(slug)
	if !ok || req.InscriptionID == "" {
		return nil, errcode.NewNotFoundErr(msgNotAvailable)
	}
	item, err := svcCtx.Store.LoadItem(ctx, collection.Slug, req.InscriptionID)
	if err != nil {
		return nil, errors.Wrap(errcode.ErrStoreRead, err.Error())
	}
	if !item.Purchasable() {
		return nil, errcode.NewNotFoundErr(msgNotAvailable)
	}

	// 3. 投递给 sale agent
	agent := svcCtx.SaleAgents.Get(saleagent.Key{
		CollectionSlug: collection.Slug,
		InscriptionID:  item.InscriptionID,
	})
	if agent == nil {
		return nil, errcode.ErrUnexpected.WithMsg("sale service is shutting down")
	}
	resp, err := agent.Submit(ctx, req.SignedPsbt)
	if err != nil {
		return nil, errors.Wrap(err, "failed on submit sale")
	}

	// 4. 原样转换响应
	return relayResponse(resp), nil
}

// relayResponse 保留 agent 的状态码, 响应体不是合法 JSON 时替换为 {}
func relayResponse(resp saleagent.Response) *saleagent.Response {
	if !json.Valid(resp.Body) {
		resp.Body = emptyBody
	}
	return &resp
}
