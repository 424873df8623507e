package service

import (
	"context"

	"github.com/ProjectsTask/EasySwapLaunchpad/src/service/svc"
	"github.com/ProjectsTask/EasySwapLaunchpad/src/types/v1"
)

// GetPolicy 返回售卖策略与收款的卖家地址
// 卖家地址只远程解析一次, 之后从进程内缓存读取
func GetPolicy(ctx context.Context, svcCtx *svc.ServerCtx) (*types.PolicyResp, error) {
	addr, err := svcCtx.SellerAddr.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	p := svcCtx.C.Policy
	return &types.PolicyResp{
		Name:          p.Name,
		Description:   p.Description,
		FeeRate:       p.FeeRate,
		WalletAddress: addr,
	}, nil
}
