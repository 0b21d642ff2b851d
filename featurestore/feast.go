package featurestore

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	feastsdk "github.com/feast-dev/feast/sdk/go"
	feasttypes "github.com/feast-dev/feast/sdk/go/protos/feast/types"

	"matekit/core"
)

// FeastClient 是基于官方 Feast Go SDK 的 gRPC 实现。
type FeastClient struct {
	client  *feastsdk.GrpcClient
	project string
}

// NewFeastClient 连接 Feast Feature Server。
// addr 形如 "localhost:6565"，缺省端口 6565。
func NewFeastClient(addr, project string) (*FeastClient, error) {
	host, port := splitAddr(addr)
	client, err := feastsdk.NewGrpcClient(host, port)
	if err != nil {
		return nil, core.NewDomainError(core.ModuleFeatureStore, core.ErrorCodeUnavailable,
			fmt.Sprintf("feast connect %s: %v", addr, err))
	}
	return &FeastClient{client: client, project: project}, nil
}

func (c *FeastClient) Name() string { return "feast" }

func (c *FeastClient) OnlineFeatures(
	ctx context.Context,
	refs []string,
	userIDs []string,
) (map[string]map[string]float64, error) {
	if len(refs) == 0 || len(userIDs) == 0 {
		return map[string]map[string]float64{}, nil
	}

	entities := make([]feastsdk.Row, len(userIDs))
	for i, id := range userIDs {
		entities[i] = feastsdk.Row{"user_id": feastsdk.StrVal(id)}
	}

	resp, err := c.client.GetOnlineFeatures(ctx, &feastsdk.OnlineFeaturesRequest{
		Features: refs,
		Entities: entities,
		Project:  c.project,
	})
	if err != nil {
		return nil, core.NewDomainError(core.ModuleFeatureStore, core.ErrorCodeUnavailable,
			"feast get online features: "+err.Error())
	}

	rows := resp.Rows()
	if len(rows) != len(userIDs) {
		return nil, core.NewDomainError(core.ModuleFeatureStore, core.ErrorCodeInternalError,
			fmt.Sprintf("feast response row count mismatch: want %d, got %d", len(userIDs), len(rows)))
	}

	result := make(map[string]map[string]float64, len(userIDs))
	for i, row := range rows {
		values := make(map[string]float64)
		for _, ref := range refs {
			val, ok := row[ref]
			if !ok {
				// SDK 可能按短名（去掉 feature view 前缀）返回
				val, ok = row[shortName(ref)]
			}
			if !ok || val == nil {
				continue
			}
			if f, ok := valueToFloat64(val); ok {
				values[shortName(ref)] = f
			}
		}
		result[userIDs[i]] = values
	}
	return result, nil
}

func (c *FeastClient) Close() error {
	c.client = nil
	return nil
}

// shortName 取特征引用的短名："user_traits:e_openness" -> "e_openness"。
func shortName(ref string) string {
	if i := strings.LastIndex(ref, ":"); i >= 0 {
		return ref[i+1:]
	}
	return ref
}

func splitAddr(addr string) (string, int) {
	host, portStr, found := strings.Cut(addr, ":")
	if found {
		if port, err := strconv.Atoi(portStr); err == nil {
			return host, port
		}
	}
	return addr, 6565
}

// valueToFloat64 把 SDK 的 protobuf Value 转成 float64。
// 数值类型直接转换，bool 按 1/0，字符串尝试解析；其余类型丢弃。
func valueToFloat64(val *feasttypes.Value) (float64, bool) {
	switch v := val.GetVal().(type) {
	case *feasttypes.Value_DoubleVal:
		return v.DoubleVal, true
	case *feasttypes.Value_FloatVal:
		return float64(v.FloatVal), true
	case *feasttypes.Value_Int64Val:
		return float64(v.Int64Val), true
	case *feasttypes.Value_Int32Val:
		return float64(v.Int32Val), true
	case *feasttypes.Value_BoolVal:
		if v.BoolVal {
			return 1, true
		}
		return 0, true
	case *feasttypes.Value_StringVal:
		f, err := strconv.ParseFloat(v.StringVal, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

var _ Client = (*FeastClient)(nil)
