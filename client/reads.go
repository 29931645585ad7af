package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/otterhq/intent-sdk-go/types"
)

// 类型化读辅助：基于 Client.Call 封装结算层的常用读方法。
// 统一走 remarshal（interface{} → JSON → 结构体）把弱类型的
// RPC 结果转成强类型视图。

// remarshal 把 Call 返回的泛型结果重新序列化进目标结构
func remarshal(result interface{}, target interface{}) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("remarshal result failed: %w", err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("unmarshal result failed: %w", err)
	}
	return nil
}

// parseU64 解析节点返回的十进制 u64 字符串
func parseU64(s, what string) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, NewInvalidResponseError(fmt.Sprintf("%s %q is not a u64", what, s))
	}
	return v, nil
}

// coinPage suix_getCoins 的单页结果
type coinPage struct {
	Data []struct {
		CoinType     string `json:"coinType"`
		CoinObjectID string `json:"coinObjectId"`
		Version      string `json:"version"`
		Digest       string `json:"digest"`
		Balance      string `json:"balance"`
	} `json:"data"`
	NextCursor  string `json:"nextCursor"`
	HasNextPage bool   `json:"hasNextPage"`
}

// GetCoins 查询地址持有的某类代币的全部 coin 对象
//
// 自动翻页直到取完；结果顺序与节点返回顺序一致。
func GetCoins(ctx context.Context, c Client, owner, coinType string) ([]types.Coin, error) {
	var coins []types.Coin
	cursor := interface{}(nil)

	for {
		result, err := c.Call(ctx, "suix_getCoins", []interface{}{owner, coinType, cursor, nil})
		if err != nil {
			return nil, fmt.Errorf("get coins failed: %w", err)
		}

		var page coinPage
		if err := remarshal(result, &page); err != nil {
			return nil, err
		}

		for _, item := range page.Data {
			balance, err := parseU64(item.Balance, "coin balance")
			if err != nil {
				return nil, err
			}
			version, err := parseU64(item.Version, "coin version")
			if err != nil {
				return nil, err
			}
			coins = append(coins, types.Coin{
				ObjectID: item.CoinObjectID,
				CoinType: item.CoinType,
				Balance:  balance,
				Version:  version,
				Digest:   item.Digest,
			})
		}

		if !page.HasNextPage || page.NextCursor == "" {
			return coins, nil
		}
		cursor = page.NextCursor
	}
}

// objectResponse sui_getObject 的结果
type objectResponse struct {
	Data *struct {
		ObjectID string          `json:"objectId"`
		Version  string          `json:"version"`
		Type     string          `json:"type"`
		Owner    json.RawMessage `json:"owner"`
		Content  *struct {
			DataType string                 `json:"dataType"`
			Type     string                 `json:"type"`
			Fields   map[string]interface{} `json:"fields"`
		} `json:"content"`
	} `json:"data"`
	Error *struct {
		Code string `json:"code"`
	} `json:"error"`
}

// GetObject 读取对象快照（含字段内容）
//
// 对象不存在或已删除时返回 types.ErrNotFound。
func GetObject(ctx context.Context, c Client, objectID string) (*types.ObjectSnapshot, error) {
	options := map[string]interface{}{
		"showContent": true,
		"showType":    true,
		"showOwner":   true,
	}
	result, err := c.Call(ctx, "sui_getObject", []interface{}{objectID, options})
	if err != nil {
		return nil, fmt.Errorf("get object failed: %w", err)
	}

	var resp objectResponse
	if err := remarshal(result, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil || resp.Data == nil {
		return nil, fmt.Errorf("%w: object %s", types.ErrNotFound, objectID)
	}

	snapshot := &types.ObjectSnapshot{
		ObjectID: resp.Data.ObjectID,
		Type:     resp.Data.Type,
	}
	if resp.Data.Version != "" {
		version, err := parseU64(resp.Data.Version, "object version")
		if err != nil {
			return nil, err
		}
		snapshot.Version = version
	}
	if resp.Data.Content != nil {
		snapshot.Fields = resp.Data.Content.Fields
		if snapshot.Type == "" {
			snapshot.Type = resp.Data.Content.Type
		}
	}
	// 共享对象的 owner 是 {"Shared": {...}} 结构
	if len(resp.Data.Owner) > 0 {
		var owner map[string]interface{}
		if err := json.Unmarshal(resp.Data.Owner, &owner); err == nil {
			_, snapshot.Shared = owner["Shared"]
		}
	}
	return snapshot, nil
}

// txBlockResponse sui_getTransactionBlock 的结果
type txBlockResponse struct {
	Digest  string `json:"digest"`
	Effects struct {
		Status struct {
			Status string `json:"status"`
			Error  string `json:"error"`
		} `json:"status"`
	} `json:"effects"`
	ObjectChanges []struct {
		Type       string `json:"type"`
		ObjectID   string `json:"objectId"`
		ObjectType string `json:"objectType"`
	} `json:"objectChanges"`
	Events []map[string]interface{} `json:"events"`
}

// GetTransactionBlock 读取交易详情（状态、新建对象、事件）
func GetTransactionBlock(ctx context.Context, c Client, digest string) (*types.TransactionDetails, error) {
	options := map[string]interface{}{
		"showEffects":       true,
		"showObjectChanges": true,
		"showEvents":        true,
	}
	result, err := c.Call(ctx, "sui_getTransactionBlock", []interface{}{digest, options})
	if err != nil {
		return nil, fmt.Errorf("get transaction block failed: %w", err)
	}

	var resp txBlockResponse
	if err := remarshal(result, &resp); err != nil {
		return nil, err
	}
	if resp.Digest == "" {
		return nil, fmt.Errorf("%w: transaction %s", types.ErrNotFound, digest)
	}

	details := &types.TransactionDetails{
		Digest: resp.Digest,
		Status: resp.Effects.Status.Status,
		Error:  resp.Effects.Status.Error,
		Events: resp.Events,
	}
	for _, change := range resp.ObjectChanges {
		if change.Type == "created" {
			details.Created = append(details.Created, types.CreatedObject{
				ObjectID:   change.ObjectID,
				ObjectType: change.ObjectType,
			})
		}
	}
	return details, nil
}
