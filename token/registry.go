package token

import (
	"fmt"
	"strings"

	"github.com/otterhq/intent-sdk-go/types"
)

// Info 白名单代币的静态信息
type Info struct {
	// Symbol 规范化符号（大写）
	Symbol string
	// TypeTag 链上完整类型标签
	TypeTag string
	// Decimals 小数位数
	Decimals int
	// Native 是否为原生 gas 代币
	Native bool
}

// SuiTypeTag 原生 gas 代币的类型标签
const SuiTypeTag = "0x2::sui::SUI"

// registry 静态白名单：符号 → 链上类型与精度
//
// 这是编译器会触碰的代币的唯一入口，任何白名单之外的符号
// 都必须在发起余额查询之前被拒绝。
var registry = map[string]Info{
	"SUI": {
		Symbol:   "SUI",
		TypeTag:  SuiTypeTag,
		Decimals: 9,
		Native:   true,
	},
	"USDT": {
		Symbol:   "USDT",
		TypeTag:  "0x5d4b302506645c37ff133b98c4b50a5ae14841659738d6d733d59d0d217a93bf::coin::COIN",
		Decimals: 6,
	},
	"USDC": {
		Symbol:   "USDC",
		TypeTag:  "0xce38bfa63cc41b7622f1ab4bdcf9f4e4aa78b57abd1e2e70a966f639b4da4f57::coin::COIN",
		Decimals: 6,
	},
}

// Resolve 解析代币符号，不在白名单内时返回 ErrUnknownToken
func Resolve(symbol string) (Info, error) {
	info, ok := registry[strings.ToUpper(strings.TrimSpace(symbol))]
	if !ok {
		return Info{}, fmt.Errorf("%w: %s", types.ErrUnknownToken, symbol)
	}
	return info, nil
}

// Native 返回原生 gas 代币信息
func Native() Info {
	return registry["SUI"]
}

// Symbols 返回白名单内的全部符号（顺序固定，便于展示和遍历）
func Symbols() []string {
	return []string{"SUI", "USDT", "USDC"}
}
