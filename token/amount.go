package token

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/otterhq/intent-sdk-go/types"
)

// 金额编解码：十进制字符串 ↔ 最小单位整数
//
// 金额运算全程使用整数，不经过浮点，避免精度漂移。

var maxUint64 = new(big.Int).SetUint64(^uint64(0))

// isDigits 判断字符串是否只含十进制数字
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ParseAmount 把十进制金额字符串转换为最小单位整数
//
// **规则**：
//   - 按小数点切分；小数部分补零或截断到代币精度
//   - 超出精度的多余位直接截断，不做四舍五入（刻意选择，
//     保证 ParseAmount(FormatAmount(x)) == x 的回环律）
//   - 整数部分必须是合法的非负数字串，否则返回 ErrMalformedAmount
func ParseAmount(amount string, info Info) (uint64, error) {
	s := strings.TrimSpace(amount)
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", types.ErrMalformedAmount)
	}

	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart = s[:i]
		fracPart = s[i+1:]
		if strings.IndexByte(fracPart, '.') >= 0 {
			return 0, fmt.Errorf("%w: %q", types.ErrMalformedAmount, amount)
		}
	}
	if intPart == "" {
		intPart = "0"
	}
	if !isDigits(intPart) || (fracPart != "" && !isDigits(fracPart)) {
		return 0, fmt.Errorf("%w: %q", types.ErrMalformedAmount, amount)
	}

	// 小数部分补零 / 截断到精度
	if len(fracPart) < info.Decimals {
		fracPart += strings.Repeat("0", info.Decimals-len(fracPart))
	} else {
		fracPart = fracPart[:info.Decimals]
	}

	intBig, ok := new(big.Int).SetString(intPart, 10)
	if !ok {
		return 0, fmt.Errorf("%w: %q", types.ErrMalformedAmount, amount)
	}
	fracBig := big.NewInt(0)
	if fracPart != "" {
		if fracBig, ok = new(big.Int).SetString(fracPart, 10); !ok {
			return 0, fmt.Errorf("%w: %q", types.ErrMalformedAmount, amount)
		}
	}

	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(info.Decimals)), nil)
	result := new(big.Int).Mul(intBig, scale)
	result.Add(result, fracBig)

	if result.Cmp(maxUint64) > 0 {
		return 0, fmt.Errorf("%w: %q exceeds u64", types.ErrMalformedAmount, amount)
	}
	return result.Uint64(), nil
}

// FormatAmount 把最小单位整数转换为可读的十进制字符串
//
// 小数部分末尾的零会被去掉；小数部分为零时只返回整数部分。
func FormatAmount(amount uint64, info Info) string {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(info.Decimals)), nil)
	v := new(big.Int).SetUint64(amount)

	intPart := new(big.Int)
	fracPart := new(big.Int)
	intPart.QuoRem(v, scale, fracPart)

	if fracPart.Sign() == 0 {
		return intPart.String()
	}

	frac := fracPart.String()
	if len(frac) < info.Decimals {
		frac = strings.Repeat("0", info.Decimals-len(frac)) + frac
	}
	frac = strings.TrimRight(frac, "0")
	return intPart.String() + "." + frac
}

// oneScaled 数值 1 在 6 位小数刻度下的表示
const oneScaled = 1_000_000

// ParseSlippageBps 把滑点字符串解析为基点（万分之一）
//
// 接受三种写法：
//   - 小数形式："0.01" → 100 bps（1%）
//   - 百分号形式："1%" → 100 bps
//   - 裸数字形式："5" → 500 bps；比例严格小于 1，
//     所以 ≥ 1 的裸数字只可能是百分数
func ParseSlippageBps(slippage string) (uint64, error) {
	s := strings.TrimSpace(slippage)
	percent := false
	if strings.HasSuffix(s, "%") {
		percent = true
		s = strings.TrimSuffix(s, "%")
	}

	// 按 6 位小数解析成整数，再换算到基点
	scaled, err := ParseAmount(s, Info{Decimals: 6})
	if err != nil {
		return 0, fmt.Errorf("invalid slippage %q: %w", slippage, err)
	}
	if percent || scaled >= oneScaled {
		// "1%" / "5" → scaled = 1e6 / 5e6，1% = 100 bps
		return scaled / 10000, nil
	}
	// "0.01" → scaled = 1e4，0.01 = 100 bps
	return scaled / 100, nil
}
