package utils

import (
	"fmt"
	"strings"
)

// 地址工具
//
// 结算层地址是 32 字节对象地址的十六进制表示：
// "0x" 前缀 + 恰好 64 位十六进制字符。

// addressHexLen 前缀后的十六进制字符数
const addressHexLen = 64

// IsValidAddress 校验地址格式（0x + 64 位十六进制）
func IsValidAddress(addr string) bool {
	if len(addr) != 2+addressHexLen {
		return false
	}
	if addr[0] != '0' || (addr[1] != 'x' && addr[1] != 'X') {
		return false
	}
	for i := 2; i < len(addr); i++ {
		c := addr[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// NormalizeAddress 规范化地址：校验格式并统一为小写
func NormalizeAddress(addr string) (string, error) {
	s := strings.TrimSpace(addr)
	if !IsValidAddress(s) {
		return "", fmt.Errorf("invalid address: expected 0x followed by %d hex characters, got %q",
			addressHexLen, addr)
	}
	return strings.ToLower(s), nil
}

// ShortenAddress 截短地址用于展示（0x123456…cdef）
func ShortenAddress(addr string) string {
	if len(addr) <= 14 {
		return addr
	}
	return addr[:8] + "…" + addr[len(addr)-4:]
}
