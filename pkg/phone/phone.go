// Package phone 手机号规范化。
package phone

import "strings"

// CountryCode 本地号码（9 位）补全使用的国家代码
const CountryCode = "998"

// localLength 不带国家代码的本地号码位数
const localLength = 9

// Normalize 去掉所有非数字字符；若剩余恰好 9 位，则补上国家代码。
// 其他长度原样返回（只保留数字），由调用方决定是否接受。
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) == localLength {
		return CountryCode + digits
	}
	return digits
}

// Valid 规范化后是否为完整号码（国家代码 + 9 位）
func Valid(raw string) bool {
	n := Normalize(raw)
	return len(n) == len(CountryCode)+localLength && strings.HasPrefix(n, CountryCode)
}
