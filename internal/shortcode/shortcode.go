package shortcode

import (
	"crypto/rand"
	"math/big"
	"regexp"
)

const (
	// Charset 包含用于生成短码的所有字符
	Charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// MinLength 和 MaxLength 是短码允许的长度范围
	MinLength = 6
	MaxLength = 8
	// GeneratedLength 是随机生成短码时使用的长度
	GeneratedLength = 6
)

// codePattern 自定义短码必须满足的格式：6-8 位字母数字
var codePattern = regexp.MustCompile(`^[A-Za-z0-9]{6,8}$`)

// Valid 校验短码格式是否合法
func Valid(code string) bool {
	return codePattern.MatchString(code)
}

// Generate 使用加密安全的随机数生成器生成一个随机短码。
// 唯一性不在这里保证，由存储层的原子插入兜底。
func Generate() (string, error) {
	b := make([]byte, GeneratedLength)
	for i := range b {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(Charset))))
		if err != nil {
			return "", err
		}
		b[i] = Charset[num.Int64()]
	}
	return string(b), nil
}
