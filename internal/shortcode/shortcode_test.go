package shortcode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValid(t *testing.T) {
	cases := []struct {
		name string
		code string
		want bool
	}{
		{"六位字母数字", "abc123", true},
		{"八位大小写混合", "AbC12345", true},
		{"七位", "GoLang7", true},
		{"太短", "abc12", false},
		{"太长", "abcdefghi", false},
		{"带连字符", "abc-123", false},
		{"带下划线", "abc_123", false},
		{"空字符串", "", false},
		{"带空格", "abc 12", false},
		{"非 ASCII", "短码abcd", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Valid(tc.code))
		})
	}
}

func TestGenerate(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := Generate()
		assert.NoError(t, err)
		assert.Len(t, code, GeneratedLength)
		assert.True(t, Valid(code), "生成的短码应满足自定义短码的格式规则: %s", code)
		for _, ch := range code {
			assert.True(t, strings.ContainsRune(Charset, ch))
		}
		seen[code] = true
	}
	// 100 次抽取全部相同的概率可以忽略
	assert.Greater(t, len(seen), 1)
}
