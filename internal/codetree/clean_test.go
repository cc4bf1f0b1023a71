package codetree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "C01 工作挑战", want: "工作挑战"},
		{in: "B12时间管理", want: "时间管理"},
		{in: "C 团队", want: "团队"},
		{in: "工作挑战", want: "工作挑战"},
		{in: "  B03   沟通  ", want: "沟通"},
		{in: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanName(tt.in))
		})
	}
}

func TestCleanContent(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "A01 时间管理是最困难的", want: "时间管理是最困难的"},
		{in: "A100 超过两位", want: "超过两位"},
		{in: "A 不带数字的字母保留", want: "A 不带数字的字母保留"},
		{in: "OKR 制度", want: "OKR 制度"},
		{in: "时间管理", want: "时间管理"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanContent(tt.in))
		})
	}
}

func TestCleanContent_Invertible(t *testing.T) {
	for _, s := range []string{"时间管理是最困难的", "团队合作", "OKR 制度"} {
		for _, prefix := range []string{"A01 ", "A7", "A123  "} {
			cleaned := CleanContent(prefix + s)
			assert.Equal(t, s, cleaned)
			assert.Equal(t, "A01 "+s, Display("A01", cleaned))
		}
	}
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "C01 工作挑战", Display("C01", "工作挑战"))
	assert.Equal(t, "工作挑战", Display("", "工作挑战"))
}
