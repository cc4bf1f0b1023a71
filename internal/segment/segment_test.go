package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSegmenter_Segment(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		want      []string
		minLength int
	}{
		{
			name:      "two chinese sentences",
			text:      "我们团队采用民主式管理方式。强调团队合作和沟通。",
			minLength: 3,
			want:      []string{"我们团队采用民主式管理方式。", "强调团队合作和沟通。"},
		},
		{
			name:      "mixed punctuation",
			text:      "这个挑战很大！你觉得呢？I think so! Really?",
			minLength: 3,
			want:      []string{"这个挑战很大！", "你觉得呢？", "I think so!", "Really?"},
		},
		{
			name:      "trailing fragment is emitted",
			text:      "第一句话。后面没有标点的部分",
			minLength: 3,
			want:      []string{"第一句话。", "后面没有标点的部分"},
		},
		{
			name:      "newline ends a sentence",
			text:      "访谈者：请介绍一下\n受访者：好的，我来说。",
			minLength: 3,
			want:      []string{"访谈者：请介绍一下", "受访者：好的，我来说。"},
		},
		{
			name:      "short fragments dropped",
			text:      "嗯。好的。这是一个完整的句子。",
			minLength: 3,
			want:      []string{"好的。", "这是一个完整的句子。"},
		},
		{
			name:      "higher threshold drops more",
			text:      "嗯。好的。这是一个完整的句子。",
			minLength: 5,
			want:      []string{"这是一个完整的句子。"},
		},
		{
			name:      "punctuation run stays together",
			text:      "真的吗？！我不信。",
			minLength: 3,
			want:      []string{"真的吗？！", "我不信。"},
		},
		{
			name:      "whitespace collapsed",
			text:      "  this   has\t\tgaps .  next  one!",
			minLength: 3,
			want:      []string{"this has gaps . next one!"},
		},
		{
			name:      "windows line endings",
			text:      "第一行内容\r\n第二行内容",
			minLength: 3,
			want:      []string{"第一行内容", "第二行内容"},
		},
		{
			name:      "empty input",
			text:      "   \n\n ",
			minLength: 3,
			want:      nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(tt.minLength).Segment(tt.text)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSegmenter_Pure(t *testing.T) {
	s := Default()
	text := "同样的输入。同样的输出。"
	assert.Equal(t, s.Segment(text), s.Segment(text))
}

func TestNew_NegativeMinLength(t *testing.T) {
	assert.Equal(t, 0, New(-4).MinLength)
}
