package position_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/ngtmpls/pkg/position"
)

func TestGetLineAndColumn(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		offset   int
		wantLine int
		wantCol  int
	}{
		{
			name:     "empty text",
			text:     "",
			offset:   0,
			wantLine: 1,
			wantCol:  1,
		},
		{
			name:     "single line, middle position",
			text:     "Hello, World!",
			offset:   7,
			wantLine: 1,
			wantCol:  8,
		},
		{
			name:     "multiple lines, second line",
			text:     "Hello\nWorld\nTest zzz",
			offset:   8,
			wantLine: 2,
			wantCol:  3,
		},
		{
			name:     "multi-byte characters count once",
			text:     "héllo",
			offset:   3,
			wantLine: 1,
			wantCol:  3,
		},
		{
			name:     "emoji with modifier is one column",
			text:     "👍🏽x",
			offset:   8,
			wantLine: 1,
			wantCol:  2,
		},
		{
			name:     "offset past the end is clamped",
			text:     "ab\ncd",
			offset:   99,
			wantLine: 2,
			wantCol:  3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, col := position.GetLineAndColumn(tt.text, tt.offset)
			assert.Equal(t, tt.wantLine, line, "line")
			assert.Equal(t, tt.wantCol, col, "column")
		})
	}
}

func TestOffsetFromLineAndColumn(t *testing.T) {
	text := "package p\n\nvar héllo = `{{x}}`\n"

	for _, offset := range []int{0, 5, 10, 11, 16, 20, 26} {
		line, col := position.GetLineAndColumn(text, offset)
		got, err := position.OffsetFromLineAndColumn(text, line, col)
		require.NoError(t, err)
		assert.Equal(t, offset, got, "offset %d (%d:%d)", offset, line, col)
	}

	_, err := position.OffsetFromLineAndColumn(text, 9, 1)
	assert.Error(t, err)

	_, err = position.OffsetFromLineAndColumn(text, 1, 50)
	assert.Error(t, err)

	_, err = position.OffsetFromLineAndColumn(text, 0, 1)
	assert.Error(t, err)
}

func TestGetRange(t *testing.T) {
	r := position.GetRange("ab\ncdef", 1, 5)
	assert.Equal(t, position.Range{
		Start: position.Place{Line: 1, Character: 2},
		End:   position.Place{Line: 2, Character: 3},
	}, r)
	assert.Equal(t, "2:3", r.End.String())
}

func TestSpan(t *testing.T) {
	s := position.NewSpan(4, 2)
	assert.Equal(t, position.Span{Start: 4, End: 4}, s)
	assert.True(t, s.Contains(4))
	assert.False(t, s.Contains(5))
	assert.Equal(t, 0, s.Len())
	assert.True(t, position.NewSpan(3, 8).Overlaps(8, 10))
	assert.False(t, position.NewSpan(3, 8).Overlaps(9, 10))
}
