package mysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLikePattern(t *testing.T) {
	tests := []struct {
		term     string
		expected string
	}{
		{term: "bay", expected: "%bay%"},
		{term: "50%", expected: `%50\%%`},
		{term: "a_b", expected: `%a\_b%`},
		{term: `c:\`, expected: `%c:\\%`},
	}
	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			assert.Equal(t, tt.expected, likePattern(tt.term))
		})
	}
}
