package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExcludeComment(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"-- whole line", ""},
		{"USE cubedb; -- pick database", "USE cubedb; "},
		{"SELECT '--not a comment' FROM t", "SELECT '--not a comment' FROM t"},
		{`SELECT "a--b" -- trailing`, `SELECT "a--b" `},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, excludeComment(tt.line), tt.line)
	}
}
