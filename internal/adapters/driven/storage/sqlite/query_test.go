package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFTSQuery(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "hello world", want: `"hello" "world"`},
		{in: "budg*", want: `"budg"*`},
		{in: `say "hi"`, want: `"say" "hi"`},
		{in: `a"b`, want: `"a""b"`},
		{in: "cats OR dogs", want: `"cats" OR "dogs"`},
		{in: "OR cats OR", want: `"cats"`},
		{in: "NEAR(", want: `"NEAR("`},
		{in: "   ", want: ""},
		{in: "*", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ftsQuery(tt.in))
		})
	}
}
