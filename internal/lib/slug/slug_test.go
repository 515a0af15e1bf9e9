package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Spring Gala 2026", "spring-gala-2026"},
		{"  U14 Finals -- Day 2  ", "u14-finals-day-2"},
		{"Déjà Vu!!", "d-j-vu"},
		{"already-a-slug", "already-a-slug"},
		{"", ""},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, Make(tc.in), "input %q", tc.in)
	}
}
