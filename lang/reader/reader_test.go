package reader_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peroxide-lang/peroxide/lang/reader"
	"github.com/peroxide-lang/peroxide/lang/value"
)

func TestReadAll(t *testing.T) {
	cases := []struct {
		desc string
		in   string
		want string
	}{
		{"fixnum", "42", "42"},
		{"inexact", "3.5", "3.5"},
		{"symbol", "foo-bar!", "foo-bar!"},
		{"string", `"hi\nthere"`, `"hi\nthere"`},
		{"bool-short", "#t #f", "#t #f"},
		{"bool-long", "#true #false", "#t #f"},
		{"char-simple", `#\a`, `#\a`},
		{"char-named", `#\newline`, `#\newline`},
		{"list", "(1 2 3)", "(1 2 3)"},
		{"dotted", "(1 . 2)", "(1 . 2)"},
		{"nested", "(a (b c) d)", "(a (b c) d)"},
		{"vector", "#(1 2 3)", "#(1 2 3)"},
		{"quote", "'x", "(quote x)"},
		{"quasiquote", "`(a ,b ,@c)", "(quasiquote (a (unquote b) (unquote-splicing c)))"},
		{"line-comment", "; comment\n42", "42"},
		{"block-comment", "#| a #| nested |# b |# 42", "42"},
		{"datum-comment", "(1 #;2 3)", "(1 3)"},
	}
	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			vals, err := reader.ReadAll("test", tc.in)
			require.NoError(t, err)
			require.Len(t, vals, func() int {
				if tc.desc == "bool-short" || tc.desc == "bool-long" {
					return 2
				}
				return 1
			}())
			if len(vals) == 1 {
				assert.Equal(t, tc.want, vals[0].String())
			} else {
				got := vals[0].String() + " " + vals[1].String()
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestReadAllMultiple(t *testing.T) {
	vals, err := reader.ReadAll("test", "1 2 3")
	require.NoError(t, err)
	require.Len(t, vals, 3)
	assert.Equal(t, value.Fixnum(1), vals[0])
	assert.Equal(t, value.Fixnum(2), vals[1])
	assert.Equal(t, value.Fixnum(3), vals[2])
}

func TestReadErrors(t *testing.T) {
	cases := []string{
		"(1 2",
		`"unterminated`,
		"#\\unknownlongcharname",
	}
	for _, in := range cases {
		_, err := reader.ReadAll("test", in)
		assert.Error(t, err)
	}
}
