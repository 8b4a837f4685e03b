package pysource_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/readmegen/document"
	"go.jacobcolvin.com/readmegen/pysource"
	"go.jacobcolvin.com/readmegen/stringtest"
)

func TestScanner_Scan(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		src  string
		want []pysource.Declaration
	}{
		"empty file": {
			src:  "",
			want: nil,
		},
		"module docstring": {
			src: stringtest.Input(`
				"""Arithmetic helpers."""

				import math
			`),
			want: []pysource.Declaration{
				{Kind: document.KindModule, Name: "calc", Comment: "Arithmetic helpers.", Line: 1},
			},
		},
		"function without docstring": {
			src: stringtest.Input(`
				def double(x):
				    return x * 2
			`),
			want: []pysource.Declaration{
				{Kind: document.KindFunction, Name: "double", Line: 1},
			},
		},
		"class with methods": {
			src: stringtest.Input(`
				class Calculator:
				    """Adds numbers."""

				    def add(self, a, b):
				        """:param a: first"""
				        return a + b

				    @staticmethod
				    def zero():
				        return 0
			`),
			want: []pysource.Declaration{
				{Kind: document.KindClass, Name: "Calculator", Comment: "Adds numbers.", Line: 1},
				{Kind: document.KindMethod, Name: "Calculator.add", Comment: ":param a: first", Line: 4},
				{Kind: document.KindMethod, Name: "Calculator.zero", Line: 9},
			},
		},
		"function sharing a method name is kept": {
			src: stringtest.Input(`
				class A:
				    def run(self):
				        """Method."""

				def run():
				    """Function."""
			`),
			want: []pysource.Declaration{
				{Kind: document.KindClass, Name: "A", Line: 1},
				{Kind: document.KindMethod, Name: "A.run", Comment: "Method.", Line: 2},
				{Kind: document.KindFunction, Name: "run", Comment: "Function.", Line: 5},
			},
		},
		"breadth first order": {
			src: stringtest.Input(`
				def outer():
				    def inner():
				        pass

				class Late:
				    pass
			`),
			want: []pysource.Declaration{
				{Kind: document.KindFunction, Name: "outer", Line: 1},
				{Kind: document.KindClass, Name: "Late", Line: 5},
				{Kind: document.KindFunction, Name: "inner", Line: 2},
			},
		},
		"nested class is qualified": {
			src: stringtest.Input(`
				class Outer:
				    class Inner:
				        def m(self):
				            pass
			`),
			want: []pysource.Declaration{
				{Kind: document.KindClass, Name: "Outer", Line: 1},
				{Kind: document.KindClass, Name: "Outer.Inner", Line: 2},
				{Kind: document.KindMethod, Name: "Outer.Inner.m", Line: 3},
			},
		},
		"repeated name keeps first": {
			src: stringtest.Input(`
				def f():
				    """First."""

				def f():
				    """Second."""
			`),
			want: []pysource.Declaration{
				{Kind: document.KindFunction, Name: "f", Comment: "First.", Line: 1},
			},
		},
		"docstring after comment": {
			src: stringtest.Input(`
				def f():
				    # leading comment
				    """Doc."""
			`),
			want: []pysource.Declaration{
				{Kind: document.KindFunction, Name: "f", Comment: "Doc.", Line: 1},
			},
		},
		"string that is not first statement": {
			src: stringtest.Input(`
				def f():
				    x = 1
				    """Not a docstring."""
			`),
			want: []pysource.Declaration{
				{Kind: document.KindFunction, Name: "f", Line: 1},
			},
		},
		"f-string is not a docstring": {
			src: stringtest.Input(`
				def f():
				    f"""Not {1} a docstring."""
			`),
			want: []pysource.Declaration{
				{Kind: document.KindFunction, Name: "f", Line: 1},
			},
		},
		"multi-line docstring is cleaned": {
			src: stringtest.Input(`
				def f(x):
				    """
				    Doubles a number.

				    :param x: the input value
				        continued here
				    """
			`),
			want: []pysource.Declaration{
				{
					Kind:    document.KindFunction,
					Name:    "f",
					Comment: "Doubles a number.\n\n:param x: the input value\n    continued here",
					Line:    1,
				},
			},
		},
		"implicit concatenation": {
			src: stringtest.Input(`
				def f():
				    "Part one, " 'part two.'
			`),
			want: []pysource.Declaration{
				{Kind: document.KindFunction, Name: "f", Comment: "Part one, part two.", Line: 1},
			},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := pysource.NewScanner().Scan(context.Background(), "pkg/calc.py", []byte(tc.src))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestScanner_Scan_SyntaxError(t *testing.T) {
	t.Parallel()

	src := stringtest.Input(`
		def good():
		    """Still found."""

		def broken(:
	`)

	got, err := pysource.NewScanner().Scan(context.Background(), "m.py", []byte(src))
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, "good", got[0].Name)
	assert.Equal(t, "Still found.", got[0].Comment)
}

func TestScanner_Scan_Unsupported(t *testing.T) {
	t.Parallel()

	_, err := pysource.NewScanner().Scan(context.Background(), "main.go", []byte("package main"))
	require.ErrorIs(t, err, pysource.ErrUnsupportedFile)
}

func TestSupported(t *testing.T) {
	t.Parallel()

	tcs := map[string]bool{
		"a.py":      true,
		"stubs.pyi": true,
		"GUI.PYW":   true,
		"a.pyc":     false,
		"README.md": false,
		"py":        false,
	}

	for name, want := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, want, pysource.Supported(name))
		})
	}
}
