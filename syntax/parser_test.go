package syntax

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleSource = `package com.example;

import java.util.List;
import static java.util.Collections.emptyList;

public class Widget implements Runnable {
    private final int count;

    public Widget(int count) {
        this.count = count;
    }

    public int run(int x) {
        int total = 0;
        if (x > 0) {
            total = total + x;
        } else {
            total = x - 1;
        }
        while (total < count) {
            total++;
        }
        return total;
    }
}
`

func TestParseRoundTripsLosslessly(t *testing.T) {
	res := Parse([]byte(sampleSource))
	require.Equal(t, sampleSource, res.Root.Text())
}

func TestParseWellFormedSourceHasNoDiagnostics(t *testing.T) {
	res := Parse([]byte(sampleSource))
	require.Empty(t, res.Diagnostics)
}

func TestParseBuildsExpectedShape(t *testing.T) {
	res := Parse([]byte(sampleSource))
	require.NotNil(t, res.Root.FindFirst(NodePackageDecl))
	require.Len(t, res.Root.FindAll(NodeImportDecl), 2)
	classDecl := res.Root.FindFirst(NodeClassDecl)
	require.NotNil(t, classDecl)
	require.Len(t, classDecl.FindAll(NodeMethodDecl), 2)
	require.Len(t, classDecl.FindAll(NodeFieldDecl), 1)
}

func TestParseMalformedInputRecoversAndStaysLossless(t *testing.T) {
	src := "class Foo { int x = ; void bar() {} }"
	res := Parse([]byte(src))
	require.Equal(t, src, res.Root.Text())
	require.NotEmpty(t, res.Diagnostics)
	// Recovery isolated the error: the later well-formed method is still
	// found intact.
	classDecl := res.Root.FindFirst(NodeClassDecl)
	require.NotNil(t, classDecl)
	methods := classDecl.FindAll(NodeMethodDecl)
	require.Len(t, methods, 1)
	require.Equal(t, "void bar() {}", methods[0].Text())
}

func TestParseExpressionPrecedence(t *testing.T) {
	src := "class C { void m() { int x = 1 + 2 * 3; } }"
	res := Parse([]byte(src))
	require.Empty(t, res.Diagnostics)
	bin := res.Root.FindFirst(NodeBinaryExpr)
	require.NotNil(t, bin)
	// Top-level binary expression should be the "+", with the "*" nested on
	// its right-hand side, reflecting standard precedence.
	require.Contains(t, bin.Text(), "+")
}

func TestParseCastVsParenDisambiguation(t *testing.T) {
	src := "class C { void m() { int x = (int) y; int z = (y); } }"
	res := Parse([]byte(src))
	require.Empty(t, res.Diagnostics)
	require.Equal(t, src, res.Root.Text())
}
