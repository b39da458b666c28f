package coarseindex

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleSrc = `package com.example;

public class Greeter {
    private String name;

    public Greeter(String name) {
        this.name = name;
    }

    public String greet() {
        return "hello " + name;
    }
}
`

func TestIndexFileFindsClassAndMembers(t *testing.T) {
	ix := New()
	defer ix.Close()

	require.NoError(t, ix.IndexFile(context.Background(), "Greeter.java", []byte(sampleSrc)))

	locs := ix.Lookup("Greeter")
	require.Len(t, locs, 2, "class declaration plus constructor share the name Greeter")
	for _, l := range locs {
		require.Equal(t, "Greeter.java", l.Path)
	}

	locs = ix.Lookup("greet")
	require.Len(t, locs, 1)
	require.Equal(t, "method_declaration", locs[0].Kind)

	locs = ix.Lookup("name")
	require.Len(t, locs, 1)
	require.Equal(t, "field_declaration", locs[0].Kind)
}

func TestReindexingSameFileReplacesRatherThanDuplicates(t *testing.T) {
	ix := New()
	defer ix.Close()

	require.NoError(t, ix.IndexFile(context.Background(), "C.java", []byte("class C { void m() {} }")))
	require.Len(t, ix.Lookup("m"), 1)

	require.NoError(t, ix.IndexFile(context.Background(), "C.java", []byte("class C { void m() {} void n() {} }")))
	require.Len(t, ix.Lookup("m"), 1)
	require.Len(t, ix.Lookup("n"), 1)
}

func TestRemoveFileDropsItsSymbols(t *testing.T) {
	ix := New()
	defer ix.Close()

	require.NoError(t, ix.IndexFile(context.Background(), "C.java", []byte("class C {}")))
	require.NotZero(t, ix.Len())

	ix.RemoveFile("C.java")
	require.Empty(t, ix.Lookup("C"))
	require.Zero(t, ix.Len())
}

func TestLookupAcrossMultipleFiles(t *testing.T) {
	ix := New()
	defer ix.Close()

	require.NoError(t, ix.IndexFile(context.Background(), "A.java", []byte("class Base {}")))
	require.NoError(t, ix.IndexFile(context.Background(), "B.java", []byte("class Base {}")))

	locs := ix.Lookup("Base")
	require.Len(t, locs, 2)
}

func TestMalformedSourceIndexesWithoutError(t *testing.T) {
	ix := New()
	defer ix.Close()

	// tree-sitter recovers a partial parse instead of failing outright, so
	// indexing a half-typed file must not return an error, since that is the
	// common case the coarse index exists for.
	err := ix.IndexFile(context.Background(), "Broken.java", []byte("class Broken { void m() "))
	require.NoError(t, err)
}
