package jdk

import (
	"testing"

	"github.com/stretchr/testify/require"

	"nova/classfile"
)

func TestLookupMiss(t *testing.T) {
	idx, err := Load("/fake/jdk", 17)
	require.NoError(t, err)

	_, ok := idx.Lookup("java/lang/String")
	require.False(t, ok)
}

func TestPutAndLookup(t *testing.T) {
	idx, err := Load("/fake/jdk", 17)
	require.NoError(t, err)

	idx.Put("java/lang/String", &classfile.Class{ThisClass: "java/lang/String"})
	c, ok := idx.Lookup("java/lang/String")
	require.True(t, ok)
	require.Equal(t, "java/lang/String", c.ThisClass)
	require.Equal(t, 1, idx.Len())
}

func TestVerifyWellKnownReportsMissing(t *testing.T) {
	idx, err := Load("/fake/jdk", 17)
	require.NoError(t, err)

	err = VerifyWellKnown(idx)
	require.Error(t, err)
}
