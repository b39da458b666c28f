package syntax

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenizeReconstructsSource(t *testing.T) {
	src := []byte("package com.example;\n\nclass Foo { /* c */ int x = 1; }\n")
	toks := Tokenize(src)
	var out []byte
	for _, tok := range toks {
		out = append(out, tok.Text...)
	}
	require.Equal(t, string(src), string(out))
	require.Equal(t, KindEOF, toks[len(toks)-1].Kind)
}

func TestTokenizeKeywordsVsIdentifiers(t *testing.T) {
	toks := Tokenize([]byte("class var record"))
	var kinds []Kind
	for _, tok := range toks {
		if !tok.Kind.IsTrivia() && tok.Kind != KindEOF {
			kinds = append(kinds, tok.Kind)
		}
	}
	require.Equal(t, []Kind{KindKeywordClass, KindIdentifier, KindIdentifier}, kinds)
}

func TestTokenizeCompoundOperators(t *testing.T) {
	toks := Tokenize([]byte("a >>>= b"))
	var kinds []Kind
	for _, tok := range toks {
		if !tok.Kind.IsTrivia() && tok.Kind != KindEOF {
			kinds = append(kinds, tok.Kind)
		}
	}
	require.Equal(t, []Kind{KindIdentifier, KindURShiftEq, KindIdentifier}, kinds)
}

func TestTokenizeUnterminatedStringRecovers(t *testing.T) {
	toks := Tokenize([]byte(`"unterminated`))
	require.Equal(t, KindStringLiteral, toks[0].Kind)
	require.Equal(t, KindEOF, toks[len(toks)-1].Kind)
}

func TestTokenizeUnrecognizedByteEmitsErrorToken(t *testing.T) {
	toks := Tokenize([]byte("a ` b"))
	require.Equal(t, KindIdentifier, toks[0].Kind)
	foundError := false
	for _, tok := range toks {
		if tok.Kind == KindError {
			foundError = true
		}
	}
	require.True(t, foundError)
}
