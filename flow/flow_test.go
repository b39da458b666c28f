package flow

import (
	"testing"

	"github.com/stretchr/testify/require"

	"nova/hir"
	"nova/syntax"
)

func bodyOf(t *testing.T, src, methodName string) *hir.Body {
	t.Helper()
	res := syntax.Parse([]byte(src))
	require.Empty(t, res.Diagnostics)
	tree := hir.LowerItemTree(res.Root)
	id, ok := tree.FindMethod(methodName)
	require.True(t, ok)
	m := tree.Method(id)
	require.NotNil(t, m.BodyNode)
	return hir.LowerBody(m.BodyNode)
}

func TestUnreachableAfterReturn(t *testing.T) {
	src := `class C {
    int m() {
        return 1;
        int x = 2;
    }
}
`
	body := bodyOf(t, src, "m")
	g := Build(body)
	unreachable := UnreachableStmts(g)
	require.NotEmpty(t, unreachable)
}

func TestReachableWithoutDeadCode(t *testing.T) {
	src := `class C {
    int m(int x) {
        if (x > 0) {
            return 1;
        }
        return 2;
    }
}
`
	body := bodyOf(t, src, "m")
	g := Build(body)
	require.Empty(t, UnreachableStmts(g))
}

func TestDefiniteAssignmentFlagsUseBeforeInit(t *testing.T) {
	src := `class C {
    void m() {
        int x;
        int y = x + 1;
    }
}
`
	body := bodyOf(t, src, "m")
	g := Build(body)
	uses := DefiniteAssignment(g, body, nil)
	require.Len(t, uses, 1)
	require.Equal(t, "x", uses[0].Name)
}

func TestDefiniteAssignmentAllowsAssignedOnBothBranches(t *testing.T) {
	src := `class C {
    void m(boolean cond) {
        int x;
        if (cond) {
            x = 1;
        } else {
            x = 2;
        }
        int y = x + 1;
    }
}
`
	body := bodyOf(t, src, "m")
	g := Build(body)
	uses := DefiniteAssignment(g, body, []string{"cond"})
	require.Empty(t, uses)
}

func TestDefiniteAssignmentFlagsAssignedOnOneBranchOnly(t *testing.T) {
	src := `class C {
    void m(boolean cond) {
        int x;
        if (cond) {
            x = 1;
        }
        int y = x + 1;
    }
}
`
	body := bodyOf(t, src, "m")
	g := Build(body)
	uses := DefiniteAssignment(g, body, []string{"cond"})
	require.Len(t, uses, 1)
	require.Equal(t, "x", uses[0].Name)
}

func TestDefiniteAssignmentPreAssignedParamsNeverFlagged(t *testing.T) {
	src := `class C {
    void m(int x) {
        int y = x + 1;
    }
}
`
	body := bodyOf(t, src, "m")
	g := Build(body)
	uses := DefiniteAssignment(g, body, []string{"x"})
	require.Empty(t, uses)
}

func TestNullnessFlagsDirectNullDeref(t *testing.T) {
	src := `class C {
    void m() {
        String s = null;
        s.length();
    }
}
`
	body := bodyOf(t, src, "m")
	g := Build(body)
	derefs := Nullness(g, body)
	require.Len(t, derefs, 1)
	require.Equal(t, "s", derefs[0].Name)
}

func TestNullnessNarrowsOnNotEqualNullCheck(t *testing.T) {
	src := `class C {
    void m(String s) {
        if (s != null) {
            s.length();
        }
    }
}
`
	body := bodyOf(t, src, "m")
	g := Build(body)
	derefs := Nullness(g, body)
	require.Empty(t, derefs)
}

func TestNullnessNoFalsePositiveAfterNonNullInit(t *testing.T) {
	src := `class C {
    void m() {
        String s = "hi";
        s.length();
    }
}
`
	body := bodyOf(t, src, "m")
	g := Build(body)
	require.Empty(t, Nullness(g, body))
}
