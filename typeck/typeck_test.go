package typeck

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"nova/hir"
	"nova/jdk"
	"nova/resolve"
	"nova/syntax"
)

// Mirrors original_source/crates/nova-db/tests/suite/typeck.rs, adapted from
// a salsa query database fixture (setup_db) to a direct Checker over one
// parsed file: db's own tests exercise the same scenarios through the query
// database, so these stay at the unit layer to isolate Checker itself.

func parseTree(t *testing.T, src string) *hir.ItemTree {
	t.Helper()
	res := syntax.Parse([]byte(src))
	require.Empty(t, res.Diagnostics)
	return hir.LowerItemTree(res.Root)
}

func newChecker(t *testing.T, src string) *Checker {
	t.Helper()
	tree := parseTree(t, src)
	idx, err := jdk.Load("/fake/jdk", 17)
	require.NoError(t, err)
	return NewChecker(tree, idx, nil)
}

func findCode(diags []diagCode, code string) bool {
	for _, d := range diags {
		if d.code == code {
			return true
		}
	}
	return false
}

// diagCode is a minimal projection of diagnostic.Diagnostic so tests don't
// need to import the diagnostic package just to compare Code/Message.
type diagCode struct {
	code    string
	message string
	start   int
	end     int
}

func codes(c *Checker) []diagCode {
	var out []diagCode
	for _, d := range c.TypeDiagnostics() {
		out = append(out, diagCode{
			code:    string(d.Code),
			message: d.Message,
			start:   int(d.Span.Start),
			end:     int(d.Span.End),
		})
	}
	return out
}

func TestReportsTypeMismatchForBadInitializer(t *testing.T) {
	src := `
class C {
    void m() {
        int x = "no";
    }
}
`
	c := newChecker(t, src)
	diags := codes(c)

	quote := strings.Index(src, `"no"`)
	require.GreaterOrEqual(t, quote, 0)

	found := false
	for _, d := range diags {
		if d.code == "type-mismatch" {
			found = true
			require.LessOrEqual(t, d.start, quote)
			require.Greater(t, d.end, quote)
		}
	}
	require.True(t, found, "expected type-mismatch diagnostic, got %+v", diags)
}

func TestReportsTypeMismatchForBadAssignment(t *testing.T) {
	src := `
class C {
    void m() {
        int x = 0;
        x = "no";
    }
}
`
	c := newChecker(t, src)
	require.True(t, findCode(codes(c), "type-mismatch"))
}

func TestReportsConditionNotBooleanForIf(t *testing.T) {
	src := `
class C {
    void m() {
        if (1) {}
    }
}
`
	c := newChecker(t, src)
	require.True(t, findCode(codes(c), "condition-not-boolean"))
}

func TestTypeAtOffsetShowsStringForSubstringCall(t *testing.T) {
	src := `
class C {
    String m() {
        return "x".substring(1);
    }
}
`
	c := newChecker(t, src)
	offset := strings.Index(src, "substring(") + len("substring")
	ty, ok := c.TypeAtOffsetDisplay(offset)
	require.True(t, ok)
	require.Equal(t, "String", ty)
}

func TestTypeAtOffsetShowsStringForConcat(t *testing.T) {
	src := `
class C {
    String m() {
        return "a" + 1;
    }
}
`
	c := newChecker(t, src)
	offset := strings.Index(src, "+")
	ty, ok := c.TypeAtOffsetDisplay(offset)
	require.True(t, ok)
	require.Equal(t, "String", ty)
}

func TestUnqualifiedMethodCallResolvesAgainstEnclosingClass(t *testing.T) {
	src := `
class C {
    void bar() {}
    void m() {
        bar();
    }
}
`
	c := newChecker(t, src)
	require.False(t, findCode(codes(c), "unresolved-method"))
}

func TestStaticContextRejectsUnqualifiedInstanceMethodCall(t *testing.T) {
	src := `
class C {
    void bar() {}
    static void m() {
        bar();
    }
}
`
	c := newChecker(t, src)
	diags := codes(c)
	found := false
	for _, d := range diags {
		if d.code == "unresolved-method" && strings.Contains(d.message, "static context") {
			found = true
		}
	}
	require.True(t, found, "expected static context rejection, got %+v", diags)
}

func TestTypeAtOffsetShowsEnclosingClassForThis(t *testing.T) {
	src := `
class C {
    void m() {
        Object o = this;
    }
}
`
	c := newChecker(t, src)
	offset := strings.Index(src, "this") + 1
	ty, ok := c.TypeAtOffsetDisplay(offset)
	require.True(t, ok)
	require.Equal(t, "C", ty)
}

func TestTypeAtOffsetShowsObjectForSuper(t *testing.T) {
	src := `
class C {
    void m() {
        super.toString();
    }
}
`
	c := newChecker(t, src)
	offset := strings.Index(src, "super") + 1
	ty, ok := c.TypeAtOffsetDisplay(offset)
	require.True(t, ok)
	require.Equal(t, "Object", ty)
}

func TestUnresolvedSignatureTypesAreAnchored(t *testing.T) {
	src := `
class C {
    DoesNotExist id(AlsoMissing x) { return null; }
}
`
	c := newChecker(t, src)
	diags := c.TypeDiagnostics()

	var unresolved []int
	for i, d := range diags {
		if string(d.Code) == "unresolved-type" {
			unresolved = append(unresolved, i)
		}
	}
	require.GreaterOrEqual(t, len(unresolved), 2, "expected at least two unresolved-type diagnostics, got %+v", diags)

	for _, i := range unresolved {
		d := diags[i]
		snippet := src[int(d.Span.Start):int(d.Span.End)]
		require.True(t, snippet == "DoesNotExist" || snippet == "AlsoMissing",
			"expected span to cover the unresolved type name, got %q", snippet)
	}
}

func TestReportsUnresolvedFieldForMissingMember(t *testing.T) {
	src := `
class C {
    void m() {
        int x = this.missing;
    }
}
`
	c := newChecker(t, src)
	require.True(t, findCode(codes(c), "unresolved-field"))
}

func TestFieldAccessResolvesUpSuperclassChain(t *testing.T) {
	src := `
class Base {
    int value;
}
class C extends Base {
    void m() {
        int x = this.value;
    }
}
`
	c := newChecker(t, src)
	require.False(t, findCode(codes(c), "unresolved-field"))
}

// starPackageClasspath is a minimal resolve.ClasspathIndex double that
// resolves every simple name registered under a package via
// ResolveTypeInPackage, used to exercise on-demand-import ambiguity
// end-to-end through Checker rather than through resolve.Resolver directly.
type starPackageClasspath struct {
	packageToTypes map[string]map[string]string
}

func (c *starPackageClasspath) ResolveType(string) (string, bool) { return "", false }

func (c *starPackageClasspath) ResolveTypeInPackage(packageName, name string) (string, bool) {
	m, ok := c.packageToTypes[packageName]
	if !ok {
		return "", false
	}
	qn, ok := m[name]
	return qn, ok
}

func (c *starPackageClasspath) PackageExists(packageName string) bool {
	_, ok := c.packageToTypes[packageName]
	return ok
}

var _ resolve.ClasspathIndex = (*starPackageClasspath)(nil)

func TestReportsAmbiguousImportForConflictingStarImports(t *testing.T) {
	src := `
import com.a.*;
import com.b.*;

class C {
    Widget id(Widget w) { return w; }
}
`
	tree := parseTree(t, src)
	idx, err := jdk.Load("/fake/jdk", 17)
	require.NoError(t, err)
	cp := &starPackageClasspath{packageToTypes: map[string]map[string]string{
		"com.a": {"Widget": "com.a.Widget"},
		"com.b": {"Widget": "com.b.Widget"},
	}}
	c := NewChecker(tree, idx, cp)
	require.True(t, findCode(codes(c), "ambiguous-import"))
}
