package classpath

import "strings"

// ResolveType, ResolveTypeInPackage and PackageExists let *Index satisfy
// resolve.ClasspathIndex structurally, without classpath importing resolve:
// db wires an *Index in wherever that interface is expected (spec §4.8's
// classpath-backed name resolution).

// ResolveType resolves a fully dotted-and-$-nested class name
// ("java.util.Map$Entry") exactly. classpath's own keys are slash-separated
// binary names, so only the "." package separators need converting — a
// nested class's "$" already matches how classfile.Parse names it.
func (idx *Index) ResolveType(qualifiedDotted string) (string, bool) {
	binaryName := strings.ReplaceAll(qualifiedDotted, ".", "/")
	if _, _, ok := idx.Resolve(binaryName); ok {
		return qualifiedDotted, true
	}
	return "", false
}

// ResolveTypeInPackage resolves a simple name within one package, honoring
// classpath order for which entry wins when more than one jar/dir defines
// the same name.
func (idx *Index) ResolveTypeInPackage(packageName, simpleName string) (string, bool) {
	qualified := simpleName
	if packageName != "" {
		qualified = packageName + "." + simpleName
	}
	return idx.ResolveType(qualified)
}

// PackageExists reports whether any classpath entry contributes a class
// whose binary name falls under packageName, honoring the same JPMS
// visibility rules as ResolveType.
func (idx *Index) PackageExists(packageName string) bool {
	prefix := strings.ReplaceAll(packageName, ".", "/") + "/"
	for _, e := range idx.Entries {
		for name := range e.classes {
			if strings.HasPrefix(name, prefix) && idx.visibleTo(e, name) {
				return true
			}
		}
	}
	return false
}
