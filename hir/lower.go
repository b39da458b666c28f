package hir

import (
	"strings"

	"nova/syntax"
	"nova/text"
)

// LowerItemTree walks a parsed compilation unit's CST and builds its item
// tree. It never fails: nodes the lowering doesn't recognize (including
// syntax.NodeErrorNode spans left by parser recovery) are simply skipped,
// so a malformed file still yields an item tree for everything parseable
// around the error (spec §4.6's resilience requirement, carried over from
// §4.5's lossless-CST error recovery).
func LowerItemTree(root *syntax.Node) *ItemTree {
	t := &ItemTree{}
	l := &lowerer{tree: t}
	for _, c := range root.Children {
		n, ok := c.(*syntax.Node)
		if !ok {
			continue
		}
		switch n.Kind {
		case syntax.NodePackageDecl:
			t.PackageName = l.packageName(n)
		case syntax.NodeImportDecl:
			t.Imports = append(t.Imports, l.importItem(n))
		case syntax.NodeClassDecl, syntax.NodeInterfaceDecl, syntax.NodeEnumDecl, syntax.NodeRecordDecl:
			t.Items = append(t.Items, l.lowerTypeDecl(n))
		}
	}
	return t
}

type lowerer struct {
	tree *ItemTree
}

func (l *lowerer) packageName(n *syntax.Node) string {
	var parts []string
	for _, tok := range n.Tokens() {
		if tok.Kind == syntax.KindIdentifier {
			parts = append(parts, tok.Text)
		}
	}
	return strings.Join(parts, ".")
}

func (l *lowerer) importItem(n *syntax.Node) ImportItem {
	item := ImportItem{}
	var parts []string
	for _, tok := range n.Tokens() {
		switch tok.Kind {
		case syntax.KindKeywordStatic:
			item.Static = true
		case syntax.KindIdentifier:
			parts = append(parts, tok.Text)
		case syntax.KindStar:
			item.OnDemand = true
		}
	}
	item.Path = strings.Join(parts, ".")
	return item
}

// modifierTexts collects every modifier keyword/annotation text from a
// NodeModifierList child of n, if present.
func modifierTexts(n *syntax.Node) []string {
	mods := firstDirectChild(n, syntax.NodeModifierList)
	if mods == nil {
		return nil
	}
	var out []string
	for _, c := range mods.Children {
		switch v := c.(type) {
		case syntax.Token:
			if !v.Kind.IsTrivia() && v.Kind != syntax.KindAt {
				out = append(out, v.Text)
			}
		case *syntax.Node:
			out = append(out, strings.TrimSpace(v.Text()))
		}
	}
	return out
}

func firstDirectChild(n *syntax.Node, kind syntax.NodeKind) *syntax.Node {
	for _, c := range n.Children {
		if node, ok := c.(*syntax.Node); ok && node.Kind == kind {
			return node
		}
	}
	return nil
}

// declName returns the first identifier token that isn't part of the
// modifier list or a subsequent type ref — i.e. the declaration's own name.
func declName(n *syntax.Node, afterKind syntax.Kind) string {
	seenKeyword := false
	for _, c := range n.Children {
		if tok, ok := c.(syntax.Token); ok {
			if tok.Kind == afterKind {
				seenKeyword = true
				continue
			}
			if seenKeyword && tok.Kind == syntax.KindIdentifier {
				return tok.Text
			}
		}
	}
	return ""
}

func (l *lowerer) lowerTypeDecl(n *syntax.Node) Item {
	mods := modifierTexts(n)
	switch n.Kind {
	case syntax.NodeClassDecl:
		id := ClassId(len(l.tree.Classes))
		l.tree.Classes = append(l.tree.Classes, ClassItem{})
		item := Item{Kind: ItemClass, Index: uint32(id)}
		ci := ClassItem{
			Name:       declName(n, syntax.KindKeywordClass),
			Modifiers:  mods,
			TypeParams: typeParamNames(n),
			SuperClass: l.extendsClause(n),
			Interfaces: l.implementsClause(n),
			AstId:      AstId{Node: n},
		}
		ci.Members = l.lowerMembers(n, item)
		l.tree.Classes[id] = ci
		return item
	case syntax.NodeInterfaceDecl:
		id := InterfaceId(len(l.tree.Interfaces))
		l.tree.Interfaces = append(l.tree.Interfaces, InterfaceItem{})
		item := Item{Kind: ItemInterface, Index: uint32(id)}
		ii := InterfaceItem{
			Name:       declName(n, syntax.KindKeywordInterface),
			Modifiers:  mods,
			TypeParams: typeParamNames(n),
			Interfaces: l.implementsClause(n),
			AstId:      AstId{Node: n},
		}
		ii.Members = l.lowerMembers(n, item)
		l.tree.Interfaces[id] = ii
		return item
	case syntax.NodeEnumDecl:
		id := EnumId(len(l.tree.Enums))
		l.tree.Enums = append(l.tree.Enums, EnumItem{})
		item := Item{Kind: ItemEnum, Index: uint32(id)}
		ei := EnumItem{
			Name:       declName(n, syntax.KindKeywordEnum),
			Modifiers:  mods,
			Interfaces: l.implementsClause(n),
			AstId:      AstId{Node: n},
		}
		ei.Members = l.lowerMembers(n, item)
		l.tree.Enums[id] = ei
		return item
	default: // record
		id := RecordId(len(l.tree.Records))
		l.tree.Records = append(l.tree.Records, RecordItem{})
		item := Item{Kind: ItemRecord, Index: uint32(id)}
		ri := RecordItem{
			Name:       declName(n, syntax.KindIdentifier),
			Modifiers:  mods,
			Interfaces: l.implementsClause(n),
			AstId:      AstId{Node: n},
		}
		ri.Members = l.lowerMembers(n, item)
		l.tree.Records[id] = ri
		return item
	}
}

// typeParamNames extracts the declared names from a declaration's
// NodeTypeParamList child ("<T, U extends Bound>" -> ["T", "U"]), if present.
func typeParamNames(n *syntax.Node) []string {
	list := firstDirectChild(n, syntax.NodeTypeParamList)
	if list == nil {
		return nil
	}
	// Bound type refs are nested *Node children (NodeTypeRef), so a plain
	// scan for top-level Identifier tokens only ever sees the parameter
	// names themselves.
	var out []string
	for _, c := range list.Children {
		if tok, ok := c.(syntax.Token); ok && tok.Kind == syntax.KindIdentifier {
			out = append(out, tok.Text)
		}
	}
	return out
}

func (l *lowerer) extendsClause(n *syntax.Node) string {
	seenExtends := false
	for _, c := range n.Children {
		if tok, ok := c.(syntax.Token); ok && tok.Kind == syntax.KindKeywordExtends {
			seenExtends = true
			continue
		}
		if seenExtends {
			if ref, ok := c.(*syntax.Node); ok && ref.Kind == syntax.NodeTypeRef {
				return strings.TrimSpace(ref.Text())
			}
		}
	}
	return ""
}

func (l *lowerer) implementsClause(n *syntax.Node) []string {
	var out []string
	seenImplements := false
	for _, c := range n.Children {
		if tok, ok := c.(syntax.Token); ok {
			if tok.Kind == syntax.KindKeywordImplements {
				seenImplements = true
				continue
			}
			if tok.Kind == syntax.KindLBrace {
				break
			}
		}
		if seenImplements {
			if ref, ok := c.(*syntax.Node); ok && ref.Kind == syntax.NodeTypeRef {
				out = append(out, strings.TrimSpace(ref.Text()))
			}
		}
	}
	return out
}

func (l *lowerer) lowerMembers(typeDecl *syntax.Node, owner Item) []Member {
	var members []Member
	for _, c := range typeDecl.Children {
		n, ok := c.(*syntax.Node)
		if !ok {
			continue
		}
		switch n.Kind {
		case syntax.NodeMethodDecl:
			id := l.lowerMethod(n)
			members = append(members, Member{Kind: MemberMethod, Method: id})
		case syntax.NodeFieldDecl:
			for _, id := range l.lowerField(n) {
				members = append(members, Member{Kind: MemberField, Field: id})
			}
		case syntax.NodeClassDecl, syntax.NodeInterfaceDecl, syntax.NodeEnumDecl, syntax.NodeRecordDecl:
			nested := l.lowerTypeDecl(n)
			members = append(members, Member{Kind: MemberNestedType, Nested: nested})
		}
	}
	return members
}

func (l *lowerer) lowerMethod(n *syntax.Node) MethodId {
	mods := modifierTexts(n)
	var returnType string
	var returnTypeSpan text.Range
	var params []ParamItem
	var body *syntax.Node

	for _, c := range n.Children {
		node, isNode := c.(*syntax.Node)
		if !isNode {
			continue
		}
		switch node.Kind {
		case syntax.NodeTypeRef:
			if returnType == "" {
				returnType = strings.TrimSpace(node.Text())
				returnTypeSpan = node.Span
			}
		case syntax.NodeParam:
			params = append(params, lowerParam(node))
		case syntax.NodeBlock:
			body = node
		}
	}
	name := methodName(n)

	id := MethodId(len(l.tree.Methods))
	l.tree.Methods = append(l.tree.Methods, MethodItem{
		Name:           name,
		Modifiers:      mods,
		TypeParams:     typeParamNames(n),
		ReturnType:     returnType,
		ReturnTypeSpan: returnTypeSpan,
		Params:         params,
		AstId:          AstId{Node: n},
		BodyNode:       body,
	})
	return id
}

// methodName returns the last top-level Identifier token before the
// parameter list's '('. For a regular method that identifier is the method
// name (the return type precedes it as a nested NodeTypeRef, not a
// top-level token, so it's never mistaken for the name). For a constructor
// — which the parser represents with no return-type child, flattening the
// parsed name directly into top-level tokens — the same scan finds the
// constructor's name just as well.
func methodName(n *syntax.Node) string {
	name := ""
	for _, c := range n.Children {
		tok, ok := c.(syntax.Token)
		if !ok {
			continue
		}
		if tok.Kind == syntax.KindLParen {
			return name
		}
		if tok.Kind == syntax.KindIdentifier {
			name = tok.Text
		}
	}
	return name
}

func lowerParam(n *syntax.Node) ParamItem {
	p := ParamItem{}
	for _, c := range n.Children {
		switch v := c.(type) {
		case *syntax.Node:
			if v.Kind == syntax.NodeTypeRef {
				p.TypeText = strings.TrimSpace(v.Text())
				p.TypeSpan = v.Span
			}
		case syntax.Token:
			switch v.Kind {
			case syntax.KindEllipsis:
				p.Variadic = true
			case syntax.KindIdentifier:
				p.Name = v.Text
			}
		}
	}
	return p
}

func (l *lowerer) lowerField(n *syntax.Node) []FieldId {
	mods := modifierTexts(n)
	var typeText string
	var typeSpan text.Range
	var ids []FieldId
	for _, c := range n.Children {
		switch v := c.(type) {
		case *syntax.Node:
			if v.Kind == syntax.NodeTypeRef && typeText == "" {
				typeText = strings.TrimSpace(v.Text())
				typeSpan = v.Span
			}
		case syntax.Token:
			if v.Kind == syntax.KindIdentifier {
				id := FieldId(len(l.tree.Fields))
				l.tree.Fields = append(l.tree.Fields, FieldItem{
					Name:      v.Text,
					TypeText:  typeText,
					TypeSpan:  typeSpan,
					Modifiers: mods,
					AstId:     AstId{Node: n},
				})
				ids = append(ids, id)
			}
		}
	}
	return ids
}
