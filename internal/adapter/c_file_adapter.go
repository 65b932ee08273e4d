package adapter

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"

	"mendc.dev/pkg/mendc/internal/cast"
)

// CFileAdapter parses C source into the statement-level AST. Expressions
// are kept as verbatim source slices; only the statement structure is
// modelled.
type CFileAdapter interface {
	Parse(ctx context.Context, name string, src []byte) (*cast.File, error)
}

// TreeSitterCAdapter parses C with the tree-sitter grammar.
type TreeSitterCAdapter struct{}

// NewTreeSitterCAdapter constructs a TreeSitterCAdapter.
func NewTreeSitterCAdapter() *TreeSitterCAdapter {
	return &TreeSitterCAdapter{}
}

// Parse builds a cast.File from C source. Statement identifiers are left at
// zero; callers number the result.
func (a *TreeSitterCAdapter) Parse(ctx context.Context, name string, src []byte) (*cast.File, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(c.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}

	defer tree.Close()

	root := tree.RootNode()
	file := &cast.File{Name: name}

	for i := 0; i < int(root.NamedChildCount()); i++ {
		node := root.NamedChild(i)

		if node.Type() == "function_definition" {
			fd, err := a.convertFunction(node, src)
			if err != nil {
				return nil, fmt.Errorf("in %s: %w", name, err)
			}

			file.Decls = append(file.Decls, fd)

			continue
		}

		file.Decls = append(file.Decls, &cast.RawDecl{Text: content(node, src)})
	}

	return file, nil
}

func (a *TreeSitterCAdapter) convertFunction(node *sitter.Node, src []byte) (*cast.FuncDef, error) {
	body := node.ChildByFieldName("body")
	if body == nil || body.Type() != "compound_statement" {
		return nil, fmt.Errorf("function definition without a body at byte %d", node.StartByte())
	}

	header := strings.TrimSpace(string(src[node.StartByte():body.StartByte()]))

	return &cast.FuncDef{
		Header: header,
		Body:   a.convertStmt(body, src),
	}, nil
}

// convertStmt maps one tree-sitter statement node to a cast statement.
// Unmodelled forms fall back to Raw with verbatim text.
func (a *TreeSitterCAdapter) convertStmt(node *sitter.Node, src []byte) *cast.Stmt {
	switch node.Type() {
	case "compound_statement":
		block := &cast.Block{}

		for i := 0; i < int(node.NamedChildCount()); i++ {
			child := node.NamedChild(i)
			if child.Type() == "comment" {
				continue
			}

			block.Stmts = append(block.Stmts, a.convertStmt(child, src))
		}

		return &cast.Stmt{Kind: block}

	case "if_statement":
		kind := &cast.If{
			Cond: condition(node, src),
			Then: a.convertStmt(node.ChildByFieldName("consequence"), src),
		}

		if alt := node.ChildByFieldName("alternative"); alt != nil {
			kind.Else = a.convertStmt(elseBody(alt), src)
		}

		return &cast.Stmt{Kind: kind}

	case "while_statement":
		return &cast.Stmt{Kind: &cast.While{
			Cond: condition(node, src),
			Body: a.convertStmt(node.ChildByFieldName("body"), src),
		}}

	case "do_statement":
		return &cast.Stmt{Kind: &cast.DoWhile{
			Cond: condition(node, src),
			Body: a.convertStmt(node.ChildByFieldName("body"), src),
		}}

	case "for_statement":
		kind := &cast.For{
			Init: fieldText(node, "initializer", src),
			Cond: fieldText(node, "condition", src),
			Post: fieldText(node, "update", src),
			Body: a.convertStmt(node.ChildByFieldName("body"), src),
		}

		return &cast.Stmt{Kind: kind}

	case "return_statement":
		text := strings.TrimSuffix(strings.TrimSpace(content(node, src)), ";")
		text = strings.TrimSpace(strings.TrimPrefix(text, "return"))

		return &cast.Stmt{Kind: &cast.Return{Expr: cast.Expr(text)}}

	case "expression_statement", "declaration":
		text := strings.TrimSuffix(strings.TrimSpace(content(node, src)), ";")
		return &cast.Stmt{Kind: &cast.Instr{Instrs: []cast.Expr{cast.Expr(text)}}}

	case "labeled_statement":
		label := fieldText(node, "label", src)
		inner := a.convertStmt(node.NamedChild(int(node.NamedChildCount())-1), src)

		return inner.WithLabel(string(label))
	}

	return &cast.Stmt{Kind: &cast.Raw{Text: content(node, src)}}
}

// condition extracts the text inside the statement's parenthesised
// condition.
func condition(node *sitter.Node, src []byte) cast.Expr {
	cond := node.ChildByFieldName("condition")
	if cond == nil {
		return ""
	}

	text := strings.TrimSpace(content(cond, src))
	if strings.HasPrefix(text, "(") && strings.HasSuffix(text, ")") {
		text = strings.TrimSpace(text[1 : len(text)-1])
	}

	return cast.Expr(text)
}

// elseBody unwraps an else_clause to the statement it guards. Older grammar
// revisions attach the statement directly.
func elseBody(alt *sitter.Node) *sitter.Node {
	if alt.Type() != "else_clause" {
		return alt
	}

	return alt.NamedChild(int(alt.NamedChildCount()) - 1)
}

func fieldText(node *sitter.Node, field string, src []byte) cast.Expr {
	child := node.ChildByFieldName(field)
	if child == nil {
		return ""
	}

	return cast.Expr(strings.TrimSuffix(strings.TrimSpace(content(child, src)), ";"))
}

func content(node *sitter.Node, src []byte) string {
	return string(src[node.StartByte():node.EndByte()])
}
