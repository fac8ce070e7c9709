package parser

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// SourceUnit is the result of parsing one Python source text. When the
// source cannot be parsed, AST is nil and ParseError describes the first
// failure; analysis of a broken unit must not proceed.
type SourceUnit struct {
	// Filename is the logical name of the source, "<input>" for strings
	Filename string

	// Source is the raw text that was parsed
	Source string

	// AST is the root Module node, nil when parsing failed
	AST *Node

	// ParseError is a human-readable description of the first syntax
	// error, empty when parsing succeeded
	ParseError string
}

// Failed reports whether the unit could not be parsed
func (u *SourceUnit) Failed() bool {
	return u.ParseError != ""
}

// Parser wraps tree-sitter parser for Python
type Parser struct {
	parser   *sitter.Parser
	language *sitter.Language
}

// NewParser creates a new Python parser
func NewParser() *Parser {
	parser := sitter.NewParser()
	lang := python.GetLanguage()
	parser.SetLanguage(lang)

	return &Parser{
		parser:   parser,
		language: lang,
	}
}

// ParseFile parses a Python source file into a SourceUnit. Syntax errors
// are reported through SourceUnit.ParseError, never through the returned
// error; the error is reserved for parser-level failures such as a
// cancelled context.
func (p *Parser) ParseFile(ctx context.Context, filename string, source []byte) (*SourceUnit, error) {
	unit := &SourceUnit{
		Filename: filename,
		Source:   string(source),
	}

	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if tree == nil {
		if err != nil {
			return nil, fmt.Errorf("failed to parse file %s: %w", filename, err)
		}
		unit.ParseError = "parser produced no syntax tree"
		return unit, nil
	}
	defer tree.Close()

	rootNode := tree.RootNode()
	if rootNode == nil {
		unit.ParseError = "parse tree has no root node"
		return unit, nil
	}

	if rootNode.HasError() {
		unit.ParseError = describeSyntaxError(rootNode)
		return unit, nil
	}

	// Build our internal AST from tree-sitter CST
	builder := NewASTBuilder(filename, source)
	unit.AST = builder.Build(rootNode)

	return unit, nil
}

// Parse parses Python source code
func (p *Parser) Parse(ctx context.Context, source []byte) (*SourceUnit, error) {
	return p.ParseFile(ctx, "<input>", source)
}

// ParseString parses Python source code from a string
func (p *Parser) ParseString(ctx context.Context, source string) (*SourceUnit, error) {
	return p.Parse(ctx, []byte(source))
}

// Close closes the parser and frees resources
func (p *Parser) Close() {
	if p.parser != nil {
		p.parser.Close()
	}
}

// describeSyntaxError locates the first ERROR or MISSING node in the CST
// and renders it with a 1-based line and column
func describeSyntaxError(root *sitter.Node) string {
	bad := findFirstError(root)
	if bad == nil {
		return "syntax error"
	}
	line := int(bad.StartPoint().Row) + 1
	col := int(bad.StartPoint().Column) + 1
	if bad.IsMissing() {
		return fmt.Sprintf("syntax error at line %d, column %d: missing %s", line, col, bad.Type())
	}
	return fmt.Sprintf("syntax error at line %d, column %d", line, col)
}

func findFirstError(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	if node.Type() == "ERROR" || node.IsMissing() {
		return node
	}
	if !node.HasError() {
		return nil
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if found := findFirstError(node.Child(i)); found != nil {
			return found
		}
	}
	return nil
}
