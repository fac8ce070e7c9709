package parser

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// ASTBuilder builds our internal AST from the tree-sitter CST
type ASTBuilder struct {
	filename string
	source   []byte
}

// NewASTBuilder creates a new AST builder
func NewASTBuilder(filename string, source []byte) *ASTBuilder {
	return &ASTBuilder{
		filename: filename,
		source:   source,
	}
}

// Build builds the AST from a tree-sitter node
func (b *ASTBuilder) Build(tsNode *sitter.Node) *Node {
	if tsNode == nil {
		return nil
	}
	return b.buildNode(tsNode)
}

// buildNode converts a tree-sitter node to our internal AST node
func (b *ASTBuilder) buildNode(tsNode *sitter.Node) *Node {
	if tsNode == nil {
		return nil
	}

	switch tsNode.Type() {
	case "module":
		return b.buildModule(tsNode)
	case "decorated_definition":
		// Drop the decorator wrapper and build the definition itself
		if def := b.childByField(tsNode, "definition"); def != nil {
			return b.buildNode(def)
		}
		return b.buildGenericNode(tsNode, NodeBlock)
	case "function_definition":
		return b.buildFunctionDef(tsNode)
	case "class_definition":
		return b.buildClassDef(tsNode)
	case "lambda":
		return b.buildLambda(tsNode)
	case "import_statement":
		return b.buildImport(tsNode)
	case "import_from_statement":
		return b.buildImportFrom(tsNode)
	case "if_statement":
		return b.buildIf(tsNode)
	case "elif_clause":
		return b.buildIf(tsNode)
	case "for_statement":
		return b.buildFor(tsNode)
	case "while_statement":
		return b.buildWhile(tsNode)
	case "with_statement":
		return b.buildWith(tsNode)
	case "try_statement":
		return b.buildTry(tsNode)
	case "except_clause":
		return b.buildExcept(tsNode)
	case "return_statement":
		return b.buildReturn(tsNode)
	case "raise_statement":
		return b.buildGenericNode(tsNode, NodeRaise)
	case "assert_statement":
		return b.buildGenericNode(tsNode, NodeAssert)
	case "pass_statement":
		return b.leafNode(tsNode, NodePass)
	case "break_statement":
		return b.leafNode(tsNode, NodeBreak)
	case "continue_statement":
		return b.leafNode(tsNode, NodeContinue)
	case "delete_statement":
		return b.buildGenericNode(tsNode, NodeDelete)
	case "global_statement":
		return b.buildScopeDecl(tsNode, NodeGlobal)
	case "nonlocal_statement":
		return b.buildScopeDecl(tsNode, NodeNonlocal)
	case "expression_statement":
		return b.buildExpressionStatement(tsNode)
	case "assignment":
		return b.buildAssignment(tsNode)
	case "augmented_assignment":
		return b.buildAugAssignment(tsNode)
	case "call":
		return b.buildCall(tsNode)
	case "attribute":
		return b.buildAttribute(tsNode)
	case "subscript":
		return b.buildSubscript(tsNode)
	case "identifier":
		return b.buildIdentifier(tsNode)
	case "string", "concatenated_string", "integer", "float", "true", "false", "none":
		return b.buildConstant(tsNode)
	case "comparison_operator":
		return b.buildComparison(tsNode)
	case "binary_operator":
		return b.buildBinaryOp(tsNode)
	case "boolean_operator":
		return b.buildBooleanOp(tsNode)
	case "unary_operator", "not_operator":
		return b.buildGenericNode(tsNode, NodeUnaryOp)
	case "conditional_expression":
		return b.buildGenericNode(tsNode, NodeConditionalExpr)
	case "await":
		return b.buildGenericNode(tsNode, NodeAwait)
	case "yield":
		return b.buildGenericNode(tsNode, NodeYield)
	case "keyword_argument":
		return b.buildKeywordArgument(tsNode)
	case "parenthesized_expression":
		return b.buildParenthesized(tsNode)
	case "list_comprehension":
		return b.buildGenericNode(tsNode, NodeListComp)
	case "set_comprehension":
		return b.buildGenericNode(tsNode, NodeSetComp)
	case "dictionary_comprehension":
		return b.buildGenericNode(tsNode, NodeDictComp)
	case "generator_expression":
		return b.buildGenericNode(tsNode, NodeGeneratorExp)
	case "list":
		return b.buildGenericNode(tsNode, NodeList)
	case "tuple", "pattern_list", "tuple_pattern":
		return b.buildGenericNode(tsNode, NodeTuple)
	case "dictionary":
		return b.buildGenericNode(tsNode, NodeDict)
	case "set":
		return b.buildGenericNode(tsNode, NodeSet)
	case "block":
		return b.buildBlock(tsNode)
	default:
		return b.buildGenericNode(tsNode, NodeType(tsNode.Type()))
	}
}

func (b *ASTBuilder) buildModule(tsNode *sitter.Node) *Node {
	node := b.leafNode(tsNode, NodeModule)
	for i := 0; i < int(tsNode.NamedChildCount()); i++ {
		child := tsNode.NamedChild(i)
		if child == nil || b.isTrivia(child) {
			continue
		}
		childNode := b.buildNode(child)
		if childNode != nil {
			childNode.Parent = node
			node.Body = append(node.Body, childNode)
		}
	}
	return node
}

func (b *ASTBuilder) buildFunctionDef(tsNode *sitter.Node) *Node {
	nodeType := NodeFunctionDef
	// async functions carry an "async" keyword token before "def"
	if first := tsNode.Child(0); first != nil && first.Type() == "async" {
		nodeType = NodeAsyncFunctionDef
	}
	node := b.leafNode(tsNode, nodeType)

	if nameNode := b.childByField(tsNode, "name"); nameNode != nil {
		node.Name = nameNode.Content(b.source)
	}
	if paramsNode := b.childByField(tsNode, "parameters"); paramsNode != nil {
		node.Params = b.buildNamedChildren(paramsNode)
	}
	if bodyNode := b.childByField(tsNode, "body"); bodyNode != nil {
		node.Body = b.buildStatements(bodyNode)
	}
	return node
}

func (b *ASTBuilder) buildClassDef(tsNode *sitter.Node) *Node {
	node := b.leafNode(tsNode, NodeClassDef)
	if nameNode := b.childByField(tsNode, "name"); nameNode != nil {
		node.Name = nameNode.Content(b.source)
	}
	if bodyNode := b.childByField(tsNode, "body"); bodyNode != nil {
		node.Body = b.buildStatements(bodyNode)
	}
	return node
}

func (b *ASTBuilder) buildLambda(tsNode *sitter.Node) *Node {
	node := b.leafNode(tsNode, NodeLambda)
	if paramsNode := b.childByField(tsNode, "parameters"); paramsNode != nil {
		node.Params = b.buildNamedChildren(paramsNode)
	}
	if bodyNode := b.childByField(tsNode, "body"); bodyNode != nil {
		node.Body = []*Node{b.buildNode(bodyNode)}
	}
	return node
}

func (b *ASTBuilder) buildImport(tsNode *sitter.Node) *Node {
	node := b.leafNode(tsNode, NodeImport)
	for i := 0; i < int(tsNode.NamedChildCount()); i++ {
		child := tsNode.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "dotted_name":
			node.Names = append(node.Names, ImportedName{
				Name: child.Content(b.source),
				Line: int(child.StartPoint().Row) + 1,
			})
		case "aliased_import":
			node.Names = append(node.Names, b.buildAliasedImport(child))
		}
	}
	return node
}

func (b *ASTBuilder) buildImportFrom(tsNode *sitter.Node) *Node {
	node := b.leafNode(tsNode, NodeImportFrom)
	if moduleNode := b.childByField(tsNode, "module_name"); moduleNode != nil {
		node.Module = moduleNode.Content(b.source)
	}
	for i := 0; i < int(tsNode.NamedChildCount()); i++ {
		child := tsNode.NamedChild(i)
		if child == nil || b.sameNode(child, b.childByField(tsNode, "module_name")) {
			continue
		}
		switch child.Type() {
		case "dotted_name", "identifier":
			node.Names = append(node.Names, ImportedName{
				Name: child.Content(b.source),
				Line: int(child.StartPoint().Row) + 1,
			})
		case "aliased_import":
			node.Names = append(node.Names, b.buildAliasedImport(child))
		case "wildcard_import":
			node.Names = append(node.Names, ImportedName{
				Name: "*",
				Line: int(child.StartPoint().Row) + 1,
			})
		}
	}
	return node
}

func (b *ASTBuilder) buildAliasedImport(tsNode *sitter.Node) ImportedName {
	imp := ImportedName{Line: int(tsNode.StartPoint().Row) + 1}
	if nameNode := b.childByField(tsNode, "name"); nameNode != nil {
		imp.Name = nameNode.Content(b.source)
	}
	if aliasNode := b.childByField(tsNode, "alias"); aliasNode != nil {
		imp.Alias = aliasNode.Content(b.source)
	}
	return imp
}

func (b *ASTBuilder) buildIf(tsNode *sitter.Node) *Node {
	node := b.leafNode(tsNode, NodeIf)
	if condNode := b.childByField(tsNode, "condition"); condNode != nil {
		node.Test = b.buildNode(condNode)
	}
	if consNode := b.childByField(tsNode, "consequence"); consNode != nil {
		node.Body = b.buildStatements(consNode)
	}
	// elif_clause and else_clause are siblings of the condition in the
	// grammar, but semantically each one belongs to the branch before it,
	// so the clauses are chained onto the most recent elif node
	tail := node
	for i := 0; i < int(tsNode.NamedChildCount()); i++ {
		child := tsNode.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "elif_clause":
			elif := b.buildIf(child)
			tail.OrElse = append(tail.OrElse, elif)
			tail = elif
		case "else_clause":
			tail.OrElse = append(tail.OrElse, b.buildElseStatements(child)...)
		}
	}
	return node
}

func (b *ASTBuilder) buildFor(tsNode *sitter.Node) *Node {
	node := b.leafNode(tsNode, NodeFor)
	if leftNode := b.childByField(tsNode, "left"); leftNode != nil {
		node.Target = b.buildNode(leftNode)
	}
	if rightNode := b.childByField(tsNode, "right"); rightNode != nil {
		node.Iter = b.buildNode(rightNode)
	}
	if bodyNode := b.childByField(tsNode, "body"); bodyNode != nil {
		node.Body = b.buildStatements(bodyNode)
	}
	if altNode := b.childByField(tsNode, "alternative"); altNode != nil {
		node.OrElse = b.buildElseStatements(altNode)
	}
	return node
}

func (b *ASTBuilder) buildWhile(tsNode *sitter.Node) *Node {
	node := b.leafNode(tsNode, NodeWhile)
	if condNode := b.childByField(tsNode, "condition"); condNode != nil {
		node.Test = b.buildNode(condNode)
	}
	if bodyNode := b.childByField(tsNode, "body"); bodyNode != nil {
		node.Body = b.buildStatements(bodyNode)
	}
	if altNode := b.childByField(tsNode, "alternative"); altNode != nil {
		node.OrElse = b.buildElseStatements(altNode)
	}
	return node
}

func (b *ASTBuilder) buildWith(tsNode *sitter.Node) *Node {
	node := b.leafNode(tsNode, NodeWith)
	for i := 0; i < int(tsNode.NamedChildCount()); i++ {
		child := tsNode.NamedChild(i)
		if child != nil && child.Type() == "with_clause" {
			node.AddChild(b.buildGenericNode(child, NodeBlock))
		}
	}
	if bodyNode := b.childByField(tsNode, "body"); bodyNode != nil {
		node.Body = b.buildStatements(bodyNode)
	}
	return node
}

func (b *ASTBuilder) buildTry(tsNode *sitter.Node) *Node {
	node := b.leafNode(tsNode, NodeTry)
	if bodyNode := b.childByField(tsNode, "body"); bodyNode != nil {
		node.Body = b.buildStatements(bodyNode)
	}
	for i := 0; i < int(tsNode.NamedChildCount()); i++ {
		child := tsNode.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "except_clause", "except_group_clause":
			node.Handlers = append(node.Handlers, b.buildExcept(child))
		case "else_clause":
			node.OrElse = append(node.OrElse, b.buildElseStatements(child)...)
		case "finally_clause":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				if blk := child.NamedChild(j); blk != nil && blk.Type() == "block" {
					node.FinalBody = b.buildStatements(blk)
				}
			}
		}
	}
	return node
}

// buildExcept builds an exception handler; a handler with a nil Test is a
// bare "except:" clause.
func (b *ASTBuilder) buildExcept(tsNode *sitter.Node) *Node {
	node := b.leafNode(tsNode, NodeExcept)
	for i := 0; i < int(tsNode.NamedChildCount()); i++ {
		child := tsNode.NamedChild(i)
		if child == nil || b.isTrivia(child) {
			continue
		}
		if child.Type() == "block" {
			node.Body = b.buildStatements(child)
			continue
		}
		if node.Test == nil {
			node.Test = b.buildNode(child)
		}
	}
	return node
}

func (b *ASTBuilder) buildReturn(tsNode *sitter.Node) *Node {
	node := b.leafNode(tsNode, NodeReturn)
	if tsNode.NamedChildCount() > 0 {
		node.Value = b.buildNode(tsNode.NamedChild(0))
	}
	return node
}

func (b *ASTBuilder) buildScopeDecl(tsNode *sitter.Node, nodeType NodeType) *Node {
	node := b.leafNode(tsNode, nodeType)
	for i := 0; i < int(tsNode.NamedChildCount()); i++ {
		child := tsNode.NamedChild(i)
		if child != nil && child.Type() == "identifier" {
			node.Names = append(node.Names, ImportedName{
				Name: child.Content(b.source),
				Line: int(child.StartPoint().Row) + 1,
			})
		}
	}
	return node
}

func (b *ASTBuilder) buildExpressionStatement(tsNode *sitter.Node) *Node {
	// Single-expression statements unwrap to their expression so that
	// assignments and calls appear directly in statement lists
	if tsNode.NamedChildCount() == 1 {
		return b.buildNode(tsNode.NamedChild(0))
	}
	node := b.leafNode(tsNode, NodeExpressionStatement)
	for i := 0; i < int(tsNode.NamedChildCount()); i++ {
		if child := tsNode.NamedChild(i); child != nil && !b.isTrivia(child) {
			node.AddChild(b.buildNode(child))
		}
	}
	return node
}

func (b *ASTBuilder) buildAssignment(tsNode *sitter.Node) *Node {
	node := b.leafNode(tsNode, NodeAssign)
	if leftNode := b.childByField(tsNode, "left"); leftNode != nil {
		node.Target = b.buildNode(leftNode)
	}
	if rightNode := b.childByField(tsNode, "right"); rightNode != nil {
		node.Value = b.buildNode(rightNode)
	}
	// annotated assignment without a value stays an Assign with nil Value
	if typeNode := b.childByField(tsNode, "type"); typeNode != nil {
		node.Type = NodeAnnAssign
	}
	return node
}

func (b *ASTBuilder) buildAugAssignment(tsNode *sitter.Node) *Node {
	node := b.leafNode(tsNode, NodeAugAssign)
	if leftNode := b.childByField(tsNode, "left"); leftNode != nil {
		node.Target = b.buildNode(leftNode)
	}
	if opNode := b.childByField(tsNode, "operator"); opNode != nil {
		node.Operator = opNode.Content(b.source)
	}
	if rightNode := b.childByField(tsNode, "right"); rightNode != nil {
		node.Value = b.buildNode(rightNode)
	}
	return node
}

func (b *ASTBuilder) buildCall(tsNode *sitter.Node) *Node {
	node := b.leafNode(tsNode, NodeCall)
	if funcNode := b.childByField(tsNode, "function"); funcNode != nil {
		node.Func = b.buildNode(funcNode)
	}
	if argsNode := b.childByField(tsNode, "arguments"); argsNode != nil {
		for i := 0; i < int(argsNode.NamedChildCount()); i++ {
			child := argsNode.NamedChild(i)
			if child == nil || b.isTrivia(child) {
				continue
			}
			built := b.buildNode(child)
			if built == nil {
				continue
			}
			if built.Type == NodeKeyword {
				node.Keywords = append(node.Keywords, built)
			} else {
				node.Arguments = append(node.Arguments, built)
			}
		}
	}
	return node
}

func (b *ASTBuilder) buildKeywordArgument(tsNode *sitter.Node) *Node {
	node := b.leafNode(tsNode, NodeKeyword)
	if nameNode := b.childByField(tsNode, "name"); nameNode != nil {
		node.Name = nameNode.Content(b.source)
	}
	if valueNode := b.childByField(tsNode, "value"); valueNode != nil {
		node.Value = b.buildNode(valueNode)
	}
	return node
}

func (b *ASTBuilder) buildAttribute(tsNode *sitter.Node) *Node {
	node := b.leafNode(tsNode, NodeAttribute)
	if objNode := b.childByField(tsNode, "object"); objNode != nil {
		node.Object = b.buildNode(objNode)
	}
	if attrNode := b.childByField(tsNode, "attribute"); attrNode != nil {
		node.Attr = attrNode.Content(b.source)
	}
	return node
}

func (b *ASTBuilder) buildSubscript(tsNode *sitter.Node) *Node {
	node := b.leafNode(tsNode, NodeSubscript)
	if valueNode := b.childByField(tsNode, "value"); valueNode != nil {
		node.Object = b.buildNode(valueNode)
	}
	if subNode := b.childByField(tsNode, "subscript"); subNode != nil {
		node.AddChild(b.buildNode(subNode))
	}
	return node
}

func (b *ASTBuilder) buildIdentifier(tsNode *sitter.Node) *Node {
	node := b.leafNode(tsNode, NodeName)
	node.Name = tsNode.Content(b.source)
	return node
}

func (b *ASTBuilder) buildConstant(tsNode *sitter.Node) *Node {
	node := b.leafNode(tsNode, NodeConstant)
	node.Raw = tsNode.Content(b.source)
	return node
}

func (b *ASTBuilder) buildComparison(tsNode *sitter.Node) *Node {
	node := b.leafNode(tsNode, NodeCompare)
	for i := 0; i < int(tsNode.NamedChildCount()); i++ {
		child := tsNode.NamedChild(i)
		if child == nil || b.isTrivia(child) {
			continue
		}
		built := b.buildNode(child)
		if node.Left == nil {
			node.Left = built
		} else {
			node.AddChild(built)
		}
	}
	return node
}

func (b *ASTBuilder) buildBinaryOp(tsNode *sitter.Node) *Node {
	node := b.leafNode(tsNode, NodeBinOp)
	if leftNode := b.childByField(tsNode, "left"); leftNode != nil {
		node.Left = b.buildNode(leftNode)
	}
	if opNode := b.childByField(tsNode, "operator"); opNode != nil {
		node.Operator = opNode.Content(b.source)
	}
	if rightNode := b.childByField(tsNode, "right"); rightNode != nil {
		node.Right = b.buildNode(rightNode)
	}
	return node
}

func (b *ASTBuilder) buildBooleanOp(tsNode *sitter.Node) *Node {
	node := b.leafNode(tsNode, NodeBoolOp)
	if leftNode := b.childByField(tsNode, "left"); leftNode != nil {
		node.Left = b.buildNode(leftNode)
	}
	if opNode := b.childByField(tsNode, "operator"); opNode != nil {
		node.Operator = opNode.Content(b.source)
	}
	if rightNode := b.childByField(tsNode, "right"); rightNode != nil {
		node.Right = b.buildNode(rightNode)
	}
	return node
}

func (b *ASTBuilder) buildParenthesized(tsNode *sitter.Node) *Node {
	// Unwrap the parentheses when they contain a single expression
	if tsNode.NamedChildCount() == 1 {
		return b.buildNode(tsNode.NamedChild(0))
	}
	return b.buildGenericNode(tsNode, NodeTuple)
}

func (b *ASTBuilder) buildBlock(tsNode *sitter.Node) *Node {
	node := b.leafNode(tsNode, NodeBlock)
	node.Body = b.buildStatements(tsNode)
	return node
}

// buildStatements builds all non-trivia named children of a block node
func (b *ASTBuilder) buildStatements(tsNode *sitter.Node) []*Node {
	var stmts []*Node
	for i := 0; i < int(tsNode.NamedChildCount()); i++ {
		child := tsNode.NamedChild(i)
		if child == nil || b.isTrivia(child) {
			continue
		}
		if built := b.buildNode(child); built != nil {
			stmts = append(stmts, built)
		}
	}
	return stmts
}

// buildElseStatements unwraps an else_clause into its block statements
func (b *ASTBuilder) buildElseStatements(tsNode *sitter.Node) []*Node {
	for i := 0; i < int(tsNode.NamedChildCount()); i++ {
		if child := tsNode.NamedChild(i); child != nil && child.Type() == "block" {
			return b.buildStatements(child)
		}
	}
	return b.buildStatements(tsNode)
}

// buildNamedChildren builds each non-trivia named child as a generic list
func (b *ASTBuilder) buildNamedChildren(tsNode *sitter.Node) []*Node {
	var nodes []*Node
	for i := 0; i < int(tsNode.NamedChildCount()); i++ {
		child := tsNode.NamedChild(i)
		if child == nil || b.isTrivia(child) {
			continue
		}
		if built := b.buildNode(child); built != nil {
			nodes = append(nodes, built)
		}
	}
	return nodes
}

// buildGenericNode creates a node of the given type with all named
// children attached, for constructs the analyzers only need to descend
// through
func (b *ASTBuilder) buildGenericNode(tsNode *sitter.Node, nodeType NodeType) *Node {
	node := b.leafNode(tsNode, nodeType)
	for i := 0; i < int(tsNode.NamedChildCount()); i++ {
		child := tsNode.NamedChild(i)
		if child == nil || b.isTrivia(child) {
			continue
		}
		node.AddChild(b.buildNode(child))
	}
	return node
}

func (b *ASTBuilder) childByField(tsNode *sitter.Node, fieldName string) *sitter.Node {
	if tsNode == nil {
		return nil
	}
	return tsNode.ChildByFieldName(fieldName)
}

func (b *ASTBuilder) leafNode(tsNode *sitter.Node, nodeType NodeType) *Node {
	node := NewNode(nodeType)
	node.Location = b.getLocation(tsNode)
	return node
}

func (b *ASTBuilder) getLocation(tsNode *sitter.Node) Location {
	return Location{
		File:      b.filename,
		StartLine: int(tsNode.StartPoint().Row) + 1,
		StartCol:  int(tsNode.StartPoint().Column),
		EndLine:   int(tsNode.EndPoint().Row) + 1,
		EndCol:    int(tsNode.EndPoint().Column),
	}
}

func (b *ASTBuilder) isTrivia(tsNode *sitter.Node) bool {
	return tsNode.Type() == "comment"
}

func (b *ASTBuilder) sameNode(a, c *sitter.Node) bool {
	if a == nil || c == nil {
		return false
	}
	return a.StartByte() == c.StartByte() && a.EndByte() == c.EndByte() && a.Type() == c.Type()
}
