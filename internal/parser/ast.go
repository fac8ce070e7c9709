package parser

import "fmt"

// NodeType represents the type of AST node
type NodeType string

// Python AST node types
const (
	// Module structure
	NodeModule NodeType = "Module"

	// Definitions
	NodeFunctionDef      NodeType = "FunctionDef"
	NodeAsyncFunctionDef NodeType = "AsyncFunctionDef"
	NodeClassDef         NodeType = "ClassDef"
	NodeLambda           NodeType = "Lambda"

	// Imports
	NodeImport     NodeType = "Import"
	NodeImportFrom NodeType = "ImportFrom"

	// Control flow statements
	NodeIf       NodeType = "If"
	NodeFor      NodeType = "For"
	NodeWhile    NodeType = "While"
	NodeWith     NodeType = "With"
	NodeTry      NodeType = "Try"
	NodeExcept   NodeType = "ExceptHandler"
	NodeReturn   NodeType = "Return"
	NodeRaise    NodeType = "Raise"
	NodeBreak    NodeType = "Break"
	NodeContinue NodeType = "Continue"
	NodePass     NodeType = "Pass"
	NodeAssert   NodeType = "Assert"
	NodeGlobal   NodeType = "Global"
	NodeNonlocal NodeType = "Nonlocal"
	NodeDelete   NodeType = "Delete"

	// Assignment statements
	NodeAssign    NodeType = "Assign"
	NodeAugAssign NodeType = "AugAssign"
	NodeAnnAssign NodeType = "AnnAssign"

	// Expressions
	NodeExpressionStatement NodeType = "ExpressionStatement"
	NodeCall                NodeType = "Call"
	NodeAttribute           NodeType = "Attribute"
	NodeSubscript           NodeType = "Subscript"
	NodeName                NodeType = "Name"
	NodeConstant            NodeType = "Constant"
	NodeCompare             NodeType = "Compare"
	NodeBinOp               NodeType = "BinOp"
	NodeUnaryOp             NodeType = "UnaryOp"
	NodeBoolOp              NodeType = "BoolOp"
	NodeConditionalExpr     NodeType = "ConditionalExpr"
	NodeKeyword             NodeType = "Keyword"
	NodeStarred             NodeType = "Starred"
	NodeAwait               NodeType = "Await"
	NodeYield               NodeType = "Yield"
	NodeFString             NodeType = "FString"

	// Comprehensions
	NodeListComp     NodeType = "ListComp"
	NodeSetComp      NodeType = "SetComp"
	NodeDictComp     NodeType = "DictComp"
	NodeGeneratorExp NodeType = "GeneratorExp"

	// Containers
	NodeList  NodeType = "List"
	NodeTuple NodeType = "Tuple"
	NodeDict  NodeType = "Dict"
	NodeSet   NodeType = "Set"

	// Structural
	NodeBlock NodeType = "Block"
)

// Location represents the position of a node in the source code
type Location struct {
	File      string
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

// String returns a string representation of the location
func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.StartLine, l.StartCol)
}

// ImportedName is a single binding introduced by an import statement
type ImportedName struct {
	// Name is the dotted module or symbol name as written
	Name string

	// Alias is the local alias, empty when the name is bound directly
	Alias string

	// Line is the 1-based source line of the binding
	Line int
}

// Local returns the identifier the import binds in module scope.
// "import os.path" binds "os"; "import numpy as np" binds "np";
// "from x import y" binds "y".
func (n ImportedName) Local() string {
	if n.Alias != "" {
		return n.Alias
	}
	for i := 0; i < len(n.Name); i++ {
		if n.Name[i] == '.' {
			return n.Name[:i]
		}
	}
	return n.Name
}

// Node represents a Python AST node
type Node struct {
	Type     NodeType
	Children []*Node
	Location Location
	Parent   *Node

	// Name holds identifier text for definitions and Name nodes
	Name string

	// Function/class fields
	Params []*Node
	Body   []*Node

	// Control flow fields
	Test      *Node   // condition for if/while, ternary test
	OrElse    []*Node // else branch (if/for/while/try)
	Handlers  []*Node // except clauses
	FinalBody []*Node // finally block

	// Assignment and loop fields
	Target *Node // assignment target, for-loop variable
	Value  *Node // assigned value, returned value, wrapped expression
	Iter   *Node // for-loop iterable

	// Expression fields
	Operator  string
	Left      *Node
	Right     *Node
	Func      *Node   // callee of a Call
	Arguments []*Node // positional call arguments
	Keywords  []*Node // keyword call arguments

	// Attribute fields
	Object *Node  // value of an attribute access
	Attr   string // attribute name

	// Import fields
	Module string         // source module of a from-import
	Names  []ImportedName // bound names (imports, global, nonlocal)

	// Raw holds literal source text for constants
	Raw string
}

// NewNode creates a new AST node
func NewNode(nodeType NodeType) *Node {
	return &Node{Type: nodeType}
}

// AddChild adds a child node
func (n *Node) AddChild(child *Node) {
	if child == nil {
		return
	}
	child.Parent = n
	n.Children = append(n.Children, child)
}

// Walk traverses the AST depth-first and calls the visitor for each node.
// If the visitor returns false, traversal of that branch is stopped.
func (n *Node) Walk(visitor func(*Node) bool) {
	if n == nil {
		return
	}

	if !visitor(n) {
		return
	}

	for _, child := range n.Children {
		child.Walk(visitor)
	}
	for _, param := range n.Params {
		param.Walk(visitor)
	}
	for _, stmt := range n.Body {
		stmt.Walk(visitor)
	}
	for _, clause := range n.OrElse {
		clause.Walk(visitor)
	}
	for _, handler := range n.Handlers {
		handler.Walk(visitor)
	}
	for _, stmt := range n.FinalBody {
		stmt.Walk(visitor)
	}
	for _, arg := range n.Arguments {
		arg.Walk(visitor)
	}
	for _, kw := range n.Keywords {
		kw.Walk(visitor)
	}

	if n.Test != nil {
		n.Test.Walk(visitor)
	}
	if n.Target != nil {
		n.Target.Walk(visitor)
	}
	if n.Value != nil {
		n.Value.Walk(visitor)
	}
	if n.Iter != nil {
		n.Iter.Walk(visitor)
	}
	if n.Left != nil {
		n.Left.Walk(visitor)
	}
	if n.Right != nil {
		n.Right.Walk(visitor)
	}
	if n.Func != nil {
		n.Func.Walk(visitor)
	}
	if n.Object != nil {
		n.Object.Walk(visitor)
	}
}

// String returns a string representation of the node
func (n *Node) String() string {
	if n.Name != "" {
		return fmt.Sprintf("%s(%s) at %s", n.Type, n.Name, n.Location)
	}
	return fmt.Sprintf("%s at %s", n.Type, n.Location)
}

// IsFunction returns true for function definitions
func (n *Node) IsFunction() bool {
	switch n.Type {
	case NodeFunctionDef, NodeAsyncFunctionDef, NodeLambda:
		return true
	}
	return false
}

// IsLoop returns true for loop statements
func (n *Node) IsLoop() bool {
	return n.Type == NodeFor || n.Type == NodeWhile
}

// IsCompoundBlock reports whether the node opens a nested block for
// nesting-depth accounting: conditionals, loops, function bodies, try
// statements, and with blocks.
func (n *Node) IsCompoundBlock() bool {
	switch n.Type {
	case NodeIf, NodeFor, NodeWhile, NodeTry, NodeWith,
		NodeFunctionDef, NodeAsyncFunctionDef:
		return true
	}
	return false
}

// DottedPath returns the textual dotted path of an attribute or name chain
// ("self.cache.items") and true when the node is such a chain. Chains that
// contain calls, subscripts, or other expressions return false.
func (n *Node) DottedPath() (string, bool) {
	switch n.Type {
	case NodeName:
		return n.Name, true
	case NodeAttribute:
		if n.Object == nil {
			return "", false
		}
		base, ok := n.Object.DottedPath()
		if !ok {
			return "", false
		}
		return base + "." + n.Attr, true
	}
	return "", false
}

// IsStringLiteral reports whether the node is a string constant
func (n *Node) IsStringLiteral() bool {
	if n.Type != NodeConstant || n.Raw == "" {
		return false
	}
	for i := 0; i < len(n.Raw); i++ {
		switch n.Raw[i] {
		case '\'', '"':
			return true
		case 'r', 'b', 'u', 'f', 'R', 'B', 'U', 'F':
			// string prefix characters
		default:
			return false
		}
	}
	return false
}
