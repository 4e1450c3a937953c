package ast

// Walk visits node and its descendants depth first, parents before children.
// Children of a node are skipped when f returns false for it. Sub-modules and
// functions are visited in name order.
//
// The values passed to f are *Module, Func, Arg, Ident, Item, FullType, Type,
// Block, Statement, Expression and Operator.
func Walk(node interface{}, f func(interface{}) bool) {
	switch n := node.(type) {
	case *Module:
		walkModule(n, f)
	case Func:
		walkFunc(n, f)
	case Block:
		walkBlock(n, f)
	case Statement:
		walkStatement(n, f)
	case Expression:
		walkExpression(n, f)
	case FullType:
		walkFullType(n, f)
	case Type:
		walkType(n, f)
	case Item:
		walkItem(n, f)
	default:
		f(node)
	}
}

func walkModule(module *Module, f func(interface{}) bool) {
	if !f(module) {
		return
	}
	for _, name := range module.FunctionNames() {
		walkFunc(module.Functions[name], f)
	}
	for _, name := range module.SubModuleNames() {
		walkModule(module.SubModules[name], f)
	}
}

func walkFunc(fn Func, f func(interface{}) bool) {
	if !f(fn) {
		return
	}
	f(fn.Name)
	for _, arg := range fn.Args {
		if f(arg) {
			f(arg.Name)
			walkFullType(arg.Type, f)
		}
	}
	walkFullType(fn.Ret, f)
	walkBlock(fn.Body, f)
}

func walkFullType(t FullType, f func(interface{}) bool) {
	if !f(t) {
		return
	}
	switch tt := t.Type.(type) {
	case SingleType:
		walkType(tt.Type, f)
	case TupleType:
		for _, member := range tt.Members {
			walkFullType(member, f)
		}
	}
}

func walkType(t Type, f func(interface{}) bool) {
	if !f(t) {
		return
	}
	walkItem(t.Base, f)
	for _, generic := range t.Generics {
		walkFullType(generic, f)
	}
}

func walkItem(item Item, f func(interface{}) bool) {
	if !f(item) {
		return
	}
	for _, ident := range item.Path {
		f(ident)
	}
}

func walkBlock(block Block, f func(interface{}) bool) {
	if !f(block) {
		return
	}
	for _, statement := range block.Statements {
		walkStatement(statement, f)
	}
}

func walkStatement(statement Statement, f func(interface{}) bool) {
	if !f(statement) {
		return
	}
	switch s := statement.Stmt.(type) {
	case ExprStmt:
		walkExpression(s.Expr, f)
	case VarCreate:
		walkItem(s.Name, f)
		if s.Type != nil {
			walkFullType(*s.Type, f)
		}
		walkExpression(s.Value, f)
	case VarAssign:
		walkItem(s.Name, f)
		if s.Op != nil {
			f(*s.Op)
		}
		walkExpression(s.Value, f)
	}
}

func walkExpression(expression Expression, f func(interface{}) bool) {
	if !f(expression) {
		return
	}
	switch e := expression.Expr.(type) {
	case VariableExpr:
		walkItem(e.Name, f)
	case CallExpr:
		walkItem(e.Func, f)
		for _, arg := range e.Args {
			walkExpression(arg, f)
		}
	case BinaryExpr:
		walkExpression(e.Left, f)
		f(e.Op)
		walkExpression(e.Right, f)
	case UnaryExpr:
		f(e.Op)
		walkExpression(e.Operand, f)
	}
}
