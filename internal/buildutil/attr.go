// Package buildutil provides utilities for extracting attributes from
// buildtools AST nodes.
package buildutil

import (
	"github.com/bazelbuild/buildtools/build"
)

// attr returns the right-hand side of the named keyword argument of call.
func attr(call *build.CallExpr, name string) build.Expr {
	for _, arg := range call.List {
		assign, ok := arg.(*build.AssignExpr)
		if !ok {
			continue
		}
		lhs, ok := assign.LHS.(*build.Ident)
		if !ok || lhs.Name != name {
			continue
		}
		return assign.RHS
	}
	return nil
}

// String extracts a string attribute from a function call by name.
// If name is empty and the call has positional arguments, returns the first
// positional string argument.
// Returns empty string if the attribute is not found or not a string.
func String(call *build.CallExpr, name string) string {
	if name == "" {
		if len(call.List) > 0 {
			if str, ok := call.List[0].(*build.StringExpr); ok {
				return str.Value
			}
		}
		return ""
	}
	if str, ok := attr(call, name).(*build.StringExpr); ok {
		return str.Value
	}
	return ""
}

// StringList extracts a list of strings attribute from a function call by name.
// Returns nil if the attribute is not found or not a list.
// Non-string elements in the list are silently skipped.
func StringList(call *build.CallExpr, name string) []string {
	list, ok := attr(call, name).(*build.ListExpr)
	if !ok {
		return nil
	}
	result := make([]string, 0, len(list.List))
	for _, elem := range list.List {
		if str, ok := elem.(*build.StringExpr); ok {
			result = append(result, str.Value)
		}
	}
	return result
}

// Has reports whether call sets the named keyword argument.
func Has(call *build.CallExpr, name string) bool {
	return attr(call, name) != nil
}

// FuncName returns the function name from a CallExpr.
// Returns empty string if the call is not a simple function call
// (e.g., method calls like foo.bar()).
func FuncName(call *build.CallExpr) string {
	if ident, ok := call.X.(*build.Ident); ok {
		return ident.Name
	}
	return ""
}

// IsFuncCall returns true if the call is for the specified function name.
func IsFuncCall(call *build.CallExpr, name string) bool {
	return FuncName(call) == name
}

// Method splits a method call such as maven.install(...) into its receiver
// identifier and method name. ok is false for any other call shape.
func Method(call *build.CallExpr) (receiver, method string, ok bool) {
	dot, isDot := call.X.(*build.DotExpr)
	if !isDot {
		return "", "", false
	}
	ident, isIdent := dot.X.(*build.Ident)
	if !isIdent {
		return "", "", false
	}
	return ident.Name, dot.Name, true
}

// Assignment returns the variable name and call of a statement such as
// maven = use_extension(...). ok is false for any other statement.
func Assignment(stmt build.Expr) (name string, call *build.CallExpr, ok bool) {
	assign, isAssign := stmt.(*build.AssignExpr)
	if !isAssign {
		return "", nil, false
	}
	lhs, isIdent := assign.LHS.(*build.Ident)
	if !isIdent {
		return "", nil, false
	}
	call, isCall := assign.RHS.(*build.CallExpr)
	if !isCall {
		return "", nil, false
	}
	return lhs.Name, call, true
}
