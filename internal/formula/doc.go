// Package formula parses the query language into an abstract syntax tree.
//
// A query declares one primary variable followed by a formula:
//
//	x. body(x) and exists y. connecting(x, y) and y.0 > 3
//
// GRAMMAR:
//
//	Query      := Var "." Formula
//	Formula    := Iff
//	Iff        := Implies ("<->" Implies)*
//	Implies    := Or ("->" Or)*
//	Or         := And ("or" And)*
//	And        := Unary ("and" Unary)*
//	Unary      := "not" Unary
//	            | "exists" Var "." Formula
//	            | "forall" Var "." Formula
//	            | "connects" Var "->" Var "." Formula
//	            | "(" Formula ")"
//	            | Predicate
//	Predicate  := ClassPred "(" Var ")"
//	            | "type" "(" Var "," Literal ")"
//	            | "connecting" "(" Var "," Var ")"
//	            | Var "=" Var
//	            | Var "." Int ("=" | "<" | ">") Literal
//	ClassPred  := "body" | "forceElement" | "constraint" | "connection" | "joint"
//	Literal    := String | Number
//
// Chains of the same connective flatten into one n-ary node. Quantifier
// bodies extend as far to the right as possible. Keywords are reserved and
// cannot be used as variable names.
//
// SEALED INTERFACES:
//
// Formula and Literal are sealed using the marker method pattern, so
// evaluators can switch exhaustively over the node types in this package:
//
//	switch f := f.(type) {
//	case *And:
//	case *Exists:
//	...
//	}
//
// The parser performs no semantic checks. Unbound variables and type
// mismatches are evaluation-time concerns; Analyze reports them statically
// for diagnostics only.
package formula
