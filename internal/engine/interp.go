package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Args is the fixed argument tuple a compiled template runs against. The
// sandbox environment contains exactly these seven bindings (the construction
// primitive plus six data groups) and nothing else; none of them is ever nil
// once data has passed through the normalizer.
type Args struct {
	PersonalInfo   map[string]any
	WorkExperience []any
	Education      []any
	Skills         []any
	Projects       []any
	Colors         map[string]any
}

// stepBudget bounds evaluation so a pathological template cannot spin the
// interpreter forever.
var stepBudget = 1_000_000

// ctxCheckInterval controls how often the deadline is polled during eval.
const ctxCheckInterval = 4096

type env struct {
	vars   map[string]any
	parent *env
}

func (e *env) lookup(name string) (any, bool) {
	for s := e; s != nil; s = s.parent {
		if v, ok := s.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// builtinFunc is a host-provided callable exposed inside the sandbox.
type builtinFunc func(args []any) (any, error)

// closure is a template-defined arrow function bound to its defining scope.
type closure struct {
	params []string
	body   Expr
	scope  *env
}

type interp struct {
	ctx   context.Context
	steps int
}

// run evaluates a parsed template body against the sandbox environment built
// from args. The preamble bindings (idx/index placeholders, safeRender,
// String) are installed ahead of the seven arguments, matching what repaired
// code may reference.
func run(ctx context.Context, body Expr, args Args) (result any, err error) {
	it := &interp{ctx: ctx}
	global := &env{vars: map[string]any{
		"React":          map[string]any{"createElement": builtinFunc(createElement)},
		"personalInfo":   args.PersonalInfo,
		"workExperience": args.WorkExperience,
		"education":      args.Education,
		"skills":         args.Skills,
		"projects":       args.Projects,
		"templateColors": args.Colors,
		// preamble: stray loop counters degrade to 0 instead of crashing
		"idx":        float64(0),
		"index":      float64(0),
		"safeRender": builtinFunc(safeRender),
		"String":     builtinFunc(jsStringBuiltin),
	}}
	return it.eval(global, body)
}

func (it *interp) eval(e *env, expr Expr) (any, error) {
	it.steps++
	if it.steps > stepBudget {
		return nil, fmt.Errorf("execution step budget exceeded")
	}
	if it.steps%ctxCheckInterval == 0 {
		select {
		case <-it.ctx.Done():
			return nil, fmt.Errorf("template execution timed out: %w", it.ctx.Err())
		default:
		}
	}
	switch x := expr.(type) {
	case *LitExpr:
		return x.Val, nil
	case *IdentExpr:
		v, ok := e.lookup(x.Name)
		if !ok {
			return nil, fmt.Errorf("%s is not defined", x.Name)
		}
		return v, nil
	case *MemberExpr:
		obj, err := it.eval(e, x.Obj)
		if err != nil {
			return nil, err
		}
		return it.member(obj, x.Prop)
	case *IndexExpr:
		obj, err := it.eval(e, x.Obj)
		if err != nil {
			return nil, err
		}
		idx, err := it.eval(e, x.Index)
		if err != nil {
			return nil, err
		}
		return it.index(obj, idx)
	case *CallExpr:
		callee, err := it.eval(e, x.Callee)
		if err != nil {
			return nil, err
		}
		args := make([]any, len(x.Args))
		for i, a := range x.Args {
			if args[i], err = it.eval(e, a); err != nil {
				return nil, err
			}
		}
		return it.call(callee, args)
	case *ArrowExpr:
		return &closure{params: x.Params, body: x.Body, scope: e}, nil
	case *ObjectExpr:
		m := make(map[string]any, len(x.Keys))
		for i, k := range x.Keys {
			v, err := it.eval(e, x.Vals[i])
			if err != nil {
				return nil, err
			}
			m[k] = v
		}
		return m, nil
	case *ArrayExpr:
		arr := make([]any, len(x.Elems))
		for i, el := range x.Elems {
			v, err := it.eval(e, el)
			if err != nil {
				return nil, err
			}
			arr[i] = v
		}
		return arr, nil
	case *UnaryExpr:
		v, err := it.eval(e, x.X)
		if err != nil {
			return nil, err
		}
		if x.Op == "!" {
			return !truthy(v), nil
		}
		n, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("unary '-' needs a number")
		}
		return -n, nil
	case *BinaryExpr:
		return it.binary(e, x)
	case *CondExpr:
		c, err := it.eval(e, x.Cond)
		if err != nil {
			return nil, err
		}
		if truthy(c) {
			return it.eval(e, x.Then)
		}
		return it.eval(e, x.Else)
	case *TemplateExpr:
		var sb strings.Builder
		for _, part := range x.Parts {
			switch v := part.(type) {
			case string:
				sb.WriteString(v)
			case Expr:
				val, err := it.eval(e, v)
				if err != nil {
					return nil, err
				}
				sb.WriteString(jsString(val))
			}
		}
		return sb.String(), nil
	}
	return nil, fmt.Errorf("unsupported expression %T", expr)
}

func (it *interp) binary(e *env, x *BinaryExpr) (any, error) {
	// short-circuit forms return operand values, like JS
	if x.Op == "||" || x.Op == "&&" {
		l, err := it.eval(e, x.L)
		if err != nil {
			return nil, err
		}
		if x.Op == "||" {
			if truthy(l) {
				return l, nil
			}
			return it.eval(e, x.R)
		}
		if !truthy(l) {
			return l, nil
		}
		return it.eval(e, x.R)
	}
	l, err := it.eval(e, x.L)
	if err != nil {
		return nil, err
	}
	r, err := it.eval(e, x.R)
	if err != nil {
		return nil, err
	}
	switch x.Op {
	case "+":
		if ls, ok := l.(string); ok {
			return ls + jsString(r), nil
		}
		if rs, ok := r.(string); ok {
			return jsString(l) + rs, nil
		}
		ln, lok := l.(float64)
		rn, rok := r.(float64)
		if lok && rok {
			return ln + rn, nil
		}
		return jsString(l) + jsString(r), nil
	case "-", "*", "/", "<", ">", "<=", ">=":
		ln, lok := l.(float64)
		rn, rok := r.(float64)
		if !lok || !rok {
			return nil, fmt.Errorf("operator %q needs numbers", x.Op)
		}
		switch x.Op {
		case "-":
			return ln - rn, nil
		case "*":
			return ln * rn, nil
		case "/":
			return ln / rn, nil
		case "<":
			return ln < rn, nil
		case ">":
			return ln > rn, nil
		case "<=":
			return ln <= rn, nil
		default:
			return ln >= rn, nil
		}
	case "===", "==":
		return looseEqual(l, r), nil
	case "!==", "!=":
		return !looseEqual(l, r), nil
	}
	return nil, fmt.Errorf("unsupported operator %q", x.Op)
}

// looseEqual compares by value for primitives and by reference identity for
// objects, lists and functions. Comparing any mix of types through a bare ==
// would panic on uncomparable dynamic types, so the kinds are checked first.
func looseEqual(l, r any) bool {
	if l == nil || r == nil {
		return l == nil && r == nil
	}
	lv, rv := reflect.ValueOf(l), reflect.ValueOf(r)
	if lv.Kind() != rv.Kind() {
		return false
	}
	switch lv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Func:
		return lv.Pointer() == rv.Pointer()
	}
	return l == r
}

// boundMethod is a list/string method value awaiting invocation.
type boundMethod struct {
	recv any
	name string
	it   *interp
}

func (it *interp) member(obj any, prop string) (any, error) {
	switch v := obj.(type) {
	case map[string]any:
		return v[prop], nil
	case []any:
		switch prop {
		case "length":
			return float64(len(v)), nil
		case "map", "filter", "join", "slice", "includes":
			return &boundMethod{recv: v, name: prop, it: it}, nil
		}
		return nil, fmt.Errorf("lists have no property %q", prop)
	case string:
		switch prop {
		case "length":
			return float64(len(v)), nil
		case "toUpperCase", "toLowerCase", "trim", "split", "slice", "charAt":
			return &boundMethod{recv: v, name: prop, it: it}, nil
		}
		return nil, fmt.Errorf("strings have no property %q", prop)
	case nil:
		return nil, fmt.Errorf("cannot read property %q of null", prop)
	}
	return nil, fmt.Errorf("cannot read property %q of %s", prop, typeName(obj))
}

func (it *interp) index(obj, idx any) (any, error) {
	switch v := obj.(type) {
	case []any:
		n, ok := idx.(float64)
		if !ok {
			return nil, fmt.Errorf("list index must be a number")
		}
		i := int(n)
		if i < 0 || i >= len(v) {
			return nil, nil
		}
		return v[i], nil
	case map[string]any:
		return v[jsString(idx)], nil
	case nil:
		return nil, fmt.Errorf("cannot index null")
	}
	return nil, fmt.Errorf("cannot index %s", typeName(obj))
}

func (it *interp) call(callee any, args []any) (any, error) {
	switch fn := callee.(type) {
	case builtinFunc:
		return fn(args)
	case *closure:
		scope := &env{vars: make(map[string]any, len(fn.params)), parent: fn.scope}
		for i, p := range fn.params {
			if i < len(args) {
				scope.vars[p] = args[i]
			} else {
				scope.vars[p] = nil
			}
		}
		return it.eval(scope, fn.body)
	case *boundMethod:
		return it.callMethod(fn, args)
	case nil:
		return nil, fmt.Errorf("cannot call null")
	}
	return nil, fmt.Errorf("%s is not a function", typeName(callee))
}

func (it *interp) callMethod(m *boundMethod, args []any) (any, error) {
	switch recv := m.recv.(type) {
	case []any:
		switch m.name {
		case "map":
			if len(args) < 1 {
				return nil, fmt.Errorf("map needs a callback")
			}
			out := make([]any, 0, len(recv))
			for i, item := range recv {
				v, err := it.call(args[0], []any{item, float64(i)})
				if err != nil {
					return nil, err
				}
				out = append(out, v)
			}
			return out, nil
		case "filter":
			if len(args) < 1 {
				return nil, fmt.Errorf("filter needs a callback")
			}
			var out []any
			for i, item := range recv {
				v, err := it.call(args[0], []any{item, float64(i)})
				if err != nil {
					return nil, err
				}
				if truthy(v) {
					out = append(out, item)
				}
			}
			return out, nil
		case "join":
			sep := ","
			if len(args) > 0 {
				sep = jsString(args[0])
			}
			parts := make([]string, len(recv))
			for i, item := range recv {
				parts[i] = jsString(item)
			}
			return strings.Join(parts, sep), nil
		case "slice":
			start, end := 0, len(recv)
			if len(args) > 0 {
				start = sliceBound(args[0], len(recv))
			}
			if len(args) > 1 {
				end = sliceBound(args[1], len(recv))
			}
			if start > end {
				start = end
			}
			out := make([]any, end-start)
			copy(out, recv[start:end])
			return out, nil
		case "includes":
			if len(args) < 1 {
				return false, nil
			}
			for _, item := range recv {
				if looseEqual(item, args[0]) {
					return true, nil
				}
			}
			return false, nil
		}
	case string:
		switch m.name {
		case "toUpperCase":
			return strings.ToUpper(recv), nil
		case "toLowerCase":
			return strings.ToLower(recv), nil
		case "trim":
			return strings.TrimSpace(recv), nil
		case "split":
			sep := ""
			if len(args) > 0 {
				sep = jsString(args[0])
			}
			parts := strings.Split(recv, sep)
			out := make([]any, len(parts))
			for i, p := range parts {
				out[i] = p
			}
			return out, nil
		case "slice":
			start, end := 0, len(recv)
			if len(args) > 0 {
				start = sliceBound(args[0], len(recv))
			}
			if len(args) > 1 {
				end = sliceBound(args[1], len(recv))
			}
			if start > end {
				start = end
			}
			return recv[start:end], nil
		case "charAt":
			i := 0
			if len(args) > 0 {
				i = sliceBound(args[0], len(recv))
			}
			if i >= len(recv) {
				return "", nil
			}
			return string(recv[i]), nil
		}
	}
	return nil, fmt.Errorf("unknown method %q", m.name)
}

func sliceBound(v any, length int) int {
	n, ok := v.(float64)
	if !ok {
		return 0
	}
	i := int(n)
	if i < 0 {
		i += length
	}
	if i < 0 {
		i = 0
	}
	if i > length {
		i = length
	}
	return i
}

// createElement is the sole UI-construction primitive inside the sandbox.
func createElement(args []any) (any, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("createElement needs an element type")
	}
	tag, ok := args[0].(string)
	if !ok {
		return nil, fmt.Errorf("element type must be a string, got %s", typeName(args[0]))
	}
	var props map[string]any
	if len(args) > 1 && args[1] != nil {
		props, ok = args[1].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("props must be an object or null, got %s", typeName(args[1]))
		}
	}
	n := &Node{Tag: tag, Props: props}
	if props != nil {
		if k, ok := props["key"]; ok {
			n.Key = jsString(k)
		}
	}
	if len(args) > 2 {
		if err := appendSandboxChildren(n, args[2:]); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// appendSandboxChildren mirrors appendChildren but rejects plain objects the
// way React does, pointing authors at safeRender.
func appendSandboxChildren(n *Node, children []any) error {
	for _, c := range children {
		switch v := c.(type) {
		case nil, bool:
		case *Node:
			n.Children = append(n.Children, v)
		case string:
			n.Children = append(n.Children, v)
		case float64:
			n.Children = append(n.Children, jsString(v))
		case []any:
			if err := appendSandboxChildren(n, v); err != nil {
				return err
			}
		case map[string]any:
			return fmt.Errorf("objects are not valid as a child; wrap the value with safeRender(...)")
		default:
			return fmt.Errorf("%s is not valid as a child", typeName(c))
		}
	}
	return nil
}

// safeRender converts null/undefined to "", objects to JSON text, and passes
// everything else through.
func safeRender(args []any) (any, error) {
	if len(args) == 0 || args[0] == nil {
		return "", nil
	}
	switch v := args[0].(type) {
	case map[string]any, []any:
		b, err := json.Marshal(v)
		if err != nil {
			return "", nil
		}
		return string(b), nil
	default:
		return v, nil
	}
}

func jsStringBuiltin(args []any) (any, error) {
	if len(args) == 0 {
		return "", nil
	}
	return jsString(args[0]), nil
}

// jsString renders a value the way template text expects: numbers without a
// trailing .0, nil as empty, objects as JSON.
func jsString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case map[string]any, []any:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	}
	return true
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "a string"
	case float64:
		return "a number"
	case bool:
		return "a boolean"
	case []any:
		return "a list"
	case map[string]any:
		return "an object"
	case *Node:
		return "an element"
	case *closure, builtinFunc, *boundMethod:
		return "a function"
	}
	return fmt.Sprintf("%T", v)
}
