package engine

import (
	"fmt"
	"strconv"
)

// Expression tree for the restricted template language. Templates are a
// single expression with an implicit (or explicit) return.
type Expr interface{ exprNode() }

type (
	LitExpr struct{ Val any }

	IdentExpr struct{ Name string }

	MemberExpr struct {
		Obj  Expr
		Prop string
	}

	IndexExpr struct {
		Obj   Expr
		Index Expr
	}

	CallExpr struct {
		Callee Expr
		Args   []Expr
	}

	ArrowExpr struct {
		Params []string
		Body   Expr
	}

	ObjectExpr struct {
		Keys []string
		Vals []Expr
	}

	ArrayExpr struct{ Elems []Expr }

	BinaryExpr struct {
		Op   string
		L, R Expr
	}

	UnaryExpr struct {
		Op string
		X  Expr
	}

	CondExpr struct {
		Cond, Then, Else Expr
	}

	TemplateExpr struct {
		// elements are string (literal text) or Expr (interpolation)
		Parts []any
	}
)

func (*LitExpr) exprNode()      {}
func (*IdentExpr) exprNode()    {}
func (*MemberExpr) exprNode()   {}
func (*IndexExpr) exprNode()    {}
func (*CallExpr) exprNode()     {}
func (*ArrowExpr) exprNode()    {}
func (*ObjectExpr) exprNode()   {}
func (*ArrayExpr) exprNode()    {}
func (*BinaryExpr) exprNode()   {}
func (*UnaryExpr) exprNode()    {}
func (*CondExpr) exprNode()     {}
func (*TemplateExpr) exprNode() {}

type parser struct {
	toks []token
	pos  int
}

// Parse compiles template source into an expression tree. A leading "return"
// keyword and a trailing semicolon are accepted and ignored.
func Parse(src string) (Expr, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	if p.cur().kind == tokIdent && p.cur().text == "return" {
		p.pos++
	}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.cur().kind == tokPunct && p.cur().text == ";" {
		p.pos++
	}
	if p.cur().kind != tokEOF {
		return nil, fmt.Errorf("unexpected %q at position %d", p.cur().text, p.cur().pos)
	}
	return expr, nil
}

func (p *parser) cur() token { return p.toks[p.pos] }

func (p *parser) peek() token {
	if p.pos+1 < len(p.toks) {
		return p.toks[p.pos+1]
	}
	return p.toks[len(p.toks)-1]
}

func (p *parser) isPunct(text string) bool {
	return p.cur().kind == tokPunct && p.cur().text == text
}

func (p *parser) expect(text string) error {
	if !p.isPunct(text) {
		return fmt.Errorf("expected %q but found %q at position %d", text, p.cur().text, p.cur().pos)
	}
	p.pos++
	return nil
}

func (p *parser) parseExpr() (Expr, error) { return p.parseCond() }

func (p *parser) parseCond() (Expr, error) {
	cond, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if !p.isPunct("?") {
		return cond, nil
	}
	p.pos++
	then, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(":"); err != nil {
		return nil, err
	}
	alt, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &CondExpr{Cond: cond, Then: then, Else: alt}, nil
}

func (p *parser) parseOr() (Expr, error) {
	return p.parseBinaryLevel([]string{"||"}, p.parseAnd)
}

func (p *parser) parseAnd() (Expr, error) {
	return p.parseBinaryLevel([]string{"&&"}, p.parseEquality)
}

func (p *parser) parseEquality() (Expr, error) {
	return p.parseBinaryLevel([]string{"===", "!==", "==", "!="}, p.parseComparison)
}

func (p *parser) parseComparison() (Expr, error) {
	return p.parseBinaryLevel([]string{"<", ">", "<=", ">="}, p.parseAdditive)
}

func (p *parser) parseAdditive() (Expr, error) {
	return p.parseBinaryLevel([]string{"+", "-"}, p.parseMultiplicative)
}

func (p *parser) parseMultiplicative() (Expr, error) {
	return p.parseBinaryLevel([]string{"*", "/"}, p.parseUnary)
}

func (p *parser) parseBinaryLevel(ops []string, next func() (Expr, error)) (Expr, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for {
		matched := ""
		for _, op := range ops {
			if p.isPunct(op) {
				matched = op
				break
			}
		}
		if matched == "" {
			return left, nil
		}
		p.pos++
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: matched, L: left, R: right}
	}
}

func (p *parser) parseUnary() (Expr, error) {
	if p.isPunct("!") || p.isPunct("-") {
		op := p.cur().text
		p.pos++
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: op, X: x}, nil
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() (Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.isPunct("."):
			p.pos++
			if p.cur().kind != tokIdent {
				return nil, fmt.Errorf("expected property name after '.' at position %d", p.cur().pos)
			}
			expr = &MemberExpr{Obj: expr, Prop: p.cur().text}
			p.pos++
		case p.isPunct("("):
			p.pos++
			var args []Expr
			for !p.isPunct(")") {
				arg, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
				if p.isPunct(",") {
					p.pos++
					continue
				}
				break
			}
			if err := p.expect(")"); err != nil {
				return nil, err
			}
			expr = &CallExpr{Callee: expr, Args: args}
		case p.isPunct("["):
			p.pos++
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if err := p.expect("]"); err != nil {
				return nil, err
			}
			expr = &IndexExpr{Obj: expr, Index: idx}
		default:
			return expr, nil
		}
	}
}

func (p *parser) parsePrimary() (Expr, error) {
	tok := p.cur()
	switch tok.kind {
	case tokNumber:
		p.pos++
		n, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q at position %d", tok.text, tok.pos)
		}
		return &LitExpr{Val: n}, nil
	case tokString:
		p.pos++
		return &LitExpr{Val: tok.text}, nil
	case tokTemplate:
		p.pos++
		return p.buildTemplate(tok)
	case tokIdent:
		switch tok.text {
		case "null", "undefined":
			p.pos++
			return &LitExpr{Val: nil}, nil
		case "true":
			p.pos++
			return &LitExpr{Val: true}, nil
		case "false":
			p.pos++
			return &LitExpr{Val: false}, nil
		}
		// single-parameter arrow: x => expr
		if p.peek().kind == tokPunct && p.peek().text == "=>" {
			p.pos += 2
			body, err := p.parseArrowBody()
			if err != nil {
				return nil, err
			}
			return &ArrowExpr{Params: []string{tok.text}, Body: body}, nil
		}
		p.pos++
		return &IdentExpr{Name: tok.text}, nil
	case tokPunct:
		switch tok.text {
		case "(":
			if p.looksLikeArrow() {
				return p.parseParenArrow()
			}
			p.pos++
			inner, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if err := p.expect(")"); err != nil {
				return nil, err
			}
			return inner, nil
		case "{":
			return p.parseObject()
		case "[":
			return p.parseArray()
		}
	}
	return nil, fmt.Errorf("unexpected %q at position %d", tok.text, tok.pos)
}

// looksLikeArrow scans past the matching ')' for a following '=>'.
func (p *parser) looksLikeArrow() bool {
	depth := 0
	for i := p.pos; i < len(p.toks); i++ {
		t := p.toks[i]
		if t.kind != tokPunct {
			continue
		}
		switch t.text {
		case "(", "[", "{":
			depth++
		case ")", "]", "}":
			depth--
			if depth == 0 {
				return i+1 < len(p.toks) && p.toks[i+1].kind == tokPunct && p.toks[i+1].text == "=>"
			}
		}
	}
	return false
}

func (p *parser) parseParenArrow() (Expr, error) {
	p.pos++ // '('
	var params []string
	for !p.isPunct(")") {
		if p.cur().kind != tokIdent {
			return nil, fmt.Errorf("expected parameter name at position %d", p.cur().pos)
		}
		params = append(params, p.cur().text)
		p.pos++
		if p.isPunct(",") {
			p.pos++
		}
	}
	p.pos++ // ')'
	if err := p.expect("=>"); err != nil {
		return nil, err
	}
	body, err := p.parseArrowBody()
	if err != nil {
		return nil, err
	}
	return &ArrowExpr{Params: params, Body: body}, nil
}

// parseArrowBody accepts either an expression body or a { return expr; } block.
func (p *parser) parseArrowBody() (Expr, error) {
	if p.isPunct("{") && p.peek().kind == tokIdent && p.peek().text == "return" {
		p.pos += 2
		body, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.isPunct(";") {
			p.pos++
		}
		if err := p.expect("}"); err != nil {
			return nil, err
		}
		return body, nil
	}
	return p.parseExpr()
}

func (p *parser) parseObject() (Expr, error) {
	p.pos++ // '{'
	obj := &ObjectExpr{}
	for !p.isPunct("}") {
		var key string
		switch p.cur().kind {
		case tokIdent, tokString, tokNumber:
			key = p.cur().text
		default:
			return nil, fmt.Errorf("expected object key at position %d", p.cur().pos)
		}
		p.pos++
		if p.isPunct(":") {
			p.pos++
			val, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			obj.Keys = append(obj.Keys, key)
			obj.Vals = append(obj.Vals, val)
		} else {
			// shorthand {name}
			obj.Keys = append(obj.Keys, key)
			obj.Vals = append(obj.Vals, &IdentExpr{Name: key})
		}
		if p.isPunct(",") {
			p.pos++
		}
	}
	p.pos++ // '}'
	return obj, nil
}

func (p *parser) parseArray() (Expr, error) {
	p.pos++ // '['
	arr := &ArrayExpr{}
	for !p.isPunct("]") {
		el, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		arr.Elems = append(arr.Elems, el)
		if p.isPunct(",") {
			p.pos++
		}
	}
	p.pos++ // ']'
	return arr, nil
}

func (p *parser) buildTemplate(tok token) (Expr, error) {
	t := &TemplateExpr{}
	for _, part := range tok.parts {
		if !part.isExpr {
			t.Parts = append(t.Parts, part.text)
			continue
		}
		sub, err := Parse(part.exprSrc)
		if err != nil {
			return nil, fmt.Errorf("in template interpolation: %v", err)
		}
		t.Parts = append(t.Parts, sub)
	}
	return t, nil
}
