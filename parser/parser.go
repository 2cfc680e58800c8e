// Package parser turns ZOMBIE scroll source text into a *scroll.Scroll,
// returning a descriptive error on malformed input. It is a hand-rolled
// recursive-descent parser over the lexer's token
// stream; the whole stream is lexed up front so that entity and task
// bodies can be delimited by scanning ahead for their terminating
// keyword rather than by tracking nesting state while descending.
package parser

import (
	"fmt"

	"zombie/lexer"
	"zombie/scroll"
	"zombie/value"
)

// Error reports a syntax error at a source position.
type Error struct {
	Pos lexer.Position
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("parse error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Msg)
}

// Parse parses a complete scroll from source text.
func Parse(code string) (*scroll.Scroll, error) {
	p := &parser{tokens: tokenize(code)}
	s := scroll.New()
	for p.cur().Kind != lexer.EOF {
		e, err := p.parseEntity()
		if err != nil {
			return nil, err
		}
		s.Add(e)
	}
	return s, nil
}

func tokenize(code string) []lexer.Token {
	l := lexer.New(code)
	var toks []lexer.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Kind == lexer.EOF {
			return toks
		}
	}
}

type parser struct {
	tokens []lexer.Token
	pos    int
}

func (p *parser) cur() lexer.Token {
	return p.tokens[p.pos]
}

func (p *parser) advance() lexer.Token {
	t := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

func (p *parser) errf(format string, args ...any) error {
	return &Error{Pos: p.cur().Position, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) expect(k lexer.Kind) (lexer.Token, error) {
	if p.cur().Kind != k {
		return lexer.Token{}, p.errf("unexpected token %q", p.cur().Literal)
	}
	return p.advance(), nil
}

// findFrom returns the index of the next token of one of the given kinds,
// searching [from, limit). limit may exceed len(tokens); it is clamped.
func (p *parser) findFrom(from, limit int, kinds ...lexer.Kind) int {
	if limit > len(p.tokens) {
		limit = len(p.tokens)
	}
	for i := from; i < limit; i++ {
		for _, k := range kinds {
			if p.tokens[i].Kind == k {
				return i
			}
		}
	}
	return -1
}

// eofIndex is the position of the terminal EOF token.
func (p *parser) eofIndex() int {
	return len(p.tokens) - 1
}

func (p *parser) parseEntity() (*scroll.Entity, error) {
	name, err := p.expect(lexer.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.IS); err != nil {
		return nil, err
	}
	if p.cur().Kind != lexer.A && p.cur().Kind != lexer.AN {
		return nil, p.errf("expected 'a' or 'an', got %q", p.cur().Literal)
	}
	p.advance()
	species, err := p.parseSpecies()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.SUMMON); err != nil {
		return nil, err
	}

	// The next entity, if any, begins at the identifier just before the
	// next "is" keyword; this entity's terminator sits right before that.
	boundary := p.eofIndex() - 1
	if isIdx := p.findFrom(p.pos, len(p.tokens), lexer.IS); isIdx != -1 {
		boundary = isIdx - 2
	}

	e := &scroll.Entity{
		Name:          name.Literal,
		Species:       species,
		InitialMemory: value.Void{},
		Tasks:         make(map[string]*scroll.Task),
	}
	for p.pos < boundary {
		switch p.cur().Kind {
		case lexer.TASK:
			t, err := p.parseTask(boundary)
			if err != nil {
				return nil, err
			}
			e.TaskOrder = append(e.TaskOrder, t.Name)
			e.Tasks[t.Name] = t
		case lexer.REMEMBER:
			p.advance()
			v, err := p.parseValueLiteral()
			if err != nil {
				return nil, err
			}
			e.InitialMemory = v
		default:
			return nil, p.errf("expected task or remember in entity body, got %q", p.cur().Literal)
		}
	}
	if p.pos != boundary {
		return nil, p.errf("malformed entity body for %s", name.Literal)
	}
	term := p.cur()
	if term.Kind != lexer.ANIMATE && term.Kind != lexer.BIND && term.Kind != lexer.DISTURB {
		return nil, p.errf("expected animate/bind/disturb to close entity %s, got %q", name.Literal, term.Literal)
	}
	p.advance()
	e.InitiallyActive = entityActive(species, term.Kind)
	return e, nil
}

func (p *parser) parseSpecies() (scroll.Species, error) {
	switch p.cur().Kind {
	case lexer.ZOMBIE:
		p.advance()
		return scroll.Zombie, nil
	case lexer.GHOST:
		p.advance()
		return scroll.Ghost, nil
	case lexer.VAMPIRE:
		p.advance()
		return scroll.Vampire, nil
	case lexer.DEMON:
		p.advance()
		return scroll.Demon, nil
	case lexer.DJINN:
		p.advance()
		return scroll.Djinn, nil
	case lexer.ENSLAVED:
		p.advance()
		if _, err := p.expect(lexer.UNDEAD); err != nil {
			return 0, err
		}
		return scroll.Zombie, nil
	case lexer.RESTLESS:
		p.advance()
		if _, err := p.expect(lexer.UNDEAD); err != nil {
			return 0, err
		}
		return scroll.Ghost, nil
	case lexer.FREEWILLED:
		p.advance()
		if _, err := p.expect(lexer.UNDEAD); err != nil {
			return 0, err
		}
		return scroll.Vampire, nil
	default:
		return 0, p.errf("expected a species name, got %q", p.cur().Literal)
	}
}

// entityActive reports whether the closing spell leaves an entity of
// the given species initially active.
func entityActive(species scroll.Species, term lexer.Kind) bool {
	switch species {
	case scroll.Zombie:
		return term == lexer.ANIMATE
	case scroll.Ghost:
		return term == lexer.DISTURB
	default: // Vampire, Demon, Djinn are active under all three spells
		return true
	}
}

func (p *parser) parseTask(entityBoundary int) (*scroll.Task, error) {
	if _, err := p.expect(lexer.TASK); err != nil {
		return nil, err
	}
	name, err := p.expect(lexer.IDENT)
	if err != nil {
		return nil, err
	}

	boundary := entityBoundary - 1
	if taskIdx := p.findFrom(p.pos, entityBoundary, lexer.TASK); taskIdx != -1 {
		boundary = taskIdx - 1
	}

	var stmts []scroll.Stmt
	for p.pos < boundary {
		s, err := p.parseStmt(boundary)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	if p.pos != boundary {
		return nil, p.errf("malformed task body for %s", name.Literal)
	}
	term := p.cur()
	if term.Kind != lexer.ANIMATE && term.Kind != lexer.BIND {
		return nil, p.errf("expected animate/bind to close task %s, got %q", name.Literal, term.Literal)
	}
	p.advance()
	return &scroll.Task{
		Name:            name.Literal,
		InitiallyActive: term.Kind == lexer.ANIMATE,
		Statements:      stmts,
	}, nil
}

// maybeTarget consumes a leading identifier as an explicit target, or
// leaves the cursor untouched and returns "" (self) when absent.
func (p *parser) maybeTarget() string {
	if p.cur().Kind == lexer.IDENT {
		name := p.cur().Literal
		p.advance()
		return name
	}
	return ""
}

func isExprStart(k lexer.Kind) bool {
	switch k {
	case lexer.MOAN, lexer.REMEMBERING, lexer.REND, lexer.TURN, lexer.INT, lexer.STRING:
		return true
	default:
		return false
	}
}

func (p *parser) parseStmt(limit int) (scroll.Stmt, error) {
	switch p.cur().Kind {
	case lexer.ANIMATE:
		p.advance()
		return scroll.Stmt{Kind: scroll.StmtAnimate, Target: p.maybeTarget()}, nil
	case lexer.DISTURB:
		p.advance()
		return scroll.Stmt{Kind: scroll.StmtDisturb, Target: p.maybeTarget()}, nil
	case lexer.BANISH:
		p.advance()
		return scroll.Stmt{Kind: scroll.StmtBanish, Target: p.maybeTarget()}, nil
	case lexer.FORGET:
		p.advance()
		return scroll.Stmt{Kind: scroll.StmtForget, Target: p.maybeTarget()}, nil
	case lexer.INVOKE:
		p.advance()
		return scroll.Stmt{Kind: scroll.StmtInvoke, Target: p.maybeTarget()}, nil
	case lexer.REMEMBER:
		p.advance()
		target := p.maybeTarget()
		exprs, err := p.parseExprList(limit)
		if err != nil {
			return scroll.Stmt{}, err
		}
		return scroll.Stmt{Kind: scroll.StmtRemember, Target: target, Exprs: exprs}, nil
	case lexer.SAY:
		p.advance()
		target := p.maybeTarget()
		exprs, err := p.parseExprList(limit)
		if err != nil {
			return scroll.Stmt{}, err
		}
		return scroll.Stmt{Kind: scroll.StmtSay, Target: target, Exprs: exprs}, nil
	case lexer.STUMBLE:
		p.advance()
		return scroll.Stmt{Kind: scroll.StmtStumble}, nil
	case lexer.SHAMBLE:
		return p.parseShamble(limit)
	case lexer.TASTE:
		return p.parseTaste(limit)
	default:
		return scroll.Stmt{}, p.errf("unexpected token %q in statement position", p.cur().Literal)
	}
}

func (p *parser) parseExprList(limit int) ([]scroll.Expr, error) {
	var exprs []scroll.Expr
	for p.pos < limit && isExprStart(p.cur().Kind) {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
	}
	if len(exprs) == 0 {
		return nil, p.errf("expected at least one expression, got %q", p.cur().Literal)
	}
	return exprs, nil
}

func (p *parser) parseExpr() (scroll.Expr, error) {
	switch p.cur().Kind {
	case lexer.MOAN:
		p.advance()
		return scroll.Expr{Kind: scroll.ExprMoan, Target: p.maybeTarget()}, nil
	case lexer.REMEMBERING:
		p.advance()
		target := p.maybeTarget()
		v, err := p.parseValueLiteral()
		if err != nil {
			return scroll.Expr{}, err
		}
		return scroll.Expr{Kind: scroll.ExprRemembering, Target: target, Value: v}, nil
	case lexer.REND:
		p.advance()
		return scroll.Expr{Kind: scroll.ExprRend}, nil
	case lexer.TURN:
		p.advance()
		return scroll.Expr{Kind: scroll.ExprTurn}, nil
	case lexer.INT, lexer.STRING:
		v, err := p.parseValueLiteral()
		if err != nil {
			return scroll.Expr{}, err
		}
		return scroll.Expr{Kind: scroll.ExprValue, Value: v}, nil
	default:
		return scroll.Expr{}, p.errf("expected an expression, got %q", p.cur().Literal)
	}
}

func (p *parser) parseValueLiteral() (value.Value, error) {
	switch p.cur().Kind {
	case lexer.INT:
		lit := p.advance().Literal
		n, ok := value.ParseInteger(lit)
		if !ok {
			return nil, p.errf("invalid integer literal %q", lit)
		}
		return n, nil
	case lexer.STRING:
		return value.NewString(p.advance().Literal), nil
	default:
		return nil, p.errf("expected a value literal, got %q", p.cur().Literal)
	}
}

// parseShamble handles both ShambleAround and ShambleUntil. Like the
// source grammar it does not track nesting while scanning for the
// closing keyword: a shamble block containing another shamble/taste of
// the same kind of terminator is not supported.
func (p *parser) parseShamble(limit int) (scroll.Stmt, error) {
	p.advance() // consume "shamble"
	termIdx := p.findFrom(p.pos, limit, lexer.AROUND, lexer.UNTIL)
	if termIdx == -1 {
		return scroll.Stmt{}, p.errf("shamble block never closed with around/until")
	}
	var body []scroll.Stmt
	for p.pos < termIdx {
		s, err := p.parseStmt(termIdx)
		if err != nil {
			return scroll.Stmt{}, err
		}
		body = append(body, s)
	}
	term := p.advance()
	if term.Kind == lexer.AROUND {
		return scroll.Stmt{Kind: scroll.StmtShambleAround, Body: body}, nil
	}
	cond, err := p.parseExpr()
	if err != nil {
		return scroll.Stmt{}, err
	}
	return scroll.Stmt{Kind: scroll.StmtShambleUntil, Cond: []scroll.Expr{cond}, Then: body}, nil
}

func (p *parser) parseTaste(limit int) (scroll.Stmt, error) {
	p.advance() // consume "taste"
	cond, err := p.parseExpr()
	if err != nil {
		return scroll.Stmt{}, err
	}
	if _, err := p.expect(lexer.GOOD); err != nil {
		return scroll.Stmt{}, err
	}
	badIdx := p.findFrom(p.pos, limit, lexer.BAD)
	if badIdx == -1 {
		return scroll.Stmt{}, p.errf("taste block missing bad")
	}
	var thenStmts []scroll.Stmt
	for p.pos < badIdx {
		s, err := p.parseStmt(badIdx)
		if err != nil {
			return scroll.Stmt{}, err
		}
		thenStmts = append(thenStmts, s)
	}
	p.advance() // consume "bad"

	spitIdx := p.findFrom(p.pos, limit, lexer.SPIT)
	if spitIdx == -1 {
		return scroll.Stmt{}, p.errf("taste block missing spit")
	}
	var elseStmts []scroll.Stmt
	for p.pos < spitIdx {
		s, err := p.parseStmt(spitIdx)
		if err != nil {
			return scroll.Stmt{}, err
		}
		elseStmts = append(elseStmts, s)
	}
	p.advance() // consume "spit"

	return scroll.Stmt{Kind: scroll.StmtTaste, Cond: []scroll.Expr{cond}, Then: thenStmts, Else: elseStmts}, nil
}
