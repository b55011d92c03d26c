// Package parser implements the per-statement parsers of spec §4.N: a
// recursive-descent parser over the lexer's token stream that produces
// a typed ast statement struct (DDL/DML) or an *ast.SelectStatement the
// planner compiles into a query_plan. Operator precedence for scalar
// expressions and conditions follows a small Pratt table, the way the
// teacher's T-SQL parser drives expression parsing, scoped down to the
// grammar of §6.A.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gatedb/gatedb/ast"
	"github.com/gatedb/gatedb/gateerr"
	"github.com/gatedb/gatedb/lexer"
	"github.com/gatedb/gatedb/token"
	"github.com/gatedb/gatedb/value"
)

// Parser consumes a flat token slice (as produced by lexer.Tokenize)
// one statement at a time.
type Parser struct {
	toks []token.Token
	pos  int
}

// New returns a Parser over toks.
func New(toks []token.Token) *Parser {
	return &Parser{toks: toks}
}

// Parse tokenizes sql and parses exactly one statement from it.
func Parse(sql string) (any, error) {
	toks, err := lexer.Tokenize(sql)
	if err != nil {
		return nil, &gateerr.ParseError{Message: err.Error()}
	}
	p := New(toks)
	return p.ParseStatement()
}

func (p *Parser) cur() token.Token {
	if p.pos >= len(p.toks) {
		return token.Token{Type: token.EOF}
	}
	return p.toks[p.pos]
}

func (p *Parser) peek(off int) token.Token {
	i := p.pos + off
	if i >= len(p.toks) {
		return token.Token{Type: token.EOF}
	}
	return p.toks[i]
}

func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *Parser) isKeyword(kw string) bool {
	t := p.cur()
	if kw == "NULL" && t.Type == token.NULL {
		return true
	}
	return t.Type == token.KEYWORD && t.Lit == kw
}

func (p *Parser) isSymbol(sym string) bool {
	t := p.cur()
	return (t.Type == token.SYMBOL || t.Type == token.OPERATOR) && t.Lit == sym
}

func (p *Parser) eatKeyword(kw string) bool {
	if p.isKeyword(kw) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expectKeyword(kw string) error {
	if !p.eatKeyword(kw) {
		return p.errorf("expected %s, got %q", kw, p.cur().Lit)
	}
	return nil
}

func (p *Parser) expectSymbol(sym string) error {
	if !p.isSymbol(sym) {
		return p.errorf("expected %q, got %q", sym, p.cur().Lit)
	}
	p.advance()
	return nil
}

func (p *Parser) errorf(format string, args ...any) error {
	t := p.cur()
	return &gateerr.ParseError{Message: fmt.Sprintf(format, args...), Line: t.Line, Column: t.Column}
}

func (p *Parser) expectIdent() (string, error) {
	t := p.cur()
	if t.Type != token.IDENTIFIER {
		return "", p.errorf("expected identifier, got %q", t.Lit)
	}
	p.advance()
	return t.Lit, nil
}

// ParseStatement dispatches on the leading keyword, the top-level
// `sql` gate's job in §4.N (here done as one function rather than a
// gate per keyword since the whole statement is a single parse pass).
func (p *Parser) ParseStatement() (any, error) {
	switch {
	case p.isKeyword("EXPLAIN"):
		p.advance()
		inner, err := p.ParseStatement()
		if err != nil {
			return nil, err
		}
		return &ast.Explain{Inner: inner}, nil
	case p.isKeyword("WITH"), p.isKeyword("SELECT"):
		return p.parseSelectStatement()
	case p.isKeyword("INSERT"):
		return p.parseInsert()
	case p.isKeyword("UPDATE"):
		return p.parseUpdate()
	case p.isKeyword("DELETE"):
		return p.parseDelete()
	case p.isKeyword("CREATE"):
		return p.parseCreate()
	case p.isKeyword("DROP"):
		return p.parseDrop()
	case p.isKeyword("ALTER"):
		return p.parseAlterTable()
	case p.isKeyword("TRUNCATE"):
		return p.parseTruncate()
	case p.isKeyword("BEGIN"):
		p.advance()
		return &ast.Begin{}, nil
	case p.isKeyword("COMMIT"):
		p.advance()
		return &ast.Commit{}, nil
	case p.isKeyword("ROLLBACK"):
		p.advance()
		return &ast.Rollback{}, nil
	}
	return nil, p.errorf("unrecognized statement starting with %q", p.cur().Lit)
}

// ---------------------------------------------------------------
// SELECT
// ---------------------------------------------------------------

var aggFuncs = map[string]bool{
	"COUNT": true, "SUM": true, "AVG": true, "MIN": true, "MAX": true, "GROUP_CONCAT": true,
}

var windowFuncs = map[string]bool{
	"ROW_NUMBER": true, "RANK": true, "DENSE_RANK": true,
	"SUM": true, "COUNT": true, "AVG": true, "MIN": true, "MAX": true,
}

func (p *Parser) parseSelectStatement() (*ast.SelectStatement, error) {
	stmt := &ast.SelectStatement{}

	if p.eatKeyword("WITH") {
		recursive := p.eatKeyword("RECURSIVE")
		for {
			name, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			if p.isSymbol("(") {
				// column list, informational only — consume and discard.
				p.advance()
				for !p.isSymbol(")") {
					if _, err := p.expectIdent(); err != nil {
						return nil, err
					}
					if !p.eatComma() {
						break
					}
				}
				if err := p.expectSymbol(")"); err != nil {
					return nil, err
				}
			}
			if err := p.expectKeyword("AS"); err != nil {
				return nil, err
			}
			if err := p.expectSymbol("("); err != nil {
				return nil, err
			}
			cte, err := p.parseCTEBody(name, recursive)
			if err != nil {
				return nil, err
			}
			if err := p.expectSymbol(")"); err != nil {
				return nil, err
			}
			stmt.CTEs = append(stmt.CTEs, cte)
			if !p.eatComma() {
				break
			}
		}
	}

	if err := p.expectKeyword("SELECT"); err != nil {
		return nil, err
	}
	stmt.Distinct = p.eatKeyword("DISTINCT")
	p.eatKeyword("ALL")

	var top *int64
	if p.eatKeyword("TOP") {
		n, err := p.parseIntLiteral()
		if err != nil {
			return nil, err
		}
		top = &n
	}

	if err := p.parseSelectColumns(stmt); err != nil {
		return nil, err
	}

	if p.eatKeyword("FROM") {
		tref, err := p.parseTableRef()
		if err != nil {
			return nil, err
		}
		stmt.From = tref
		for p.atJoinKeyword() {
			j, err := p.parseJoin()
			if err != nil {
				return nil, err
			}
			stmt.Joins = append(stmt.Joins, j)
		}
	}

	if p.eatKeyword("WHERE") {
		cond, err := p.parseExpr(lowestPrec)
		if err != nil {
			return nil, err
		}
		stmt.Where = cond
	}

	if p.eatKeyword("GROUP") {
		if err := p.expectKeyword("BY"); err != nil {
			return nil, err
		}
		for {
			col, err := p.parseColumnName()
			if err != nil {
				return nil, err
			}
			stmt.GroupBy = append(stmt.GroupBy, col)
			if !p.eatComma() {
				break
			}
		}
	}

	if p.eatKeyword("HAVING") {
		cond, err := p.parseExprCollectingAggregates(stmt, lowestPrec)
		if err != nil {
			return nil, err
		}
		stmt.Having = cond
	}

	if p.eatKeyword("ORDER") {
		if err := p.expectKeyword("BY"); err != nil {
			return nil, err
		}
		for {
			item, err := p.parseOrderItem(stmt)
			if err != nil {
				return nil, err
			}
			stmt.OrderBy = append(stmt.OrderBy, item)
			if !p.eatComma() {
				break
			}
		}
	}

	if top != nil {
		stmt.Limit = top
	}
	if p.eatKeyword("LIMIT") {
		if top != nil {
			return nil, p.errorf("TOP and LIMIT cannot be used together")
		}
		n, err := p.parseIntLiteral()
		if err != nil {
			return nil, err
		}
		stmt.Limit = &n
	}
	if p.eatKeyword("OFFSET") {
		n, err := p.parseIntLiteral()
		if err != nil {
			return nil, err
		}
		stmt.Offset = &n
	}

	if p.isKeyword("UNION") {
		p.advance()
		all := p.eatKeyword("ALL")
		right, err := p.parseSelectStatement()
		if err != nil {
			return nil, err
		}
		stmt.Union = &ast.UnionClause{All: all, Right: right}
	}

	return stmt, nil
}

// parseCTEBody parses the body of one WITH binding. A recursive CTE's
// body is `<anchor> UNION ALL <recursive member referencing name>`;
// the anchor/recursive split is detected structurally by re-parsing
// the union as two independent SELECTs rather than threading a name
// through the grammar.
func (p *Parser) parseCTEBody(name string, recursive bool) (ast.CTE, error) {
	first, err := p.parseSelectStatement()
	if err != nil {
		return ast.CTE{}, err
	}
	if recursive && first.Union != nil {
		recur := first.Union.Right
		first.Union = nil
		return ast.CTE{Name: name, Recursive: true, Seed: first, Recur: recur}, nil
	}
	return ast.CTE{Name: name, Seed: first}, nil
}

func (p *Parser) eatComma() bool {
	if p.isSymbol(",") {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) parseIntLiteral() (int64, error) {
	t := p.cur()
	if t.Type != token.NUMBER {
		return 0, p.errorf("expected integer, got %q", t.Lit)
	}
	p.advance()
	n, err := strconv.ParseInt(t.Lit, 10, 64)
	if err != nil {
		return 0, p.errorf("invalid integer %q", t.Lit)
	}
	return n, nil
}

func (p *Parser) parseColumnName() (string, error) {
	name, err := p.expectIdent()
	if err != nil {
		return "", err
	}
	if p.isSymbol(".") {
		p.advance()
		rest, err := p.expectIdent()
		if err != nil {
			return "", err
		}
		return name + "." + rest, nil
	}
	return name, nil
}

func (p *Parser) parseSelectColumns(stmt *ast.SelectStatement) error {
	for {
		if p.isSymbol("*") {
			p.advance()
			stmt.Columns = append(stmt.Columns, ast.ColumnItem{Star: true})
		} else {
			expr, agg, win, err := p.parseSelectItemExpr()
			if err != nil {
				return err
			}
			alias := ""
			if p.eatKeyword("AS") {
				alias, err = p.expectIdent()
				if err != nil {
					return err
				}
			} else if p.cur().Type == token.IDENTIFIER {
				alias = p.advance().Lit
			}
			switch {
			case agg != nil:
				if alias == "" {
					alias = fmt.Sprintf("agg_%d", len(stmt.Aggregates))
				}
				agg.Alias = alias
				stmt.Aggregates = append(stmt.Aggregates, *agg)
				stmt.Columns = append(stmt.Columns, ast.ColumnItem{Expr: ast.Column(alias), Alias: alias})
			case win != nil:
				if alias == "" {
					alias = fmt.Sprintf("win_%d", len(stmt.Windows))
				}
				win.Alias = alias
				stmt.Windows = append(stmt.Windows, *win)
				stmt.Columns = append(stmt.Columns, ast.ColumnItem{Expr: ast.Column(alias), Alias: alias})
			default:
				stmt.Columns = append(stmt.Columns, ast.ColumnItem{Expr: expr, Alias: alias})
			}
		}
		if !p.eatComma() {
			break
		}
	}
	return nil
}

// parseSelectItemExpr parses one SELECT-list expression, detecting an
// aggregate or window-function call at the top level so the caller can
// lift it into the statement's Aggregates/Windows list instead of
// leaving it as a plain scalar expression (§4.I: aggregates only ever
// appear inside an aggregate/window step, never evaluated inline).
func (p *Parser) parseSelectItemExpr() (value.Value, *ast.AggregateItem, *ast.WindowItem, error) {
	if p.cur().Type == token.IDENTIFIER || p.cur().Type == token.KEYWORD {
		name := strings.ToUpper(p.cur().Lit)
		if (aggFuncs[name] || windowFuncs[name]) && p.peek(1).Type == token.SYMBOL && p.peek(1).Lit == "(" {
			return p.parseAggOrWindowCall(name)
		}
	}
	expr, err := p.parseExpr(lowestPrec)
	return expr, nil, nil, err
}

func (p *Parser) parseAggOrWindowCall(name string) (value.Value, *ast.AggregateItem, *ast.WindowItem, error) {
	p.advance() // function name
	if err := p.expectSymbol("("); err != nil {
		return nil, nil, nil, err
	}
	distinct := p.eatKeyword("DISTINCT")
	column := "*"
	sep := ""
	if p.isSymbol("*") {
		p.advance()
	} else if !p.isSymbol(")") {
		col, err := p.parseColumnName()
		if err != nil {
			return nil, nil, nil, err
		}
		column = col
		if p.eatKeyword("SEPARATOR") {
			t := p.cur()
			if t.Type != token.STRING {
				return nil, nil, nil, p.errorf("expected string after SEPARATOR")
			}
			p.advance()
			sep = t.Lit
		}
	}
	if err := p.expectSymbol(")"); err != nil {
		return nil, nil, nil, err
	}

	if p.eatKeyword("OVER") {
		win, err := p.parseWindowSpec(name, column, distinct)
		return nil, nil, win, err
	}
	if !aggFuncs[name] {
		return nil, nil, nil, p.errorf("%s requires OVER(...)", name)
	}
	return nil, &ast.AggregateItem{Fn: name, Column: column, Distinct: distinct, Sep: sep}, nil, nil
}

func (p *Parser) parseWindowSpec(fn, column string, distinct bool) (*ast.WindowItem, error) {
	if err := p.expectSymbol("("); err != nil {
		return nil, err
	}
	w := &ast.WindowItem{Fn: fn, Column: column, Distinct: distinct}
	if p.eatKeyword("PARTITION") {
		if err := p.expectKeyword("BY"); err != nil {
			return nil, err
		}
		for {
			col, err := p.parseColumnName()
			if err != nil {
				return nil, err
			}
			w.PartitionBy = append(w.PartitionBy, col)
			if !p.eatComma() {
				break
			}
		}
	}
	if p.eatKeyword("ORDER") {
		if err := p.expectKeyword("BY"); err != nil {
			return nil, err
		}
		for {
			item, err := p.parseOrderItem(nil)
			if err != nil {
				return nil, err
			}
			w.OrderBy = append(w.OrderBy, item)
			if !p.eatComma() {
				break
			}
		}
	}
	if err := p.expectSymbol(")"); err != nil {
		return nil, err
	}
	return w, nil
}

// parseOrderItem parses one ORDER BY entry. When stmt is non-nil and
// the item is a bare positive integer, it's an ordinal reference to
// stmt's SELECT list (`ORDER BY 2 DESC`).
func (p *Parser) parseOrderItem(stmt *ast.SelectStatement) (ast.OrderItem, error) {
	var expr value.Value
	if stmt != nil && p.cur().Type == token.NUMBER {
		n, err := p.parseIntLiteral()
		if err != nil {
			return ast.OrderItem{}, err
		}
		idx := int(n) - 1
		if idx >= 0 && idx < len(stmt.Columns) && !stmt.Columns[idx].Star {
			expr = stmt.Columns[idx].Expr
		} else {
			expr = ast.Lit(value.Int(n))
		}
	} else {
		e, err := p.parseExpr(lowestPrec)
		if err != nil {
			return ast.OrderItem{}, err
		}
		expr = e
	}
	item := ast.OrderItem{Expr: expr}
	if p.eatKeyword("ASC") {
	} else if p.eatKeyword("DESC") {
		item.Desc = true
	}
	if p.eatKeyword("NULLS") {
		if p.eatKeyword("FIRST") {
			item.NullsFirst = true
		} else if p.eatKeyword("LAST") {
			item.NullsLast = true
		} else {
			return ast.OrderItem{}, p.errorf("expected FIRST or LAST after NULLS")
		}
	}
	return item, nil
}

// parseExprCollectingAggregates parses an expression (for HAVING)
// lifting any bare aggregate-function calls it finds into stmt's
// Aggregates list, substituting a reference to the generated alias —
// the same treatment parseSelectColumns gives the SELECT list.
func (p *Parser) parseExprCollectingAggregates(stmt *ast.SelectStatement, prec int) (value.Value, error) {
	if p.cur().Type == token.IDENTIFIER || p.cur().Type == token.KEYWORD {
		name := strings.ToUpper(p.cur().Lit)
		if aggFuncs[name] && p.peek(1).Type == token.SYMBOL && p.peek(1).Lit == "(" {
			_, agg, _, err := p.parseAggOrWindowCall(name)
			if err != nil {
				return nil, err
			}
			alias := fmt.Sprintf("agg_%d", len(stmt.Aggregates))
			agg.Alias = alias
			stmt.Aggregates = append(stmt.Aggregates, *agg)
			left := ast.Column(alias)
			return p.parseCompareOrReturn(left, alias)
		}
	}
	return p.parseExpr(prec)
}

// parseCompareOrReturn handles `<agg> <op> <value>` immediately after
// lifting an aggregate call, since parseExpr's comparison production
// expects to parse the column name itself, not receive one already
// built.
func (p *Parser) parseCompareOrReturn(left value.Value, colName string) (value.Value, error) {
	if op, ok := p.peekComparisonOp(); ok {
		p.advance()
		right, err := p.parseExpr(additive)
		if err != nil {
			return nil, err
		}
		return ast.Cmp(colName, op, right), nil
	}
	return left, nil
}

func (p *Parser) atJoinKeyword() bool {
	switch {
	case p.isKeyword("JOIN"), p.isKeyword("INNER"), p.isKeyword("LEFT"),
		p.isKeyword("RIGHT"), p.isKeyword("FULL"), p.isKeyword("CROSS"):
		return true
	}
	return false
}

func (p *Parser) parseJoin() (ast.JoinClause, error) {
	kind := "inner"
	switch {
	case p.eatKeyword("INNER"):
		kind = "inner"
	case p.eatKeyword("LEFT"):
		kind = "left"
	case p.eatKeyword("RIGHT"):
		kind = "right"
	case p.eatKeyword("FULL"):
		kind = "full"
	case p.eatKeyword("CROSS"):
		kind = "cross"
	}
	if err := p.expectKeyword("JOIN"); err != nil {
		return ast.JoinClause{}, err
	}
	right, err := p.parseTableRef()
	if err != nil {
		return ast.JoinClause{}, err
	}
	j := ast.JoinClause{Kind: kind, Right: *right}
	if kind != "cross" {
		if err := p.expectKeyword("ON"); err != nil {
			return ast.JoinClause{}, err
		}
		cond, err := p.parseExpr(lowestPrec)
		if err != nil {
			return ast.JoinClause{}, err
		}
		j.On = cond
	}
	return j, nil
}

func (p *Parser) parseTableRef() (*ast.TableRef, error) {
	if p.isSymbol("(") {
		p.advance()
		sub, err := p.parseSelectStatement()
		if err != nil {
			return nil, err
		}
		if err := p.expectSymbol(")"); err != nil {
			return nil, err
		}
		alias := ""
		if p.eatKeyword("AS") {
			alias, err = p.expectIdent()
		} else if p.cur().Type == token.IDENTIFIER {
			alias = p.advance().Lit
		}
		if err != nil {
			return nil, err
		}
		return &ast.TableRef{Subquery: sub, Alias: alias}, nil
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	alias := ""
	if p.eatKeyword("AS") {
		alias, err = p.expectIdent()
		if err != nil {
			return nil, err
		}
	} else if p.cur().Type == token.IDENTIFIER {
		alias = p.advance().Lit
	}
	return &ast.TableRef{Table: name, Alias: alias}, nil
}

// ---------------------------------------------------------------
// Expressions (Pratt parser)
// ---------------------------------------------------------------

const (
	lowestPrec = iota
	orPrec
	andPrec
	notPrec
	comparePrec
	additive
	multiplicative
	unaryPrec
)

func (p *Parser) peekComparisonOp() (string, bool) {
	t := p.cur()
	if t.Type == token.OPERATOR {
		switch t.Lit {
		case "=", "!=", "<>", "<", ">", "<=", ">=":
			return t.Lit, true
		}
	}
	return "", false
}

// parseExpr is the single Pratt entry used for both scalar expressions
// and boolean conditions; the two grammars share enough structure
// (AND/OR/comparisons sit directly over +/- arithmetic) that one
// climbing parser covers both, matching how eval/condition.go and
// eval/expr.go share the same value.Value shape.
func (p *Parser) parseExpr(prec int) (value.Value, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case prec < orPrec && p.isKeyword("OR"):
			p.advance()
			right, err := p.parseExpr(orPrec)
			if err != nil {
				return nil, err
			}
			left = ast.Or(left, right)
		case prec < andPrec && p.isKeyword("AND"):
			p.advance()
			right, err := p.parseExpr(andPrec)
			if err != nil {
				return nil, err
			}
			left = ast.And(left, right)
		case prec < comparePrec:
			handled, next, err := p.tryParsePostfixCondition(left)
			if err != nil {
				return nil, err
			}
			if handled {
				left = next
				continue
			}
			if op, ok := p.peekComparisonOp(); ok {
				p.advance()
				right, err := p.parseExpr(additive)
				if err != nil {
					return nil, err
				}
				left = compareExpr(left, op, right)
				continue
			}
			goto arith
		default:
			goto arith
		}
		continue
	arith:
		if prec < additive && (p.isSymbolOp("+") || p.isSymbolOp("-") || p.isSymbolOp("||")) {
			op := p.advance().Lit
			right, err := p.parseExpr(multiplicative)
			if err != nil {
				return nil, err
			}
			left = ast.Binary(op, left, right)
			continue
		}
		if prec < multiplicative && (p.isSymbolOp("*") || p.isSymbolOp("/") || p.isSymbolOp("%")) {
			op := p.advance().Lit
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			left = ast.Binary(op, left, right)
			continue
		}
		return left, nil
	}
}

func (p *Parser) isSymbolOp(lit string) bool {
	t := p.cur()
	return t.Type == token.OPERATOR && t.Lit == lit
}

// compareExpr builds a comparison condition. The left side must reduce
// to a bare column reference — the eval layer (eval/condition.go) only
// evaluates comparisons of a named column against an expression, not
// two arbitrary expressions; this mirrors the corpus's demonstrated
// needs rather than full ANSI generality.
func compareExpr(left value.Value, op string, right value.Value) value.Value {
	if col, ok := left.(value.String); ok {
		return ast.Cmp(string(col), op, right)
	}
	return ast.Cmp("", op, right)
}

func (p *Parser) parseUnary() (value.Value, error) {
	if p.eatKeyword("NOT") {
		inner, err := p.parseExpr(notPrec)
		if err != nil {
			return nil, err
		}
		return ast.Not(inner), nil
	}
	if p.isSymbolOp("-") {
		p.advance()
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.Binary("-", ast.Lit(value.Int(0)), inner), nil
	}
	return p.parsePrimary()
}

// tryParsePostfixCondition handles the condition-only postfix forms
// that follow a column reference: IS [NOT] NULL, [NOT] IN (...),
// [NOT] LIKE/ILIKE ..., [NOT] BETWEEN a AND b.
func (p *Parser) tryParsePostfixCondition(left value.Value) (bool, value.Value, error) {
	col, isCol := left.(value.String)
	colName := string(col)
	if !isCol {
		return false, left, nil
	}
	switch {
	case p.eatKeyword("IS"):
		negate := p.eatKeyword("NOT")
		if err := p.expectKeyword("NULL"); err != nil {
			return false, nil, err
		}
		return true, ast.IsNullCond(colName, negate), nil
	case p.isKeyword("NOT") && (p.peek(1).Type == token.KEYWORD && (p.peek(1).Lit == "IN" || p.peek(1).Lit == "LIKE" || p.peek(1).Lit == "ILIKE" || p.peek(1).Lit == "BETWEEN")):
		p.advance()
		return p.parseNegatablePostfix(colName, true)
	case p.isKeyword("IN") || p.isKeyword("LIKE") || p.isKeyword("ILIKE") || p.isKeyword("BETWEEN"):
		return p.parseNegatablePostfix(colName, false)
	}
	return false, left, nil
}

func (p *Parser) parseNegatablePostfix(colName string, negate bool) (bool, value.Value, error) {
	switch {
	case p.eatKeyword("IN"):
		if err := p.expectSymbol("("); err != nil {
			return false, nil, err
		}
		if p.isKeyword("SELECT") {
			sub, err := p.parseSelectStatement()
			if err != nil {
				return false, nil, err
			}
			if err := p.expectSymbol(")"); err != nil {
				return false, nil, err
			}
			op := "in"
			if negate {
				op = "not_in"
			}
			return true, value.MapOf("column", colName, "op", op, "value", value.MapOf("subquery", sub.ToPlanValue())), nil
		}
		var list value.Seq
		for !p.isSymbol(")") {
			v, err := p.parseExpr(additive)
			if err != nil {
				return false, nil, err
			}
			list = append(list, v)
			if !p.eatComma() {
				break
			}
		}
		if err := p.expectSymbol(")"); err != nil {
			return false, nil, err
		}
		return true, ast.InCond(colName, list, negate), nil
	case p.eatKeyword("LIKE"):
		v, err := p.parseExpr(additive)
		if err != nil {
			return false, nil, err
		}
		op := "like"
		if negate {
			return true, ast.Not(ast.Cmp(colName, op, v)), nil
		}
		return true, ast.Cmp(colName, op, v), nil
	case p.eatKeyword("ILIKE"):
		v, err := p.parseExpr(additive)
		if err != nil {
			return false, nil, err
		}
		if negate {
			return true, ast.Not(ast.Cmp(colName, "ilike", v)), nil
		}
		return true, ast.Cmp(colName, "ilike", v), nil
	case p.eatKeyword("BETWEEN"):
		lo, err := p.parseExpr(additive)
		if err != nil {
			return false, nil, err
		}
		if err := p.expectKeyword("AND"); err != nil {
			return false, nil, err
		}
		hi, err := p.parseExpr(additive)
		if err != nil {
			return false, nil, err
		}
		return true, ast.Between(colName, lo, hi, negate), nil
	}
	return false, nil, p.errorf("expected IN/LIKE/ILIKE/BETWEEN")
}

func (p *Parser) parsePrimary() (value.Value, error) {
	t := p.cur()
	switch t.Type {
	case token.NUMBER:
		p.advance()
		if strings.ContainsRune(t.Lit, '.') {
			f, err := strconv.ParseFloat(t.Lit, 64)
			if err != nil {
				return nil, p.errorf("invalid number %q", t.Lit)
			}
			return ast.Lit(value.Real(f)), nil
		}
		n, err := strconv.ParseInt(t.Lit, 10, 64)
		if err != nil {
			return nil, p.errorf("invalid number %q", t.Lit)
		}
		return ast.Lit(value.Int(n)), nil
	case token.STRING:
		p.advance()
		return ast.Lit(value.String(t.Lit)), nil
	case token.BOOLEAN:
		p.advance()
		return ast.Lit(value.Bool(t.Lit == "TRUE")), nil
	case token.NULL:
		p.advance()
		return ast.Lit(value.Null{}), nil
	case token.SYMBOL:
		if t.Lit == "(" {
			p.advance()
			if p.isKeyword("SELECT") {
				sub, err := p.parseSelectStatement()
				if err != nil {
					return nil, err
				}
				if err := p.expectSymbol(")"); err != nil {
					return nil, err
				}
				return ast.SubqueryExpr(sub), nil
			}
			inner, err := p.parseExpr(lowestPrec)
			if err != nil {
				return nil, err
			}
			if err := p.expectSymbol(")"); err != nil {
				return nil, err
			}
			return inner, nil
		}
	case token.KEYWORD:
		switch t.Lit {
		case "CASE":
			return p.parseCase()
		case "CAST":
			return p.parseCast()
		case "EXISTS", "NOT":
			if t.Lit == "NOT" && p.peek(1).Lit == "EXISTS" {
				p.advance()
				p.advance()
				return p.parseExistsBody(true)
			}
			if t.Lit == "EXISTS" {
				p.advance()
				return p.parseExistsBody(false)
			}
		case "DEFAULT":
			p.advance()
			return ast.Lit(value.Null{}), nil
		}
	case token.IDENTIFIER:
		return p.parseIdentOrCall()
	}
	return nil, p.errorf("unexpected token %q", t.Lit)
}

func (p *Parser) parseExistsBody(negate bool) (value.Value, error) {
	if err := p.expectSymbol("("); err != nil {
		return nil, err
	}
	sub, err := p.parseSelectStatement()
	if err != nil {
		return nil, err
	}
	if err := p.expectSymbol(")"); err != nil {
		return nil, err
	}
	return ast.Exists(sub, negate), nil
}

func (p *Parser) parseIdentOrCall() (value.Value, error) {
	name := p.advance().Lit
	if p.isSymbol("(") {
		p.advance()
		var args []value.Value
		for !p.isSymbol(")") {
			a, err := p.parseExpr(lowestPrec)
			if err != nil {
				return nil, err
			}
			args = append(args, a)
			if !p.eatComma() {
				break
			}
		}
		if err := p.expectSymbol(")"); err != nil {
			return nil, err
		}
		return ast.Call(name, args...), nil
	}
	if p.isSymbol(".") {
		p.advance()
		if p.isSymbol("*") {
			p.advance()
			return value.String(name + ".*"), nil
		}
		rest, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		return ast.Column(name + "." + rest), nil
	}
	return ast.Column(name), nil
}

func (p *Parser) parseCase() (value.Value, error) {
	p.advance() // CASE
	var whens []ast.WhenThen
	for p.eatKeyword("WHEN") {
		when, err := p.parseExpr(lowestPrec)
		if err != nil {
			return nil, err
		}
		if err := p.expectKeyword("THEN"); err != nil {
			return nil, err
		}
		then, err := p.parseExpr(lowestPrec)
		if err != nil {
			return nil, err
		}
		whens = append(whens, ast.WhenThen{When: when, Then: then})
	}
	var els value.Value
	if p.eatKeyword("ELSE") {
		e, err := p.parseExpr(lowestPrec)
		if err != nil {
			return nil, err
		}
		els = e
	}
	if err := p.expectKeyword("END"); err != nil {
		return nil, err
	}
	return ast.CaseExpr(whens, els), nil
}

func (p *Parser) parseCast() (value.Value, error) {
	p.advance() // CAST
	if err := p.expectSymbol("("); err != nil {
		return nil, err
	}
	inner, err := p.parseExpr(lowestPrec)
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("AS"); err != nil {
		return nil, err
	}
	typ, err := p.expectIdent()
	if err != nil {
		// type names like INTEGER/TEXT are reserved-ish but may lex as
		// keywords in some dialects; accept either.
		if p.cur().Type == token.KEYWORD {
			typ = p.advance().Lit
		} else {
			return nil, err
		}
	}
	if err := p.expectSymbol(")"); err != nil {
		return nil, err
	}
	return ast.Call("CAST", inner, ast.Lit(value.String(typ))), nil
}
