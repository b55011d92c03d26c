package parser

import (
	"github.com/gatedb/gatedb/ast"
	"github.com/gatedb/gatedb/token"
	"github.com/gatedb/gatedb/value"
)

func (p *Parser) parseReturning() ([]ast.ColumnItem, error) {
	if !p.eatKeyword("RETURNING") {
		return nil, nil
	}
	var items []ast.ColumnItem
	for {
		if p.isSymbol("*") {
			p.advance()
			items = append(items, ast.ColumnItem{Star: true})
			if !p.eatComma() {
				break
			}
			continue
		}
		expr, err := p.parseExpr(lowestPrec)
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
		items = append(items, ast.ColumnItem{Expr: expr, Alias: alias})
		if !p.eatComma() {
			break
		}
	}
	return items, nil
}

func (p *Parser) parseInsert() (*ast.Insert, error) {
	p.advance() // INSERT
	if err := p.expectKeyword("INTO"); err != nil {
		return nil, err
	}
	table, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	ins := &ast.Insert{Table: table}

	if p.isSymbol("(") {
		p.advance()
		for !p.isSymbol(")") {
			col, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			ins.Columns = append(ins.Columns, col)
			if !p.eatComma() {
				break
			}
		}
		if err := p.expectSymbol(")"); err != nil {
			return nil, err
		}
	}

	switch {
	case p.eatKeyword("DEFAULT"):
		if err := p.expectKeyword("VALUES"); err != nil {
			return nil, err
		}
		ins.DefaultValues = true
	case p.eatKeyword("VALUES"):
		for {
			if err := p.expectSymbol("("); err != nil {
				return nil, err
			}
			var row value.Seq
			for !p.isSymbol(")") {
				v, err := p.parseExpr(additive)
				if err != nil {
					return nil, err
				}
				row = append(row, v)
				if !p.eatComma() {
					break
				}
			}
			if err := p.expectSymbol(")"); err != nil {
				return nil, err
			}
			ins.Rows = append(ins.Rows, row)
			if !p.eatComma() {
				break
			}
		}
	case p.isKeyword("SELECT"):
		sel, err := p.parseSelectStatement()
		if err != nil {
			return nil, err
		}
		ins.Select = sel
	default:
		return nil, p.errorf("expected VALUES, SELECT, or DEFAULT VALUES after INSERT INTO %s", table)
	}

	if p.eatKeyword("ON") {
		if err := p.expectKeyword("CONFLICT"); err != nil {
			return nil, err
		}
		if err := p.expectSymbol("("); err != nil {
			return nil, err
		}
		col, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if err := p.expectSymbol(")"); err != nil {
			return nil, err
		}
		ins.ConflictCol = col
		if err := p.expectKeyword("DO"); err != nil {
			return nil, err
		}
		switch {
		case p.eatKeyword("NOTHING"):
			ins.ConflictDoNothing = true
		case p.eatKeyword("UPDATE"):
			if err := p.expectKeyword("SET"); err != nil {
				return nil, err
			}
			assigns, err := p.parseAssignList()
			if err != nil {
				return nil, err
			}
			ins.ConflictSet = assigns
		default:
			return nil, p.errorf("expected NOTHING or UPDATE after ON CONFLICT ... DO")
		}
	}

	ret, err := p.parseReturning()
	if err != nil {
		return nil, err
	}
	ins.Returning = ret
	return ins, nil
}

func (p *Parser) parseAssignList() ([]ast.AssignExpr, error) {
	var out []ast.AssignExpr
	for {
		col, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if err := p.expectSymbol("="); err != nil {
			return nil, err
		}
		v, err := p.parseExpr(additive)
		if err != nil {
			return nil, err
		}
		out = append(out, ast.AssignExpr{Column: col, Expr: v})
		if !p.eatComma() {
			break
		}
	}
	return out, nil
}

func (p *Parser) parseUpdate() (*ast.Update, error) {
	p.advance() // UPDATE
	table, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("SET"); err != nil {
		return nil, err
	}
	assigns, err := p.parseAssignList()
	if err != nil {
		return nil, err
	}
	u := &ast.Update{Table: table, Set: assigns}
	if p.eatKeyword("WHERE") {
		cond, err := p.parseExpr(lowestPrec)
		if err != nil {
			return nil, err
		}
		u.Where = cond
	}
	ret, err := p.parseReturning()
	if err != nil {
		return nil, err
	}
	u.Returning = ret
	return u, nil
}

func (p *Parser) parseDelete() (*ast.Delete, error) {
	p.advance() // DELETE
	if err := p.expectKeyword("FROM"); err != nil {
		return nil, err
	}
	table, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	d := &ast.Delete{Table: table}
	if p.eatKeyword("WHERE") {
		cond, err := p.parseExpr(lowestPrec)
		if err != nil {
			return nil, err
		}
		d.Where = cond
	}
	ret, err := p.parseReturning()
	if err != nil {
		return nil, err
	}
	d.Returning = ret
	return d, nil
}
