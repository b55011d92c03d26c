package parser

import (
	"strings"

	"github.com/gatedb/gatedb/ast"
	"github.com/gatedb/gatedb/token"
	"github.com/gatedb/gatedb/value"
)

func (p *Parser) parseCreate() (any, error) {
	p.advance() // CREATE
	switch {
	case p.eatKeyword("TABLE"):
		return p.parseCreateTable()
	case p.eatKeyword("UNIQUE"):
		if err := p.expectKeyword("INDEX"); err != nil {
			return nil, err
		}
		return p.parseCreateIndex(true)
	case p.eatKeyword("INDEX"):
		return p.parseCreateIndex(false)
	case p.eatKeyword("VIEW"):
		return p.parseCreateView()
	case p.eatKeyword("TRIGGER"):
		return p.parseCreateTrigger()
	}
	return nil, p.errorf("expected TABLE, INDEX, VIEW, or TRIGGER after CREATE")
}

func (p *Parser) parseDrop() (any, error) {
	p.advance() // DROP
	switch {
	case p.eatKeyword("TABLE"):
		ifExists := p.eatKeyword("IF")
		if ifExists {
			if err := p.expectKeyword("EXISTS"); err != nil {
				return nil, err
			}
		}
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		return &ast.DropTable{Table: name, IfExists: ifExists}, nil
	case p.eatKeyword("INDEX"):
		ifExists := p.eatKeyword("IF")
		if ifExists {
			if err := p.expectKeyword("EXISTS"); err != nil {
				return nil, err
			}
		}
		index, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		table := ""
		if p.eatKeyword("ON") {
			table, err = p.expectIdent()
			if err != nil {
				return nil, err
			}
		}
		return &ast.DropIndex{Index: index, Table: table, IfExists: ifExists}, nil
	case p.eatKeyword("VIEW"):
		ifExists := p.eatKeyword("IF")
		if ifExists {
			if err := p.expectKeyword("EXISTS"); err != nil {
				return nil, err
			}
		}
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		return &ast.DropView{View: name, IfExists: ifExists}, nil
	case p.eatKeyword("TRIGGER"):
		ifExists := p.eatKeyword("IF")
		if ifExists {
			if err := p.expectKeyword("EXISTS"); err != nil {
				return nil, err
			}
		}
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		return &ast.DropTrigger{Trigger: name, IfExists: ifExists}, nil
	}
	return nil, p.errorf("expected TABLE, INDEX, VIEW, or TRIGGER after DROP")
}

func (p *Parser) parseCreateTable() (*ast.CreateTable, error) {
	ifNotExists := false
	if p.eatKeyword("IF") {
		if err := p.expectKeyword("NOT"); err != nil {
			return nil, err
		}
		if err := p.expectKeyword("EXISTS"); err != nil {
			return nil, err
		}
		ifNotExists = true
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	ct := &ast.CreateTable{Table: name, IfNotExists: ifNotExists}

	if p.eatKeyword("AS") {
		sel, err := p.parseSelectStatement()
		if err != nil {
			return nil, err
		}
		ct.AsSelect = sel
		return ct, nil
	}

	if err := p.expectSymbol("("); err != nil {
		return nil, err
	}
	for !p.isSymbol(")") {
		col, err := p.parseColumnDef()
		if err != nil {
			return nil, err
		}
		ct.Columns = append(ct.Columns, col)
		if !p.eatComma() {
			break
		}
	}
	if err := p.expectSymbol(")"); err != nil {
		return nil, err
	}
	return ct, nil
}

func (p *Parser) parseColumnDef() (ast.ColumnDef, error) {
	name, err := p.expectIdent()
	if err != nil {
		return ast.ColumnDef{}, err
	}
	typ, err := p.parseTypeName()
	if err != nil {
		return ast.ColumnDef{}, err
	}
	col := ast.ColumnDef{Name: name, Type: typ}
	for {
		switch {
		case p.eatKeyword("NOT"):
			if err := p.expectKeyword("NULL"); err != nil {
				return ast.ColumnDef{}, err
			}
			col.NotNull = true
		case p.eatKeyword("DEFAULT"):
			v, err := p.parseExpr(additive)
			if err != nil {
				return ast.ColumnDef{}, err
			}
			col.HasDef = true
			col.Default = v
		case p.eatKeyword("PRIMARY"):
			if err := p.expectKeyword("KEY"); err != nil {
				return ast.ColumnDef{}, err
			}
			col.NotNull = true
		default:
			return col, nil
		}
	}
}

// parseTypeName accepts a bare identifier or keyword as a type name
// (INT/INTEGER/TEXT/REAL/BOOL/... aren't in the reserved keyword list,
// but accept either lexical form defensively).
func (p *Parser) parseTypeName() (string, error) {
	t := p.cur()
	if t.Type == token.IDENTIFIER || t.Type == token.KEYWORD {
		p.advance()
		return strings.ToUpper(t.Lit), nil
	}
	return "", p.errorf("expected type name, got %q", t.Lit)
}

func (p *Parser) parseAlterTable() (*ast.AlterTable, error) {
	p.advance() // ALTER
	if err := p.expectKeyword("TABLE"); err != nil {
		return nil, err
	}
	table, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	at := &ast.AlterTable{Table: table}
	switch {
	case p.eatKeyword("ADD"):
		if p.eatKeyword("CONSTRAINT") {
			cname, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			kind, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			col := ""
			if p.isSymbol("(") {
				p.advance()
				col, err = p.expectIdent()
				if err != nil {
					return nil, err
				}
				if err := p.expectSymbol(")"); err != nil {
					return nil, err
				}
			}
			at.AddConstraint = &ast.ConstraintDef{Name: cname, Kind: strings.ToLower(kind), Column: col}
			return at, nil
		}
		p.eatKeyword("COLUMN")
		col, err := p.parseColumnDef()
		if err != nil {
			return nil, err
		}
		at.AddColumn = &col
	case p.eatKeyword("DROP"):
		if p.eatKeyword("CONSTRAINT") {
			ifExists := p.eatKeyword("IF")
			if ifExists {
				if err := p.expectKeyword("EXISTS"); err != nil {
					return nil, err
				}
			}
			name, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			at.DropConstraintName = name
			at.DropConstraintIfExists = ifExists
			return at, nil
		}
		p.eatKeyword("COLUMN")
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		at.DropColumn = name
	case p.eatKeyword("RENAME"):
		if err := p.expectKeyword("TO"); err != nil {
			return nil, err
		}
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		at.RenameTo = name
	default:
		return nil, p.errorf("expected ADD, DROP, or RENAME after ALTER TABLE")
	}
	return at, nil
}

func (p *Parser) parseCreateIndex(unique bool) (*ast.CreateIndex, error) {
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("ON"); err != nil {
		return nil, err
	}
	table, err := p.expectIdent()
	if err != nil {
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
	return &ast.CreateIndex{Index: name, Table: table, Column: col, Unique: unique}, nil
}

func (p *Parser) parseCreateView() (*ast.CreateView, error) {
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("AS"); err != nil {
		return nil, err
	}
	sel, err := p.parseSelectStatement()
	if err != nil {
		return nil, err
	}
	return &ast.CreateView{View: name, Plan: sel}, nil
}

func (p *Parser) parseCreateTrigger() (*ast.CreateTrigger, error) {
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	timing := "before"
	if p.eatKeyword("BEFORE") {
		timing = "before"
	} else if p.eatKeyword("AFTER") {
		timing = "after"
	}
	event := ""
	switch {
	case p.eatKeyword("INSERT"):
		event = "insert"
	case p.eatKeyword("UPDATE"):
		event = "update"
	case p.eatKeyword("DELETE"):
		event = "delete"
	default:
		return nil, p.errorf("expected INSERT, UPDATE, or DELETE in trigger definition")
	}
	if err := p.expectKeyword("ON"); err != nil {
		return nil, err
	}
	table, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	// The action body is catalog-only (§9 Open Question b): store the
	// remaining tokens of this statement as an opaque string rather
	// than parsing a full trigger-body grammar.
	var sb strings.Builder
	for p.cur().Type != token.EOF {
		sb.WriteString(p.advance().Lit)
		sb.WriteRune(' ')
	}
	return &ast.CreateTrigger{
		Trigger: name, Table: table, Event: event, Timing: timing,
		Action: value.String(strings.TrimSpace(sb.String())),
	}, nil
}

func (p *Parser) parseTruncate() (*ast.Truncate, error) {
	p.advance() // TRUNCATE
	p.eatKeyword("TABLE")
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	return &ast.Truncate{Table: name}, nil
}
