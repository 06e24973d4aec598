package fixture

import (
	"fmt"
	"strings"

	"helix/internal/source"
	"helix/internal/types"
)

// parseTypeExpr reads the small type grammar used by fixture files:
//
//	int uint float bool string error ()   builtins
//	T                                     declared parameter
//	T.Element                             dependent member projection
//	[T]                                   slice
//	&T  &mut T                            reference
//	*T                                    pointer
//	(A, B)                                tuple
//
// resolve maps a bare identifier to a declared parameter.
func parseTypeExpr(expr string, in *types.Interner, names *source.Interner, resolve func(string) (types.TypeID, bool)) (types.TypeID, error) {
	p := &exprParser{src: expr, in: in, names: names, resolve: resolve}
	id, err := p.parse()
	if err != nil {
		return types.NoTypeID, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return types.NoTypeID, fmt.Errorf("type %q: trailing input at offset %d", expr, p.pos)
	}
	return id, nil
}

type exprParser struct {
	src     string
	pos     int
	in      *types.Interner
	names   *source.Interner
	resolve func(string) (types.TypeID, bool)
}

func (p *exprParser) parse() (types.TypeID, error) {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return types.NoTypeID, fmt.Errorf("type %q: unexpected end of input", p.src)
	}
	switch p.src[p.pos] {
	case '[':
		p.pos++
		elem, err := p.parse()
		if err != nil {
			return types.NoTypeID, err
		}
		if err := p.expect(']'); err != nil {
			return types.NoTypeID, err
		}
		return p.in.Intern(types.MakeArray(elem, types.ArrayDynamicLength)), nil

	case '&':
		p.pos++
		mutable := p.eatWord("mut")
		elem, err := p.parse()
		if err != nil {
			return types.NoTypeID, err
		}
		return p.in.Intern(types.MakeReference(elem, mutable)), nil

	case '*':
		p.pos++
		elem, err := p.parse()
		if err != nil {
			return types.NoTypeID, err
		}
		return p.in.Intern(types.MakePointer(elem)), nil

	case '(':
		p.pos++
		p.skipSpace()
		if p.pos < len(p.src) && p.src[p.pos] == ')' {
			p.pos++
			return p.in.Builtins().Unit, nil
		}
		var elems []types.TypeID
		for {
			elem, err := p.parse()
			if err != nil {
				return types.NoTypeID, err
			}
			elems = append(elems, elem)
			p.skipSpace()
			if p.pos < len(p.src) && p.src[p.pos] == ',' {
				p.pos++
				continue
			}
			break
		}
		if err := p.expect(')'); err != nil {
			return types.NoTypeID, err
		}
		if len(elems) == 1 {
			return elems[0], nil
		}
		return p.in.RegisterTuple(elems), nil

	default:
		return p.parsePath()
	}
}

func (p *exprParser) parsePath() (types.TypeID, error) {
	head := p.ident()
	if head == "" {
		return types.NoTypeID, fmt.Errorf("type %q: expected identifier at offset %d", p.src, p.pos)
	}
	base, err := p.resolveHead(head)
	if err != nil {
		return types.NoTypeID, err
	}
	for p.pos < len(p.src) && p.src[p.pos] == '.' {
		p.pos++
		assoc := p.ident()
		if assoc == "" {
			return types.NoTypeID, fmt.Errorf("type %q: expected member name at offset %d", p.src, p.pos)
		}
		base = p.in.MemberType(base, p.names.Intern(assoc))
	}
	return base, nil
}

func (p *exprParser) resolveHead(head string) (types.TypeID, error) {
	b := p.in.Builtins()
	switch head {
	case "int":
		return b.Int, nil
	case "uint":
		return b.Uint, nil
	case "float":
		return b.Float, nil
	case "bool":
		return b.Bool, nil
	case "string":
		return b.String, nil
	case "error":
		return b.Error, nil
	}
	if id, ok := p.resolve(head); ok {
		return id, nil
	}
	return types.NoTypeID, fmt.Errorf("type %q: unknown name %q", p.src, head)
}

func (p *exprParser) ident() string {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' {
			p.pos++
			continue
		}
		break
	}
	return p.src[start:p.pos]
}

func (p *exprParser) eatWord(word string) bool {
	p.skipSpace()
	if strings.HasPrefix(p.src[p.pos:], word) {
		rest := p.src[p.pos+len(word):]
		if rest == "" || rest[0] == ' ' {
			p.pos += len(word)
			return true
		}
	}
	return false
}

func (p *exprParser) expect(c byte) error {
	p.skipSpace()
	if p.pos >= len(p.src) || p.src[p.pos] != c {
		return fmt.Errorf("type %q: expected %q at offset %d", p.src, string(c), p.pos)
	}
	p.pos++
	return nil
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}
