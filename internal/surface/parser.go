package surface

import (
	"fmt"

	"github.com/rawblock/molten/internal/molten"
)

// keywordCategory maps a list's leading identifier to the Attribute
// category it produces. "rule" has no dedicated Category of its own —
// it reuses CategoryGroup, since rules.go distinguishes a rule node
// from a particle group structurally (by its position under a
// CategoryPartition root) rather than by tag.
var keywordCategory = map[string]molten.Category{
	"partition": molten.CategoryPartition,
	"context":   molten.CategoryContext,
	"group":     molten.CategoryGroup,
	"rule":      molten.CategoryGroup,
}

// ParseError reports a syntax error at a byte offset in the source.
type ParseError struct {
	Pos     int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("surface: %s at offset %d", e.Message, e.Pos)
}

// Parser consumes a Lexer's token stream and builds Attribute[string]
// trees.
type Parser struct {
	lex     *Lexer
	current Token
}

// NewParser creates a parser over source.
func NewParser(source string) *Parser {
	p := &Parser{lex: NewLexer(source)}
	p.advance()
	return p
}

func (p *Parser) advance() {
	p.current = p.lex.Next()
}

// Parse reads exactly one top-level form and returns its Attribute
// tree. A trailing EOF is required — surface sources are single
// documents, not streams of forms.
func (p *Parser) Parse() (molten.Attribute[string], error) {
	attr, err := p.parseForm()
	if err != nil {
		return molten.Attribute[string]{}, err
	}
	if p.current.Kind != TokenEOF {
		return molten.Attribute[string]{}, &ParseError{Pos: p.current.Pos, Message: "expected end of input after top-level form"}
	}
	return attr, nil
}

func (p *Parser) parseForm() (molten.Attribute[string], error) {
	switch p.current.Kind {
	case TokenIdent:
		value := p.current.Text
		p.advance()
		return molten.Attribute[string]{Category: molten.CategoryAttribute, Value: value}, nil
	case TokenLParen:
		return p.parseList()
	case TokenEOF:
		return molten.Attribute[string]{}, &ParseError{Pos: p.current.Pos, Message: "unexpected end of input"}
	default:
		return molten.Attribute[string]{}, &ParseError{Pos: p.current.Pos, Message: fmt.Sprintf("unexpected token %q", p.current.Text)}
	}
}

func (p *Parser) parseList() (molten.Attribute[string], error) {
	openPos := p.current.Pos
	p.advance() // consume '('

	if p.current.Kind != TokenIdent {
		return molten.Attribute[string]{}, &ParseError{Pos: p.current.Pos, Message: "expected a keyword after '('"}
	}
	keyword := p.current.Text
	category, ok := keywordCategory[keyword]
	if !ok {
		return molten.Attribute[string]{}, &ParseError{Pos: p.current.Pos, Message: fmt.Sprintf("unknown keyword %q", keyword)}
	}
	p.advance()

	var children []molten.Attribute[string]
	for p.current.Kind != TokenRParen {
		if p.current.Kind == TokenEOF {
			return molten.Attribute[string]{}, &ParseError{Pos: openPos, Message: "unterminated list"}
		}
		child, err := p.parseForm()
		if err != nil {
			return molten.Attribute[string]{}, err
		}
		children = append(children, child)
	}
	p.advance() // consume ')'

	return molten.Attribute[string]{Category: category, Context: children}, nil
}

// ParseSource is a convenience wrapper parsing a complete surface
// document in one call.
func ParseSource(source string) (molten.Attribute[string], error) {
	return NewParser(source).Parse()
}
