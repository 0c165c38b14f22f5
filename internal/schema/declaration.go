package schema

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rowforge/rowforge/internal/domain"
)

// DeclarationSource resolves the column list from a static CREATE TABLE
// declaration. Engine, ORDER BY and other trailing clauses are ignored; only
// the column definitions matter here.
type DeclarationSource struct {
	ddl string
}

func NewDeclarationSource(ddl string) *DeclarationSource {
	return &DeclarationSource{ddl: ddl}
}

func (s *DeclarationSource) Columns(_ context.Context) ([]domain.Column, error) {
	table, cols, err := ParseCreateTable(s.ddl)
	if err != nil {
		return nil, &domain.SchemaError{Table: table, Err: err}
	}
	return cols, nil
}

// TableName returns the table name from the declaration.
func (s *DeclarationSource) TableName() (string, error) {
	table, _, err := ParseCreateTable(s.ddl)
	if err != nil {
		return "", &domain.SchemaError{Table: table, Err: err}
	}
	return table, nil
}

// Keywords that start non-column entries inside a CREATE TABLE body.
var nonColumnLead = map[string]bool{
	"INDEX":      true,
	"PRIMARY":    true,
	"CONSTRAINT": true,
	"PROJECTION": true,
}

// Keywords that terminate the type expression of a column definition.
var typeTerminators = map[string]bool{
	"DEFAULT":      true,
	"MATERIALIZED": true,
	"ALIAS":        true,
	"EPHEMERAL":    true,
	"CODEC":        true,
	"COMMENT":      true,
	"TTL":          true,
}

// ParseCreateTable extracts the table name and ordered column definitions
// from a CREATE TABLE declaration.
func ParseCreateTable(ddl string) (string, []domain.Column, error) {
	text := strings.TrimSpace(ddl)
	upper := strings.ToUpper(text)
	if !strings.HasPrefix(upper, "CREATE TABLE") {
		return "", nil, errors.New("declaration must start with CREATE TABLE")
	}
	rest := strings.TrimSpace(text[len("CREATE TABLE"):])
	if strings.HasPrefix(strings.ToUpper(rest), "IF NOT EXISTS") {
		rest = strings.TrimSpace(rest[len("IF NOT EXISTS"):])
	}

	open := strings.IndexByte(rest, '(')
	if open < 0 {
		return "", nil, errors.New("missing column list")
	}
	table := cleanIdentifier(rest[:open])
	if table == "" {
		return "", nil, errors.New("missing table name")
	}

	body, err := balancedBody(rest[open:])
	if err != nil {
		return table, nil, err
	}

	var cols []domain.Column
	for _, def := range splitTopLevel(body, ',') {
		def = strings.TrimSpace(def)
		if def == "" {
			continue
		}
		name, remainder := firstToken(def)
		if nonColumnLead[strings.ToUpper(name)] {
			continue
		}
		name = strings.Trim(name, "`\"")
		if !IsValidIdentifier(name) {
			return table, nil, fmt.Errorf("invalid column name %q", name)
		}
		rawType, _ := firstToken(remainder)
		if rawType == "" || typeTerminators[strings.ToUpper(rawType)] {
			return table, nil, fmt.Errorf("column %q has no type", name)
		}
		cols = append(cols, domain.Column{
			Name:     name,
			RawType:  rawType,
			Nullable: strings.Contains(rawType, "Nullable("),
		})
	}
	if len(cols) == 0 {
		return table, nil, errors.New("declaration has no columns")
	}
	return table, cols, nil
}

// balancedBody returns the content of the parenthesized list s starts with.
func balancedBody(s string) (string, error) {
	depth := 0
	inQuote := false
	for i, r := range s {
		switch {
		case inQuote:
			if r == '\'' {
				inQuote = false
			}
		case r == '\'':
			inQuote = true
		case r == '(':
			depth++
		case r == ')':
			depth--
			if depth == 0 {
				return s[1:i], nil
			}
		}
	}
	return "", errors.New("unbalanced parentheses in column list")
}

// splitTopLevel splits s on sep, ignoring separators nested inside
// parentheses or single quotes.
func splitTopLevel(s string, sep rune) []string {
	var parts []string
	depth := 0
	inQuote := false
	start := 0
	for i, r := range s {
		switch {
		case inQuote:
			if r == '\'' {
				inQuote = false
			}
		case r == '\'':
			inQuote = true
		case r == '(':
			depth++
		case r == ')':
			depth--
		case r == sep && depth == 0:
			parts = append(parts, s[start:i])
			start = i + len(string(r))
		}
	}
	parts = append(parts, s[start:])
	return parts
}

// firstToken returns the leading whitespace-delimited token of s, treating
// parenthesized groups as part of the token, plus the remainder.
func firstToken(s string) (string, string) {
	s = strings.TrimSpace(s)
	depth := 0
	inQuote := false
	for i, r := range s {
		switch {
		case inQuote:
			if r == '\'' {
				inQuote = false
			}
		case r == '\'':
			inQuote = true
		case r == '(':
			depth++
		case r == ')':
			depth--
		case (r == ' ' || r == '\t' || r == '\n' || r == '\r') && depth == 0:
			return s[:i], s[i:]
		}
	}
	return s, ""
}

func cleanIdentifier(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "`\"")
	// Qualified names keep only the table part.
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		s = s[i+1:]
		s = strings.Trim(s, "`\"")
	}
	if !IsValidIdentifier(s) {
		return ""
	}
	return s
}
