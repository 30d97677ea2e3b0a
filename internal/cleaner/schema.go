package cleaner

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"disasterresponse/pkg/etl"
)

// Mode selects how rows are checked against the category schema.
type Mode string

const (
	// ModeStrict rejects any row whose tokens disagree with the schema.
	ModeStrict Mode = "strict"
	// ModeLenient applies the schema positionally and only counts rows whose
	// names disagree. Token count mismatches are still rejected.
	ModeLenient Mode = "lenient"
)

// ParseMode parses a mode name. The empty string is ModeStrict.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeStrict:
		return ModeStrict, nil
	case ModeLenient:
		return ModeLenient, nil
	}
	return "", fmt.Errorf("unknown category mode %q (want %q or %q)", s, ModeStrict, ModeLenient)
}

// Schema is the fixed, ordered list of category names. It is derived once
// from the first row and applied to every row.
type Schema struct {
	Names []string
}

// Len returns the number of categories.
func (s Schema) Len() int { return len(s.Names) }

// token is one parsed `name-digit` pair.
type token struct {
	name  string
	sep   rune
	value int
}

// parseToken splits a token into its name (everything but the last two runes),
// separator rune and value (the last rune, as an integer).
func parseToken(raw string) (token, error) {
	if utf8.RuneCountInString(raw) < 2 {
		return token{}, fmt.Errorf("%w: category token %q is too short", etl.ErrParse, raw)
	}

	last, lastSize := utf8.DecodeLastRuneInString(raw)
	rest := raw[:len(raw)-lastSize]
	sep, sepSize := utf8.DecodeLastRuneInString(rest)

	v, err := strconv.Atoi(string(last))
	if err != nil {
		return token{}, fmt.Errorf("%w: category token %q has non-numeric value %q", etl.ErrParse, raw, string(last))
	}
	return token{name: rest[:len(rest)-sepSize], sep: sep, value: v}, nil
}

func splitTokens(field string) []string {
	return strings.Split(field, etl.CategorySeparator)
}

// DeriveSchema builds the schema from one category field. The field defines the
// schema, so its tokens must be well formed in every mode.
func DeriveSchema(field string) (Schema, error) {
	raw := splitTokens(field)
	names := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, r := range raw {
		tok, err := parseToken(r)
		if err != nil {
			return Schema{}, err
		}
		if tok.sep != '-' {
			return Schema{}, fmt.Errorf("%w: category token %q must separate name and value with '-'", etl.ErrSchema, r)
		}
		if _, dup := seen[tok.name]; dup {
			return Schema{}, fmt.Errorf("%w: category %q appears twice", etl.ErrSchema, tok.name)
		}
		seen[tok.name] = struct{}{}
		names = append(names, tok.name)
	}
	return Schema{Names: names}, nil
}

// Binarize parses one category field against the schema and returns one 0/1
// value per category. mismatched reports whether any name differed from the
// schema; in strict mode that is an error instead.
func (s Schema) Binarize(field string, mode Mode) (values []int, mismatched bool, err error) {
	raw := splitTokens(field)
	if len(raw) != len(s.Names) {
		return nil, false, fmt.Errorf("%w: expected %d categories, got %d", etl.ErrSchema, len(s.Names), len(raw))
	}

	values = make([]int, len(raw))
	for i, r := range raw {
		tok, err := parseToken(r)
		if err != nil {
			return nil, false, err
		}
		if tok.name != s.Names[i] || tok.sep != '-' {
			if mode == ModeStrict {
				return nil, false, fmt.Errorf("%w: position %d: token %q does not match category %q", etl.ErrSchema, i, r, s.Names[i])
			}
			mismatched = true
		}
		if tok.value != 0 {
			values[i] = 1
		}
	}
	return values, mismatched, nil
}
