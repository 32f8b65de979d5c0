package extractor

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"fjacquet/statement-csv/internal/format"

	"github.com/shopspring/decimal"
)

var (
	hundred      = decimal.NewFromInt(100)
	letterSuffix = regexp.MustCompile(`\s*\p{L}+\.?$`)
)

// AmountParser turns an amount token into an absolute value and a sign.
type AmountParser struct {
	grammar  string
	currency string
	pattern  *regexp.Regexp
}

// NewAmountParser builds the parser for a grammar. For the comma grammar a
// non-empty currency is a required suffix; otherwise any word suffix is
// accepted and dropped.
func NewAmountParser(grammar, currency string) (*AmountParser, error) {
	p := &AmountParser{grammar: grammar, currency: currency}
	switch grammar {
	case format.AmountComma:
		suffix := `(?:\s*\p{L}+\.?)?`
		if currency != "" {
			suffix = `\s*` + regexp.QuoteMeta(currency)
		}
		p.pattern = regexp.MustCompile(`^(-?)\s*([0-9][0-9\s\x{00A0}]*),\s*([0-9]{2})` + suffix + `$`)
	case format.AmountDecimal:
	default:
		return nil, fmt.Errorf("unknown amount grammar %q", grammar)
	}
	return p, nil
}

// Match reports whether token is a well-formed amount.
func (p *AmountParser) Match(token string) bool {
	_, _, err := p.Parse(token)
	return err == nil
}

// LooksLikeAmount reports whether a line is probably meant as an amount
// even if it does not parse, so that it can be reported as malformed
// rather than treated as free text.
func (p *AmountParser) LooksLikeAmount(line string) bool {
	if p.currency == "" || !strings.HasSuffix(line, p.currency) {
		return false
	}
	head := strings.TrimSpace(strings.TrimSuffix(line, p.currency))
	if head == "" {
		return false
	}
	for _, r := range head {
		if !unicode.IsDigit(r) && !unicode.IsSpace(r) && !strings.ContainsRune("-+,.", r) {
			return false
		}
	}
	return true
}

// Parse returns the absolute amount rounded to two decimals and whether it
// is negative.
func (p *AmountParser) Parse(token string) (decimal.Decimal, bool, error) {
	token = strings.TrimSpace(token)
	if p.grammar == format.AmountDecimal {
		return parseDecimal(token)
	}

	m := p.pattern.FindStringSubmatch(token)
	if m == nil {
		return decimal.Zero, false, fmt.Errorf("token %q does not match the amount grammar", token)
	}

	whole, err := decimal.NewFromString(stripSpaces(m[2]))
	if err != nil {
		return decimal.Zero, false, err
	}
	frac, err := decimal.NewFromString(m[3])
	if err != nil {
		return decimal.Zero, false, err
	}

	amount := whole.Add(frac.Div(hundred)).Round(2)
	return amount, m[1] == "-", nil
}

func parseDecimal(token string) (decimal.Decimal, bool, error) {
	s := letterSuffix.ReplaceAllString(token, "")
	s = stripSpaces(s)
	if strings.Contains(s, ",") {
		if strings.Contains(s, ".") {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	}
	if s == "" {
		return decimal.Zero, false, fmt.Errorf("empty amount")
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("token %q is not a decimal: %w", token, err)
	}
	return v.Abs().Round(2), strings.HasPrefix(s, "-"), nil
}

func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
