// Package classifier resolves payee, category, mode and comment for an
// extracted record.
//
// Classification runs in a fixed order: unwanted prefixes are stripped,
// the rule table is consulted (first match wins), transaction-type
// overrides are applied on top, the payee falls back to the block's second
// line, and finally a block-wide ATM scan takes precedence over everything
// else. A Classifier keeps no state between records.
//
// Classification is idempotent as long as no AI client is configured. With
// one, a record left without a category is sent to the client on every call,
// so classifying the same record twice may yield two different categories.
package classifier

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"fjacquet/statement-csv/internal/categorizer"
	"fjacquet/statement-csv/internal/format"
	"fjacquet/statement-csv/internal/logging"
	"fjacquet/statement-csv/internal/models"
	"fjacquet/statement-csv/internal/rules"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Override is one compiled transaction-type marker.
type Override struct {
	Marker string
	Exact  bool
	// Field is the row field tested; -1 tests the description.
	Field            int
	EmptyDescription bool
	Transfer         bool
	Mode             models.Override
	Payee            models.Override
	Category         models.Override
	Comment          models.Override
}

func (o Override) matches(rec *models.Record) bool {
	if o.EmptyDescription && strings.TrimSpace(rec.Description) != "" {
		return false
	}
	text := rec.Description
	if o.Field >= 0 {
		text = ""
		if o.Field < len(rec.Fields) {
			text = rec.Fields[o.Field]
		}
	}
	if o.Exact {
		return strings.TrimSpace(text) == o.Marker
	}
	return strings.Contains(text, o.Marker)
}

// Options is the format- and run-specific classification setup.
type Options struct {
	UnwantedPrefixes  []string
	Overrides         []Override
	FallbackTitleCase bool
	ATMMarker         string
	ATMMode           string
	// DefaultPayee is the payee forced by transfer overrides.
	DefaultPayee string
}

// OptionsFromDescriptor builds Options from a format descriptor.
func OptionsFromDescriptor(d *format.Descriptor, defaultPayee string) Options {
	opts := Options{
		UnwantedPrefixes:  d.Classify.UnwantedPrefixes,
		FallbackTitleCase: d.Classify.FallbackTitleCase,
		ATMMarker:         d.Classify.ATMMarker,
		ATMMode:           d.Classify.ATMMode,
		DefaultPayee:      defaultPayee,
	}
	for _, o := range d.Classify.Overrides {
		field := -1
		if o.Field != nil {
			field = *o.Field
		}
		opts.Overrides = append(opts.Overrides, Override{
			Marker:           o.Marker,
			Exact:            o.Match == format.MatchExact,
			Field:            field,
			EmptyDescription: o.EmptyDescription,
			Transfer:         o.Transfer,
			Mode:             format.ToOverride(o.Mode),
			Payee:            format.ToOverride(o.Payee),
			Category:         format.ToOverride(o.Category),
			Comment:          format.ToOverride(o.Comment),
		})
	}
	return opts
}

// Classifier applies a rule table and format options to records.
type Classifier struct {
	table    *rules.Table
	opts     Options
	prefixes []*regexp.Regexp
	ai       categorizer.AIClient
	logger   logging.Logger
}

// Option customizes a Classifier.
type Option func(*Classifier)

// WithAIClient enables category suggestions for records left without one.
func WithAIClient(client categorizer.AIClient) Option {
	return func(c *Classifier) {
		c.ai = client
	}
}

// New compiles the unwanted prefixes and returns a Classifier.
func New(table *rules.Table, opts Options, logger logging.Logger, options ...Option) (*Classifier, error) {
	c := &Classifier{
		table:  table,
		opts:   opts,
		logger: logging.OrDefault(logger),
	}
	for _, p := range opts.UnwantedPrefixes {
		re, err := regexp.Compile(`(?i)^(?:` + p + `)`)
		if err != nil {
			return nil, fmt.Errorf("invalid unwanted prefix %q: %w", p, err)
		}
		c.prefixes = append(c.prefixes, re)
	}
	if opts.ATMMarker != "" && opts.ATMMode == "" {
		c.opts.ATMMode = models.ModeATM
	}
	for _, o := range options {
		o(c)
	}
	return c, nil
}

// StripPrefix removes the first matching unwanted prefix, once.
func (c *Classifier) StripPrefix(text string) string {
	for _, re := range c.prefixes {
		if loc := re.FindStringIndex(text); loc != nil && loc[1] > 0 {
			return text[loc[1]:]
		}
	}
	return text
}

// MatchRule returns the rule deciding rec, trying each candidate text in
// order.
func (c *Classifier) MatchRule(rec *models.Record) (*rules.Rule, string, bool) {
	candidates := rec.Candidates
	if len(candidates) == 0 && rec.Description != "" {
		candidates = []string{rec.Description}
	}
	for _, text := range candidates {
		stripped := c.StripPrefix(text)
		if rule, ok := c.table.Match(stripped); ok {
			return rule, stripped, true
		}
	}
	return nil, "", false
}

// Classify returns rec with payee, category, mode and comment resolved.
// rec itself is not modified. The category suggested by the AI client is
// not remembered, so a second call asks the client again.
func (c *Classifier) Classify(ctx context.Context, rec models.Record) models.Record {
	out := rec
	var payee string
	var category, mode, comment models.Override

	if rule, text, ok := c.MatchRule(&rec); ok {
		payee = rule.Payee
		category = rule.Category
		mode = rule.Mode
		comment = rule.Comment
		c.logger.Debug("Rule matched",
			logging.F(logging.FieldRule, rule.Row),
			logging.F(logging.FieldDescription, text),
			logging.F(logging.FieldPayee, payee))
	}

	for _, o := range c.opts.Overrides {
		if !o.matches(&rec) {
			continue
		}
		if o.Mode.Set {
			mode = o.Mode
		}
		if o.Transfer {
			payee = c.opts.DefaultPayee
			category = models.Some(models.CategoryTransfer)
		}
		o.Payee.Apply(&payee)
		if o.Category.Set {
			category = o.Category
		}
		if o.Comment.Set {
			comment = o.Comment
		}
		c.logger.Debug("Override applied", logging.F(logging.FieldMarker, o.Marker))
		break
	}

	if payee == "" && len(rec.Lines) >= 2 {
		payee = rec.Lines[1]
		if c.opts.FallbackTitleCase {
			payee = cases.Title(language.Polish).String(payee)
		}
	}

	out.Payee = payee
	out.Category = category.Value
	out.Mode = mode.Value
	out.Comment = comment.Value

	if c.opts.ATMMarker != "" && containsLine(rec.Lines, c.opts.ATMMarker) {
		out.Mode = c.opts.ATMMode
		out.Category = models.CategoryTransfer
		out.Payee = ""
	}

	if out.Category == "" && c.ai != nil {
		suggested, err := c.ai.SuggestCategory(ctx, out)
		if err != nil {
			c.logger.WithError(err).Warn("Category suggestion failed",
				logging.F(logging.FieldDescription, rec.Description))
		} else {
			out.Category = suggested
		}
	}

	return out
}

func containsLine(lines []string, marker string) bool {
	for _, l := range lines {
		if l == marker {
			return true
		}
	}
	return false
}
