// Package format describes the per-bank grammar of a statement export:
// how it is read, segmented and extracted, which overrides apply and which
// output schema it produces.
package format

import (
	"fmt"

	"fjacquet/statement-csv/internal/models"
	"fjacquet/statement-csv/internal/segmenter"
)

// Source kinds
const (
	SourceLines = "lines"
	SourceCSV   = "csv"
	SourceXLS   = "xls"
)

// Segmentation strategies for line sources
const (
	SentinelOpen  = segmenter.SentinelOpen
	SentinelClose = segmenter.SentinelClose
)

// Amount grammars
const (
	AmountComma   = "comma"
	AmountDecimal = "decimal"
)

// Override match kinds
const (
	MatchContains = "contains"
	MatchExact    = "exact"
)

// Descriptor is the complete grammar of one export format.
type Descriptor struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Source      SourceSpec     `yaml:"source"`
	Segmenter   SegmenterSpec  `yaml:"segmenter"`
	Fields      FieldSpec      `yaml:"fields"`
	Amount      AmountSpec     `yaml:"amount"`
	Classify    ClassifySpec   `yaml:"classify"`
	Account     AccountSpec    `yaml:"account"`
	Record      RecordDefaults `yaml:"record"`
	Output      OutputSpec     `yaml:"output"`
}

// SourceSpec selects the source reader.
type SourceSpec struct {
	Kind    string `yaml:"kind"`
	Charset string `yaml:"charset"`
	// Delimiter separates CSV fields.
	Delimiter string `yaml:"delimiter"`
	// Sentinel is the first field of the row preceding data rows.
	Sentinel string `yaml:"sentinel"`
	// HeaderRows are skipped at the top of a spreadsheet.
	HeaderRows int `yaml:"header_rows"`
	Sheet      int `yaml:"sheet"`
}

// SegmenterSpec configures block detection for line sources.
type SegmenterSpec struct {
	Strategy      string   `yaml:"strategy"`
	Ignore        []string `yaml:"ignore"`
	Terminators   []string `yaml:"terminators"`
	DetailsPrefix string   `yaml:"details_prefix"`
	// DetailsTerminates closes a block on a details line.
	DetailsTerminates bool `yaml:"details_terminates"`
}

// SegmenterConfig returns the segmenter configuration described by s.
func (s SegmenterSpec) SegmenterConfig() segmenter.Config {
	return segmenter.Config{
		Strategy:          s.Strategy,
		Ignore:            s.Ignore,
		Terminators:       s.Terminators,
		DetailsPrefix:     s.DetailsPrefix,
		DetailsTerminates: s.DetailsTerminates,
	}
}

// FieldSpec holds field positions. For line sources only DescriptionLine
// is used; it defaults to 1 when the key is absent.
type FieldSpec struct {
	DescriptionLine *int `yaml:"description_line"`
	Date            int `yaml:"date"`
	Amount          int `yaml:"amount"`
	Description     int `yaml:"description"`
	// AccountHint is the field searched for account markers.
	AccountHint *int `yaml:"account_hint"`
}

// DescriptionIndex returns the block line used as description.
func (f FieldSpec) DescriptionIndex() int {
	if f.DescriptionLine == nil {
		return 1
	}
	return *f.DescriptionLine
}

// AmountSpec selects the amount grammar.
type AmountSpec struct {
	Grammar  string `yaml:"grammar"`
	Currency string `yaml:"currency"`
}

// ClassifySpec holds the format-specific classification settings.
type ClassifySpec struct {
	UnwantedPrefixes  []string       `yaml:"unwanted_prefixes"`
	Overrides         []OverrideSpec `yaml:"overrides"`
	FallbackTitleCase bool           `yaml:"fallback_title_case"`
	ATMMarker         string         `yaml:"atm_marker"`
	ATMMode           string         `yaml:"atm_mode"`
}

// OverrideSpec is one transaction-type marker. Nil pointers leave the
// corresponding field untouched.
type OverrideSpec struct {
	Marker string `yaml:"marker"`
	Match  string `yaml:"match"`
	// Field is the row field to test; nil tests the description.
	Field            *int    `yaml:"field"`
	EmptyDescription bool    `yaml:"empty_description"`
	Transfer         bool    `yaml:"transfer"`
	Mode             *string `yaml:"mode"`
	Payee            *string `yaml:"payee"`
	Category         *string `yaml:"category"`
	Comment          *string `yaml:"comment"`
}

// AccountSpec picks the account name.
type AccountSpec struct {
	Default string          `yaml:"default"`
	Number  string          `yaml:"number"`
	Markers []AccountMarker `yaml:"markers"`
}

// AccountMarker switches the account when Contains is found in the account
// hint field.
type AccountMarker struct {
	Contains string `yaml:"contains"`
	Account  string `yaml:"account"`
}

// RecordDefaults are copied into every record.
type RecordDefaults struct {
	Bank       string `yaml:"bank"`
	Unit       string `yaml:"unit"`
	Status     string `yaml:"status"`
	Tracker    string `yaml:"tracker"`
	Bookmarked string `yaml:"bookmarked"`
}

// OutputSpec is the format's default output shape.
type OutputSpec struct {
	Schema  string `yaml:"schema"`
	Reverse *bool  `yaml:"reverse"`
}

// IsLineSource reports whether the format is segmented into blocks.
func (d *Descriptor) IsLineSource() bool {
	return d.Source.Kind == SourceLines
}

// Validate checks that the descriptor is internally consistent.
func (d *Descriptor) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("format without name")
	}

	switch d.Source.Kind {
	case SourceLines:
		switch d.Segmenter.Strategy {
		case SentinelOpen, SentinelClose:
		default:
			return fmt.Errorf("format %s: unknown segmenter strategy %q", d.Name, d.Segmenter.Strategy)
		}
		if d.Segmenter.Strategy == SentinelClose && len(d.Segmenter.Terminators) == 0 && d.Segmenter.DetailsPrefix == "" {
			return fmt.Errorf("format %s: sentinel-close needs terminators", d.Name)
		}
		if d.Fields.DescriptionLine != nil && *d.Fields.DescriptionLine < 0 {
			return fmt.Errorf("format %s: negative description_line", d.Name)
		}
	case SourceCSV:
		if len([]rune(d.Source.Delimiter)) != 1 {
			return fmt.Errorf("format %s: csv delimiter must be a single character", d.Name)
		}
		if err := d.validateFieldIndexes(); err != nil {
			return err
		}
	case SourceXLS:
		if err := d.validateFieldIndexes(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("format %s: unknown source kind %q", d.Name, d.Source.Kind)
	}

	switch d.Amount.Grammar {
	case AmountComma, AmountDecimal:
	default:
		return fmt.Errorf("format %s: unknown amount grammar %q", d.Name, d.Amount.Grammar)
	}

	for i, o := range d.Classify.Overrides {
		if o.Marker == "" {
			return fmt.Errorf("format %s: override %d has no marker", d.Name, i)
		}
		if o.Match != MatchContains && o.Match != MatchExact {
			return fmt.Errorf("format %s: override %d: unknown match %q", d.Name, i, o.Match)
		}
	}

	switch d.Output.Schema {
	case "", "full", "legacy":
	default:
		return fmt.Errorf("format %s: unknown output schema %q", d.Name, d.Output.Schema)
	}

	return nil
}

func (d *Descriptor) validateFieldIndexes() error {
	if d.Fields.Date < 0 || d.Fields.Amount < 0 || d.Fields.Description < 0 {
		return fmt.Errorf("format %s: date, amount and description fields are required", d.Name)
	}
	return nil
}

// normalize fills defaults for fields a descriptor file may omit.
func (d *Descriptor) normalize() {
	if d.Amount.Grammar == "" {
		d.Amount.Grammar = AmountComma
	}
	if d.Segmenter.Ignore == nil {
		d.Segmenter.Ignore = []string{"", "Ok?"}
	}
	if d.Fields.DescriptionLine == nil && d.IsLineSource() {
		line := 1
		d.Fields.DescriptionLine = &line
	}
	if d.Classify.ATMMarker != "" && d.Classify.ATMMode == "" {
		d.Classify.ATMMode = models.ModeATM
	}
	for i := range d.Classify.Overrides {
		if d.Classify.Overrides[i].Match == "" {
			d.Classify.Overrides[i].Match = MatchContains
		}
	}
}

// ToOverride converts an optional YAML value to a models.Override.
func ToOverride(v *string) models.Override {
	if v == nil {
		return models.Override{}
	}
	return models.Some(*v)
}
