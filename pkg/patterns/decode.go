package patterns

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/japaniel/timeago/pkg/timeago"
)

// tableFile is the on-disk layout of one locale. YAML is a superset of JSON,
// so the original JSON pattern files decode with the same struct.
type tableFile struct {
	WordSeparator *string           `yaml:"word_separator"`
	Digits        string            `yaml:"digits,omitempty"`
	Seconds       []formItem        `yaml:"seconds"`
	Minutes       []formItem        `yaml:"minutes"`
	Hours         []formItem        `yaml:"hours"`
	Days          []formItem        `yaml:"days"`
	Weeks         []formItem        `yaml:"weeks"`
	Months        []formItem        `yaml:"months"`
	Years         []formItem        `yaml:"years"`
	SpecialCases  []specialCaseItem `yaml:"special_cases,omitempty"`
}

type specialCaseItem struct {
	Text   string `yaml:"text"`
	Unit   string `yaml:"unit"`
	Amount int    `yaml:"amount"`
}

// formItem is either a plain word-form or, as in the JSON pattern sources,
// an inline special case written as {"<amount>": "<text>"}.
type formItem struct {
	Form    string
	Special map[int]string
}

func (f *formItem) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		return node.Decode(&f.Form)
	case yaml.MappingNode:
		var raw map[string]string
		if err := node.Decode(&raw); err != nil {
			return err
		}
		f.Special = make(map[int]string, len(raw))
		for k, v := range raw {
			n, err := strconv.Atoi(k)
			if err != nil {
				return fmt.Errorf("line %d: special case amount %q is not a number", node.Line, k)
			}
			f.Special[n] = v
		}
		return nil
	}
	return fmt.Errorf("line %d: expected a word-form or a special case", node.Line)
}

func (tf *tableFile) units() map[timeago.Unit][]formItem {
	return map[timeago.Unit][]formItem{
		timeago.Second: tf.Seconds,
		timeago.Minute: tf.Minutes,
		timeago.Hour:   tf.Hours,
		timeago.Day:    tf.Days,
		timeago.Week:   tf.Weeks,
		timeago.Month:  tf.Months,
		timeago.Year:   tf.Years,
	}
}

// Decode reads one locale's pattern table from YAML or JSON.
func Decode(locale string, r io.Reader) (*timeago.PatternTable, error) {
	var tf tableFile
	if err := yaml.NewDecoder(r).Decode(&tf); err != nil {
		return nil, &timeago.ConfigurationError{Locale: locale, Reason: fmt.Sprintf("decode: %v", err)}
	}
	if tf.WordSeparator == nil {
		return nil, &timeago.ConfigurationError{Locale: locale, Reason: "word_separator is missing"}
	}

	var opts []timeago.TableOption
	if tf.Digits != "" {
		opts = append(opts, timeago.WithDigits(tf.Digits))
	}
	forms := make(map[timeago.Unit][]string)
	for unit, items := range tf.units() {
		for _, it := range items {
			if it.Special == nil {
				forms[unit] = append(forms[unit], it.Form)
				continue
			}
			for amount, text := range it.Special {
				opts = append(opts, timeago.WithSpecialCase(text, unit, amount))
			}
		}
	}
	for _, sc := range tf.SpecialCases {
		unit, err := timeago.ParseUnit(sc.Unit)
		if err != nil {
			return nil, &timeago.ConfigurationError{Locale: locale, Reason: fmt.Sprintf("special case %q: %v", sc.Text, err)}
		}
		opts = append(opts, timeago.WithSpecialCase(sc.Text, unit, sc.Amount))
	}
	return timeago.NewPatternTable(locale, *tf.WordSeparator, forms, opts...)
}

// LoadFile decodes the pattern table stored at path.
func LoadFile(locale, path string) (*timeago.PatternTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(locale, f)
}
