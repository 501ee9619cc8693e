// Package patterns ships the per-locale word-form tables and a process-wide
// cache that builds each table once, on first use.
package patterns

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
	"golang.org/x/text/language"

	"github.com/japaniel/timeago/pkg/timeago"
)

//go:embed data/*.yaml
var dataFS embed.FS

// ErrUnknownLocale is returned when no table is registered for a locale.
var ErrUnknownLocale = errors.New("unknown locale")

// ErrAlreadyLoaded is returned by Register when the locale's table has
// already been built and handed out.
var ErrAlreadyLoaded = errors.New("locale table already loaded")

// Source opens the serialized table of one locale.
type Source func() (io.ReadCloser, error)

// FileSource reads a table from a YAML or JSON file.
func FileSource(path string) Source {
	return func() (io.ReadCloser, error) { return os.Open(path) }
}

type result struct {
	table *timeago.PatternTable
	err   error
}

// Registry maps locale codes to pattern tables. Tables are built lazily and
// at most once per locale, including under concurrent first access; after
// that, lookups take no locks beyond a sync.Map read.
type Registry struct {
	mu      sync.RWMutex
	sources map[string]Source
	// claimed marks locales whose source a build has taken; guarded by mu.
	claimed map[string]bool

	tables sync.Map // locale key -> result
	group  singleflight.Group

	// Logger receives table construction failures. nil means no logging.
	Logger *slog.Logger
}

// NewRegistry returns a registry preloaded with the embedded locale data.
func NewRegistry() *Registry {
	r := &Registry{sources: make(map[string]Source), claimed: make(map[string]bool)}
	entries, err := dataFS.ReadDir("data")
	if err != nil {
		// The embed pattern guarantees the directory exists.
		panic(err)
	}
	for _, e := range entries {
		name := e.Name()
		code := strings.TrimSuffix(name, path.Ext(name))
		key, err := canonical(code)
		if err != nil {
			continue
		}
		file := "data/" + name
		r.sources[key] = func() (io.ReadCloser, error) { return dataFS.Open(file) }
	}
	return r
}

// Register adds or replaces the source of a locale. It fails once the locale's
// table has been built, since handed-out tables are never swapped.
func (r *Registry) Register(code string, src Source) error {
	key, err := canonical(code)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.claimed[key] {
		return fmt.Errorf("%w: %s", ErrAlreadyLoaded, key)
	}
	r.sources[key] = src
	return nil
}

// Locales lists the registered locale codes, sorted.
func (r *Registry) Locales() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.sources))
	for k := range r.sources {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Get returns the table for a locale code such as "tr", "es-419", "es_419"
// or "en-GB". A code with a region falls back to its language, and a bare
// language falls back to its first regional variant.
func (r *Registry) Get(code string) (*timeago.PatternTable, error) {
	key, err := r.lookup(code)
	if err != nil {
		return nil, err
	}
	if v, ok := r.tables.Load(key); ok {
		res := v.(result)
		return res.table, res.err
	}

	v, _, _ := r.group.Do(key, func() (any, error) {
		if v, ok := r.tables.Load(key); ok {
			return v, nil
		}
		res := build(key, r.claim(key))
		if res.err != nil && r.Logger != nil {
			r.Logger.Warn("pattern table unusable", "locale", key, "err", res.err)
		}
		r.tables.Store(key, res)
		return res, nil
	})
	res := v.(result)
	return res.table, res.err
}

// Parse looks up the table for code and parses phrase with it.
func (r *Registry) Parse(code, phrase string) (timeago.Duration, error) {
	table, err := r.Get(code)
	if err != nil {
		return timeago.Duration{}, err
	}
	return table.Parse(phrase)
}

func build(key string, src Source) result {
	rc, err := src()
	if err != nil {
		return result{err: &timeago.ConfigurationError{Locale: key, Reason: fmt.Sprintf("open: %v", err)}}
	}
	defer rc.Close()
	table, err := Decode(key, rc)
	return result{table: table, err: err}
}

// claim returns the current source of key and freezes it against Register.
func (r *Registry) claim(key string) Source {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.claimed[key] = true
	return r.sources[key]
}

// lookup resolves code to the key of a registered locale.
func (r *Registry) lookup(code string) (string, error) {
	key, err := canonical(code)
	if err != nil {
		return "", err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.sources[key]; ok {
		return key, nil
	}
	base, _, _ := strings.Cut(key, "-")
	if _, ok := r.sources[base]; ok {
		return base, nil
	}
	var variants []string
	for k := range r.sources {
		if strings.HasPrefix(k, base+"-") {
			variants = append(variants, k)
		}
	}
	if len(variants) > 0 {
		sort.Strings(variants)
		return variants[0], nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownLocale, code)
}

// canonical turns "ES_419" into "es-419" and "en-gb" into "en-GB". Scripts
// and extensions are dropped.
func canonical(code string) (string, error) {
	tag, err := language.Parse(strings.ReplaceAll(strings.TrimSpace(code), "_", "-"))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrUnknownLocale, code, err)
	}
	base, conf := tag.Base()
	if conf == language.No {
		return "", fmt.Errorf("%w: %s", ErrUnknownLocale, code)
	}
	key := base.String()
	if region, conf := tag.Region(); conf == language.Exact {
		key += "-" + region.String()
	}
	return key, nil
}

// Default is the process-wide registry.
var Default = NewRegistry()

// Get returns the table for code from the Default registry.
func Get(code string) (*timeago.PatternTable, error) { return Default.Get(code) }

// Parse parses phrase with the Default registry's table for code.
func Parse(code, phrase string) (timeago.Duration, error) { return Default.Parse(code, phrase) }

// Locales lists the locales of the Default registry.
func Locales() []string { return Default.Locales() }
