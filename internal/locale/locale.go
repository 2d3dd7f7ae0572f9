// Package locale resolves message keys to display text in the configured
// language.
//
// Lookups go through three layers: the selected language's overlay, the
// default (English) table, and finally a marker string naming the missing
// key. Overlays are YAML files named <lang>.yaml, read from an optional
// directory first and from the built-in set second. English has no built-in
// overlay but may still be overridden by en.yaml in that directory.
package locale

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/quocvuong92/cmdrouter/internal/logging"
)

// DefaultLanguage is served by the built-in table and needs no file.
const DefaultLanguage = "en"

//go:embed locales/*.yaml
var embedded embed.FS

// Catalog is a localized text source. It is safe for concurrent use.
type Catalog struct {
	mu       sync.RWMutex
	language string
	overlay  map[string]string
	defaults map[string]string
	dir      string
	logger   *logging.Logger
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithDir adds a directory of <lang>.yaml files that take priority over the
// built-in translations.
func WithDir(dir string) Option {
	return func(c *Catalog) { c.dir = dir }
}

// WithLogger sets the logger used for fallback warnings.
func WithLogger(l *logging.Logger) Option {
	return func(c *Catalog) { c.logger = l }
}

// New builds a catalog for the requested language. An unknown or unreadable
// language falls back to English with a warning; New never fails.
func New(lang string, opts ...Option) *Catalog {
	c := &Catalog{
		language: DefaultLanguage,
		defaults: defaultMessages(),
		logger:   logging.DefaultLogger,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.load(lang)
	return c
}

func (c *Catalog) load(lang string) {
	lang = strings.TrimSpace(lang)
	if lang == "" || strings.EqualFold(lang, DefaultLanguage) {
		c.loadDefaultOverlay()
		return
	}

	fallback := func(reason string) {
		c.logger.Warn(fmt.Sprintf("Translation Index %s.yaml could not be found. Falling back to Default Translation (English).", lang),
			logging.Fields{"language": lang, "reason": reason})
	}

	requested, err := language.Parse(lang)
	if err != nil {
		fallback(err.Error())
		return
	}

	names := Available(c.dir)
	tags := make([]language.Tag, 0, len(names))
	for _, n := range names {
		tags = append(tags, language.Make(n))
	}

	// English is first so it is what the matcher reports on no match
	_, idx, conf := language.NewMatcher(tags).Match(requested)
	if conf == language.No {
		fallback("no matching translation")
		return
	}
	if names[idx] == DefaultLanguage {
		c.loadDefaultOverlay()
		return
	}

	data, err := c.read(names[idx])
	if err != nil {
		fallback(err.Error())
		return
	}
	overlay, err := parse(data)
	if err != nil {
		fallback(err.Error())
		return
	}

	c.language = names[idx]
	c.overlay = overlay
}

// loadDefaultOverlay applies en.yaml from the override directory, if any.
// English has no built-in file, so a missing one is not worth a warning.
func (c *Catalog) loadDefaultOverlay() {
	if c.dir == "" {
		return
	}
	data, err := os.ReadFile(filepath.Join(c.dir, DefaultLanguage+".yaml"))
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warn("English overlay could not be read", logging.Fields{"dir": c.dir, "reason": err.Error()})
		}
		return
	}
	overlay, err := parse(data)
	if err != nil {
		c.logger.Warn("English overlay could not be parsed", logging.Fields{"dir": c.dir, "reason": err.Error()})
		return
	}
	c.overlay = overlay
}

// read prefers the override directory over the built-in files
func (c *Catalog) read(name string) ([]byte, error) {
	if c.dir != "" {
		data, err := os.ReadFile(filepath.Join(c.dir, name+".yaml"))
		if err == nil {
			return data, nil
		}
		if !os.IsNotExist(err) {
			return nil, err
		}
	}
	return fs.ReadFile(embedded, "locales/"+name+".yaml")
}

// parse flattens a YAML document into dotted keys
func parse(data []byte) (map[string]string, error) {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse translation: %w", err)
	}
	out := make(map[string]string)
	flatten("", raw, out)
	return out, nil
}

func flatten(prefix string, in map[string]interface{}, out map[string]string) {
	for k, v := range in {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]interface{}:
			flatten(key, val, out)
		case nil:
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}

// Available lists the languages that can be selected, English first. dir
// may be empty.
func Available(dir string) []string {
	seen := map[string]bool{DefaultLanguage: true}
	var names []string

	add := func(file string) {
		name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		if _, err := language.Parse(name); err != nil || seen[name] {
			return
		}
		seen[name] = true
		names = append(names, name)
	}

	if files, err := fs.Glob(embedded, "locales/*.yaml"); err == nil {
		for _, f := range files {
			add(f)
		}
	}
	if dir != "" {
		if files, err := filepath.Glob(filepath.Join(dir, "*.yaml")); err == nil {
			for _, f := range files {
				add(f)
			}
		}
	}

	sort.Strings(names)
	return append([]string{DefaultLanguage}, names...)
}

// Language returns the language actually in use.
func (c *Catalog) Language() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.language
}

// Text returns the message for key, or "Invalid Translation-Key: <key>".
func (c *Catalog) Text(key string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if v, ok := c.overlay[key]; ok && v != "" && v != "null" {
		return v
	}
	if v, ok := c.defaults[key]; ok && v != "" && v != "null" {
		return v
	}
	return "Invalid Translation-Key: " + key
}

// Textf formats the message for key with args.
func (c *Catalog) Textf(key string, args ...interface{}) string {
	return fmt.Sprintf(c.Text(key), args...)
}

// AddDefault sets a default (English) message. Overlays still win.
func (c *Catalog) AddDefault(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.defaults[key] = value
}

// Append merges values into the default table, replacing existing keys.
func (c *Catalog) Append(values map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	merged := make(map[string]string, len(c.defaults)+len(values))
	for k, v := range c.defaults {
		merged[k] = v
	}
	for k, v := range values {
		merged[k] = v
	}
	c.defaults = merged
}
