// Package manifest implements the INI-shaped manifest format: a
// [config] section of backend settings and a [HEAD] section mapping
// POSIX-relative file paths to content hashes.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-ini/ini"
	"github.com/jacobfgrant/chonky/internal/errs"
)

const (
	sectionConfig = "config"
	sectionHead   = "HEAD"
)

// builtinIgnore is always ignored by the Walker regardless of the
// manifest's ignore setting (spec.md I4): the local manifest itself,
// and the advisory lock file reconciler.Client maintains beside it.
// Neither is tracked content.
var builtinIgnore = []string{".HEAD", "chonky.lock"}

// configEntry preserves the insertion order of [config] keys.
type configEntry struct {
	key   string
	value string
}

// Manifest is a parsed manifest file: an ordered config map and a
// path -> hash HEAD map.
type Manifest struct {
	config      []configEntry
	configIndex map[string]int
	head        map[string]string
}

// New returns an empty manifest with both sections present.
func New() *Manifest {
	return &Manifest{
		configIndex: make(map[string]int),
		head:        make(map[string]string),
	}
}

// Load reads and parses a manifest file from disk.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.IO(fmt.Sprintf("reading manifest %s", path), err)
	}
	return Parse(data)
}

// Parse parses manifest bytes in the INI-shaped format described in
// spec.md §4.2.
func Parse(data []byte) (*Manifest, error) {
	f, err := ini.LoadSources(ini.LoadOptions{
		Insensitive: false, // keys are case-sensitive (spec.md §4.2)
	}, data)
	if err != nil {
		return nil, errs.Parse("parsing manifest", err)
	}

	m := New()

	if f.HasSection(sectionConfig) {
		sec := f.Section(sectionConfig)
		for _, key := range sec.Keys() {
			m.ConfigSet(key.Name(), key.Value())
		}
	}

	if !f.HasSection(sectionHead) {
		return nil, errs.Parse("manifest is missing required [HEAD] section", nil)
	}
	sec := f.Section(sectionHead)
	for _, key := range sec.Keys() {
		m.head[key.Name()] = strings.TrimSpace(key.Value())
	}

	return m, nil
}

// Save serializes the manifest and writes it atomically (write to a
// temp file in the same directory, then rename).
func (m *Manifest) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errs.IO(fmt.Sprintf("creating directory for %s", path), err)
	}

	data := m.serialize()

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errs.IO(fmt.Sprintf("writing %s", tmp), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errs.IO(fmt.Sprintf("renaming %s to %s", tmp, path), err)
	}
	return nil
}

// serialize produces the canonical text form: [config] in insertion
// order, [HEAD] sorted by Unicode codepoint, so manifests are
// text-diffable and merge-friendly (spec.md §3, P5).
func (m *Manifest) serialize() []byte {
	var b strings.Builder

	b.WriteString("[config]\n")
	for _, e := range m.config {
		fmt.Fprintf(&b, "%s = %s\n", e.key, e.value)
	}

	b.WriteString("\n[HEAD]\n")
	for _, path := range m.sortedHeadKeys() {
		fmt.Fprintf(&b, "%s = %s\n", path, m.head[path])
	}

	return []byte(b.String())
}

func (m *Manifest) sortedHeadKeys() []string {
	keys := make([]string, 0, len(m.head))
	for k := range m.head {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ConfigGet returns the value of a [config] key and whether it was set.
func (m *Manifest) ConfigGet(key string) (string, bool) {
	idx, ok := m.configIndex[key]
	if !ok {
		return "", false
	}
	return m.config[idx].value, true
}

// ConfigSet sets a [config] key, preserving first-seen order.
func (m *Manifest) ConfigSet(key, value string) {
	if idx, ok := m.configIndex[key]; ok {
		m.config[idx].value = value
		return
	}
	m.configIndex[key] = len(m.config)
	m.config = append(m.config, configEntry{key: key, value: value})
}

// HeadGet returns the hash recorded for path and whether it exists.
func (m *Manifest) HeadGet(path string) (string, bool) {
	h, ok := m.head[path]
	return h, ok
}

// HeadSet records hash as the content hash for path.
func (m *Manifest) HeadSet(path, hash string) {
	m.head[path] = hash
}

// HeadDelete removes path from the HEAD section.
func (m *Manifest) HeadDelete(path string) {
	delete(m.head, path)
}

// HeadEntry is a single (path, hash) pair.
type HeadEntry struct {
	Path string
	Hash string
}

// HeadItems returns all (path, hash) pairs ordered by path.
func (m *Manifest) HeadItems() []HeadEntry {
	keys := m.sortedHeadKeys()
	items := make([]HeadEntry, 0, len(keys))
	for _, k := range keys {
		items = append(items, HeadEntry{Path: k, Hash: m.head[k]})
	}
	return items
}

// HeadLen reports how many entries are in the HEAD section.
func (m *Manifest) HeadLen() int {
	return len(m.head)
}

// SetHead replaces the entire HEAD section with head's contents.
func (m *Manifest) SetHead(head map[string]string) {
	m.head = make(map[string]string, len(head))
	for k, v := range head {
		m.head[k] = v
	}
}

// CloneHead returns a copy of the HEAD map suitable for mutation by
// the caller without aliasing m's internal state.
func (m *Manifest) CloneHead() map[string]string {
	out := make(map[string]string, len(m.head))
	for k, v := range m.head {
		out[k] = v
	}
	return out
}

// --- [config] convenience accessors (spec.md §3) ---

func (m *Manifest) Type() string {
	v, _ := m.ConfigGet("type")
	return v
}

func (m *Manifest) Bucket() string {
	v, _ := m.ConfigGet("bucket")
	return v
}

func (m *Manifest) Endpoint() string {
	v, _ := m.ConfigGet("endpoint")
	return v
}

func (m *Manifest) Root() string {
	v, _ := m.ConfigGet("root")
	return v
}

func (m *Manifest) Workspace() string {
	v, _ := m.ConfigGet("workspace")
	return v
}

// Region returns the [config] "region" override, defaulting to
// "us-east-1" for S3-compatible backends that ignore region but still
// require one on the wire.
func (m *Manifest) Region() string {
	v, ok := m.ConfigGet("region")
	if !ok || strings.TrimSpace(v) == "" {
		return "us-east-1"
	}
	return v
}

// IgnorePatterns returns the configured ignore globs plus the
// built-in ignore list (spec.md §4.3: infrastructure files are always
// ignored, regardless of the manifest's own ignore setting).
func (m *Manifest) IgnorePatterns() []string {
	patterns := append([]string{}, builtinIgnore...)
	v, ok := m.ConfigGet("ignore")
	if !ok || strings.TrimSpace(v) == "" {
		return patterns
	}
	return append(patterns, strings.Fields(v)...)
}

// IsEmpty reports whether the HEAD section has no entries.
func (m *Manifest) IsEmpty() bool {
	return len(m.head) == 0
}
