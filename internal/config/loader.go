package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

type SourceKind string

const (
	SourceDefault SourceKind = "default"
	SourceFile    SourceKind = "file"
)

// Source records where a config key got its value.
type Source struct {
	Kind   SourceKind
	File   string
	Line   int
	Column int
}

func (s Source) String() string {
	if s.Kind != SourceFile || s.File == "" {
		return string(SourceDefault)
	}
	if s.Line > 0 {
		return fmt.Sprintf("file:%s:%d:%d", s.File, s.Line, s.Column)
	}
	return "file:" + s.File
}

type LoadResult struct {
	Config  *Config
	Sources map[string]Source // YAML path -> last file that set it
	Files   []string          // loaded files, in merge order
}

// SourceOf returns where key was set, or a default source.
func (r *LoadResult) SourceOf(key string) Source {
	if src, ok := r.Sources[key]; ok {
		return src
	}
	return Source{Kind: SourceDefault}
}

// Load reads the configuration from the standard location.
func Load() (*Config, error) {
	res, err := LoadWithSources()
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

// LoadWithSources is Load plus per-key source information.
func LoadWithSources() (*LoadResult, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads path (and its includes) over the defaults. A missing
// file yields the defaults.
func LoadFromPath(path string) (*LoadResult, error) {
	raw := RawConfig{}
	sources := map[string]Source{}
	var files []string

	exists, err := pathExists(path)
	if err != nil {
		return nil, err
	}
	if exists {
		raw, sources, files, err = loadRawMerged(path, map[string]struct{}{}, nil)
		if err != nil {
			return nil, err
		}
	}

	cfg := BuildEffectiveConfig(raw)
	if err := cfg.Validate(); err != nil {
		return nil, attachSourceContext(err, sources)
	}

	return &LoadResult{
		Config:  cfg,
		Sources: sources,
		Files:   files,
	}, nil
}

// loadRawMerged reads one file, merges its includes first and the file
// itself last so that it overrides them.
func loadRawMerged(path string, seen map[string]struct{}, stack []string) (RawConfig, map[string]Source, []string, error) {
	canon, err := canonicalPath(path)
	if err != nil {
		return RawConfig{}, nil, nil, err
	}
	for _, existing := range stack {
		if existing == canon {
			return RawConfig{}, nil, nil, fmt.Errorf("include cycle detected: %s -> %s", strings.Join(stack, " -> "), canon)
		}
	}
	if _, ok := seen[canon]; ok {
		return RawConfig{}, map[string]Source{}, nil, nil
	}
	seen[canon] = struct{}{}

	data, err := os.ReadFile(canon)
	if err != nil {
		return RawConfig{}, nil, nil, fmt.Errorf("%s: failed to read: %w", canon, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return RawConfig{}, nil, nil, fmt.Errorf("%s: failed to parse yaml: %w", canon, err)
	}

	var raw RawConfig
	if err := decodeStrictYAML(data, &raw); err != nil {
		return RawConfig{}, nil, nil, fmt.Errorf("%s: %w", canon, err)
	}

	merged := RawConfig{}
	sources := map[string]Source{}
	var files []string

	refs := collectIncludeRefs(&doc)
	for i, include := range raw.Include {
		paths, err := expandInclude(canon, include)
		if err != nil {
			if i < len(refs) {
				return RawConfig{}, nil, nil, fmt.Errorf("%s:%d:%d: include %q: %w", canon, refs[i].Line, refs[i].Column, include, err)
			}
			return RawConfig{}, nil, nil, fmt.Errorf("%s: include %q: %w", canon, include, err)
		}
		for _, incPath := range paths {
			incRaw, incSources, incFiles, err := loadRawMerged(incPath, seen, append(stack, canon))
			if err != nil {
				return RawConfig{}, nil, nil, err
			}
			merged = merged.merge(incRaw)
			for key, src := range incSources {
				sources[key] = src
			}
			files = append(files, incFiles...)
		}
	}

	merged = merged.merge(raw)
	for key, src := range collectSources(&doc, canon) {
		sources[key] = src
	}
	files = append(files, canon)

	return merged, sources, files, nil
}

func decodeStrictYAML(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}

func canonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %q: %w", path, err)
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real, nil
	}
	return abs, nil
}

// expandInclude resolves include relative to baseFile. Directories expand to
// their *.yaml / *.yml files in lexical order.
func expandInclude(baseFile string, include string) ([]string, error) {
	if include == "" {
		return nil, fmt.Errorf("path is empty")
	}
	path := include
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(filepath.Dir(baseFile), path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, ent := range entries {
		if ent.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(ent.Name())) {
		case ".yaml", ".yml":
			files = append(files, filepath.Join(path, ent.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func pathExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func collectSources(doc *yaml.Node, file string) map[string]Source {
	out := make(map[string]Source)
	if doc == nil {
		return out
	}
	node := doc
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	collectSourcesRec(node, file, "", out)
	return out
}

func collectSourcesRec(node *yaml.Node, file string, prefix string, out map[string]Source) {
	if node == nil || node.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		val := node.Content[i+1]
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		out[path] = Source{Kind: SourceFile, File: file, Line: val.Line, Column: val.Column}
		collectSourcesRec(val, file, path, out)
	}
}

// collectIncludeRefs returns the scalar nodes of the top-level include key
// so include errors can point at a line.
func collectIncludeRefs(doc *yaml.Node) []*yaml.Node {
	node := doc
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	if node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value != "include" {
			continue
		}
		val := node.Content[i+1]
		switch val.Kind {
		case yaml.ScalarNode:
			return []*yaml.Node{val}
		case yaml.SequenceNode:
			return val.Content
		}
	}
	return nil
}

// attachSourceContext decorates a ValidationError with the file position of
// the offending key. Indexed paths fall back to their parent key.
func attachSourceContext(err error, sources map[string]Source) error {
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Path == "" {
		return err
	}
	key := verr.Path
	if idx := strings.IndexByte(key, '['); idx >= 0 {
		key = key[:idx]
	}
	if src, ok := sources[key]; ok {
		verr.Source = src
	}
	return verr
}
