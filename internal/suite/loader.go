package suite

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// categoryKeys maps document keys to the suite sequence they populate.
// Order matters: it is the canonical run order.
var categoryKeys = []string{
	"structural_tests",
	"semantic_tests",
	"error_handling_tests",
	"round_trip_tests",
}

// LoadFile reads and loads a suite document from disk. An unreadable or
// unparseable file is a load failure, surfaced before any case executes.
func LoadFile(path string) (*TestSuite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read suite file: %w", err)
	}
	s, err := LoadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// LoadBytes parses YAML bytes and loads the suite.
func LoadBytes(data []byte) (*TestSuite, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse suite document: %w", err)
	}
	return Load(FromYAML(&root))
}

// Load builds a TestSuite from a parsed document tree. Missing category
// keys yield empty sequences; a malformed case aborts loading.
func Load(root Node) (*TestSuite, error) {
	if root == nil {
		return nil, fmt.Errorf("suite document is empty")
	}
	if _, ok := root.Mapping(); !ok {
		return nil, fmt.Errorf("suite document root is not a mapping")
	}

	s := &TestSuite{Version: "unknown"}
	if v := lookup(root, "version"); v != nil {
		ver, err := asString(v)
		if err != nil {
			return nil, fmt.Errorf("version: %w", err)
		}
		s.Version = ver
	}

	for _, key := range categoryKeys {
		node := lookup(root, key)
		if node == nil {
			continue
		}
		cases, err := loadCases(node)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		switch key {
		case "structural_tests":
			s.StructuralTests = cases
		case "semantic_tests":
			s.SemanticTests = cases
		case "error_handling_tests":
			s.ErrorHandlingTests = cases
		case "round_trip_tests":
			s.RoundTripTests = cases
		}
	}

	return s, nil
}

func loadCases(node Node) ([]TestCase, error) {
	seq, ok := node.Sequence()
	if !ok {
		return nil, fmt.Errorf("expected a sequence of test cases")
	}
	cases := make([]TestCase, 0, len(seq))
	for i, item := range seq {
		tc, err := loadCase(item)
		if err != nil {
			if tc.Name != "" {
				return nil, fmt.Errorf("case %q: %w", tc.Name, err)
			}
			return nil, fmt.Errorf("case %d: %w", i, err)
		}
		cases = append(cases, tc)
	}
	return cases, nil
}

func loadCase(node Node) (TestCase, error) {
	var tc TestCase
	if _, ok := node.Mapping(); !ok {
		return tc, fmt.Errorf("test case is not a mapping")
	}

	// name, category, description, input are required; absence of any of
	// them is a load-time malformation.
	for _, req := range []struct {
		key string
		dst *string
	}{
		{"name", &tc.Name},
		{"category", &tc.Category},
		{"description", &tc.Description},
		{"input", &tc.Input},
	} {
		v := lookup(node, req.key)
		if v == nil {
			return tc, fmt.Errorf("missing required field %q", req.key)
		}
		s, err := asString(v)
		if err != nil {
			return tc, fmt.Errorf("%s: %w", req.key, err)
		}
		*req.dst = s
	}

	if cfg := lookup(node, "config"); cfg != nil {
		c, err := loadConfig(cfg)
		if err != nil {
			return tc, fmt.Errorf("config: %w", err)
		}
		tc.Config = c
	}

	if exp := lookup(node, "expected"); exp != nil {
		out, err := loadExpected(exp)
		if err != nil {
			return tc, fmt.Errorf("expected: %w", err)
		}
		tc.Expected = out
	}

	if canon := lookup(node, "expected_canonical"); canon != nil {
		s, err := asString(canon)
		if err != nil {
			return tc, fmt.Errorf("expected_canonical: %w", err)
		}
		tc.ExpectedCanonical = &s
	}

	return tc, nil
}

// loadConfig loads each config key independently, so absent keys keep the
// TestConfig defaults.
func loadConfig(node Node) (TestConfig, error) {
	var cfg TestConfig
	if _, ok := node.Mapping(); !ok {
		return cfg, fmt.Errorf("config is not a mapping")
	}

	for _, opt := range []struct {
		key string
		dst *bool
	}{
		{"normalize_values", &cfg.NormalizeValues},
		{"validate_checksums", &cfg.ValidateChecksums},
		{"strict_mode", &cfg.StrictMode},
		{"preserve_checksums", &cfg.PreserveChecksums},
	} {
		v := lookup(node, opt.key)
		if v == nil {
			continue
		}
		b, err := asBool(v)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", opt.key, err)
		}
		*opt.dst = b
	}

	if v := lookup(node, "max_nesting_depth"); v != nil {
		d, err := asInt(v)
		if err != nil {
			return cfg, fmt.Errorf("max_nesting_depth: %w", err)
		}
		if d < 0 {
			return cfg, fmt.Errorf("max_nesting_depth: must not be negative, got %d", d)
		}
		depth := int(d)
		cfg.MaxNestingDepth = &depth
	}

	if v := lookup(node, "equivalence_mapping"); v != nil {
		m, err := loadEquivalenceMapping(v)
		if err != nil {
			return cfg, fmt.Errorf("equivalence_mapping: %w", err)
		}
		cfg.EquivalenceMapping = m
	}

	return cfg, nil
}

func loadEquivalenceMapping(node Node) (map[uint16]map[string]string, error) {
	entries, ok := node.Mapping()
	if !ok {
		return nil, fmt.Errorf("expected a mapping keyed by field id")
	}
	out := make(map[uint16]map[string]string, len(entries))
	for _, e := range entries {
		fid, err := parseFieldID(e.Key)
		if err != nil {
			return nil, err
		}
		inner, ok := e.Value.Mapping()
		if !ok {
			return nil, fmt.Errorf("field %d: expected a representation mapping", fid)
		}
		reps := make(map[string]string, len(inner))
		for _, rep := range inner {
			to, err := asString(rep.Value)
			if err != nil {
				return nil, fmt.Errorf("field %d, %q: %w", fid, rep.Key, err)
			}
			reps[rep.Key] = to
		}
		out[fid] = reps
	}
	return out, nil
}

// loadExpected classifies the expectation: an "error" key makes it an
// error expectation, otherwise a field-set expectation.
func loadExpected(node Node) (*ExpectedOutput, error) {
	if _, ok := node.Mapping(); !ok {
		return nil, fmt.Errorf("expected is not a mapping")
	}

	if lookup(node, "error") != nil {
		e, err := loadExpectedError(node)
		if err != nil {
			return nil, err
		}
		return ErrorOutput(e), nil
	}

	var fields []ExpectedField
	if fnode := lookup(node, "fields"); fnode != nil {
		var err error
		fields, err = loadExpectedFields(fnode)
		if err != nil {
			return nil, err
		}
	}
	return FieldsOutput(fields), nil
}

func loadExpectedFields(node Node) ([]ExpectedField, error) {
	seq, ok := node.Sequence()
	if !ok {
		return nil, fmt.Errorf("fields is not a sequence")
	}
	fields := make([]ExpectedField, 0, len(seq))
	seen := make(map[uint16]bool, len(seq))
	for i, item := range seq {
		f, err := loadExpectedField(item)
		if err != nil {
			return nil, fmt.Errorf("fields[%d]: %w", i, err)
		}
		if seen[f.FID] {
			return nil, fmt.Errorf("fields[%d]: duplicate field id %d", i, f.FID)
		}
		seen[f.FID] = true
		fields = append(fields, f)
	}
	// Expected fields compare in canonical fid order.
	sort.Slice(fields, func(i, j int) bool { return fields[i].FID < fields[j].FID })
	return fields, nil
}

func loadExpectedField(node Node) (ExpectedField, error) {
	var f ExpectedField
	if _, ok := node.Mapping(); !ok {
		return f, fmt.Errorf("field entry is not a mapping")
	}

	fidNode := lookup(node, "fid")
	if fidNode == nil {
		return f, fmt.Errorf("missing required field %q", "fid")
	}
	fid, err := asUint16(fidNode)
	if err != nil {
		return f, fmt.Errorf("fid: %w", err)
	}
	f.FID = fid

	typeNode := lookup(node, "type")
	if typeNode == nil {
		return f, fmt.Errorf("missing required field %q", "type")
	}
	if f.TypeName, err = asString(typeNode); err != nil {
		return f, fmt.Errorf("type: %w", err)
	}

	valueNode := lookup(node, "value")
	if valueNode == nil {
		return f, fmt.Errorf("missing required field %q", "value")
	}
	f.Value = decodeTree(valueNode)

	if cs := lookup(node, "checksum"); cs != nil {
		if f.Checksum, err = asString(cs); err != nil {
			return f, fmt.Errorf("checksum: %w", err)
		}
	}

	return f, nil
}

func loadExpectedError(node Node) (ExpectedError, error) {
	var e ExpectedError

	tag, err := asString(lookup(node, "error"))
	if err != nil {
		return e, fmt.Errorf("error: %w", err)
	}
	e.Error = tag

	msgNode := lookup(node, "message")
	if msgNode == nil {
		return e, fmt.Errorf("missing required field %q", "message")
	}
	if e.Message, err = asString(msgNode); err != nil {
		return e, fmt.Errorf("message: %w", err)
	}

	if v := lookup(node, "field_id"); v != nil {
		fid, err := asUint16(v)
		if err != nil {
			return e, fmt.Errorf("field_id: %w", err)
		}
		e.FieldID = &fid
	}
	for _, opt := range []struct {
		key string
		dst **int
	}{
		{"line", &e.Line},
		{"column", &e.Column},
		{"max_depth", &e.MaxDepth},
	} {
		v := lookup(node, opt.key)
		if v == nil {
			continue
		}
		n, err := asInt(v)
		if err != nil {
			return e, fmt.Errorf("%s: %w", opt.key, err)
		}
		val := int(n)
		*opt.dst = &val
	}

	return e, nil
}

// Scalar coercions. The YAML adapter already types scalars; these reject
// structurally wrong nodes with a message naming what was found.

func asString(n Node) (string, error) {
	if n == nil {
		return "", fmt.Errorf("missing value")
	}
	v, ok := n.Scalar()
	if !ok {
		return "", fmt.Errorf("expected a scalar")
	}
	switch s := v.(type) {
	case string:
		return s, nil
	case int64:
		return fmt.Sprintf("%d", s), nil
	case float64:
		return fmt.Sprintf("%v", s), nil
	case bool:
		return fmt.Sprintf("%t", s), nil
	default:
		return "", fmt.Errorf("expected a string")
	}
}

func asBool(n Node) (bool, error) {
	v, ok := n.Scalar()
	if !ok {
		return false, fmt.Errorf("expected a boolean")
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("expected a boolean, got %T", v)
	}
	return b, nil
}

func asInt(n Node) (int64, error) {
	v, ok := n.Scalar()
	if !ok {
		return 0, fmt.Errorf("expected an integer")
	}
	i, ok := v.(int64)
	if !ok {
		return 0, fmt.Errorf("expected an integer, got %T", v)
	}
	return i, nil
}

func asUint16(n Node) (uint16, error) {
	i, err := asInt(n)
	if err != nil {
		return 0, err
	}
	if i < 0 || i > 65535 {
		return 0, fmt.Errorf("field id %d exceeds 16-bit range", i)
	}
	return uint16(i), nil
}

func parseFieldID(key string) (uint16, error) {
	i, err := strconv.ParseInt(key, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid field id key %q", key)
	}
	if i < 0 || i > 65535 {
		return 0, fmt.Errorf("field id %d exceeds 16-bit range", i)
	}
	return uint16(i), nil
}
