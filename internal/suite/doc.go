// Package suite defines the conformance test-case model and the loader
// that builds it from a parsed suite document.
//
// A suite document carries a version string and four fixed category
// sequences (structural, semantic, error-handling, round-trip). The loader
// consumes the document through the Node interface rather than a concrete
// YAML type, so the model stays independent of the configuration syntax;
// FromYAML adapts a yaml.v3 node tree.
//
// Suites and their cases are built once at load time and never mutated
// afterwards. Required case fields (name, category, description, input)
// are enforced at load time: a missing field aborts loading, it is not a
// per-case test failure.
package suite
