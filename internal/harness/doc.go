// Package harness executes LNMP conformance suites against a format
// implementation.
//
// A suite (see package suite) groups test cases into four categories:
// structural, semantic, error-handling, and round-trip. The harness
// dispatches each case by shape:
//
//   - expected_canonical present: parse the input, re-encode it
//     canonically, and compare against the expected text
//   - expected describes fields: parse the input and compare the parsed
//     fields against the expectations
//   - expected describes an error: parse the input and require a
//     matching failure
//   - neither present: the case fails as malformed
//
// When no implementation is wired in, every case resolves to Skip so a
// suite can be exercised end to end before an implementation exists.
//
// # Deterministic Execution
//
// Results are collected in suite order regardless of worker count, and
// each case runs under a wall-clock budget so a hung implementation
// cannot stall the run.
package harness
