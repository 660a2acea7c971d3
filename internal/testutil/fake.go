// Package testutil provides fakes for harness tests.
package testutil

import (
	"context"
	"sync"

	"github.com/lnmp-format/conformance/internal/harness"
)

// FakeImplementation is a scriptable implementation for runner tests.
//
// Thread-safety: call counters are mutex-protected, so a fake can back
// a multi-worker run.
type FakeImplementation struct {
	// ParseFn handles Parse calls. When nil, Parse returns an empty
	// record.
	ParseFn func(ctx context.Context, input string, opts harness.ParseOptions) (harness.Record, error)

	// EncodeFn handles Encode calls. When nil, Encode returns "".
	EncodeFn func(ctx context.Context, rec harness.Record, opts harness.EncodeOptions) (string, error)

	mu          sync.Mutex
	parseCalls  int
	encodeCalls int
}

func (f *FakeImplementation) Name() string { return "fake" }

func (f *FakeImplementation) Parse(ctx context.Context, input string, opts harness.ParseOptions) (harness.Record, error) {
	f.mu.Lock()
	f.parseCalls++
	f.mu.Unlock()
	if f.ParseFn == nil {
		return harness.StaticRecord{}, nil
	}
	return f.ParseFn(ctx, input, opts)
}

func (f *FakeImplementation) Encode(ctx context.Context, rec harness.Record, opts harness.EncodeOptions) (string, error) {
	f.mu.Lock()
	f.encodeCalls++
	f.mu.Unlock()
	if f.EncodeFn == nil {
		return "", nil
	}
	return f.EncodeFn(ctx, rec, opts)
}

// ParseCalls returns how many times Parse was invoked.
func (f *FakeImplementation) ParseCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.parseCalls
}

// EncodeCalls returns how many times Encode was invoked.
func (f *FakeImplementation) EncodeCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.encodeCalls
}
