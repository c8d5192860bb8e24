// SPDX-License-Identifier: MPL-2.0

package cueutil

// DefaultMaxFileSize is the maximum accepted input size when no override is
// given. Config files are tiny; anything near this limit is not a config file.
const DefaultMaxFileSize int64 = 1 << 20 // 1 MiB

// Option configures ParseAndDecode.
type Option func(*parseOptions)

type parseOptions struct {
	filename    string
	maxFileSize int64
	concrete    bool
}

func defaultOptions() parseOptions {
	return parseOptions{
		maxFileSize: DefaultMaxFileSize,
	}
}

// WithFilename sets the filename reported in diagnostics.
func WithFilename(name string) Option {
	return func(o *parseOptions) {
		o.filename = name
	}
}

// WithMaxFileSize overrides the input size ceiling.
func WithMaxFileSize(n int64) Option {
	return func(o *parseOptions) {
		o.maxFileSize = n
	}
}

// WithConcrete requires every field of the unified value to be concrete.
func WithConcrete() Option {
	return func(o *parseOptions) {
		o.concrete = true
	}
}
