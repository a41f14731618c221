package safecall

// Option configures a wrapper at construction time.
type Option func(*options)

type options struct {
	name      string
	singleUse bool
}

// WithName attaches a diagnostic label to the wrapper. The label shows up
// in debug logs and lifecycle events and is immutable after construction.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithSingleUseDefault marks an explicit default as single-consumption:
// the stored value is handed out on the first post-cancellation call and
// the library drops its reference to it. What later post-cancellation
// calls return is unspecified (currently the zero value); relying on it
// is caller misuse. Only meaningful together with a WrapDefault*
// constructor.
func WithSingleUseDefault() Option {
	return func(o *options) {
		o.singleUse = true
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
