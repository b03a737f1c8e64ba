package poller

const defaultMaxEvents = 1

// Options configures Create. Start from NewOptions, which sets MaxEvents to 1.
type Options struct {
	// MaxEvents bounds how many events one Poll call returns. It must be at
	// least 1.
	MaxEvents int
	Kernel    Kernel
	Resolver  Resolver
}

func NewOptions() *Options {
	return &Options{MaxEvents: defaultMaxEvents}
}

func (opts *Options) SetMaxEvents(n int) *Options {
	opts.MaxEvents = n
	return opts
}

func (opts *Options) SetKernel(k Kernel) *Options {
	opts.Kernel = k
	return opts
}

func (opts *Options) SetResolver(r Resolver) *Options {
	opts.Resolver = r
	return opts
}
