package bind_group_provider

// BindGroupProviderOption is a functional option used to configure a BindGroupProvider during construction.
type BindGroupProviderOption func(*bindGroupProvider)

// WithBufferSize requests a byte size for a buffer binding. Runtime-sized storage arrays and dynamic uniform
// arenas need this, since their layout only records the size of a single element.
//
// Parameters:
//   - binding: the binding index
//   - size: the buffer size in bytes
//
// Returns:
//   - BindGroupProviderOption: a function that records the requested size
func WithBufferSize(binding int, size uint64) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.bufferSizes[binding] = size
	}
}
