package bind_group_provider

// BufferWrite is one queued upload into a provider's buffer. Writes are applied in order,
// so a later write to the same range replaces an earlier one.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}
