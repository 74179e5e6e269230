package metadata

// NewMemory creates a store that keeps rows in process memory only. Rows do
// not survive a restart and Reset never fails.
func NewMemory(opts ...StoreOption) *MetadataStore {
	return newStore(nil, newStoreConfig("memory", opts))
}
