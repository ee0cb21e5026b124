package badger

// NewMemoryRepository creates an in-memory article repository for testing.
// Closing the repository closes its backend.
func NewMemoryRepository(opts ...BackendOption) (*ArticleRepository, error) {
	backend, err := OpenBackend("", true, opts...)
	if err != nil {
		return nil, err
	}
	repo := NewArticleRepository(backend)
	repo.ownsBackend = true
	return repo, nil
}
