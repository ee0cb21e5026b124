// Package mock provides test double implementations of the storage
// collaborators.
//
// # Usage in Tests
//
//	// Serve a fixed set of articles
//	store := mock.NewMockContentStore(article1, article2)
//	sig, err := builder.Build(ctx, article1.ID)
//
//	// Custom behavior injection
//	store.WithGetArticleFunc(func(ctx context.Context, id string) (*core.Article, error) {
//	    return nil, core.ErrUpstreamUnavailable
//	})
//
//	// Check call counts
//	count := store.GetArticleCalls(article1.ID)
//
// # Default Behavior
//
//   - MockContentStore: serves its articles by id and searches them by
//     annotation id and inclusive publish window, newest first
//   - MockTranslator: maps every annotation id to itself
package mock
