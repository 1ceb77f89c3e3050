// Package vectorstore provides persistent vector storage for the knowledge base.
//
// The default implementation, ChromemStore, embeds the chromem-go database:
// documents are embedded through an Embedder, kept in memory for search and
// persisted as gob files under a directory per collection, so the knowledge
// base survives process restarts.
//
// # Usage
//
//	store, err := vectorstore.NewChromemStore(vectorstore.ChromemConfig{
//	    Path:       "./chroma_db",
//	    Collection: "marketing_strategist_collection",
//	    VectorSize: 384,
//	}, embedder, logger, vectorstore.WithRegisterer(registry))
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	ids, err := store.AddDocuments(ctx, []vectorstore.Document{
//	    {ID: uuid.NewString(), Content: "Eco bottles reduce plastic waste."},
//	})
//	results, err := store.Search(ctx, "eco-friendly water bottle campaign", 3)
//
// Search results are ordered by cosine similarity, highest first. The
// requested result count is capped at the collection size.
package vectorstore
