// Package snapshot persists collected and enriched catalog records between
// pipeline steps.
//
// Two backends are provided:
//   - FileStore writes one indented JSON document, atomically replaced on
//     every flush or save.
//   - RedisStore keeps one list entry per record plus a small metadata key.
//     Collected pages go to a staging list as they arrive and are renamed
//     over the published list on flush.
//
// A run that fails before Flush leaves the previous snapshot in place.
//
// Both implement Store and pagination.PageSink:
//
//	store, err := snapshot.Open(ctx, snapshot.Options{Backend: "file", Path: "books.json"})
//	if err := store.Reset(ctx); err != nil { ... }
//	stats, err := collector.Collect(ctx, store)
//	if err := store.Flush(ctx); err != nil { ... }
//	doc, err := store.Load(ctx)
//
// A plain collector document of the form {"itemList": [...]} loads as a
// non-enriched snapshot.
package snapshot
