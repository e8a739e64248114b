// Package ingestion imports tasks and notes in bulk.
//
// The Pipeline validates every input up front, then works through them in
// batches:
//   - Titles are embedded with one EmbedTexts call per batch
//   - Note summaries are generated concurrently on a worker pool
//   - The batch is stored with a single repository write
//
// An entity is written only after its embedding (and summary, for notes) is
// ready, so imported entities are searchable as soon as they exist. A failed
// batch stops the import; batches already written stay written.
package ingestion
