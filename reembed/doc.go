// Package reembed regenerates the stored embeddings of tasks and notes,
// typically after switching embedding models.
//
// Entities are collected in creation order, cut into batches and embedded
// with EmbedTexts on a bounded worker pool. Embedding calls are retried with
// exponential backoff. Vectors are written back through the repositories'
// revision-checked update, so an entity edited during the run keeps the
// embedding its own update produced.
package reembed
