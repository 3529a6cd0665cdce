package rag

import "github.com/novanote/novanote/internal/domain"

// BuildDocuments chunks text with the default chunker and attaches src to
// every chunk. ChunkIndex runs 0..n-1 in chunk order.
func BuildDocuments(text string, src domain.DocumentSource) []domain.Document {
	return DefaultChunker().BuildDocuments(text, src)
}

// BuildDocuments is BuildDocuments with this chunker's window and overlap.
func (c *Chunker) BuildDocuments(text string, src domain.DocumentSource) []domain.Document {
	chunks := c.Chunk(text)
	docs := make([]domain.Document, len(chunks))
	for i, chunk := range chunks {
		docs[i] = domain.NewDocument(src, i, chunk)
	}
	return docs
}
