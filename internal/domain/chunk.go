package domain

// KnowledgeChunk is a section of a store policy document stored in the
// vector index.
type KnowledgeChunk struct {
	ID       string
	Source   string // document the chunk came from, e.g. "shipping-policy"
	Title    string
	Content  string
	Score    float64 // similarity score, populated on search results only
	Metadata map[string]string
}
