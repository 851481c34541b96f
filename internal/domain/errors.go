package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrConversationNotFound signals a missing conversation.
	ErrConversationNotFound = errors.New("conversation not found")
	// ErrSessionNotFound signals a missing or invalid session.
	ErrSessionNotFound = errors.New("session not found")
	// ErrInvalidArgument signals a malformed request parameter.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidProduct signals a catalog record violating ingest invariants.
	ErrInvalidProduct = errors.New("invalid product")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrCompletionProviderError signals an LLM completion provider failure.
	ErrCompletionProviderError = errors.New("completion provider error")
	// ErrSearchUnavailable signals that semantic search cannot run (no embeddings).
	ErrSearchUnavailable = errors.New("search unavailable")
)
