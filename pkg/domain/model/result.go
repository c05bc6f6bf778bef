package model

// QueryResult is the outcome of one query cycle. It is constructed fresh
// per query and not persisted beyond the response.
type QueryResult struct {
	// Answer is the final text returned to the caller, including any
	// appended follow-up question block.
	Answer string

	// Sources lists the deduplicated source identifiers of the retrieved
	// context, in first-seen order.
	Sources []string

	// Suggestions holds up to four follow-up questions, kept separate from
	// Answer for UI affordances even when embedded textually.
	Suggestions []string
}

// Stats describes the state of the retrieval core
type Stats struct {
	Status             string `json:"status"`
	VectorCount        int    `json:"vector_count"`
	EmbeddingDimension int    `json:"embedding_dimension"`
	ConversationTurns  int    `json:"conversation_turns"`
}
