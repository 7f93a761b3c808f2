package coach

import (
	"context"
)

type searchKnowledgeInput struct {
	Query      string `json:"query" validate:"required,min=2,max=500" jsonschema:"What to look up in the Hyrox knowledge base, in natural language"`
	MatchCount int    `json:"match_count,omitempty" validate:"omitempty,min=1,max=20" jsonschema:"Number of passages to return (default 5)"`
}

type KnowledgeTools struct {
	retriever retriever
}

func NewKnowledgeTools(retriever retriever) *KnowledgeTools {
	return &KnowledgeTools{
		retriever: retriever,
	}
}

func (k *KnowledgeTools) Tools() []Tool {
	return []Tool{
		NewTool(
			"search_knowledge_base",
			"Searches the Hyrox training knowledge base (rules, station technique, pacing, programming) and returns cited passages. Use before answering technique or rules questions.",
			k.searchKnowledgeBase,
		),
	}
}

func (k *KnowledgeTools) searchKnowledgeBase(ctx context.Context, _ Call, in searchKnowledgeInput) Result {
	res := k.retriever.Retrieve(ctx, in.Query, in.MatchCount)
	out := Result{
		"chunks":    res.Chunks,
		"formatted": res.Formatted,
		"chunk_ids": res.ChunkIDs,
	}
	if len(res.Chunks) == 0 {
		out["message"] = "No relevant knowledge found."
	}
	return out
}
