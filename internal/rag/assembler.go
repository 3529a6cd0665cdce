package rag

import (
	"strconv"
	"strings"

	"github.com/novanote/novanote/internal/domain"
)

const untitled = "Untitled"

// Assemble numbers results from 1 in the order given and returns the labelled
// context block with references aligned to it: marker [i] in an answer
// refers to References[i-1].
func Assemble(results []domain.SearchResult) domain.AssembledContext {
	blocks := make([]string, len(results))
	refs := make([]domain.Reference, len(results))

	for i, r := range results {
		idx := i + 1
		title := r.Metadata.Title
		if title == "" {
			title = untitled
		}
		url := r.Metadata.SourceURL
		if url != nil && *url == "" {
			url = nil
		}

		var label strings.Builder
		label.WriteString("[" + strconv.Itoa(idx) + "] " + title)
		if url != nil {
			label.WriteString(" - " + *url)
		}

		blocks[i] = label.String() + "\n" + r.Content
		refs[i] = domain.Reference{
			Idx:      idx,
			Title:    title,
			URL:      url,
			ItemID:   r.Metadata.ItemID,
			ItemType: r.Metadata.ItemType,
		}
	}

	return domain.AssembledContext{
		Block:      strings.Join(blocks, "\n\n"),
		References: refs,
	}
}
