package usecase

import (
	"fmt"

	"github.com/bytedance/sonic"

	"github.com/courtline/recordlink/internal/docstore"
	"github.com/courtline/recordlink/internal/domain/performance"
)

// LinkedDocuments encodes matched records for the join collection. By
// default documents carry no id and the store assigns one per write, so
// re-importing the same file duplicates rows. With deterministic set,
// ids derive from the player/team/season composite key and re-imports
// overwrite instead.
func LinkedDocuments(items []performance.Linked, deterministic bool) ([]docstore.Document, error) {
	docs := make([]docstore.Document, 0, len(items))
	for _, item := range items {
		body, err := sonic.Marshal(item)
		if err != nil {
			return nil, fmt.Errorf("encode linked record for player %q: %w", item.PlayerID, err)
		}
		doc := docstore.Document{Body: body}
		if deterministic {
			doc.ID = item.CompositeKey()
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
