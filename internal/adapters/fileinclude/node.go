package fileinclude

import (
	"context"

	"github.com/grindlemire/graft"
)

// NodeID is the unique identifier for the HTML includer Graft node.
const NodeID graft.ID = "adapter.fileinclude"

func init() {
	graft.Register(graft.Node[*Includer]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Includer, error) {
			return NewIncluder(), nil
		},
	})
}
