package imagemin

import (
	"context"

	"github.com/grindlemire/graft"
)

// NodeID is the unique identifier for the image compressor Graft node.
const NodeID graft.ID = "adapter.imagemin"

func init() {
	graft.Register(graft.Node[*Compressor]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Compressor, error) {
			return NewCompressor(), nil
		},
	})
}
