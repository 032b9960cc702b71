package esbuild

import (
	"context"

	"github.com/grindlemire/graft"
)

const (
	// ScriptNodeID is the unique identifier for the script minifier Graft node.
	ScriptNodeID graft.ID = "adapter.esbuild.script"
	// CSSNodeID is the unique identifier for the CSS prefixer Graft node.
	CSSNodeID graft.ID = "adapter.esbuild.css"
)

func init() {
	graft.Register(graft.Node[*ScriptMinifier]{
		ID:        ScriptNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*ScriptMinifier, error) {
			return NewScriptMinifier(), nil
		},
	})

	graft.Register(graft.Node[*Prefixer]{
		ID:        CSSNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Prefixer, error) {
			return NewPrefixer(), nil
		},
	})
}
