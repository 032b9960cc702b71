package scheduler

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/glaze/internal/adapters/cas"         //nolint:depguard // Wired in engine wiring
	"go.trai.ch/glaze/internal/adapters/esbuild"     //nolint:depguard // Wired in engine wiring
	"go.trai.ch/glaze/internal/adapters/fileinclude" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/glaze/internal/adapters/fs"          //nolint:depguard // Wired in engine wiring
	"go.trai.ch/glaze/internal/adapters/imagemin"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/glaze/internal/adapters/sass"        //nolint:depguard // Wired in engine wiring
	"go.trai.ch/glaze/internal/core/ports"
)

const (
	// NodeID is the unique identifier for the scheduler Graft node.
	NodeID graft.ID = "engine.scheduler"
	// TransformersNodeID is the unique identifier for the transformer set Graft node.
	TransformersNodeID graft.ID = "engine.transformers"
)

func init() {
	graft.Register(graft.Node[ports.TransformerSet]{
		ID:        TransformersNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			sass.NodeID,
			esbuild.ScriptNodeID,
			esbuild.CSSNodeID,
			imagemin.NodeID,
			fileinclude.NodeID,
		},
		Run: func(ctx context.Context) (ports.TransformerSet, error) {
			compiler, err := graft.Dep[*sass.Compiler](ctx)
			if err != nil {
				return nil, err
			}

			minifier, err := graft.Dep[*esbuild.ScriptMinifier](ctx)
			if err != nil {
				return nil, err
			}

			prefixer, err := graft.Dep[*esbuild.Prefixer](ctx)
			if err != nil {
				return nil, err
			}

			compressor, err := graft.Dep[*imagemin.Compressor](ctx)
			if err != nil {
				return nil, err
			}

			includer, err := graft.Dep[*fileinclude.Includer](ctx)
			if err != nil {
				return nil, err
			}

			return ports.TransformerSet{compiler, minifier, prefixer, compressor, includer}, nil
		},
	})

	graft.Register(graft.Node[*Scheduler]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			fs.ResolverNodeID,
			fs.HasherNodeID,
			cas.NodeID,
			TransformersNodeID,
		},
		Run: func(ctx context.Context) (*Scheduler, error) {
			resolver, err := graft.Dep[ports.InputResolver](ctx)
			if err != nil {
				return nil, err
			}

			hasher, err := graft.Dep[ports.Hasher](ctx)
			if err != nil {
				return nil, err
			}

			store, err := graft.Dep[ports.ManifestStore](ctx)
			if err != nil {
				return nil, err
			}

			transformers, err := graft.Dep[ports.TransformerSet](ctx)
			if err != nil {
				return nil, err
			}

			return NewScheduler(resolver, hasher, store, nil, transformers), nil
		},
	})
}
