// Package esbuild minifies scripts and vendor-prefixes stylesheets with the
// esbuild transform API.
package esbuild

import (
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"go.trai.ch/glaze/internal/core/domain"
	"go.trai.ch/zerr"
)

var targets = map[string]api.Target{
	"":       api.DefaultTarget,
	"esnext": api.ESNext,
	"es5":    api.ES5,
	"es2015": api.ES2015,
	"es2016": api.ES2016,
	"es2017": api.ES2017,
	"es2018": api.ES2018,
	"es2019": api.ES2019,
	"es2020": api.ES2020,
	"es2021": api.ES2021,
	"es2022": api.ES2022,
}

var engines = map[string]api.EngineName{
	"chrome":  api.EngineChrome,
	"edge":    api.EngineEdge,
	"firefox": api.EngineFirefox,
	"ie":      api.EngineIE,
	"ios":     api.EngineIOS,
	"opera":   api.EngineOpera,
	"safari":  api.EngineSafari,
}

// transformError converts the first esbuild message into a zerr error
// carrying its position.
func transformError(sentinel error, msgs []api.Message) error {
	if len(msgs) == 0 {
		return sentinel
	}
	m := msgs[0]
	err := zerr.Wrap(sentinel, m.Text)
	if m.Location != nil {
		err = zerr.With(err, "line", m.Location.Line)
		err = zerr.With(err, "column", m.Location.Column)
		if text := strings.TrimSpace(m.Location.LineText); text != "" {
			err = zerr.With(err, "source", text)
		}
	}
	if len(msgs) > 1 {
		err = zerr.With(err, "errors", len(msgs))
	}
	return err
}

func parseTarget(name string) (api.Target, error) {
	t, ok := targets[strings.ToLower(name)]
	if !ok {
		return api.DefaultTarget, zerr.With(zerr.Wrap(domain.ErrScriptTransformFailed, "unknown target"), "target", name)
	}
	return t, nil
}
