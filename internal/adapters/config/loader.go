// Package config provides the configuration loader for glaze.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"go.trai.ch/glaze/internal/core/domain"
	"go.trai.ch/glaze/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load finds glaze.yaml in cwd or one of its parents and returns the
// validated pipeline. Without a config file the built-in pipeline rooted at
// cwd is returned.
func (l *Loader) Load(cwd string) (*domain.Pipeline, error) {
	cwd, err := filepath.Abs(cwd)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrFailedToGetRoot.Error())
	}

	configPath, found := findConfiguration(cwd)
	if !found {
		l.Logger.Warn(fmt.Sprintf("no %s found, using built-in pipeline", domain.ConfigFileName))
		p := domain.DefaultPipeline(cwd, "", "")
		if err := p.Validate(); err != nil {
			return nil, err
		}
		return p, nil
	}
	return l.LoadFile(configPath)
}

// LoadFile reads and validates the pipeline described by the file at configPath.
func (l *Loader) LoadFile(configPath string) (*domain.Pipeline, error) {
	configPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrFailedToGetRoot.Error())
	}

	var file Glazefile
	if err := readAndUnmarshalYAML(configPath, &file); err != nil {
		return nil, zerr.With(err, "path", configPath)
	}

	p, err := buildPipeline(resolveRoot(configPath, file.Root), &file)
	if err != nil {
		return nil, zerr.With(err, "path", configPath)
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func findConfiguration(cwd string) (string, bool) {
	currentDir := cwd
	for {
		candidate := filepath.Join(currentDir, domain.ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", false
		}
		currentDir = parentDir
	}
}

func buildPipeline(root string, file *Glazefile) (*domain.Pipeline, error) {
	var p *domain.Pipeline
	if file.Defaults {
		p = domain.DefaultPipeline(root, file.Source, file.Dist)
	} else {
		p = &domain.Pipeline{
			Root:   root,
			Source: orDefault(file.Source, domain.DefaultSourceDir),
			Dist:   orDefault(file.Dist, domain.DefaultDistDir),
		}
		p.Server = domain.ServerConfig{Host: domain.DefaultHost, Port: domain.DefaultPort, Dir: p.Dist}
	}

	if file.Server != nil {
		p.Server = mergeServer(p.Server, *file.Server)
	}

	// Map iteration order is random, so tasks are added in name order.
	names := make([]string, 0, len(file.Tasks))
	for name := range file.Tasks {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		task, err := buildTask(name, file.Tasks[name])
		if err != nil {
			return nil, zerr.With(err, "task", name)
		}
		replaceOrAppend(p, task)
	}

	for _, dto := range file.Watch {
		rule, err := buildRule(dto)
		if err != nil {
			return nil, err
		}
		p.Rules = append(p.Rules, rule)
	}

	return p, nil
}

func buildTask(name string, dto *TaskDTO) (*domain.Task, error) {
	if dto == nil {
		return nil, domain.ErrEmptySelector
	}
	if dto.Output == "" {
		return nil, zerr.Wrap(domain.ErrConfigParseFailed, "task output directory is required")
	}

	steps := make([]domain.Step, 0, len(dto.Steps))
	for i, s := range dto.Steps {
		step, err := buildStep(s)
		if err != nil {
			return nil, zerr.With(err, "step", i)
		}
		steps = append(steps, step)
	}

	return &domain.Task{
		Name:     domain.NewInternedString(name),
		Selector: domain.NewSelector(dto.Input...).WithBase(dto.Base),
		Output:   filepath.ToSlash(filepath.Clean(dto.Output)),
		Steps:    steps,
		Implicit: dto.Implicit,
	}, nil
}

func buildStep(dto StepDTO) (domain.Step, error) {
	kind := domain.StepKind(dto.Kind)
	switch kind {
	case domain.KindCopy:
		return domain.Copy(), nil
	case domain.KindConcat:
		step := domain.Concat(dto.File)
		step.Concat.Separator = dto.Separator
		return step, nil
	case domain.KindRename:
		return domain.Rename(domain.RenameOptions{Prefix: dto.Prefix, Suffix: dto.Suffix, Extname: dto.Extname}), nil
	case domain.KindCompressImage:
		return domain.CompressImage(domain.ImageOptions{
			JPEGQuality:  orDefaultInt(dto.JPEGQuality, 75),
			PNGLevel:     orDefaultInt(dto.PNGLevel, 9),
			SVGPrecision: dto.SVGPrecision,
		}), nil
	case domain.KindCompileStylesheet:
		return domain.CompileStylesheet(domain.StylesheetOptions{
			Style:     orDefault(dto.Style, "compressed"),
			LoadPaths: dto.LoadPaths,
		}), nil
	case domain.KindPrefixCSS:
		browsers := dto.Browsers
		if len(browsers) == 0 {
			browsers = domain.DefaultBrowsers()
		}
		return domain.PrefixCSS(domain.PrefixOptions{Browsers: browsers, Minify: dto.Minify}), nil
	case domain.KindMinifyScript:
		return domain.MinifyScript(domain.ScriptOptions{SourceMapDir: dto.SourceMapDir, Target: dto.Target}), nil
	case domain.KindIncludeHTML:
		return domain.IncludeHTML(domain.IncludeOptions{
			Prefix:   orDefault(dto.DirectivePrefix, "@@"),
			Basepath: orDefault(dto.Basepath, "@file"),
		}), nil
	default:
		return domain.Step{}, zerr.With(zerr.Wrap(domain.ErrUnknownStepKind, "invalid step"), "kind", dto.Kind)
	}
}

func buildRule(dto WatchDTO) (domain.WatchRule, error) {
	action := domain.WatchAction(orDefault(dto.Action, string(domain.ActionPartial)))
	if action != domain.ActionPartial && action != domain.ActionReload {
		return domain.WatchRule{}, zerr.With(zerr.Wrap(domain.ErrConfigParseFailed, "unknown watch action"), "action", dto.Action)
	}
	return domain.WatchRule{Patterns: dto.Patterns, Task: dto.Task, Action: action}, nil
}

func replaceOrAppend(p *domain.Pipeline, task *domain.Task) {
	for i, existing := range p.Tasks {
		if existing.Name == task.Name {
			p.Tasks[i] = task
			return
		}
	}
	p.Tasks = append(p.Tasks, task)
}

func mergeServer(base domain.ServerConfig, dto ServerDTO) domain.ServerConfig {
	if dto.Host != "" {
		base.Host = dto.Host
	}
	if dto.Port != 0 {
		base.Port = dto.Port
	}
	if dto.Dir != "" {
		base.Dir = dto.Dir
	}
	return base
}

func resolveRoot(configPath, configuredRoot string) string {
	configDir := filepath.Dir(configPath)
	if configuredRoot == "" {
		return filepath.Clean(configDir)
	}
	if filepath.IsAbs(configuredRoot) {
		return filepath.Clean(configuredRoot)
	}
	return filepath.Clean(filepath.Join(configDir, configuredRoot))
}

// readAndUnmarshalYAML reads a YAML file and unmarshals it into the target struct.
func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is validated by caller
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}

	if parseErr := yaml.Unmarshal(configFile, target); parseErr != nil {
		return zerr.Wrap(parseErr, domain.ErrConfigParseFailed.Error())
	}

	return nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func orDefaultInt(value, fallback int) int {
	if value == 0 {
		return fallback
	}
	return value
}
