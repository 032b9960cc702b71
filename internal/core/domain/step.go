package domain

// StepKind tags a step descriptor.
type StepKind string

const (
	// KindCopy passes files through unchanged.
	KindCopy StepKind = "copy-verbatim"
	// KindConcat joins all files of the task into one.
	KindConcat StepKind = "concat"
	// KindRename changes the basename or extension of every file.
	KindRename StepKind = "rename"
	// KindCompressImage losslessly or near-losslessly shrinks images.
	KindCompressImage StepKind = "compress-image"
	// KindCompileStylesheet compiles SCSS sources to CSS.
	KindCompileStylesheet StepKind = "compile-stylesheet"
	// KindPrefixCSS adds vendor prefixes to CSS.
	KindPrefixCSS StepKind = "prefix-css"
	// KindMinifyScript minifies JavaScript and emits a sourcemap.
	KindMinifyScript StepKind = "minify-script"
	// KindIncludeHTML expands include directives in HTML documents.
	KindIncludeHTML StepKind = "include-html"
)

// BuiltinStepKinds are interpreted by the step runner itself.
var BuiltinStepKinds = []StepKind{KindCopy, KindConcat, KindRename}

// Step is one entry of a task's ordered step list. Only the options field
// matching Kind is read.
type Step struct {
	Kind StepKind

	Concat     *ConcatOptions
	Rename     *RenameOptions
	Image      *ImageOptions
	Stylesheet *StylesheetOptions
	Prefix     *PrefixOptions
	Script     *ScriptOptions
	Include    *IncludeOptions
}

// ConcatOptions configures KindConcat.
type ConcatOptions struct {
	// File is the path of the joined output.
	File string
	// Separator is written between files. Defaults to a newline.
	Separator *string
}

// RenameOptions configures KindRename.
type RenameOptions struct {
	Prefix  string
	Suffix  string
	Extname string
}

// ImageOptions configures KindCompressImage.
type ImageOptions struct {
	// JPEGQuality is the re-encode quality, 1-100.
	JPEGQuality int
	// PNGLevel selects png.BestSpeed (1) to png.BestCompression (9).
	PNGLevel int
	// SVGPrecision is the number of significant digits kept in SVG numbers; 0 keeps all.
	SVGPrecision int
}

// StylesheetOptions configures KindCompileStylesheet.
type StylesheetOptions struct {
	// Style is the output style passed to the compiler ("compressed" or "expanded").
	Style string
	// LoadPaths are extra include directories, relative to the project root.
	LoadPaths []string
}

// PrefixOptions configures KindPrefixCSS.
type PrefixOptions struct {
	// Browsers maps an engine name (chrome, firefox, safari, edge, ie, ios, opera) to its oldest supported version.
	Browsers map[string]string
	Minify   bool
}

// ScriptOptions configures KindMinifyScript.
type ScriptOptions struct {
	// SourceMapDir is the directory, relative to the script, where sourcemaps are written.
	// Empty disables sourcemaps.
	SourceMapDir string
	// Target is the ECMAScript version to lower syntax to, e.g. "es2015".
	Target string
}

// IncludeOptions configures KindIncludeHTML.
type IncludeOptions struct {
	// Prefix introduces a directive, "@@" by default.
	Prefix string
	// Basepath is "@file" (relative to the including file), "@root" (project
	// root) or a directory relative to the project root.
	Basepath string
}

// IsBuiltin reports whether the step runner handles k without a transformer.
func (k StepKind) IsBuiltin() bool {
	for _, b := range BuiltinStepKinds {
		if b == k {
			return true
		}
	}
	return false
}

// Valid reports whether k is a known step kind.
func (k StepKind) Valid() bool {
	switch k {
	case KindCopy, KindConcat, KindRename, KindCompressImage, KindCompileStylesheet,
		KindPrefixCSS, KindMinifyScript, KindIncludeHTML:
		return true
	default:
		return false
	}
}

// Copy returns a copy-verbatim step.
func Copy() Step { return Step{Kind: KindCopy} }

// Concat returns a concat step writing to file.
func Concat(file string) Step {
	return Step{Kind: KindConcat, Concat: &ConcatOptions{File: file}}
}

// Rename returns a rename step.
func Rename(opts RenameOptions) Step {
	return Step{Kind: KindRename, Rename: &opts}
}

// CompressImage returns a compress-image step.
func CompressImage(opts ImageOptions) Step {
	return Step{Kind: KindCompressImage, Image: &opts}
}

// CompileStylesheet returns a compile-stylesheet step.
func CompileStylesheet(opts StylesheetOptions) Step {
	return Step{Kind: KindCompileStylesheet, Stylesheet: &opts}
}

// PrefixCSS returns a prefix-css step.
func PrefixCSS(opts PrefixOptions) Step {
	return Step{Kind: KindPrefixCSS, Prefix: &opts}
}

// MinifyScript returns a minify-script step.
func MinifyScript(opts ScriptOptions) Step {
	return Step{Kind: KindMinifyScript, Script: &opts}
}

// IncludeHTML returns an include-html step.
func IncludeHTML(opts IncludeOptions) Step {
	return Step{Kind: KindIncludeHTML, Include: &opts}
}
