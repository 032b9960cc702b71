package config

// Glazefile represents the structure of the glaze.yaml configuration file.
type Glazefile struct {
	Version string `yaml:"version"`
	Root    string `yaml:"root"`
	Source  string `yaml:"source"`
	Dist    string `yaml:"dist"`
	// Defaults starts from the built-in pipeline; tasks declared here replace
	// built-in tasks of the same name and watch rules are appended.
	Defaults bool                `yaml:"defaults"`
	Server   *ServerDTO          `yaml:"server"`
	Tasks    map[string]*TaskDTO `yaml:"tasks"`
	Watch    []WatchDTO          `yaml:"watch"`
}

// ServerDTO represents the dev server settings.
type ServerDTO struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	Dir  string `yaml:"dir"`
}

// TaskDTO represents a task definition in the configuration.
type TaskDTO struct {
	Input    []string  `yaml:"input"`
	Base     string    `yaml:"base"`
	Output   string    `yaml:"output"`
	Implicit []string  `yaml:"implicit"`
	Steps    []StepDTO `yaml:"steps"`
}

// StepDTO represents one step. Only the fields of its kind are read.
type StepDTO struct {
	Kind string `yaml:"kind"`

	// concat
	File      string  `yaml:"file"`
	Separator *string `yaml:"separator"`

	// rename
	Prefix  string `yaml:"prefix"`
	Suffix  string `yaml:"suffix"`
	Extname string `yaml:"extname"`

	// compress-image
	JPEGQuality  int `yaml:"jpegQuality"`
	PNGLevel     int `yaml:"pngLevel"`
	SVGPrecision int `yaml:"svgPrecision"`

	// compile-stylesheet
	Style     string   `yaml:"style"`
	LoadPaths []string `yaml:"loadPaths"`

	// prefix-css
	Browsers map[string]string `yaml:"browsers"`
	Minify   bool              `yaml:"minify"`

	// minify-script
	SourceMapDir string `yaml:"sourceMapDir"`
	Target       string `yaml:"target"`

	// include-html
	DirectivePrefix string `yaml:"directivePrefix"`
	Basepath        string `yaml:"basepath"`
}

// WatchDTO represents a watch rule.
type WatchDTO struct {
	Patterns []string `yaml:"patterns"`
	Task     string   `yaml:"task"`
	Action   string   `yaml:"action"`
}
