package domain

import "path"

// DefaultBrowsers approximates "last 10 versions" of the major engines for
// vendor prefixing.
func DefaultBrowsers() map[string]string {
	return map[string]string{
		"chrome":  "58",
		"edge":    "16",
		"firefox": "57",
		"ios":     "10",
		"opera":   "45",
		"safari":  "10",
	}
}

// DefaultPipeline returns the built-in pipeline used when a project has no
// configuration file: src and dist are relative to root.
func DefaultPipeline(root, src, dist string) *Pipeline {
	if src == "" {
		src = DefaultSourceDir
	}
	if dist == "" {
		dist = DefaultDistDir
	}
	s := func(p string) string { return path.Join(src, p) }
	d := func(p string) string { return path.Join(dist, p) }

	tasks := []*Task{
		{
			Name:     NewInternedString("images"),
			Selector: NewSelector(s("images/**/*")),
			Output:   d("images"),
			Steps: []Step{CompressImage(ImageOptions{
				JPEGQuality:  75,
				PNGLevel:     9,
				SVGPrecision: 0,
			})},
		},
		{
			Name:     NewInternedString("mainScripts"),
			Selector: NewSelector(s("js/main.js")),
			Output:   d("js"),
			Steps: []Step{
				Concat("main.min.js"),
				MinifyScript(ScriptOptions{SourceMapDir: "maps", Target: "es2015"}),
			},
		},
		{
			Name:     NewInternedString("allScripts"),
			Selector: NewSelector(s("js/**/*.js"), "!"+s("js/main.js")),
			Output:   d("js"),
			Steps:    []Step{Copy()},
		},
		{
			Name:     NewInternedString("sassToCss"),
			Selector: NewSelector(s("scss/*.scss")),
			Output:   d("css"),
			Steps: []Step{
				CompileStylesheet(StylesheetOptions{Style: "compressed"}),
				PrefixCSS(PrefixOptions{Browsers: DefaultBrowsers(), Minify: true}),
				Rename(RenameOptions{Suffix: ".min"}),
			},
			Implicit: []string{s("scss/**/*.scss")},
		},
		{
			Name:     NewInternedString("cssStyles"),
			Selector: NewSelector(s("css/**/*.css")),
			Output:   d("css"),
			Steps:    []Step{Copy()},
		},
		{
			Name:     NewInternedString("html"),
			Selector: NewSelector(s("*.html")),
			Output:   dist,
			Steps:    []Step{IncludeHTML(IncludeOptions{Prefix: "@@", Basepath: "@file"})},
			Implicit: []string{s("**/*.html")},
		},
		{
			Name:     NewInternedString("fonts"),
			Selector: NewSelector(s("fonts/*")).WithBase(src),
			Output:   dist,
			Steps:    []Step{Copy()},
		},
	}

	rules := []WatchRule{
		{Patterns: []string{s("scss/**/*.scss")}, Task: "sassToCss", Action: ActionPartial},
		{Patterns: []string{s("css/**/*.css")}, Task: "cssStyles", Action: ActionPartial},
		{Patterns: []string{s("images/**/*")}, Task: "images", Action: ActionPartial},
		{Patterns: []string{s("fonts/*")}, Task: "fonts", Action: ActionPartial},
		{Patterns: []string{s("js/**/*.js"), "!" + s("js/main.js")}, Task: "allScripts", Action: ActionPartial},
		{Patterns: []string{s("js/main.js")}, Task: "mainScripts", Action: ActionPartial},
		{Patterns: []string{s("**/*.html")}, Task: "html", Action: ActionReload},
	}

	return &Pipeline{
		Root:   root,
		Source: src,
		Dist:   dist,
		Tasks:  tasks,
		Rules:  rules,
		Server: ServerConfig{Host: DefaultHost, Port: DefaultPort, Dir: dist},
	}
}
