// Package paths derives every folder and file pattern the tasks use from a
// handful of root names. Nothing here is configured independently: each
// dist folder is its dev folder with the root segment substituted, and each
// pattern is built from the folder table.
package paths

import (
	"path"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/assetflow/internal/config"
	"git.home.luguber.info/inful/assetflow/internal/fileset"
)

// Folder is a logical folder in its development and distribution locations.
// Dist is empty for source-only folders.
type Folder struct {
	Dev  string
	Dist string
}

// Folders is the folder table. All values are slash-separated and relative to the project root.
type Folders struct {
	Root    Folder
	Scripts Folder
	Libs    Folder
	JQuery  Folder
	Styles  Folder
	Sass    Folder
	Images  Folder
	Fonts   Folder
}

// Filenames are the fixed file names the tasks produce or single out.
type Filenames struct {
	JQuery     string
	BundleBase string
	Bundle     string
}

// Files is the file pattern table.
type Files struct {
	HTML   fileset.Pattern
	Sass   fileset.Pattern
	JS     fileset.Pattern
	Libs   fileset.Pattern
	JQuery fileset.Pattern
	Images fileset.Pattern
	Fonts  fileset.Pattern
}

// Registry holds the folder, filename and pattern tables for one project.
type Registry struct {
	// Root is the project directory as an OS path. The tables are relative to it.
	Root      string
	Folders   Folders
	Filenames Filenames
	Files     Files
}

// New derives the registry for a project rooted at root.
func New(root string, layout config.Layout, names config.Filenames) *Registry {
	dev, dist := clean(layout.Dev), clean(layout.Dist)
	mirror := func(rel string) Folder {
		return Folder{Dev: path.Join(dev, rel), Dist: path.Join(dist, rel)}
	}

	f := Folders{Root: Folder{Dev: dev, Dist: dist}}
	f.Scripts = mirror(layout.Scripts)
	f.Libs = mirror(path.Join(layout.Scripts, layout.Libs))
	f.JQuery = mirror(path.Join(layout.Scripts, layout.Libs, layout.JQuery))
	f.Styles = mirror(layout.Styles)
	f.Sass = Folder{Dev: path.Join(dev, layout.Sass)}
	f.Images = mirror(layout.Images)
	f.Fonts = mirror(layout.Fonts)

	n := Filenames{
		JQuery:     names.JQuery,
		BundleBase: names.Bundle,
		Bundle:     names.Bundle + ".js",
	}

	return &Registry{
		Root:      root,
		Folders:   f,
		Filenames: n,
		Files: Files{
			HTML:   fileset.Glob(dev + "/**/*.html"),
			Sass:   fileset.Glob(f.Sass.Dev + "/**/*.scss"),
			JS:     fileset.Glob(f.Scripts.Dev+"/**/*.js", f.Scripts.Dev+"/**/"+escape(n.BundleBase)+"*.js"),
			Libs:   fileset.Glob(f.Libs.Dev + "/**/*.js"),
			JQuery: fileset.Glob(f.JQuery.Dev + "/" + escape(n.JQuery)),
			Images: fileset.Glob(f.Images.Dev + "/**/*.{png,jpg,gif,svg}"),
			Fonts:  fileset.Glob(f.Fonts.Dev + "/**/*"),
		},
	}
}

// FromConfig derives the registry from a loaded configuration.
func FromConfig(root string, cfg *config.Config) *Registry {
	return New(root, cfg.Layout, cfg.Filenames)
}

// Abs converts a registry-relative slash path to an OS path under Root.
func (r *Registry) Abs(rel string) string {
	return filepath.Join(r.Root, filepath.FromSlash(rel))
}

// Rel converts an OS path under Root back to a registry-relative slash path.
func (r *Registry) Rel(p string) (string, error) {
	rel, err := filepath.Rel(r.Root, p)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// JQueryFile is the relative path of the third-party script in the dev tree.
func (r *Registry) JQueryFile() string {
	return path.Join(r.Folders.JQuery.Dev, r.Filenames.JQuery)
}

func clean(p string) string {
	return strings.TrimPrefix(path.Clean(filepath.ToSlash(p)), "./")
}

// escape quotes glob metacharacters in a literal file name.
func escape(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch r {
		case '*', '?', '[', ']', '{', '}', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
