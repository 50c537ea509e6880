package config

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// LayoutDefaultApplier fills in the dev/dist roots and subfolder names.
type LayoutDefaultApplier struct{}

func (LayoutDefaultApplier) Domain() string { return "layout" }

func (LayoutDefaultApplier) ApplyDefaults(cfg *Config) error {
	l := &cfg.Layout
	setDefault(&l.Dev, "dev")
	setDefault(&l.Dist, "dist")
	setDefault(&l.Styles, "styles")
	setDefault(&l.Sass, "scss")
	setDefault(&l.Images, "images")
	setDefault(&l.Fonts, "fonts")
	setDefault(&l.Scripts, "scripts")
	setDefault(&l.Libs, "libs")
	setDefault(&l.JQuery, "jquery")
	return nil
}

// FilenameDefaultApplier fills in the bundle and third-party script names.
type FilenameDefaultApplier struct{}

func (FilenameDefaultApplier) Domain() string { return "filenames" }

func (FilenameDefaultApplier) ApplyDefaults(cfg *Config) error {
	setDefault(&cfg.Filenames.JQuery, "jquery-3.4.1.min.js")
	setDefault(&cfg.Filenames.Bundle, "script.min")
	if cfg.UseJQuery == nil {
		enabled := true
		cfg.UseJQuery = &enabled
	}
	return nil
}

// ServerDefaultApplier fills in dev server settings.
type ServerDefaultApplier struct{}

func (ServerDefaultApplier) Domain() string { return "server" }

func (ServerDefaultApplier) ApplyDefaults(cfg *Config) error {
	setDefault(&cfg.Server.Host, "localhost")
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3000
	}
	setDefault(&cfg.Server.Debounce, "300ms")
	return nil
}

// StylesDefaultApplier fills in prefixing targets.
type StylesDefaultApplier struct{}

func (StylesDefaultApplier) Domain() string { return "styles" }

func (StylesDefaultApplier) ApplyDefaults(cfg *Config) error {
	if len(cfg.Styles.Targets) == 0 {
		// roughly autoprefixer's "> 0.5%, last 2 versions" at the time the layout was designed
		cfg.Styles.Targets = []string{"chrome58", "edge16", "firefox57", "safari11"}
	}
	return nil
}

// ImagesDefaultApplier fills in the compression cache location and JPEG quality.
type ImagesDefaultApplier struct{}

func (ImagesDefaultApplier) Domain() string { return "images" }

func (ImagesDefaultApplier) ApplyDefaults(cfg *Config) error {
	setDefault(&cfg.Images.Cache, ".assetflow/cache.db")
	if cfg.Images.JPEGQuality == 0 {
		cfg.Images.JPEGQuality = 85
	}
	return nil
}

func defaultAppliers() []DefaultApplier {
	return []DefaultApplier{
		LayoutDefaultApplier{},
		FilenameDefaultApplier{},
		ServerDefaultApplier{},
		StylesDefaultApplier{},
		ImagesDefaultApplier{},
	}
}

func applyDefaults(cfg *Config) error {
	for _, a := range defaultAppliers() {
		if err := a.ApplyDefaults(cfg); err != nil {
			return err
		}
	}
	return nil
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}
