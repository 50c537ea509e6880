package config

import (
	"path"
	"regexp"
	"strings"
	"time"

	ferrors "git.home.luguber.info/inful/assetflow/internal/foundation/errors"
)

var targetPattern = regexp.MustCompile(`^(chrome|edge|firefox|ie|ios|opera|safari)\d+(\.\d+)*$`)

// ValidateConfig validates a defaulted configuration.
func ValidateConfig(cfg *Config) error {
	v := &configurationValidator{config: cfg}
	for _, check := range []func() error{v.validateLayout, v.validateFilenames, v.validateServer, v.validateStyles, v.validateImages} {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

type configurationValidator struct {
	config *Config
}

func (cv *configurationValidator) validateLayout() error {
	l := cv.config.Layout
	fields := map[string]string{
		"dev": l.Dev, "dist": l.Dist, "styles": l.Styles, "sass": l.Sass, "images": l.Images,
		"fonts": l.Fonts, "scripts": l.Scripts, "libs": l.Libs, "jquery": l.JQuery,
	}
	for name, value := range fields {
		if value == "" {
			return ferrors.ValidationError("layout folder cannot be empty").WithContext("field", name).Build()
		}
		if strings.Contains(value, "..") || path.IsAbs(value) {
			return ferrors.ValidationError("layout folder must be a relative path inside the project").
				WithContext("field", name).WithContext("value", value).Build()
		}
	}
	dev, dist := path.Clean(l.Dev), path.Clean(l.Dist)
	for name, root := range map[string]string{"dev": dev, "dist": dist} {
		if root == "." {
			return ferrors.ValidationError("layout root cannot be the project directory").WithContext("field", name).Build()
		}
	}
	if dev == dist {
		return ferrors.ValidationError("dev and dist roots must differ").WithContext("value", l.Dev).Build()
	}
	// clean removes the dist root, so neither root may contain the other
	if strings.HasPrefix(dev+"/", dist+"/") || strings.HasPrefix(dist+"/", dev+"/") {
		return ferrors.ValidationError("dev and dist roots must not be nested").
			WithContext("dev", l.Dev).WithContext("dist", l.Dist).Build()
	}
	return nil
}

func (cv *configurationValidator) validateFilenames() error {
	f := cv.config.Filenames
	if strings.ContainsAny(f.JQuery, "/\\") || strings.ContainsAny(f.Bundle, "/\\") {
		return ferrors.ValidationError("filenames must not contain path separators").Build()
	}
	return nil
}

func (cv *configurationValidator) validateServer() error {
	s := cv.config.Server
	if s.Port < 1 || s.Port > 65535 {
		return ferrors.ValidationError("server port out of range").WithContext("port", s.Port).Build()
	}
	d, err := time.ParseDuration(s.Debounce)
	if err != nil || d < 0 {
		return ferrors.ValidationError("invalid server debounce duration").
			WithContext("debounce", s.Debounce).WithCause(err).Build()
	}
	return nil
}

func (cv *configurationValidator) validateStyles() error {
	for _, t := range cv.config.Styles.Targets {
		if !targetPattern.MatchString(t) {
			return ferrors.ValidationError("unknown browser target").WithContext("target", t).Build()
		}
	}
	return nil
}

func (cv *configurationValidator) validateImages() error {
	q := cv.config.Images.JPEGQuality
	if q < 1 || q > 100 {
		return ferrors.ValidationError("jpeg_quality must be between 1 and 100").WithContext("jpeg_quality", q).Build()
	}
	return nil
}
