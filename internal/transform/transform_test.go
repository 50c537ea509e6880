package transform

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTargets(t *testing.T) {
	engines, err := ParseTargets([]string{"chrome58", "Safari11.1", "ios12"})
	require.NoError(t, err)
	require.Len(t, engines, 3)
	assert.Equal(t, "58", engines[0].Version)
	assert.Equal(t, "11.1", engines[1].Version)

	_, err = ParseTargets([]string{"netscape4"})
	require.Error(t, err)
}

func TestCSSProcessor_PrefixesForTargets(t *testing.T) {
	p, err := NewCSSProcessor([]string{"safari11"})
	require.NoError(t, err)

	out, err := p.Process(".a {\n  user-select: none;\n}\n", CSSOptions{File: "main.css"})
	require.NoError(t, err)
	assert.Contains(t, string(out.CSS), "-webkit-user-select: none")
	assert.Nil(t, out.Map)
}

func TestCSSProcessor_MinifyAndMap(t *testing.T) {
	p, err := NewCSSProcessor([]string{"chrome58"})
	require.NoError(t, err)

	min, err := p.Process(".a {\n  color: #ff0000;\n}\n\n.b {\n  margin: 0px;\n}\n", CSSOptions{File: "main.css", Minify: true})
	require.NoError(t, err)
	assert.NotContains(t, string(min.CSS), "\n  ")
	assert.Contains(t, string(min.CSS), ".a{")

	dev, err := p.Process(".a { color: red; }\n", CSSOptions{File: "main.css", SourceMap: true})
	require.NoError(t, err)
	require.NotEmpty(t, dev.Map)
	var m struct {
		Version int `json:"version"`
	}
	require.NoError(t, json.Unmarshal(dev.Map, &m))
	assert.Equal(t, 3, m.Version)
}

func TestConcatWithMap_SectionsPerInput(t *testing.T) {
	b, err := ConcatWithMap("script.min.js", []Script{
		{Path: "dev/scripts/libs/lib.js", Code: []byte("var lib = 1;")},
		{Path: "dev/scripts/app.js", Code: []byte("var app = lib + 1;")},
	})
	require.NoError(t, err)

	code := string(b.Code)
	assert.Less(t, strings.Index(code, "lib = 1"), strings.Index(code, "app = lib"))
	assert.True(t, strings.HasSuffix(code, "//# sourceMappingURL=script.min.js.map\n"))

	var idx struct {
		Version  int    `json:"version"`
		File     string `json:"file"`
		Sections []struct {
			Offset struct {
				Line int `json:"line"`
			} `json:"offset"`
			Map struct {
				Sources []string `json:"sources"`
			} `json:"map"`
		} `json:"sections"`
	}
	require.NoError(t, json.Unmarshal(b.Map, &idx))
	assert.Equal(t, 3, idx.Version)
	assert.Equal(t, "script.min.js", idx.File)
	require.Len(t, idx.Sections, 2)
	assert.Equal(t, 0, idx.Sections[0].Offset.Line)
	assert.Equal(t, 1, idx.Sections[1].Offset.Line)
	assert.Equal(t, []string{"dev/scripts/libs/lib.js"}, idx.Sections[0].Map.Sources)
	assert.Equal(t, []string{"dev/scripts/app.js"}, idx.Sections[1].Map.Sources)

	lines := strings.Split(code, "\n")
	assert.Contains(t, lines[idx.Sections[1].Offset.Line], "app")
}

func TestConcatWithMap_KeepsSourceBytes(t *testing.T) {
	lib := "// explain the lib\nvar   lib   =   1;  /* why */\n"
	app := "/*@cc_on @*/\nvar app = lib;\n//# sourceURL=app.js\n"
	b, err := ConcatWithMap("script.min.js", []Script{
		{Path: "dev/scripts/libs/lib.js", Code: []byte(lib)},
		{Path: "dev/scripts/app.js", Code: []byte(app)},
	})
	require.NoError(t, err)
	assert.Equal(t, lib+"\n"+app+"//# sourceMappingURL=script.min.js.map\n", string(b.Code))

	var idx struct {
		Sections []struct {
			Offset struct {
				Line int `json:"line"`
			} `json:"offset"`
			Map struct {
				SourcesContent []string `json:"sourcesContent"`
				Mappings       string   `json:"mappings"`
			} `json:"map"`
		} `json:"sections"`
	}
	require.NoError(t, json.Unmarshal(b.Map, &idx))
	require.Len(t, idx.Sections, 2)
	assert.Equal(t, 3, idx.Sections[1].Offset.Line)
	assert.Equal(t, "AAAA;AACA;AACA", idx.Sections[0].Map.Mappings)
	assert.Equal(t, "AAAA;AACA;AACA;AACA", idx.Sections[1].Map.Mappings)
	assert.Equal(t, []string{app}, idx.Sections[1].Map.SourcesContent)

	lines := strings.Split(string(b.Code), "\n")
	assert.Equal(t, "var app = lib;", lines[idx.Sections[1].Offset.Line+1])
}

func TestConcatWithMap_SyntaxErrorNamesFile(t *testing.T) {
	_, err := ConcatWithMap("script.min.js", []Script{{Path: "dev/scripts/bad.js", Code: []byte("var = ;")}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dev/scripts/bad.js")
}

func TestMinify_KeepsGlobalNames(t *testing.T) {
	out, err := Minify("script.min.js", []Script{
		{Path: "a.js", Code: []byte("function greet(name) {\n  return 'hi ' + name;\n}\n")},
		{Path: "b.js", Code: []byte("greet('there');\n")},
	})
	require.NoError(t, err)
	s := string(out)
	assert.Contains(t, s, "function greet(")
	assert.Less(t, strings.Index(s, "function greet("), strings.Index(s, `greet("there")`))
	assert.NotContains(t, s, "\n  ")
}

func TestConcat(t *testing.T) {
	got := Concat([]Script{{Code: []byte("a")}, {Code: []byte("b")}})
	assert.Equal(t, "a\nb", string(got))
	assert.Empty(t, Concat(nil))
}

func TestHTMLMinifier_Idempotent(t *testing.T) {
	src := []byte(`<!DOCTYPE html>
<html>
  <head>
    <title>  Home  </title>
    <link rel="stylesheet" href="styles/main.css?cb=1001">
  </head>
  <body>
    <!-- hero -->
    <p class="lead">
      Hello,   world
    </p>
    <script src="scripts/script.min.js?cb=1001"></script>
  </body>
</html>
`)
	h := NewHTMLMinifier()
	once, err := h.Minify(src)
	require.NoError(t, err)
	twice, err := h.Minify(once)
	require.NoError(t, err)

	assert.Less(t, len(once), len(src))
	assert.Equal(t, string(once), string(twice))
	assert.Contains(t, string(once), "<!-- hero -->")
	assert.Contains(t, string(once), `class="lead"`)
	assert.Contains(t, string(once), "</body>")
	assert.Contains(t, string(once), "cb=1001")
}

func gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img
}

func TestImageOptimizer_PNG(t *testing.T) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.NoCompression}
	require.NoError(t, enc.Encode(&buf, gradient(64, 64)))

	out, err := NewImageOptimizer(0).Optimize("logo.png", buf.Bytes())
	require.NoError(t, err)
	assert.Less(t, len(out), buf.Len())

	_, err = png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
}

func TestImageOptimizer_JPEGNeverGrows(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, gradient(32, 32), &jpeg.Options{Quality: 20}))

	out, err := NewImageOptimizer(100).Optimize("photo.JPG", buf.Bytes())
	require.NoError(t, err)
	assert.LessOrEqual(t, len(out), buf.Len())
}

func TestImageOptimizer_SVGAndPassThrough(t *testing.T) {
	o := NewImageOptimizer(85)

	svg := []byte("<svg xmlns=\"http://www.w3.org/2000/svg\">\n  <!-- icon -->\n  <rect x=\"0\" y=\"0\" width=\"10\" height=\"10\"/>\n</svg>\n")
	out, err := o.Optimize("icon.svg", svg)
	require.NoError(t, err)
	assert.Less(t, len(out), len(svg))
	assert.NotContains(t, string(out), "icon -->")

	gif := []byte("GIF89a-not-really")
	out, err = o.Optimize("anim.gif", gif)
	require.NoError(t, err)
	assert.Equal(t, gif, out)

	_, err = o.Optimize("broken.png", []byte("nope"))
	require.Error(t, err)
}

func TestDartSass_CloseBeforeStart(t *testing.T) {
	d := NewDartSass("")
	require.NoError(t, d.Close())
	_, err := d.Compile(t.Context(), SassRequest{Path: "main.scss"})
	require.Error(t, err)
}

func TestFileURL(t *testing.T) {
	assert.True(t, strings.HasPrefix(fileURL("main.scss"), "file:///"))
}
