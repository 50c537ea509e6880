package transform

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// Script is one input of a bundle. Path is the slash path recorded in source maps.
type Script struct {
	Path string
	Code []byte
}

// Bundle is a concatenated script and its index source map.
type Bundle struct {
	Code []byte
	Map  []byte
}

type indexMap struct {
	Version  int       `json:"version"`
	File     string    `json:"file"`
	Sections []section `json:"sections"`
}

type section struct {
	Offset offset          `json:"offset"`
	Map    json.RawMessage `json:"map"`
}

type offset struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Concat joins the scripts in order, separated by newlines.
func Concat(scripts []Script) []byte {
	var buf bytes.Buffer
	for i, s := range scripts {
		if i > 0 {
			buf.WriteByte('\n')
		}
		buf.Write(s.Code)
	}
	return buf.Bytes()
}

// ConcatWithMap concatenates the scripts byte for byte and builds an index
// source map with one section per input. Each input is parsed by esbuild so a
// syntax error names its file, but the parsed output is discarded. file is the
// bundle's base name; the returned code ends with a sourceMappingURL comment
// pointing at file+".map".
func ConcatWithMap(file string, scripts []Script) (Bundle, error) {
	var code bytes.Buffer
	idx := indexMap{Version: 3, File: file, Sections: make([]section, 0, len(scripts))}

	line := 0
	for i, s := range scripts {
		if err := checkSyntax(s); err != nil {
			return Bundle{}, err
		}
		m, err := identityMap(s)
		if err != nil {
			return Bundle{}, err
		}
		if i > 0 {
			code.WriteByte('\n')
			line++
		}
		idx.Sections = append(idx.Sections, section{Offset: offset{Line: line}, Map: m})
		code.Write(s.Code)
		line += bytes.Count(s.Code, []byte{'\n'})
	}

	m, err := json.Marshal(idx)
	if err != nil {
		return Bundle{}, fmt.Errorf("encode index map: %w", err)
	}
	if code.Len() > 0 && !bytes.HasSuffix(code.Bytes(), []byte{'\n'}) {
		code.WriteByte('\n')
	}
	fmt.Fprintf(&code, "//# sourceMappingURL=%s.map\n", file)
	return Bundle{Code: code.Bytes(), Map: m}, nil
}

func checkSyntax(s Script) error {
	res := api.Transform(string(s.Code), api.TransformOptions{
		Loader:     api.LoaderJS,
		Sourcefile: s.Path,
	})
	if len(res.Errors) > 0 {
		return fmt.Errorf("transform %s: %w", s.Path, messagesError(res.Errors))
	}
	return nil
}

type sourceMap struct {
	Version        int      `json:"version"`
	Sources        []string `json:"sources"`
	SourcesContent []string `json:"sourcesContent"`
	Names          []string `json:"names"`
	Mappings       string   `json:"mappings"`
}

// identityMap maps column 0 of every line of s to the same line of its source.
// The first segment is (0,0,0,0); each later line only advances the source
// line by one, which is "AACA" in base64 VLQ.
func identityMap(s Script) (json.RawMessage, error) {
	lines := bytes.Count(s.Code, []byte{'\n'}) + 1
	m, err := json.Marshal(sourceMap{
		Version:        3,
		Sources:        []string{s.Path},
		SourcesContent: []string{string(s.Code)},
		Names:          []string{},
		Mappings:       "AAAA" + strings.Repeat(";AACA", lines-1),
	})
	if err != nil {
		return nil, fmt.Errorf("encode map for %s: %w", s.Path, err)
	}
	return m, nil
}

// Minify concatenates the scripts and minifies the result. Top-level names are
// kept because the inputs are classic browser scripts sharing one global scope.
func Minify(file string, scripts []Script) ([]byte, error) {
	res := api.Transform(string(Concat(scripts)), api.TransformOptions{
		Loader:            api.LoaderJS,
		Sourcefile:        file,
		MinifyWhitespace:  true,
		MinifySyntax:      true,
		MinifyIdentifiers: true,
		LegalComments:     api.LegalCommentsNone,
	})
	if len(res.Errors) > 0 {
		return nil, messagesError(res.Errors)
	}
	return res.Code, nil
}
