// Package transform adapts the third-party engines assetflow delegates to:
// Dart Sass for stylesheets, esbuild for CSS prefixing and script
// minification, tdewolff/minify for markup and SVG, and the image codecs.
//
// Adapters take bytes and return bytes. They never touch the project tree;
// reading sources and writing outputs is the tasks' job.
package transform
