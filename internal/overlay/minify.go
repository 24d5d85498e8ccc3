package overlay

import (
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/svg"
)

const (
	mimeSVG  = "image/svg+xml"
	mimeHTML = "text/html"
	mimeCSS  = "text/css"
)

var minifier = newMinifier()

func newMinifier() *minify.M {
	m := minify.New()
	m.AddFunc(mimeCSS, css.Minify)
	m.AddFunc(mimeHTML, html.Minify)
	m.AddFunc(mimeSVG, svg.Minify)
	return m
}

// MinifySVG minifies an SVG document.
func MinifySVG(b []byte) ([]byte, error) {
	return minifier.Bytes(mimeSVG, b)
}

// MinifyHTML minifies an HTML page including its inline SVG and CSS.
func MinifyHTML(b []byte) ([]byte, error) {
	return minifier.Bytes(mimeHTML, b)
}
