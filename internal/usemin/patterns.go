package usemin

import "regexp"

// patternClass is one asset-bearing construct the revving pass rewrites.
// The first capture group of re is the reference to look up.
type patternClass struct {
	name string
	re   *regexp.Regexp
}

// revvedPatterns lists the construct classes in application order. Later
// classes run over the output of earlier ones, so a construct that can nest
// inside an already-rewritten span is not processed twice.
var revvedPatterns = []patternClass{
	{"script-src", regexp.MustCompile(`<script.+src=["']([^"']+)["']`)},
	{"link-href", regexp.MustCompile(`<link[^>]+href=["']([^"']+)["']`)},
	{"img-src", regexp.MustCompile(`<img[^>]+src=["']([^"']+)["']`)},
	{"data-attr", regexp.MustCompile(`data-[A-Za-z0-9-]*=["']([^"']+)["']`)},
	{"css-url", regexp.MustCompile(`url\(\s*["']?([^"')]+)["']?\s*\)`)},
	{"anchor-href", regexp.MustCompile(`<a[^>]+href=["']([^"']+)["']`)},
	{"input-src", regexp.MustCompile(`<input[^>]+src=["']([^"']+)["']`)},
}
