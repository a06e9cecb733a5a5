package server

import (
	"bytes"
	"html/template"
	"path/filepath"
	"time"

	"github.com/aellingwood/skyforge/internal/build"
)

// GalleryItem is one sprite shown on the gallery page.
type GalleryItem struct {
	Name   string
	Kind   string
	File   string // path relative to the output directory, slash-separated
	Width  int
	Height int
	Size   int64
}

// GalleryFromResult lists the sprites of a build, in config order.
func GalleryFromResult(res *build.BuildResult) []GalleryItem {
	items := make([]GalleryItem, 0, len(res.Assets))
	for _, a := range res.Assets {
		rel, err := filepath.Rel(res.OutputDir, a.Path)
		if err != nil {
			rel = filepath.Base(a.Path)
		}
		items = append(items, GalleryItem{
			Name:   a.Name,
			Kind:   a.Kind,
			File:   filepath.ToSlash(rel),
			Width:  a.Width,
			Height: a.Height,
			Size:   a.Size,
		})
	}
	return items
}

var galleryTmpl = template.Must(template.New("gallery").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>skyforge sprites</title>
<style>
body { font-family: sans-serif; background: #1b1f2a; color: #e6e6e6; margin: 2rem; }
.grid { display: flex; flex-wrap: wrap; gap: 1.5rem; }
figure { margin: 0; }
.checker {
  background-color: #888;
  background-image: linear-gradient(45deg, #555 25%, transparent 25%),
    linear-gradient(-45deg, #555 25%, transparent 25%),
    linear-gradient(45deg, transparent 75%, #555 75%),
    linear-gradient(-45deg, transparent 75%, #555 75%);
  background-size: 20px 20px;
  background-position: 0 0, 0 10px, 10px -10px, -10px 0;
}
img { display: block; max-width: 400px; height: auto; }
figcaption { font-size: 0.85rem; margin-top: 0.4rem; }
</style>
</head>
<body>
<h1>skyforge sprites</h1>
{{if .Items}}<div class="grid">
{{range .Items}}<figure>
<div class="checker"><img src="/{{.File}}?v={{$.Stamp}}" alt="{{.Name}}" width="{{.Width}}" height="{{.Height}}"></div>
<figcaption>{{.Name}} ({{.Kind}}) {{.Width}}&times;{{.Height}}, {{.Size}} bytes</figcaption>
</figure>
{{end}}</div>
{{else}}<p>No sprites generated yet.</p>
{{end}}</body>
</html>
`))

// RenderGallery renders the gallery page for items. Image URLs carry a
// cache-busting stamp so a reload always fetches the regenerated files.
func RenderGallery(items []GalleryItem) ([]byte, error) {
	var buf bytes.Buffer
	err := galleryTmpl.Execute(&buf, struct {
		Items []GalleryItem
		Stamp int64
	}{items, time.Now().UnixNano()})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
