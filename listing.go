package staticfs

import (
	"html/template"
	"io"
	"net/http"
	"strconv"
)

// ListingRenderer renders a directory listing page. The resolver never
// renders; it hands entries to the adapter, which delegates here.
type ListingRenderer interface {
	Render(w io.Writer, dir string, entries []Entry) error
}

const listingTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Index of {{.Directory}}</title>
</head>
<body>
<h1>Index of {{.Directory}}</h1>
<table>
<tr><th>Name</th><th>Size</th><th>Last Modified</th></tr>
{{range .Entries}}<tr><td><a href="{{.Href}}">{{.Name}}</a></td><td>{{.Size}}</td><td>{{.ModTime}}</td></tr>
{{end}}</table>
</body>
</html>
`

type listingData struct {
	Directory string
	Entries   []listingRow
}

type listingRow struct {
	Name    string
	Href    string
	Size    string
	ModTime string
}

// htmlListing is the default ListingRenderer: a plain HTML index page with
// name-relative links, directory names suffixed with a slash.
type htmlListing struct {
	tmpl *template.Template
}

// NewHTMLListing creates the default HTML listing renderer.
func NewHTMLListing() ListingRenderer {
	return &htmlListing{
		tmpl: template.Must(template.New("listing").Parse(listingTemplate)),
	}
}

func (l *htmlListing) Render(w io.Writer, dir string, entries []Entry) error {
	data := listingData{Directory: dir, Entries: make([]listingRow, 0, len(entries))}
	for _, e := range entries {
		row := listingRow{Name: e.Name, Href: e.Name}
		if e.IsDir {
			row.Name += "/"
			row.Href += "/"
		} else {
			row.Size = strconv.FormatInt(e.Size, 10)
			row.ModTime = e.ModTime.UTC().Format(http.TimeFormat)
		}
		data.Entries = append(data.Entries, row)
	}
	return l.tmpl.Execute(w, data)
}
