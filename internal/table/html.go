package table

import (
	"fmt"
	"html/template"
	"io"
)

var htmlTmpl = template.Must(template.New("table").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
table.dataframe { border-collapse: collapse; font-family: sans-serif; font-size: 13px; }
table.dataframe th, table.dataframe td { border: 1px solid #ccc; padding: 4px 8px; }
table.dataframe th { background: #f0f0f0; }
</style>
</head>
<body>
<h2>{{.Title}}</h2>
<p>{{.Rows}} rows × {{len .Header}} columns</p>
<table class="dataframe">
<thead><tr><th></th>{{range .Header}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{range $i, $row := .Body}}<tr><th>{{$i}}</th>{{range $row}}<td>{{.}}</td>{{end}}</tr>
{{end}}</tbody>
</table>
</body>
</html>
`))

// HTML renders the whole frame as an HTML document with an indexed table.
// Missing cells render as NaN.
func (f *Frame) HTML(w io.Writer, title string) error {
	body := make([][]string, f.Rows())
	for i := range body {
		row := make([]string, len(f.Columns))
		for j, c := range f.Columns {
			if !c.Cells[i].Valid {
				row[j] = "NaN"
				continue
			}
			row[j] = c.Format(i)
		}
		body[i] = row
	}
	data := struct {
		Title  string
		Rows   int
		Header []string
		Body   [][]string
	}{Title: title, Rows: f.Rows(), Header: f.Names(), Body: body}
	if err := htmlTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}
