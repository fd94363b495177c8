package handlers

import (
	"net/url"
	"slices"
	"strconv"
	"strings"

	"accreditations/internal/models"
	"accreditations/internal/services/records"
	"accreditations/internal/services/stats"

	gomponents "maragu.dev/gomponents"
	html "maragu.dev/gomponents/html"
)

const appTitle = "Registro de acreditaciones"

const stylesheet = `
body{font-family:system-ui,sans-serif;margin:0;color:#1f2933}
.layout{max-width:1100px;margin:0 auto;padding:1rem 1.5rem}
.nav{display:flex;gap:1rem;align-items:center;border-bottom:1px solid #d9e2ec;padding-bottom:.75rem}
.nav form{margin-left:auto}
table{border-collapse:collapse;width:100%}
th,td{border-bottom:1px solid #e4e7eb;padding:.4rem .6rem;text-align:left}
.stack-form{display:grid;grid-template-columns:repeat(auto-fill,minmax(260px,1fr));gap:.75rem}
.stack-form label{display:flex;flex-direction:column;font-size:.9rem;gap:.2rem}
.stack-form label.check{flex-direction:row;align-items:center}
.form-actions{grid-column:1/-1}
.muted{color:#7b8794}
dl{display:grid;grid-template-columns:max-content 1fr;gap:.3rem 1rem}
dt{font-weight:600}
`

func appPage(title string, body ...gomponents.Node) gomponents.Node {
	return html.HTML(
		html.Lang("es"),
		html.Head(
			html.Meta(html.Charset("utf-8")),
			html.Meta(html.Name("viewport"), html.Content("width=device-width, initial-scale=1")),
			html.TitleEl(gomponents.Text(title+" | "+appTitle)),
			html.StyleEl(gomponents.Raw(stylesheet)),
		),
		html.Body(
			html.Main(
				html.Class("layout"),
				html.Nav(
					html.Class("nav"),
					html.A(html.Href("/"), gomponents.Text("Inicio")),
					html.A(html.Href("/create"), gomponents.Text("Nueva acreditación")),
					html.A(html.Href("/estadisticas"), gomponents.Text("Estadísticas")),
					html.A(html.Href("/export.xlsx"), gomponents.Text("Exportar")),
					html.Form(
						html.Method("get"),
						html.Action("/search"),
						html.Input(html.Type("search"), html.Name("cedula"), html.Placeholder("Buscar por cédula")),
						html.Button(html.Type("submit"), gomponents.Text("Buscar")),
					),
				),
				html.H1(gomponents.Text(title)),
				gomponents.Group(body),
			),
		),
	)
}

func errorPage(title, message string) gomponents.Node {
	return appPage(title,
		html.P(gomponents.Text(message)),
		html.P(html.A(html.Href("/"), gomponents.Text("Volver al inicio"))),
	)
}

func indexPage(recs []models.Record) gomponents.Node {
	if len(recs) == 0 {
		return appPage(appTitle, html.P(html.Class("muted"), gomponents.Text("No hay registros.")))
	}

	rows := make([]gomponents.Node, 0, len(recs))
	for i := range recs {
		r := &recs[i]
		id := strconv.FormatInt(r.ID, 10)
		rows = append(rows, html.Tr(
			html.Td(gomponents.Text(id)),
			html.Td(gomponents.Text(r.FullName())),
			html.Td(html.A(html.Href("/search?cedula="+url.QueryEscape(r.NationalID)), gomponents.Text(r.NationalID))),
			html.Td(gomponents.Text(r.AccreditationNumber)),
			html.Td(gomponents.Text(strconv.Itoa(r.AccreditationYear))),
			html.Td(gomponents.Text(r.City)),
			html.Td(
				html.A(html.Href("/update/"+id), gomponents.Text("Editar")),
				gomponents.Text(" "),
				html.A(html.Href("/delete/"+id), gomponents.Text("Eliminar")),
			),
		))
	}

	return appPage(appTitle,
		html.Table(
			html.THead(html.Tr(
				html.Th(gomponents.Text("ID")),
				html.Th(gomponents.Text("Nombre")),
				html.Th(gomponents.Text("Cédula")),
				html.Th(gomponents.Text("Nro. de acreditación")),
				html.Th(gomponents.Text("Año")),
				html.Th(gomponents.Text("Ciudad")),
				html.Th(),
			)),
			html.TBody(gomponents.Group(rows)),
		),
	)
}

// recordFormPage renders every field; rec is nil on create.
func recordFormPage(title, action string, rec *models.Record) gomponents.Node {
	inputs := make([]gomponents.Node, 0, len(records.Fields))
	for _, f := range records.Fields {
		v := ""
		if rec != nil {
			v = f.Value(rec)
		}
		inputs = append(inputs, fieldInput(f, v))
	}

	return appPage(title,
		html.Form(
			html.Class("stack-form"),
			html.Method("post"),
			html.Action(action),
			gomponents.Group(inputs),
			html.Div(html.Class("form-actions"), html.Button(html.Type("submit"), gomponents.Text("Guardar"))),
		),
	)
}

func fieldInput(f records.Field, value string) gomponents.Node {
	if f.Kind == records.KindFlag {
		return html.Label(
			html.Class("check"),
			html.Input(html.Type("checkbox"), html.Name(f.Key), html.Value("1"), gomponents.If(value != "", html.Checked())),
			gomponents.Text(f.Label),
		)
	}

	typ := "text"
	switch f.Kind {
	case records.KindDate:
		typ = "date"
	case records.KindNumber:
		typ = "number"
	}

	return html.Label(
		gomponents.Text(f.Label),
		html.Input(
			html.Type(typ),
			html.Name(f.Key),
			html.Value(value),
			gomponents.If(f.Kind == records.KindDocument, html.Placeholder("s3://bucket/documents/...")),
		),
	)
}

func detailPage(rec *models.Record) gomponents.Node {
	items := make([]gomponents.Node, 0, 2*len(records.Fields))
	for _, f := range records.Fields {
		items = append(items, html.Dt(gomponents.Text(f.Label)), html.Dd(displayValue(f, rec)))
	}
	id := strconv.FormatInt(rec.ID, 10)

	return appPage(rec.FullName(),
		html.Dl(gomponents.Group(items)),
		html.P(
			html.A(html.Href("/update/"+id), gomponents.Text("Editar")),
			gomponents.Text(" "),
			html.A(html.Href("/delete/"+id), gomponents.Text("Eliminar")),
		),
	)
}

func displayValue(f records.Field, rec *models.Record) gomponents.Node {
	v := f.Value(rec)
	switch {
	case f.Kind == records.KindFlag:
		if v != "" {
			return gomponents.Text("Sí")
		}
		return gomponents.Text("No")
	case v == "":
		return html.Span(html.Class("muted"), gomponents.Text("-"))
	case f.Kind == records.KindDocument && strings.HasPrefix(v, "s3://"):
		return html.A(html.Href("/documents?path="+url.QueryEscape(v)), gomponents.Text(v))
	}
	return gomponents.Text(v)
}

func notFoundPage(cedula string) gomponents.Node {
	return appPage("Sin resultados",
		html.P(gomponents.Textf("No se encontró ningún registro con la cédula %q.", cedula)),
		html.P(html.A(html.Href("/create"), gomponents.Text("Registrar una nueva acreditación"))),
	)
}

func statsPage(sum stats.Summary) gomponents.Node {
	cityRows := make([]gomponents.Node, 0, len(sum.ByCity))
	for _, c := range sum.ByCity {
		name := c.City
		if name == "" {
			name = "Sin ciudad"
		}
		cityRows = append(cityRows, html.Tr(
			html.Td(gomponents.Text(name)),
			html.Td(gomponents.Text(strconv.FormatInt(c.Count, 10))),
		))
	}

	decades := make([]int, 0, len(sum.AgeDecades))
	for d := range sum.AgeDecades {
		decades = append(decades, d)
	}
	slices.Sort(decades)

	ageRows := make([]gomponents.Node, 0, len(decades))
	for _, d := range decades {
		ageRows = append(ageRows, html.Tr(
			html.Td(gomponents.Textf("%d-%d", d, d+9)),
			html.Td(gomponents.Text(strconv.Itoa(sum.AgeDecades[d]))),
		))
	}

	return appPage("Estadísticas",
		html.P(gomponents.Textf("Total de registros: %d", sum.Total)),
		html.H2(gomponents.Text("Registros por ciudad")),
		html.Table(
			html.THead(html.Tr(html.Th(gomponents.Text("Ciudad")), html.Th(gomponents.Text("Registros")))),
			html.TBody(gomponents.Group(cityRows)),
		),
		html.H2(gomponents.Text("Distribución por edad")),
		html.Table(
			html.THead(html.Tr(html.Th(gomponents.Text("Edad")), html.Th(gomponents.Text("Registros")))),
			html.TBody(gomponents.Group(ageRows)),
		),
	)
}
