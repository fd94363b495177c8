package handlers

import (
	"mime"
	"net/http"
	"net/url"

	"accreditations/internal/common"
)

func (h *Handlers) Index(w http.ResponseWriter, r *http.Request) {
	recs, err := h.Records.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	renderHTML(w, http.StatusOK, indexPage(recs))
}

func (h *Handlers) CreateForm(w http.ResponseWriter, _ *http.Request) {
	renderHTML(w, http.StatusOK, recordFormPage("Nueva acreditación", "/create", nil))
}

func (h *Handlers) Create(w http.ResponseWriter, r *http.Request) {
	form, err := postForm(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if _, err := h.Records.Create(r.Context(), form); err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handlers) UpdateForm(w http.ResponseWriter, r *http.Request) {
	id, err := recordID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	rec, err := h.Records.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	renderHTML(w, http.StatusOK, recordFormPage("Editar acreditación", r.URL.Path, rec))
}

func (h *Handlers) Update(w http.ResponseWriter, r *http.Request) {
	id, err := recordID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	form, err := postForm(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if _, err := h.Records.Update(r.Context(), id, form); err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := recordID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.Records.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Search looks a record up by cedula. A request without the parameter
// matches nothing, not even records stored with an empty cedula.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !q.Has("cedula") {
		renderHTML(w, http.StatusOK, notFoundPage(""))
		return
	}
	cedula := q.Get("cedula")
	rec, found, err := h.Records.FindByNationalID(r.Context(), cedula)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !found {
		renderHTML(w, http.StatusOK, notFoundPage(cedula))
		return
	}
	renderHTML(w, http.StatusOK, detailPage(rec))
}

func (h *Handlers) Estadisticas(w http.ResponseWriter, r *http.Request) {
	sum, err := h.Stats.Summary(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	renderHTML(w, http.StatusOK, statsPage(sum))
}

// postForm returns only the body fields, so query parameters never count as
// submitted keys.
func postForm(r *http.Request) (url.Values, error) {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt == "multipart/form-data" {
		if err := r.ParseMultipartForm(8 << 20); err != nil {
			return nil, &common.ParseError{Field: "body", Value: mt, Err: err}
		}
		return r.PostForm, nil
	}
	if err := r.ParseForm(); err != nil {
		return nil, &common.ParseError{Field: "body", Value: mt, Err: err}
	}
	return r.PostForm, nil
}
