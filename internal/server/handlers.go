package server

import (
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/aylalah/ag-rms-sub000/internal/apperr"
	"github.com/aylalah/ag-rms-sub000/internal/pagination"
	"github.com/aylalah/ag-rms-sub000/internal/services/iam"
	"github.com/aylalah/ag-rms-sub000/internal/services/notify"
	"github.com/aylalah/ag-rms-sub000/internal/services/record"
	"github.com/aylalah/ag-rms-sub000/internal/services/upload"
	"github.com/go-chi/chi/v5"
)

// maxUploadMemory bounds how much of a multipart body is buffered in memory;
// larger parts spill to temp files.
const maxUploadMemory = 32 << 20

// mountEntity wires the five record routes plus the form endpoint for one
// entity under /api/{plural}.
func mountEntity[T any](r chi.Router, svc *record.Service[T]) {
	r.Route("/"+svc.Plural(), func(r chi.Router) {
		r.Get("/", handleList(svc))
		r.Post("/", handleCreate(svc))
		r.Get("/form", handleForm(svc))
		r.Get("/{id}", handleOne(svc))
		r.Put("/{id}", handleUpdate(svc))
		r.Delete("/{id}", handleDelete(svc))
	})
}

// listRequest translates query parameters into a pagination request. page,
// limit, orderBy, and include are reserved; every other parameter becomes an
// equality filter when it maps onto a known field of the entity.
func listRequest[T any](r *http.Request, svc *record.Service[T]) pagination.Request {
	query := r.URL.Query()
	req := pagination.Request{
		Page:    atoiOrZero(query.Get("page")),
		Limit:   atoiOrZero(query.Get("limit")),
		OrderBy: query.Get("orderBy"),
		Include: splitCSV(query.Get("include")),
	}
	for field, values := range query {
		switch field {
		case "page", "limit", "orderBy", "include":
			continue
		}
		col, ok := svc.Column(field)
		if !ok || len(values) == 0 {
			continue
		}
		if req.Where == nil {
			req.Where = make(map[string]any)
		}
		req.Where[col] = values[0]
	}
	return req
}

func handleList[T any](svc *record.Service[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := svc.All(r.Context(), listRequest(r, svc))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{svc.Plural(): result})
	}
}

func handleOne[T any](svc *record.Service[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		include := splitCSV(r.URL.Query().Get("include"))
		rec, err := svc.One(r.Context(), chi.URLParam(r, "id"), include)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{svc.Singular(): rec})
	}
}

func handleCreate[T any](svc *record.Service[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := new(T)
		if err := json.NewDecoder(r.Body).Decode(rec); err != nil {
			writeError(w, apperr.New(apperr.KindValidation, "invalid request body"))
			return
		}
		message, err := svc.Create(r.Context(), rec)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"message": message})
	}
}

func handleUpdate[T any](svc *record.Service[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, fields, err := decodePartial[T](r)
		if err != nil {
			writeError(w, err)
			return
		}
		message, err := svc.Update(r.Context(), chi.URLParam(r, "id"), rec, fields)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": message})
	}
}

func handleDelete[T any](svc *record.Service[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		message, err := svc.Delete(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": message})
	}
}

func handleForm[T any](svc *record.Service[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fields, err := svc.FormObject(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"formObject": fields})
	}
}

// decodePartial decodes an update body twice: once into the typed record and
// once into a key set, so the service knows which fields the caller actually
// sent and writes only those.
func decodePartial[T any](r *http.Request) (*T, []string, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return nil, nil, apperr.New(apperr.KindValidation, "invalid request body")
	}

	body, err := json.Marshal(raw)
	if err != nil {
		return nil, nil, apperr.New(apperr.KindValidation, "invalid request body")
	}
	rec := new(T)
	if err := json.Unmarshal(body, rec); err != nil {
		return nil, nil, apperr.New(apperr.KindValidation, "invalid request body")
	}

	fields := make([]string, 0, len(raw))
	for field := range raw {
		fields = append(fields, field)
	}
	return rec, fields, nil
}

// handleLogin exchanges contact credentials for a session token.
func handleLogin(logins *iam.LoginService) http.HandlerFunc {
	type request struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, apperr.New(apperr.KindValidation, "invalid request body"))
			return
		}
		result, err := logins.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// handleUploads accepts a multipart batch. Every file part is treated as an
// upload keyed by its part name; recipientEmail, recipientName, and cc value
// parts address the digest email.
func handleUploads(pipeline *upload.Pipeline) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
			writeError(w, apperr.New(apperr.KindValidation, "invalid multipart body"))
			return
		}
		defer func() {
			_ = r.MultipartForm.RemoveAll()
		}()

		files, closers, err := collectFiles(r.MultipartForm)
		if err != nil {
			writeError(w, err)
			return
		}
		defer func() {
			for _, c := range closers {
				_ = c.Close()
			}
		}()

		recipient := notify.Recipient{
			Email: r.FormValue("recipientEmail"),
			Name:  r.FormValue("recipientName"),
			Cc:    r.FormValue("cc"),
		}

		outcomes := pipeline.Submit(r.Context(), files, recipient)
		writeJSON(w, http.StatusOK, map[string]any{"outcomes": outcomes})
	}
}

// collectFiles flattens the multipart file parts into upload files, keyed by
// the part name. Duplicate part names get an index suffix so every outcome
// stays addressable.
func collectFiles(form *multipart.Form) ([]upload.File, []multipart.File, error) {
	var files []upload.File
	var closers []multipart.File

	for name, headers := range form.File {
		for i, header := range headers {
			f, err := header.Open()
			if err != nil {
				for _, c := range closers {
					_ = c.Close()
				}
				return nil, nil, apperr.Wrap(apperr.KindValidation, err, "could not read uploaded file %s", header.Filename)
			}
			closers = append(closers, f)

			key := name
			if len(headers) > 1 {
				key = name + "-" + strconv.Itoa(i)
			}
			files = append(files, upload.File{
				Key:       key,
				Name:      header.Filename,
				MediaType: header.Header.Get("Content-Type"),
				Size:      header.Size,
				Body:      f,
			})
		}
	}
	return files, closers, nil
}

// handleAudits lists the audit trail, newest first. The read gate is
// registered against the audits table when the router is assembled.
func handleAudits(audits auditLister, policy *iam.Policy) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := policy.Check(r.Context(), "audits", "read"); err != nil {
			writeError(w, err)
			return
		}
		query := r.URL.Query()
		req := pagination.Request{
			Page:  atoiOrZero(query.Get("page")),
			Limit: atoiOrZero(query.Get("limit")),
		}
		if table := query.Get("table"); table != "" {
			req.Where = map[string]any{"table_name": table}
		}
		result, err := audits.List(r.Context(), req)
		if err != nil {
			writeError(w, apperr.Wrap(apperr.KindInternal, err, "could not list audits"))
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"audits": result})
	}
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var parts []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
