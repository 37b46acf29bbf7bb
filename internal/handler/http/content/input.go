package content

import (
	"mime"
	"net/http"
	"strings"

	"tlwd-backend/internal/handler/http/bind"
	"tlwd-backend/internal/handler/http/upload"
	contentUC "tlwd-backend/internal/usecase/content"
)

// fileFields are the multipart parts a record's asset may arrive under.
// Admin forms send "image" for every type; media and resources send "file".
func fileFields(svc *contentUC.Service) []string {
	fields := []string{"image", "file"}
	if f := svc.Type.AssetField(); f != "" && f != "image" && f != "file" {
		fields = append(fields, f)
	}
	return fields
}

// decodeInput accepts JSON, urlencoded and multipart bodies.
func decodeInput(r *http.Request, svc *contentUC.Service, parser upload.Parser) (contentUC.Input, error) {
	if upload.IsMultipart(r) {
		form, err := parser.Parse(r, fileFields(svc)...)
		if err != nil {
			return contentUC.Input{}, err
		}
		if svc.Type.Asset == nil {
			form.Asset = nil
		}
		return contentUC.Input{Fields: form.Fields, Asset: form.Asset}, nil
	}

	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if strings.EqualFold(mt, "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err != nil {
			return contentUC.Input{}, bind.ErrInvalidBody
		}
		fields := make(map[string]any, len(r.PostForm))
		for k, vs := range r.PostForm {
			if len(vs) > 0 {
				fields[k] = vs[0]
			}
		}
		return contentUC.Input{Fields: fields}, nil
	}

	fields := map[string]any{}
	if err := bind.JSON(r, &fields); err != nil {
		return contentUC.Input{}, err
	}
	return contentUC.Input{Fields: fields}, nil
}

// reservedQuery are list parameters that are not field filters.
var reservedQuery = map[string]bool{
	"page": true, "limit": true, "status": true, "type": true, "search": true,
}

func listOptions(r *http.Request) contentUC.ListOptions {
	q := r.URL.Query()
	opts := contentUC.ListOptions{
		Status: strings.TrimSpace(q.Get("status")),
		Type:   strings.TrimSpace(q.Get("type")),
		Search: q.Get("search"),
	}
	for k, vs := range q {
		if reservedQuery[k] || len(vs) == 0 {
			continue
		}
		if opts.Filters == nil {
			opts.Filters = map[string]string{}
		}
		opts.Filters[k] = vs[0]
	}
	return opts
}

// wantsPage reports whether the client asked for a page explicitly.
func wantsPage(r *http.Request) bool {
	q := r.URL.Query()
	return q.Has("page") || q.Has("limit")
}
