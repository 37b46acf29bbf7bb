package content

import (
	"log/slog"
	"net/http"

	"tlwd-backend/internal/common/pagination"
	"tlwd-backend/internal/handler/http/upload"
	commentUC "tlwd-backend/internal/usecase/comment"
	contentUC "tlwd-backend/internal/usecase/content"
)

// Options carries what every content route set shares.
type Options struct {
	Pagination pagination.Config
	Uploads    upload.Parser
	// Admin gates the /api/admin routes.
	Admin func(http.Handler) http.Handler
	// Limit throttles public writes (comment submission). Nil disables it.
	Limit    func(http.Handler) http.Handler
	Comments *commentUC.Service
	Logger   *slog.Logger
}

// Register mounts the public and admin routes of one content type:
//
//	GET    /api/{name}            GET    /api/admin/{name}
//	GET    /api/{name}/{id}       POST   /api/admin/{name}
//	                              PUT    /api/admin/{name}/{id}
//	                              DELETE /api/admin/{name}/{id}
//
// opts.Admin is mandatory; Register panics without it.
// The blog type additionally gets its comment routes and a detail route
// that embeds approved comments.
func Register(mux *http.ServeMux, svc *contentUC.Service, opts Options) {
	name := svc.Type.Name
	public := "/api/" + name
	admin := "/api/admin/" + name
	gate := opts.Admin
	if gate == nil {
		panic("content: Register requires an admin guard for " + name)
	}
	limit := opts.Limit
	if limit == nil {
		limit = func(h http.Handler) http.Handler { return h }
	}
	blog := name == commentUC.PostType && opts.Comments != nil

	mux.Handle("GET "+public, PublicListHandler{Svc: svc, Pagination: opts.Pagination, Paginate: blog})
	if blog {
		mux.Handle("GET "+public+"/{id}", PostHandler{Svc: svc, Comments: opts.Comments})
		mux.Handle("POST "+public+"/{id}/comments", limit(SubmitCommentHandler{opts.Comments}))

		mux.Handle("GET "+admin+"/{id}/comments", gate(ListCommentsHandler{opts.Comments}))
		mux.Handle("PATCH "+admin+"/{id}/comments/{commentId}/approve", gate(ApproveCommentHandler{opts.Comments}))
		mux.Handle("DELETE "+admin+"/{id}/comments/{commentId}", gate(DeleteCommentHandler{opts.Comments}))
	} else {
		mux.Handle("GET "+public+"/{id}", GetHandler{svc})
	}

	mux.Handle("GET "+admin, gate(ListHandler{Svc: svc, Pagination: opts.Pagination, Logger: opts.Logger}))
	mux.Handle("POST "+admin, gate(CreateHandler{Svc: svc, Uploads: opts.Uploads, Logger: opts.Logger}))
	mux.Handle("PUT "+admin+"/{id}", gate(UpdateHandler{Svc: svc, Uploads: opts.Uploads}))
	mux.Handle("DELETE "+admin+"/{id}", gate(DeleteHandler{Svc: svc, Logger: opts.Logger}))
}
