package content

import (
	"net/http"

	"tlwd-backend/internal/handler/http/pathutil"
	"tlwd-backend/internal/handler/http/respond"
	commentUC "tlwd-backend/internal/usecase/comment"
	contentUC "tlwd-backend/internal/usecase/content"
)

// GetHandler returns one publicly visible record.
type GetHandler struct{ Svc *contentUC.Service }

// ServeHTTP 公開詳細
func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ID(r, "id")
	if err != nil {
		respond.Fail(w, err)
		return
	}
	rec, err := h.Svc.PublicGet(r.Context(), id)
	if err != nil {
		respond.Fail(w, err)
		return
	}
	respond.OK(w, "Success", Record(rec))
}

// PostHandler returns a published blog post with its approved comments.
type PostHandler struct {
	Svc      *contentUC.Service
	Comments *commentUC.Service
}

// ServeHTTP ブログ記事詳細（承認済みコメント付き）
func (h PostHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ID(r, "id")
	if err != nil {
		respond.Fail(w, err)
		return
	}
	post, err := h.Svc.PublicGet(r.Context(), id)
	if err != nil {
		respond.Fail(w, err)
		return
	}
	comments, err := h.Comments.Approved(r.Context(), post.ID)
	if err != nil {
		respond.Fail(w, err)
		return
	}
	respond.OK(w, "Success", map[string]any{
		"post":     Record(post),
		"comments": commentDTOs(comments, false),
	})
}
