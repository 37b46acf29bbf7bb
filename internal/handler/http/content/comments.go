package content

import (
	"net/http"

	"tlwd-backend/internal/handler/http/bind"
	"tlwd-backend/internal/handler/http/pathutil"
	"tlwd-backend/internal/handler/http/respond"
	commentUC "tlwd-backend/internal/usecase/comment"
)

type SubmitCommentHandler struct{ Svc *commentUC.Service }

// ServeHTTP コメント投稿（承認待ち）
func (h SubmitCommentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	postID, err := pathutil.ID(r, "id")
	if err != nil {
		respond.Fail(w, err)
		return
	}
	var req struct {
		User  string `json:"user"`
		Email string `json:"email"`
		Text  string `json:"text"`
	}
	if err := bind.JSON(r, &req); err != nil {
		respond.Fail(w, err)
		return
	}
	c, err := h.Svc.Submit(r.Context(), postID, req.User, req.Email, req.Text)
	if err != nil {
		respond.Fail(w, err)
		return
	}
	respond.Created(w, "Comment submitted for moderation", commentDTO(c, false))
}

type ListCommentsHandler struct{ Svc *commentUC.Service }

// ServeHTTP 記事のコメント一覧（管理）
func (h ListCommentsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	postID, err := pathutil.ID(r, "id")
	if err != nil {
		respond.Fail(w, err)
		return
	}
	items, err := h.Svc.ListForPost(r.Context(), postID)
	if err != nil {
		respond.Fail(w, err)
		return
	}
	respond.OK(w, "Success", commentDTOs(items, true))
}

type ApproveCommentHandler struct{ Svc *commentUC.Service }

// ServeHTTP コメント承認
func (h ApproveCommentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	postID, commentID, err := commentIDs(r)
	if err != nil {
		respond.Fail(w, err)
		return
	}
	c, err := h.Svc.Approve(r.Context(), postID, commentID)
	if err != nil {
		respond.Fail(w, err)
		return
	}
	respond.OK(w, "Comment approved successfully", commentDTO(c, true))
}

type DeleteCommentHandler struct{ Svc *commentUC.Service }

// ServeHTTP コメント削除
func (h DeleteCommentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	postID, commentID, err := commentIDs(r)
	if err != nil {
		respond.Fail(w, err)
		return
	}
	if err := h.Svc.Delete(r.Context(), postID, commentID); err != nil {
		respond.Fail(w, err)
		return
	}
	respond.OK(w, "Comment deleted successfully", nil)
}

func commentIDs(r *http.Request) (string, string, error) {
	postID, err := pathutil.ID(r, "id")
	if err != nil {
		return "", "", err
	}
	commentID, err := pathutil.ID(r, "commentId")
	if err != nil {
		return "", "", err
	}
	return postID, commentID, nil
}
