package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"postfeed/internal/auth"
	"postfeed/internal/common"
)

const (
	FunctionEditPost   = "editPost"
	FunctionDeletePost = "deletePost"
)

// CallableRequest and CallableResponse are the envelopes of the callable
// function protocol.
type CallableRequest struct {
	Data json.RawMessage `json:"data"`
}

type CallableError struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type CallableResponse struct {
	Result any            `json:"result,omitempty"`
	Error  *CallableError `json:"error,omitempty"`
}

type SuccessResult struct {
	Success bool `json:"success"`
}

type EditPostData struct {
	PostID     string `json:"postId" validate:"required"`
	NewContent string `json:"newContent" validate:"max=10000"`
}

type DeletePostData struct {
	PostID string `json:"postId" validate:"required"`
}

type callable func(ctx context.Context, user auth.User, data json.RawMessage) error

func (h *Handlers) functions() map[string]callable {
	return map[string]callable{
		FunctionEditPost:   h.editPost,
		FunctionDeletePost: h.deletePost,
	}
}

// CallFunction dispatches POST /api/functions/{name}. Ownership is enforced
// here regardless of what the client checked.
func (h *Handlers) CallFunction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name := pathVar(r, "name")
	fn, ok := h.functions()[name]
	if !ok {
		writeCallableError(w, http.StatusNotFound, "not-found", fmt.Sprintf("function %s does not exist", name))
		return
	}

	var req CallableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeCallableError(w, http.StatusBadRequest, "invalid-argument", "request body must be {\"data\": ...}")
		return
	}

	if err := fn(r.Context(), caller(r), req.Data); err != nil {
		status, code := statusOf(err)
		if status == http.StatusInternalServerError {
			h.logger().Error(r.Context(), "callable failed", "function", name, "error", err)
		}
		writeCallableError(w, status, code, publicMessage(err, code))
		return
	}

	WriteSuccess(w, CallableResponse{Result: SuccessResult{Success: true}}, http.StatusOK)
}

func writeCallableError(w http.ResponseWriter, status int, code, message string) {
	WriteSuccess(w, CallableResponse{Error: &CallableError{Status: code, Message: message}}, status)
}

func (h *Handlers) decodeData(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return fmt.Errorf("missing data: %w", common.ErrValidation)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("malformed data: %w", common.ErrValidation)
	}
	if err := h.Validate.Struct(dst); err != nil {
		return fmt.Errorf("%s: %w", err.Error(), common.ErrValidation)
	}
	return nil
}

// An anonymous call is unauthenticated whatever its payload.
func (h *Handlers) editPost(ctx context.Context, user auth.User, raw json.RawMessage) error {
	if user.ID == "" {
		return common.ErrUnauthenticated
	}

	var data EditPostData
	if err := h.decodeData(raw, &data); err != nil {
		return err
	}

	return h.PostService.UpdateContent(ctx, user, data.PostID, data.NewContent)
}

func (h *Handlers) deletePost(ctx context.Context, user auth.User, raw json.RawMessage) error {
	if user.ID == "" {
		return common.ErrUnauthenticated
	}

	var data DeletePostData
	if err := h.decodeData(raw, &data); err != nil {
		return err
	}

	return h.PostService.Delete(ctx, user, data.PostID)
}
