package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
)

// readUpload reads one multipart file field, bounded by the upload limit.
func (h *Handlers) readUpload(w http.ResponseWriter, r *http.Request, field string) (string, []byte, bool) {
	maxSize := h.maxUploadSize()
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, fmt.Sprintf("File too large (max %d MB)", maxSize>>20), http.StatusRequestEntityTooLarge)
		} else {
			WriteError(w, "Invalid multipart form", http.StatusBadRequest)
		}
		return "", nil, false
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		WriteError(w, fmt.Sprintf("Missing file field %q", field), http.StatusBadRequest)
		return "", nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		WriteError(w, "Failed to read file", http.StatusBadRequest)
		return "", nil, false
	}

	return header.Filename, data, true
}

func (h *Handlers) AddImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	fileName, data, ok := h.readUpload(w, r, "image")
	if !ok {
		return
	}

	post, err := h.PostService.AddImage(r.Context(), caller(r), pathVar(r, "id"), fileName, data)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	WriteSuccess(w, NewPostResponse(*post), http.StatusCreated)
}

func (h *Handlers) DeleteImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	index, err := strconv.Atoi(pathVar(r, "index"))
	if err != nil {
		WriteError(w, "Invalid image index", http.StatusBadRequest)
		return
	}

	post, err := h.PostService.RemoveImage(r.Context(), caller(r), pathVar(r, "id"), index)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	WriteSuccess(w, NewPostResponse(*post), http.StatusOK)
}
