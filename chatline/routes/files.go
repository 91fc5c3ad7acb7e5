package routes

import (
	"errors"
	"io"
	"net/http"

	"chatline/chatline/controllers"
	"chatline/chatline/middlewares"
	"chatline/chatline/sources/storage"
	"chatline/chatline/utils/pathsafe"

	"github.com/go-chi/chi/v5"
)

// UploadHandler serves POST /upload: multipart field "file", body already
// capped by MaxBytesReader below. Responses mirror the page contract:
// 200 "File uploaded", 400 "No file uploaded" / "No selected file" /
// "Invalid file type".
func UploadHandler(ctrl *controllers.MessageController, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

		file, header, err := r.FormFile("file")
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				http.Error(w, "File too large", http.StatusRequestEntityTooLarge)
				return
			}
			http.Error(w, "No file uploaded", http.StatusBadRequest)
			return
		}
		defer file.Close()

		if header.Filename == "" || pathsafe.SecureFilename(header.Filename) == "" {
			http.Error(w, "No selected file", http.StatusBadRequest)
			return
		}

		username, _ := r.Context().Value(middlewares.UsernameKey).(string)
		_, err = ctrl.IngestUpload(r.Context(), username, header.Filename,
			header.Header.Get("Content-Type"), file, header.Size)
		if err != nil {
			if errors.Is(err, controllers.ErrInvalidFileType) {
				http.Error(w, "Invalid file type", http.StatusBadRequest)
				return
			}
			http.Error(w, "Upload failed", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("File uploaded"))
	}
}

// AttachmentHandler serves GET /uploads/{filename}: read-only streaming of
// stored blobs, byte-for-byte.
func AttachmentHandler(files *storage.MinIOClient) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := pathsafe.SecureFilename(chi.URLParam(r, "filename"))
		if name == "" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		obj, contentType, err := files.OpenAttachment(r.Context(), name)
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		defer obj.Close()
		w.Header().Set("Content-Type", contentType)
		io.Copy(w, obj)
	}
}
