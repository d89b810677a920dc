package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"strconv"

	"vid2pdf/internal/logging"
	"vid2pdf/internal/mediatypes"
	"vid2pdf/internal/metrics"
	"vid2pdf/internal/pipeline"
	"vid2pdf/internal/streaming"
)

const uploadField = "video"

// Convert accepts a multipart upload in the "video" field and responds with
// the PDF. Optional query parameters stride and threshold override the
// configured selection settings for this request.
func (h *Handlers) Convert(w http.ResponseWriter, r *http.Request) {
	opts, err := h.requestOptions(r)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	conv, err := pipeline.New(opts)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	part, err := videoPart(r)
	if err != nil {
		writeUploadError(w, err)
		return
	}
	defer part.Close()

	name := part.FileName()
	if !mediatypes.IsVideo(name) {
		writeJSONError(w, fmt.Sprintf("unsupported file type %q", mediatypes.Ext(name)), http.StatusUnsupportedMediaType)
		return
	}

	path, size, err := h.saveUpload(part, name)
	if path != "" {
		defer func() {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				logging.Warn("failed to remove upload %s: %v", path, err)
			}
		}()
	}
	if err != nil {
		writeUploadError(w, err)
		return
	}
	metrics.UploadBytes.Observe(float64(size))

	ctx := r.Context()
	if err := h.acquire(ctx); err != nil {
		logging.Debug("Upload %s not admitted: %v", name, err)
		writeJSONError(w, "conversion not started", http.StatusServiceUnavailable)
		return
	}
	defer h.release()

	src, err := h.open(ctx, path)
	if err != nil {
		metrics.ConversionsTotal.WithLabelValues("decode_error").Inc()
		logging.Warn("Cannot decode upload %s: %v", name, err)
		writeJSONError(w, "could not decode video", http.StatusUnprocessableEntity)
		return
	}
	defer func() {
		if err := src.Close(); err != nil {
			logging.Warn("failed to close decoder for %s: %v", name, err)
		}
	}()

	result, err := conv.Convert(ctx, src, name)
	if err != nil {
		writeConversionError(w, err)
		return
	}

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": result.Filename})
	w.Header().Set("Content-Type", mediatypes.GetMimeType(".pdf"))
	w.Header().Set("Content-Disposition", disposition)
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Document.Data)))
	w.Header().Set("X-Page-Count", strconv.Itoa(len(result.Document.Pages)))
	w.WriteHeader(http.StatusOK)
	if _, err := streaming.Send(ctx, w, bytes.NewReader(result.Document.Data), h.delivery); err != nil {
		logging.Warn("Failed to deliver document for %s: %v", name, err)
	}
}

func (h *Handlers) requestOptions(r *http.Request) (pipeline.Options, error) {
	opts := h.options
	q := r.URL.Query()

	if v := q.Get("stride"); v != "" {
		stride, err := strconv.Atoi(v)
		if err != nil {
			return opts, fmt.Errorf("invalid stride %q", v)
		}
		opts.SamplingStride = stride
	}
	if v := q.Get("threshold"); v != "" {
		threshold, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, fmt.Errorf("invalid threshold %q", v)
		}
		opts.SSIMThreshold = threshold
	}
	return opts, nil
}

var errMissingVideo = errors.New(`multipart field "video" is required`)

// videoPart advances the multipart body to the video field.
func videoPart(r *http.Request) (*multipart.Part, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, err
	}
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return nil, errMissingVideo
		}
		if err != nil {
			return nil, err
		}
		if part.FormName() == uploadField && part.FileName() != "" {
			return part, nil
		}
		part.Close()
	}
}

// saveUpload copies the upload into the upload directory. The returned path
// is set whenever a file was created, even on error.
func (h *Handlers) saveUpload(part io.Reader, name string) (string, int64, error) {
	f, err := os.CreateTemp(h.uploadDir, "upload-*"+mediatypes.Ext(name))
	if err != nil {
		return "", 0, fmt.Errorf("failed to create upload file: %w", err)
	}

	n, copyErr := io.Copy(f, part)
	closeErr := f.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		return f.Name(), n, err
	}
	return f.Name(), n, nil
}

func writeUploadError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		writeJSONError(w, fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit), http.StatusRequestEntityTooLarge)
	case errors.Is(err, http.ErrNotMultipart), errors.Is(err, http.ErrMissingBoundary), errors.Is(err, errMissingVideo):
		writeJSONError(w, err.Error(), http.StatusBadRequest)
	default:
		logging.Error("upload failed: %v", err)
		writeJSONError(w, "upload failed", http.StatusBadRequest)
	}
}

func writeConversionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pipeline.ErrCanceled):
		writeJSONError(w, "conversion canceled", http.StatusServiceUnavailable)
	case errors.Is(err, pipeline.ErrEmptyStream):
		writeJSONError(w, "video contains no frames", http.StatusUnprocessableEntity)
	case errors.Is(err, pipeline.ErrDecode):
		writeJSONError(w, "could not decode video", http.StatusUnprocessableEntity)
	case errors.Is(err, pipeline.ErrExtraction):
		writeJSONError(w, "video frames are too small for the timestamp overlay", http.StatusUnprocessableEntity)
	default:
		logging.Error("conversion failed: %v", err)
		writeJSONError(w, "conversion failed", http.StatusInternalServerError)
	}
}
