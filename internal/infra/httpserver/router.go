package httpserver

import (
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	appimages "github.com/medvisionlab/chestray/internal/application/images"
	domimages "github.com/medvisionlab/chestray/internal/domain/images"
	"github.com/medvisionlab/chestray/internal/domain/uploaderrors"
	domusers "github.com/medvisionlab/chestray/internal/domain/users"
	"github.com/medvisionlab/chestray/internal/middleware"
)

type Router struct {
	imagesSvc  *appimages.Service
	users      domusers.Repository
	secret     []byte
	maxUpload  int64
	sessionTTL time.Duration
}

func NewRouter(imagesSvc *appimages.Service, users domusers.Repository, secret []byte, maxUpload int64, sessionTTL time.Duration) http.Handler {
	r := &Router{
		imagesSvc:  imagesSvc,
		users:      users,
		secret:     secret,
		maxUpload:  maxUpload,
		sessionTTL: sessionTTL,
	}
	mux := chi.NewRouter()

	mux.Get("/", r.handleIndex)
	mux.Post("/login", r.wrap(r.handleLogin))
	mux.Post("/upload", r.handleUpload)
	mux.Post("/save_predictions", r.wrap(r.handleSavePredictions))
	mux.Get("/history", r.wrap(r.handleHistory))
	mux.Get("/errors", r.wrap(r.handleErrors))
	mux.Post("/save_comment", r.wrap(r.handleSaveComment))

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// wrap maps domain errors onto the documented status codes; every error body
// has the same {success:false, message} shape.
func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		switch {
		case errors.Is(err, domimages.ErrValidation):
			writeJSON(w, http.StatusBadRequest, failure(err.Error()))
		case errors.Is(err, domimages.ErrNotFound), errors.Is(err, sql.ErrNoRows):
			writeJSON(w, http.StatusNotFound, failure("Image record not found"))
		case errors.Is(err, domimages.ErrNotOwner):
			writeJSON(w, http.StatusForbidden, failure("You are not authorized for this operation"))
		case errors.Is(err, errBadCredentials):
			writeJSON(w, http.StatusUnauthorized, failure("Invalid username or password"))
		default:
			writeJSON(w, http.StatusInternalServerError, failure(err.Error()))
		}
	}
}

var errBadCredentials = errors.New("bad credentials")

// POST /login
// Body: {"username": "...", "password": "..."}
func (r *Router) handleLogin(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return fmt.Errorf("%w: malformed request body", domimages.ErrValidation)
	}
	if body.Username == "" || body.Password == "" {
		return fmt.Errorf("%w: username and password are required", domimages.ErrValidation)
	}

	u, err := r.users.FindByUsername(req.Context(), body.Username)
	if err != nil {
		if errors.Is(err, domusers.ErrNotFound) {
			return errBadCredentials
		}
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(body.Password)) != nil {
		return errBadCredentials
	}

	token, err := middleware.IssueSession(r.secret, u.ID, r.sessionTTL)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(r.sessionTTL.Seconds()),
	})
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Logged in"})
	return nil
}

// POST /upload takes a multipart form with field "file".
// The upload pipeline reports its failures in the body with success:false;
// only the transport layer uses non-200 statuses here.
func (r *Router) handleUpload(w http.ResponseWriter, req *http.Request) {
	middleware.IncrementUploads()

	req.Body = http.MaxBytesReader(w, req.Body, r.maxUpload)
	if err := req.ParseMultipartForm(r.maxUpload); err != nil {
		middleware.IncrementUploadsFailed()
		writeJSON(w, http.StatusOK, failure("File too large or malformed upload"))
		return
	}

	file, header, err := req.FormFile("file")
	if err != nil || header.Filename == "" {
		middleware.IncrementUploadsFailed()
		writeJSON(w, http.StatusOK, failure("No file selected"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		middleware.IncrementUploadsFailed()
		writeJSON(w, http.StatusOK, failure(err.Error()))
		return
	}

	res, err := r.imagesSvc.Upload(req.Context(), appimages.UploadCommand{
		UserID:   middleware.UserIDFromContext(req.Context()),
		Filename: middleware.SanitizeFilename(header.Filename),
		Data:     data,
	})
	if err != nil {
		middleware.IncrementUploadsFailed()
		writeJSON(w, http.StatusOK, failure(err.Error()))
		return
	}

	predictions := make([][]any, len(res.Predictions))
	for i, p := range res.Predictions {
		predictions[i] = []any{p.Disease, p.Confidence}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"predictions": predictions,
		"llm_report":  res.Report,
		"image_id":    res.ImageID,
	})
}

// POST /save_predictions
// Body: {"image_id": n, "confirmed_labels": [...], "patient_name": "...", "doctor_comment": "..."}
func (r *Router) handleSavePredictions(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		ImageID         int64    `json:"image_id"`
		ConfirmedLabels []string `json:"confirmed_labels"`
		PatientName     string   `json:"patient_name"`
		DoctorComment   string   `json:"doctor_comment"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return fmt.Errorf("%w: malformed request body", domimages.ErrValidation)
	}
	if body.ImageID == 0 {
		return fmt.Errorf("%w: image id is required", domimages.ErrValidation)
	}

	err := r.imagesSvc.ApplyReview(req.Context(), middleware.UserIDFromContext(req.Context()), appimages.ReviewCommand{
		ImageID:         domimages.ID(body.ImageID),
		ConfirmedLabels: body.ConfirmedLabels,
		PatientName:     middleware.ValidatePatientName(body.PatientName),
		DoctorComment:   middleware.SanitizeString(body.DoctorComment),
	})
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Predictions and details saved successfully"})
	return nil
}

// POST /save_comment
// Body: {"image_id": n, "comment": "..."}
func (r *Router) handleSaveComment(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		ImageID int64  `json:"image_id"`
		Comment string `json:"comment"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return fmt.Errorf("%w: malformed request body", domimages.ErrValidation)
	}
	if body.ImageID == 0 {
		return fmt.Errorf("%w: image id and comment are required", domimages.ErrValidation)
	}

	err := r.imagesSvc.AddComment(
		req.Context(),
		middleware.UserIDFromContext(req.Context()),
		domimages.ID(body.ImageID),
		middleware.SanitizeString(body.Comment),
	)
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Comment saved successfully"})
	return nil
}

type historyEntry struct {
	ID          domimages.ID             `json:"id"`
	Filename    string                   `json:"filename"`
	PatientName string                   `json:"patient_name,omitempty"`
	ArchiveURL  string                   `json:"archive_url,omitempty"`
	LLMReport   string                   `json:"llm_report,omitempty"`
	CreatedAt   time.Time                `json:"created_at"`
	ImageData   string                   `json:"image_data_base64"`
	Labels      []domimages.DiseaseLabel `json:"labels"`
	Comments    []domimages.Comment      `json:"comments"`
}

// GET /history returns the user's records newest first, image bytes base64-encoded.
func (r *Router) handleHistory(w http.ResponseWriter, req *http.Request) error {
	records, err := r.imagesSvc.History(req.Context(), middleware.UserIDFromContext(req.Context()))
	if err != nil {
		return err
	}

	entries := make([]historyEntry, len(records))
	for i, rec := range records {
		entries[i] = historyEntry{
			ID:          rec.ID,
			Filename:    rec.Filename,
			PatientName: rec.PatientName,
			ArchiveURL:  rec.ArchiveURL,
			LLMReport:   rec.LLMReport,
			CreatedAt:   rec.CreatedAt,
			ImageData:   base64.StdEncoding.EncodeToString(rec.Data),
			Labels:      rec.Labels,
			Comments:    rec.Comments,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "images": entries})
	return nil
}

// GET /errors returns the user's recent failed upload attempts, capped by the
// optional "limit" query parameter.
func (r *Router) handleErrors(w http.ResponseWriter, req *http.Request) error {
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	limit = middleware.ValidateLimit(limit)

	list, err := r.imagesSvc.UploadFailures(req.Context(), middleware.UserIDFromContext(req.Context()), limit)
	if err != nil {
		return err
	}
	if list == nil {
		list = []*uploaderrors.UploadError{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "errors": list})
	return nil
}

func failure(message string) map[string]any {
	return map[string]any{"success": false, "message": message}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
