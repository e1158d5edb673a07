package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"offvsix/internal/database"
	"offvsix/internal/models"
	"offvsix/internal/utils"

	"github.com/gorilla/mux"
)

// Store is the read side of the download history.
type Store interface {
	GetDownloads(publisher string) ([]models.DownloadRecord, error)
	GetExtensionDownloads(publisher, name string) ([]models.DownloadRecord, error)
	GetDownload(publisher, name, version string) (*models.DownloadRecord, error)
	Count() (int64, error)
}

// Server exposes downloaded artifacts over HTTP so other machines can fetch
// them from the offline mirror.
type Server struct {
	store     Store
	logger    *utils.Logger
	fileUtils *utils.FileUtils
	router    *mux.Router
	server    *http.Server
}

func New(store Store, logger *utils.Logger) *Server {
	s := &Server{
		store:     store,
		logger:    logger,
		fileUtils: utils.NewFileUtils(),
		router:    mux.NewRouter(),
	}
	s.server = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.setupRoutes()
	return s
}

func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.server.Serve(ln)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api/extensions").Subrouter()
	api.HandleFunc("", s.handleList).Methods(http.MethodGet)
	api.HandleFunc("/{publisher}/{name}", s.handleExtension).Methods(http.MethodGet)
	api.HandleFunc("/{publisher}/{name}/{version}/download", s.handleDownload).Methods(http.MethodGet)

	s.router.Use(s.loggingMiddleware)
	s.router.NotFoundHandler = http.HandlerFunc(s.handleNotFound)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		s.logger.LogRequest(r)
		next.ServeHTTP(w, r)
		s.logger.LogResponse(r, start)
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	count, err := s.store.Count()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":      "offvsix",
		"downloads": count,
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.GetDownloads(r.URL.Query().Get("publisher"))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if records == nil {
		records = []models.DownloadRecord{}
	}
	s.writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleExtension(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	records, err := s.store.GetExtensionDownloads(vars["publisher"], vars["name"])
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(records) == 0 {
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("extension %s.%s not found", vars["publisher"], vars["name"]))
		return
	}
	s.writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	rec, err := s.store.GetDownload(vars["publisher"], vars["name"], vars["version"])
	if errors.Is(err, database.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if !s.fileUtils.FileExists(rec.FilePath) {
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("file %s is missing", s.fileUtils.GetFileName(rec.FilePath)))
		return
	}

	w.Header().Set(utils.ContentTypeHeader, utils.VSIXContentType)
	w.Header().Set(utils.ContentDispositionHeader,
		fmt.Sprintf("attachment; filename=%q", rec.Identifier().FileName(rec.Version)))
	http.ServeFile(w, r, rec.FilePath)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.logger.LogNotFound(r.Method, r.URL.Path)
	s.writeError(w, http.StatusNotFound, "not found")
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set(utils.ContentTypeHeader, utils.JSONContentType)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.LogJSONError(err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
