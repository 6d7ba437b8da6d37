package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"support-assistant-be/internal/dto"
	"support-assistant-be/internal/pkg/logger"
	"support-assistant-be/internal/pkg/serverutils"
	"support-assistant-be/internal/repository/contract"
	"support-assistant-be/pkg/chunker"
	"support-assistant-be/pkg/embedding"
	"support-assistant-be/pkg/rag/resolution"
	"support-assistant-be/pkg/rag/session"
	"support-assistant-be/pkg/store"
	"support-assistant-be/pkg/tabular"
)

// IKnowledgeService owns the shared knowledge base: startup loading, file
// uploads and resolution commits, plus the info endpoints describing it.
type IKnowledgeService interface {
	LoadDefaultData(ctx context.Context) error
	Upload(ctx context.Context, filePath, filename, uploaderSessionId string) (*dto.FileUploadResponse, error)
	AddResolution(ctx context.Context, request *dto.AddResolutionRequest) (*dto.AddResolutionResponse, error)
	CommitRecord(ctx context.Context, record *resolution.Record) error
	Health() *dto.HealthResponse
	DefaultSessionInfo() *dto.DefaultSessionResponse
}

type knowledgeService struct {
	registry *session.Registry
	repo     contract.KnowledgeRepository
	embedder embedding.Provider
	splitter *chunker.Splitter
	logger   logger.ILogger

	defaultDataFile string

	// Shared-session descriptor. The filename accumulates a chain of every
	// upload and manual resolution, matching what clients display.
	metaMu sync.Mutex
	meta   *contract.SharedSessionMeta
}

func NewKnowledgeService(
	registry *session.Registry,
	repo contract.KnowledgeRepository,
	embedder embedding.Provider,
	splitter *chunker.Splitter,
	defaultDataFile string,
	log logger.ILogger,
) IKnowledgeService {
	return &knowledgeService{
		registry:        registry,
		repo:            repo,
		embedder:        embedder,
		splitter:        splitter,
		defaultDataFile: defaultDataFile,
		logger:          log,
	}
}

// LoadDefaultData restores the shared knowledge base from disk, falling
// back to ingesting the bundled default spreadsheet on first run. A missing
// default file leaves the server up with an empty knowledge base.
func (s *knowledgeService) LoadDefaultData(ctx context.Context) error {
	documents, err := s.repo.LoadSharedDocuments()
	if err != nil {
		s.logger.Warn("knowledge", "Failed to read shared documents, starting fresh", map[string]interface{}{"error": err.Error()})
	}
	meta, err := s.repo.LoadSharedSession()
	if err != nil {
		s.logger.Warn("knowledge", "Failed to read shared session, starting fresh", map[string]interface{}{"error": err.Error()})
	}

	if len(documents) > 0 && meta != nil {
		ix, err := s.repo.LoadIndex(store.DefaultSessionID, s.embedder, s.splitter)
		if err != nil {
			s.logger.Warn("knowledge", "Failed to load saved index, will rebuild on first write", map[string]interface{}{"error": err.Error()})
			ix = nil
		}
		s.registry.Restore(&store.Session{
			ID:        store.DefaultSessionID,
			Documents: documents,
			Provenance: store.Provenance{
				UploadedAt:  meta.UploadTime,
				LastUpdated: meta.UploadTime,
			},
		}, ix)
		s.setMeta(meta)

		s.logger.Info("knowledge", "Restored shared knowledge base", map[string]interface{}{
			"documents":    len(documents),
			"index_loaded": ix != nil,
		})
		return nil
	}

	return s.loadDefaultFile(ctx)
}

func (s *knowledgeService) loadDefaultFile(ctx context.Context) error {
	if s.defaultDataFile == "" || !fileExists(s.defaultDataFile) {
		s.logger.Warn("knowledge", "Default data file not found, starting with empty knowledge base", map[string]interface{}{
			"path": s.defaultDataFile,
		})
		s.registry.Restore(&store.Session{ID: store.DefaultSessionID}, nil)
		s.setMeta(&contract.SharedSessionMeta{UploadTime: time.Now()})
		return nil
	}

	filename := filepath.Base(s.defaultDataFile)
	documents, table, err := tabular.Load(s.defaultDataFile, filename, store.SourceDefaultFile)
	if err != nil {
		return fmt.Errorf("load default data: %w", err)
	}

	if err := s.registry.Ingest(ctx, store.DefaultSessionID, documents, []string{s.defaultDataFile}); err != nil {
		return err
	}

	meta := &contract.SharedSessionMeta{
		FileInfo: store.FileInfo{
			Filename:    filename,
			Rows:        len(table.Rows),
			Columns:     len(table.Columns),
			ColumnNames: table.Columns,
		},
		UploadTime: time.Now(),
	}
	s.setMeta(meta)
	s.persistMeta(meta)

	s.logger.Info("knowledge", "Default support ticket data loaded", map[string]interface{}{
		"tickets": len(table.Rows),
		"columns": len(table.Columns),
	})
	return nil
}

// Upload appends a spreadsheet to the shared knowledge base. The uploader's
// session id only tags the provenance chain; the documents always land in
// the shared session.
func (s *knowledgeService) Upload(ctx context.Context, filePath, filename, uploaderSessionId string) (*dto.FileUploadResponse, error) {
	if !tabular.SupportedExtension(filename) {
		return nil, serverutils.NewAppError(fiber.StatusBadRequest, "Only Excel files (.xlsx, .xls) and CSV files are supported", nil)
	}
	if !s.registry.Exists(store.DefaultSessionID) {
		return nil, serverutils.NewAppError(fiber.StatusNotFound, "Shared knowledge base not available", nil)
	}

	documents, table, err := tabular.Load(filePath, filename, store.SourceUploadedFile)
	if err != nil {
		return nil, err
	}

	if err := s.registry.Append(ctx, store.DefaultSessionID, documents); err != nil {
		return nil, err
	}

	uploader := uploaderSessionId
	if len(uploader) > 8 {
		uploader = uploader[:8]
	}
	fileInfo := s.updateMeta(func(meta *contract.SharedSessionMeta) {
		meta.FileInfo.Rows += len(table.Rows)
		meta.FileInfo.Filename += fmt.Sprintf(" + %s (uploaded by %s...)", filename, uploader)
	})

	s.logger.Info("knowledge", "File added to shared knowledge base", map[string]interface{}{
		"filename":    filename,
		"added_rows":  len(table.Rows),
		"uploaded_by": uploaderSessionId,
	})

	return &dto.FileUploadResponse{
		Success:   true,
		Message:   fmt.Sprintf("File '%s' added to shared knowledge base successfully! All users can now access this data.", filename),
		FileInfo:  fileInfo,
		SessionId: store.DefaultSessionID,
	}, nil
}

// AddResolution is the direct (non-guided) resolution path.
func (s *knowledgeService) AddResolution(ctx context.Context, request *dto.AddResolutionRequest) (*dto.AddResolutionResponse, error) {
	record, err := resolution.NewRecord(request.ErrorCode, request.Module, request.TicketLevel, request.Description, request.Resolution)
	if err != nil {
		return nil, serverutils.NewAppError(fiber.StatusBadRequest, err.Error(), err)
	}

	if err := s.CommitRecord(ctx, record); err != nil {
		return nil, err
	}

	return &dto.AddResolutionResponse{
		Success:       true,
		Message:       "Resolution added successfully",
		DocumentCount: s.registry.DocumentCount(store.DefaultSessionID),
	}, nil
}

// CommitRecord writes a completed resolution into the shared session and
// extends the provenance chain. Used by both the guided chat flow and the
// direct endpoint.
func (s *knowledgeService) CommitRecord(ctx context.Context, record *resolution.Record) error {
	if _, _, err := s.registry.AddResolution(ctx, record); err != nil {
		return err
	}

	s.updateMeta(func(meta *contract.SharedSessionMeta) {
		meta.FileInfo.Rows++
		meta.FileInfo.Filename += " + manual resolution"
	})

	s.logger.Info("knowledge", "Resolution added to shared knowledge base", map[string]interface{}{
		"module":       record.Module,
		"ticket_level": record.TicketLevel,
	})
	return nil
}

func (s *knowledgeService) Health() *dto.HealthResponse {
	return &dto.HealthResponse{
		Status:               "healthy",
		Message:              "Support ticket RAG API is running!",
		Timestamp:            time.Now().Format(time.RFC3339),
		DefaultSessionLoaded: s.registry.Exists(store.DefaultSessionID),
	}
}

func (s *knowledgeService) DefaultSessionInfo() *dto.DefaultSessionResponse {
	if !s.registry.Exists(store.DefaultSessionID) {
		return &dto.DefaultSessionResponse{
			Available: false,
			Message:   "Default session not loaded",
		}
	}

	s.metaMu.Lock()
	defer s.metaMu.Unlock()

	info := s.meta.FileInfo
	return &dto.DefaultSessionResponse{
		Available:   true,
		SessionId:   store.DefaultSessionID,
		FileInfo:    &info,
		LoadedAt:    s.meta.UploadTime.Format(time.RFC3339),
		TicketCount: info.Rows,
	}
}

func (s *knowledgeService) setMeta(meta *contract.SharedSessionMeta) {
	s.metaMu.Lock()
	defer s.metaMu.Unlock()
	s.meta = meta
}

// updateMeta mutates the shared descriptor under lock, persists it, and
// returns a copy of the updated file info.
func (s *knowledgeService) updateMeta(mutate func(*contract.SharedSessionMeta)) store.FileInfo {
	s.metaMu.Lock()
	if s.meta == nil {
		s.meta = &contract.SharedSessionMeta{UploadTime: time.Now()}
	}
	mutate(s.meta)
	snapshot := *s.meta
	s.metaMu.Unlock()

	s.persistMeta(&snapshot)
	return snapshot.FileInfo
}

func (s *knowledgeService) persistMeta(meta *contract.SharedSessionMeta) {
	if err := s.repo.SaveSharedSession(meta); err != nil {
		s.logger.Error("knowledge", "Failed to persist shared session metadata", map[string]interface{}{"error": err.Error()})
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
