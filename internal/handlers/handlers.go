package handlers

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/untibullet/pr-status-sync/internal/models"
	"github.com/untibullet/pr-status-sync/internal/repository"
)

// Коды ошибок для API
const (
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeInvalidName   = "INVALID_NAME"
	ErrCodeRunInProgress = "RUN_IN_PROGRESS"
	ErrCodeInternal      = "INTERNAL"
)

// ReportReader читает сохраненные отчеты
type ReportReader interface {
	Get(ctx context.Context, name string) (*models.ReportFile, error)
	List(ctx context.Context) ([]models.ReportFile, error)
}

// AuditRunner запускает прогон по репозиториям
type AuditRunner interface {
	Run(ctx context.Context, repos []string) ([]models.RunSummary, error)
}

type Handler struct {
	repo   ReportReader
	runner AuditRunner
	repos  []string
	logger *zap.Logger

	// runMu не дает запустить два прогона одновременно
	runMu sync.Mutex
}

// New создает новый экземпляр обработчика
func New(repo ReportReader, runner AuditRunner, repos []string, logger *zap.Logger) *Handler {
	return &Handler{
		repo:   repo,
		runner: runner,
		repos:  repos,
		logger: logger,
	}
}

// ErrorResponse представляет структуру ошибки API
type ErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// RunResponse результат прогона
type RunResponse struct {
	Summaries []models.RunSummary `json:"summaries"`
	Error     string              `json:"error,omitempty"`
}

// newErrorResponse создает стандартный ответ с ошибкой
func newErrorResponse(code, message string) ErrorResponse {
	var resp ErrorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	return resp
}

// Health сообщает, что сервис жив
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// ListReports возвращает список отчетов без содержимого
func (h *Handler) ListReports(c echo.Context) error {
	h.logger.Info("ListReports: получение списка отчетов")

	reports, err := h.repo.List(c.Request().Context())
	if err != nil {
		h.logger.Error("ListReports: ошибка чтения каталога отчетов", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, newErrorResponse(ErrCodeInternal, "failed to list reports"))
	}

	h.logger.Info("ListReports: список получен", zap.Int("count", len(reports)))
	return c.JSON(http.StatusOK, map[string]interface{}{"reports": reports})
}

// GetReport возвращает отчет по имени. С ?format=raw отдает Markdown как есть.
func (h *Handler) GetReport(c echo.Context) error {
	name := c.Param("name")
	h.logger.Info("GetReport: получение отчета", zap.String("name", name))

	rep, err := h.repo.Get(c.Request().Context(), name)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInvalidName):
			h.logger.Warn("GetReport: недопустимое имя отчета", zap.String("name", name))
			return c.JSON(http.StatusBadRequest, newErrorResponse(ErrCodeInvalidName, "invalid report name"))
		case errors.Is(err, repository.ErrNotFound):
			h.logger.Warn("GetReport: отчет не найден", zap.String("name", name))
			return c.JSON(http.StatusNotFound, newErrorResponse(ErrCodeNotFound, "report not found"))
		}
		h.logger.Error("GetReport: ошибка чтения отчета", zap.Error(err), zap.String("name", name))
		return c.JSON(http.StatusInternalServerError, newErrorResponse(ErrCodeInternal, "failed to get report"))
	}

	if c.QueryParam("format") == "raw" {
		return c.Blob(http.StatusOK, "text/markdown; charset=utf-8", []byte(rep.Content))
	}

	h.logger.Info("GetReport: отчет получен", zap.String("name", name), zap.Int64("size", rep.Size))
	return c.JSON(http.StatusOK, rep)
}

// TriggerRun синхронно выполняет прогон по настроенным репозиториям
func (h *Handler) TriggerRun(c echo.Context) error {
	h.logger.Info("TriggerRun: начало обработки запроса")

	if !h.runMu.TryLock() {
		h.logger.Warn("TriggerRun: прогон уже выполняется")
		return c.JSON(http.StatusConflict, newErrorResponse(ErrCodeRunInProgress, "audit run already in progress"))
	}
	defer h.runMu.Unlock()

	summaries, err := h.runner.Run(c.Request().Context(), h.repos)
	if err != nil {
		h.logger.Error("TriggerRun: прогон завершился с ошибками", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, RunResponse{Summaries: summaries, Error: err.Error()})
	}

	h.logger.Info("TriggerRun: прогон завершен", zap.Int("repos", len(summaries)))
	return c.JSON(http.StatusOK, RunResponse{Summaries: summaries})
}

// RegisterRoutes регистрирует все маршруты API
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)
	e.GET("/reports", h.ListReports)
	e.GET("/reports/:name", h.GetReport)
	e.POST("/runs", h.TriggerRun)
}
