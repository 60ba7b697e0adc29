package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"homework-calendar/internal/domain"
	"homework-calendar/internal/repository"
	"homework-calendar/internal/service"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	users       service.UserService
	assignments service.AssignmentService
	classes     service.ClassService
	backups     service.BackupService
	jwtSecret   []byte
	tokenTTL    time.Duration
	logger      *logrus.Logger
}

func NewHandler(
	users service.UserService,
	assignments service.AssignmentService,
	classes service.ClassService,
	backups service.BackupService,
	jwtSecret string,
	tokenTTL time.Duration,
	logger *logrus.Logger,
) *Handler {
	return &Handler{
		users:       users,
		assignments: assignments,
		classes:     classes,
		backups:     backups,
		jwtSecret:   []byte(jwtSecret),
		tokenTTL:    tokenTTL,
		logger:      logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())
	router.Use(requestLogger(h.logger))

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.register)
			auth.POST("/login", h.login)
			auth.GET("/valid", h.requireAuth(), h.validSession)
		}

		assignments := api.Group("/assignments", h.requireAuth())
		{
			assignments.GET("", h.listAssignmentsWindow)
			assignments.GET("/:year/:month", h.listAssignmentsMonth)
			assignments.POST("", h.createAssignment)
			assignments.PATCH("/:id", h.updateAssignment)
		}

		classes := api.Group("/classes", h.requireAuth())
		{
			classes.GET("", h.listClasses)
			classes.POST("", h.createClass)
			classes.GET("/:id", h.classDetail)
			classes.PATCH("/:id", h.updateClass)
			classes.DELETE("/:id", h.deleteClass)
		}

		backups := api.Group("/backups", h.requireAuth())
		{
			backups.GET("", h.listBackups)
			backups.POST("", h.createBackup)
		}

		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.NewString()
		c.Writer.Header().Set("X-Request-ID", requestID)
		start := time.Now()

		c.Next()

		logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"duration":   time.Since(start),
		}).Info("request")
	}
}

// Response envelope shared by every endpoint. 2xx is reserved for
// success=true; logical failures carry 4xx status codes.
func respondOK(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func respondErr(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "data": message})
}

// bindErrorMessage reports only the first offending field.
func bindErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return fmt.Sprintf("%s: %s", verrs[0].Field(), verrs[0].Tag())
	}
	return err.Error()
}

// ---- auth ----

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, http.StatusBadRequest, bindErrorMessage(err))
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUserAlreadyExists) {
			respondErr(c, http.StatusBadRequest, "Username in use")
			return
		}
		respondErr(c, http.StatusBadRequest, err.Error())
		return
	}

	token, err := h.issueToken(user.ID)
	if err != nil {
		respondErr(c, http.StatusInternalServerError, err.Error())
		return
	}

	respondOK(c, http.StatusCreated, gin.H{"token": token, "user": userToResponse(user)})
}

func (h *Handler) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, http.StatusBadRequest, bindErrorMessage(err))
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		// wrong username and wrong password are indistinguishable on purpose
		respondErr(c, http.StatusUnauthorized, "User not found")
		return
	}

	token, err := h.issueToken(user.ID)
	if err != nil {
		respondErr(c, http.StatusInternalServerError, err.Error())
		return
	}

	respondOK(c, http.StatusOK, gin.H{"token": token, "user": userToResponse(user)})
}

func (h *Handler) validSession(c *gin.Context) {
	respondOK(c, http.StatusOK, userToResponse(currentUser(c)))
}

// ---- assignments ----

func (h *Handler) listAssignmentsWindow(c *gin.Context) {
	user := currentUser(c)

	endStr := c.Query("endDate")
	if endStr == "" {
		respondErr(c, http.StatusBadRequest, "endDate: required")
		return
	}
	end, err := parseDateBoundary(endStr)
	if err != nil {
		respondErr(c, http.StatusBadRequest, "endDate: must be a YYYY-MM-DD date")
		return
	}

	// absent or unparseable start falls back to the epoch origin
	var start int64
	if startStr := c.Query("startDate"); startStr != "" {
		if v, err := parseDateBoundary(startStr); err == nil {
			start = v
		}
	}

	assignments, err := h.assignments.ListWindow(c.Request.Context(), user.ID, start, end)
	if err != nil {
		respondErr(c, http.StatusInternalServerError, err.Error())
		return
	}

	respondOK(c, http.StatusOK, assignmentsToResponse(assignments))
}

func (h *Handler) listAssignmentsMonth(c *gin.Context) {
	user := currentUser(c)

	year, yerr := strconv.Atoi(c.Param("year"))
	month, merr := strconv.Atoi(c.Param("month"))
	if yerr != nil || merr != nil {
		respondErr(c, http.StatusBadRequest, "year and month must be numbers")
		return
	}

	completedOnly, err := strconv.ParseBool(c.DefaultQuery("completedOnly", "false"))
	if err != nil {
		respondErr(c, http.StatusBadRequest, "invalid flag completedOnly")
		return
	}

	assignments, err := h.assignments.ListMonth(c.Request.Context(), user.ID, year, month, completedOnly)
	if err != nil {
		respondErr(c, http.StatusInternalServerError, err.Error())
		return
	}

	respondOK(c, http.StatusOK, assignmentsToResponse(assignments))
}

type createAssignmentRequest struct {
	Title                      string `json:"title" binding:"required"`
	Description                string `json:"description"`
	Type                       string `json:"type" binding:"required"`
	Class                      *int64 `json:"class"`
	EstimatedCompletionMinutes int    `json:"estimatedCompletionMinutes"`
	StartDate                  int64  `json:"startDate"`
	DueDate                    int64  `json:"dueDate"`
}

func (h *Handler) createAssignment(c *gin.Context) {
	user := currentUser(c)

	var req createAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, http.StatusBadRequest, bindErrorMessage(err))
		return
	}

	assignment, err := h.assignments.Create(c.Request.Context(), user.ID, service.CreateAssignmentInput{
		Title:                      req.Title,
		Description:                req.Description,
		Type:                       domain.AssignmentType(req.Type),
		ClassID:                    req.Class,
		EstimatedCompletionMinutes: req.EstimatedCompletionMinutes,
		StartDate:                  req.StartDate,
		DueDate:                    req.DueDate,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAssignmentType):
			respondErr(c, http.StatusBadRequest, "type: must be assignment or test/quiz")
		case errors.Is(err, service.ErrClassNotFound):
			respondErr(c, http.StatusBadRequest, "class: no class exists under that id")
		default:
			respondErr(c, http.StatusInternalServerError, err.Error())
		}
		return
	}

	respondOK(c, http.StatusCreated, assignmentToResponse(*assignment))
}

type updateAssignmentRequest struct {
	Title          *string          `json:"title"`
	Description    *string          `json:"description"`
	StartDate      *int64           `json:"startDate"`
	DueDate        *int64           `json:"dueDate"`
	CompletionDate domain.OptMillis `json:"completionDate"`
}

func (h *Handler) updateAssignment(c *gin.Context) {
	user := currentUser(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondErr(c, http.StatusBadRequest, "invalid assignment id")
		return
	}

	var req updateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, http.StatusBadRequest, bindErrorMessage(err))
		return
	}

	patch := domain.AssignmentPatch{
		Title:       req.Title,
		Description: req.Description,
		StartDate:   req.StartDate,
		DueDate:     req.DueDate,
		Completion:  req.CompletionDate,
	}
	if patch.Empty() {
		respondOK(c, http.StatusOK, "Nothing changed")
		return
	}

	if err := h.assignments.Update(c.Request.Context(), id, user.ID, patch); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondErr(c, http.StatusNotFound, "Assignment not found or it doesn't belong to you")
			return
		}
		respondErr(c, http.StatusInternalServerError, err.Error())
		return
	}

	respondOK(c, http.StatusOK, "Updated")
}

// ---- classes ----

func (h *Handler) listClasses(c *gin.Context) {
	user := currentUser(c)

	activeOnly, err := strconv.ParseBool(c.DefaultQuery("active", "false"))
	if err != nil {
		respondErr(c, http.StatusBadRequest, "invalid flag active")
		return
	}

	classes, err := h.classes.List(c.Request.Context(), user.ID, activeOnly)
	if err != nil {
		respondErr(c, http.StatusInternalServerError, err.Error())
		return
	}

	resp := make([]classResponse, len(classes))
	for i := range classes {
		resp[i] = classToResponse(classes[i].Class, classes[i].NumberOfAssignments)
	}
	respondOK(c, http.StatusOK, resp)
}

type createClassRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *Handler) createClass(c *gin.Context) {
	user := currentUser(c)

	var req createClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, http.StatusBadRequest, bindErrorMessage(err))
		return
	}

	class, err := h.classes.Create(c.Request.Context(), user.ID, req.Name)
	if err != nil {
		respondErr(c, http.StatusBadRequest, err.Error())
		return
	}

	respondOK(c, http.StatusCreated, classToResponse(class.Class, class.NumberOfAssignments))
}

func (h *Handler) classDetail(c *gin.Context) {
	user := currentUser(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondErr(c, http.StatusBadRequest, "ID must be a number")
		return
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		respondErr(c, http.StatusBadRequest, "page: must be a number")
		return
	}

	detail, err := h.classes.Detail(c.Request.Context(), id, user.ID, page)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondErr(c, http.StatusNotFound, fmt.Sprintf("No class exists under the id %d", id))
			return
		}
		respondErr(c, http.StatusInternalServerError, err.Error())
		return
	}

	resp := classDetailResponse{
		classResponse: classToResponse(detail.Class, detail.NumberOfAssignments),
		Assignments:   assignmentsToResponse(detail.Assignments),
	}
	respondOK(c, http.StatusOK, resp)
}

type updateClassRequest struct {
	Name        *string          `json:"name"`
	ArchiveDate domain.OptMillis `json:"archiveDate"`
}

func (h *Handler) updateClass(c *gin.Context) {
	user := currentUser(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondErr(c, http.StatusBadRequest, "ID must be a number")
		return
	}

	var req updateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, http.StatusBadRequest, bindErrorMessage(err))
		return
	}

	class, err := h.classes.Update(c.Request.Context(), id, user.ID, domain.ClassPatch{
		Name:        req.Name,
		ArchiveDate: req.ArchiveDate,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondErr(c, http.StatusNotFound, "Class not found or it doesn't belong to you")
			return
		}
		respondErr(c, http.StatusInternalServerError, err.Error())
		return
	}

	respondOK(c, http.StatusOK, classToResponse(*class, -1))
}

type deleteClassRequest struct {
	Disposition     *string `json:"disposition"`
	ReassignToClass *int64  `json:"reassignToClass"`
}

func (h *Handler) deleteClass(c *gin.Context) {
	user := currentUser(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondErr(c, http.StatusBadRequest, "ID must be a number")
		return
	}

	var req deleteClassRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondErr(c, http.StatusBadRequest, bindErrorMessage(err))
		return
	}

	var disposition *domain.Disposition
	if req.Disposition != nil {
		action := domain.DispositionAction(*req.Disposition)
		if action != domain.DispositionDelete && action != domain.DispositionReassign {
			respondErr(c, http.StatusBadRequest, "disposition: must be delete or reassignToClass")
			return
		}
		disposition = &domain.Disposition{Action: action, TargetClassID: req.ReassignToClass}
	}

	if err := h.classes.Delete(c.Request.Context(), id, user.ID, disposition); err != nil {
		switch {
		case errors.Is(err, repository.ErrDispositionRequired):
			respondErr(c, http.StatusConflict, "This class still has assignments; pass a disposition of delete or reassignToClass to say what happens to them")
		case errors.Is(err, repository.ErrTargetClassMissing):
			respondErr(c, http.StatusBadRequest, "reassignToClass: no class exists under that id")
		case errors.Is(err, repository.ErrNotFound):
			respondErr(c, http.StatusNotFound, "Class not found or it doesn't belong to you")
		default:
			respondErr(c, http.StatusInternalServerError, err.Error())
		}
		return
	}

	respondOK(c, http.StatusOK, gin.H{"deleted": id})
}

// ---- backups ----

func (h *Handler) createBackup(c *gin.Context) {
	location, err := h.backups.Snapshot(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrBackupNotConfigured) {
			respondErr(c, http.StatusServiceUnavailable, "backup storage is not configured")
			return
		}
		respondErr(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondOK(c, http.StatusCreated, gin.H{"location": location})
}

func (h *Handler) listBackups(c *gin.Context) {
	objects, err := h.backups.List(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrBackupNotConfigured) {
			respondErr(c, http.StatusServiceUnavailable, "backup storage is not configured")
			return
		}
		respondErr(c, http.StatusInternalServerError, err.Error())
		return
	}

	resp := make([]backupObjectResponse, len(objects))
	for i := range objects {
		resp[i] = backupObjectResponse{Key: objects[i].Key, Size: objects[i].Size}
		if objects[i].LastModified != nil && !objects[i].LastModified.IsZero() {
			v := objects[i].LastModified.Format(time.RFC3339)
			resp[i].LastModified = &v
		}
	}
	respondOK(c, http.StatusOK, resp)
}

// ---- responses ----

type userResponse struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	CreationDate int64  `json:"creationDate"`
}

type assignmentResponse struct {
	ID                         int64  `json:"id"`
	Title                      string `json:"title"`
	Description                string `json:"description"`
	Type                       string `json:"type"`
	Class                      *int64 `json:"class"`
	Owner                      int64  `json:"owner"`
	StartDate                  int64  `json:"startDate"`
	DueDate                    int64  `json:"dueDate"`
	EstimatedCompletionMinutes int    `json:"estimatedCompletionMinutes"`
	CompletionDate             *int64 `json:"completionDate"`
	CreationDate               int64  `json:"creationDate"`
}

type classResponse struct {
	ID                  int64  `json:"id"`
	Name                string `json:"name"`
	Owner               int64  `json:"owner"`
	ArchiveDate         *int64 `json:"archiveDate"`
	CreationDate        int64  `json:"creationDate"`
	NumberOfAssignments *int64 `json:"numberOfAssignments,omitempty"`
}

type classDetailResponse struct {
	classResponse
	Assignments []assignmentResponse `json:"assignments"`
}

type backupObjectResponse struct {
	Key          string  `json:"key"`
	Size         int64   `json:"size"`
	LastModified *string `json:"last_modified,omitempty"`
}

func userToResponse(user *domain.User) userResponse {
	if user == nil {
		return userResponse{}
	}
	return userResponse{
		ID:           user.ID,
		Username:     user.Username,
		CreationDate: user.CreationDate,
	}
}

func assignmentToResponse(assignment domain.Assignment) assignmentResponse {
	return assignmentResponse{
		ID:                         assignment.ID,
		Title:                      assignment.Title,
		Description:                assignment.Description,
		Type:                       string(assignment.Type),
		Class:                      assignment.ClassID,
		Owner:                      assignment.OwnerID,
		StartDate:                  assignment.StartDate,
		DueDate:                    assignment.DueDate,
		EstimatedCompletionMinutes: assignment.EstimatedCompletionMinutes,
		CompletionDate:             assignment.CompletionDate,
		CreationDate:               assignment.CreationDate,
	}
}

func assignmentsToResponse(assignments []domain.Assignment) []assignmentResponse {
	resp := make([]assignmentResponse, len(assignments))
	for i := range assignments {
		resp[i] = assignmentToResponse(assignments[i])
	}
	return resp
}

// count < 0 means the count is unknown and omitted from the payload.
func classToResponse(class domain.Class, count int64) classResponse {
	resp := classResponse{
		ID:           class.ID,
		Name:         class.Name,
		Owner:        class.OwnerID,
		ArchiveDate:  class.ArchiveDate,
		CreationDate: class.CreationDate,
	}
	if count >= 0 {
		resp.NumberOfAssignments = &count
	}
	return resp
}

// parseDateBoundary converts a calendar-date string to local-midnight epoch
// milliseconds.
func parseDateBoundary(value string) (int64, error) {
	t, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return 0, err
	}
	return t.UnixMilli(), nil
}
