package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	intakeuc "smart-task-tracker/internal/usecase/intake"
	projectuc "smart-task-tracker/internal/usecase/project"
	"smart-task-tracker/internal/usecase/repository"
	taskuc "smart-task-tracker/internal/usecase/task"
)

// RouterOptions は NewRouter の設定。
type RouterOptions struct {
	Store       repository.Store
	Logger      *zap.Logger
	CORSOrigins []string
	Now         func() time.Time
	NewID       repository.IDGenerator
}

// NewRouter はユースケースとハンドラを組み立て、/api 配下にルートを登録した gin.Engine を返す。
func NewRouter(opts RouterOptions) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	store := opts.Store

	// ユースケース
	createProjectUC := &projectuc.CreateProjectUsecase{Repo: store.Projects(), NewID: opts.NewID}
	listProjectsUC := &projectuc.ListProjectsUsecase{Repo: store.Projects()}
	renameProjectUC := &projectuc.RenameProjectUsecase{Repo: store.Projects()}
	deleteProjectUC := &projectuc.DeleteProjectUsecase{Tx: store}

	createTaskUC := &taskuc.CreateTaskUsecase{Tx: store, NewID: opts.NewID}
	listTasksUC := &taskuc.ListTasksByProjectUsecase{Tx: store}
	updateTaskUC := &taskuc.UpdateTaskUsecase{Repo: store.Tasks()}
	deleteTaskUC := &taskuc.DeleteTaskUsecase{Repo: store.Tasks()}

	intakeUC := &intakeuc.SmartIntakeUsecase{}

	// HTTP ハンドラ
	projectHandler := NewProjectHandler(createProjectUC, listProjectsUC, renameProjectUC, deleteProjectUC, opts.Now)
	taskHandler := NewTaskHandler(createTaskUC, listTasksUC, updateTaskUC, deleteTaskUC, opts.Now)
	intakeHandler := NewIntakeHandler(intakeUC)

	r := gin.New()
	r.Use(Recovery(logger), RequestLogger(logger))
	if len(opts.CORSOrigins) > 0 {
		r.Use(CORS(opts.CORSOrigins))
	}

	// ヘルスチェック
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: errCodeNotFound, Detail: "route not found"})
	})

	// API はすべて /api 配下
	api := r.Group("/api")
	projectHandler.Register(api)
	taskHandler.Register(api)
	intakeHandler.Register(api)

	return r
}
