package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	usecase "smart-task-tracker/internal/usecase/intake"
)

// IntakeHandler は POST /api/ai/intake を処理する HTTP ハンドラ。
// 提案を返すだけでタスクは作らない。
type IntakeHandler struct {
	intakeUC *usecase.SmartIntakeUsecase
}

// NewIntakeHandler は IntakeHandler を生成する。
func NewIntakeHandler(intakeUC *usecase.SmartIntakeUsecase) *IntakeHandler {
	return &IntakeHandler{intakeUC: intakeUC}
}

// Register はルートを登録する。
func (h *IntakeHandler) Register(api *gin.RouterGroup) {
	api.POST("/ai/intake", h.suggest)
}

type intakeRequest struct {
	Input string `json:"input"`
}

type intakeResponse struct {
	Title    string `json:"title"`
	Priority string `json:"priority"`
}

func (h *IntakeHandler) suggest(c *gin.Context) {
	var req intakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c, err)
		return
	}

	s, err := h.intakeUC.Execute(c.Request.Context(), req.Input)
	if err != nil {
		writeError(c, locationBody, err)
		return
	}

	c.JSON(http.StatusOK, intakeResponse{
		Title:    s.Title,
		Priority: string(s.Priority),
	})
}
