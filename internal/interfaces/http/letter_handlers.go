package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/surat-menyurat/internal/application/workflow"
	"github.com/garyjia/surat-menyurat/internal/domain/entity"
)

// updateLetterRequest is a draft edit plus the version the client last saw
type updateLetterRequest struct {
	workflow.LetterInput
	ExpectedUpdatedAt *time.Time `json:"expectedUpdatedAt"`
}

func (h *Handlers) ListLetters(c *gin.Context) {
	letters, err := h.svc.Letters.ListVisible(c.Request.Context(), actorFrom(c))
	respondList(h, c, "list letters", letters, err)
}

func (h *Handlers) GetLetter(c *gin.Context) {
	letter, err := h.svc.Letters.GetIfVisible(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		h.fail(c, "get letter", err)
		return
	}
	respond(c, http.StatusOK, letter)
}

// LetterActions lists what the caller may do with the letter right now.
func (h *Handlers) LetterActions(c *gin.Context) {
	actions, err := h.svc.Workflow.PermittedActions(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		h.fail(c, "letter actions", err)
		return
	}
	respond(c, http.StatusOK, gin.H{"letterId": c.Param("id"), "actions": actions})
}

func (h *Handlers) CreateLetter(c *gin.Context) {
	var in workflow.LetterInput
	if err := bind(c, &in); err != nil {
		h.fail(c, "create letter", err)
		return
	}
	letter, err := h.svc.Workflow.CreateLetter(c.Request.Context(), actorFrom(c), in)
	if err != nil {
		h.fail(c, "create letter", err)
		return
	}
	respond(c, http.StatusCreated, letter)
}

func (h *Handlers) UpdateLetter(c *gin.Context) {
	var req updateLetterRequest
	if err := bind(c, &req); err != nil {
		h.fail(c, "update letter", err)
		return
	}
	letter, err := h.svc.Workflow.UpdateDraft(c.Request.Context(), actorFrom(c), workflow.TransitionRequest{
		LetterID:          c.Param("id"),
		ExpectedUpdatedAt: req.ExpectedUpdatedAt,
	}, req.LetterInput)
	h.respondLetter(c, "update letter", letter, err)
}

func (h *Handlers) MarkLetterRead(c *gin.Context) {
	if err := h.svc.Letters.MarkRead(c.Request.Context(), actorFrom(c), c.Param("id")); err != nil {
		h.fail(c, "mark read", err)
		return
	}
	respond(c, http.StatusOK, gin.H{"letterId": c.Param("id")})
}

func (h *Handlers) SubmitLetter(c *gin.Context) {
	var req workflow.SubmitRequest
	if !h.bindTransition(c, "submit letter", &req, &req.TransitionRequest) {
		return
	}
	letter, err := h.svc.Workflow.SubmitLetter(c.Request.Context(), actorFrom(c), req)
	h.respondLetter(c, "submit letter", letter, err)
}

func (h *Handlers) ApproveLetter(c *gin.Context) {
	h.decide(c, "approve letter", h.svc.Workflow.ApproveStep)
}

func (h *Handlers) ReturnLetter(c *gin.Context) {
	h.decide(c, "return letter", h.svc.Workflow.ReturnForRevision)
}

func (h *Handlers) RejectLetter(c *gin.Context) {
	h.decide(c, "reject letter", h.svc.Workflow.CancelLetter)
}

func (h *Handlers) SignLetter(c *gin.Context) {
	var req workflow.SignRequest
	if !h.bindTransition(c, "sign letter", &req, &req.TransitionRequest) {
		return
	}
	letter, err := h.svc.Workflow.SignLetter(c.Request.Context(), actorFrom(c), req)
	h.respondLetter(c, "sign letter", letter, err)
}

func (h *Handlers) SendLetter(c *gin.Context) {
	var req workflow.TransitionRequest
	if !h.bindTransition(c, "send letter", &req, &req) {
		return
	}
	letter, err := h.svc.Workflow.SendLetter(c.Request.Context(), actorFrom(c), req)
	h.respondLetter(c, "send letter", letter, err)
}

func (h *Handlers) ForwardLetter(c *gin.Context) {
	var req workflow.ForwardRequest
	if !h.bindTransition(c, "forward letter", &req, &req.TransitionRequest) {
		return
	}
	letter, err := h.svc.Workflow.ForwardLetter(c.Request.Context(), actorFrom(c), req)
	h.respondLetter(c, "forward letter", letter, err)
}

func (h *Handlers) ArchiveLetter(c *gin.Context) {
	var req workflow.TransitionRequest
	if !h.bindTransition(c, "archive letter", &req, &req) {
		return
	}
	letter, err := h.svc.Workflow.ArchiveLetter(c.Request.Context(), actorFrom(c), req)
	h.respondLetter(c, "archive letter", letter, err)
}

// ExportArchive handles GET /api/archive/export
func (h *Handlers) ExportArchive(c *gin.Context) {
	export, err := h.svc.Archive.Export(c.Request.Context(), actorFrom(c))
	if err != nil {
		h.fail(c, "export archive", err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
	c.Data(http.StatusOK, export.ContentType, export.Data)
}

type decisionFunc func(ctx context.Context, actor entity.Actor, req workflow.DecisionRequest) (*entity.Letter, error)

func (h *Handlers) decide(c *gin.Context, op string, fn decisionFunc) {
	var req workflow.DecisionRequest
	if !h.bindTransition(c, op, &req, &req.TransitionRequest) {
		return
	}
	letter, err := fn(c.Request.Context(), actorFrom(c), req)
	h.respondLetter(c, op, letter, err)
}

// bindTransition decodes body into dst and stamps the path id on tr
func (h *Handlers) bindTransition(c *gin.Context, op string, dst interface{}, tr *workflow.TransitionRequest) bool {
	if err := bind(c, dst); err != nil {
		h.fail(c, op, err)
		return false
	}
	tr.LetterID = c.Param("id")
	return true
}

func (h *Handlers) respondLetter(c *gin.Context, op string, letter *entity.Letter, err error) {
	if err != nil {
		h.fail(c, op, err)
		return
	}
	h.logger.Info("Letter transition applied", "op", op, "letter_id", letter.ID, "status", letter.Status)
	respond(c, http.StatusOK, letter)
}
