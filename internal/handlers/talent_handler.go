package handlers

import (
	"net/http"

	"gocast_backend/internal/services"
	"gocast_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type TalentHandler struct {
	*BaseHandler
	talentService services.TalentService
}

func NewTalentHandler(base *BaseHandler, talentService services.TalentService) *TalentHandler {
	return &TalentHandler{
		BaseHandler:   base,
		talentService: talentService,
	}
}

func (h *TalentHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.GET("/talents", h.ListTalents)
	public.GET("/talents/:id", h.GetTalent)

	talents := protected.Group("/talents")
	{
		talents.POST("", h.CreateTalent)
		talents.PUT("/:id", h.UpdateTalent)
		talents.DELETE("/:id", h.DeleteTalent)
	}
}

func (h *TalentHandler) ListTalents(c *gin.Context) {
	var query dto.TalentListQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	talents, err := h.talentService.List(c.Request.Context(), h.GetDB(c), &query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, talents)
}

func (h *TalentHandler) GetTalent(c *gin.Context) {
	talent, err := h.talentService.Get(c.Request.Context(), h.GetDB(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, talent)
}

func (h *TalentHandler) CreateTalent(c *gin.Context) {
	var req dto.CreateTalentRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	talent, err := h.talentService.Create(c.Request.Context(), h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, talent)
}

func (h *TalentHandler) UpdateTalent(c *gin.Context) {
	var req dto.UpdateTalentRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	talent, err := h.talentService.Update(c.Request.Context(), h.GetDB(c), c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, talent)
}

func (h *TalentHandler) DeleteTalent(c *gin.Context) {
	if err := h.talentService.Delete(c.Request.Context(), h.GetDB(c), c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Talent deleted"})
}
