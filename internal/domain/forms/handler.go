package forms

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	// Structure reads are open to any clinical or front-desk role.
	read := api.Group("", auth.RequireRole("admin", "physician", "nurse", "registrar"))
	read.GET("/form-templates", h.ListTemplates)
	read.GET("/form-templates/:id", h.GetTemplate)
	read.GET("/form-templates/:id/structure", h.GetStructure)
	read.GET("/form-submissions", h.ListSubmissions)
	read.GET("/form-submissions/:id", h.GetSubmission)

	// Structural writes are admin only.
	write := api.Group("", auth.RequireRole("admin"))
	write.POST("/form-templates", h.CreateTemplate)
	write.PUT("/form-templates/:id", h.UpdateTemplate)
	write.DELETE("/form-templates/:id", h.DeleteTemplate)

	// Only clinicians submit filled forms.
	submit := api.Group("", auth.RequireRole("physician", "nurse"))
	submit.POST("/form-submissions", h.Submit)
}

// templateRequest is the create/update payload: template attributes plus the
// full desired forest.
type templateRequest struct {
	Name        string     `json:"name"`
	Description *string    `json:"description"`
	SpecialtyID int64      `json:"specialty_id"`
	Price       float64    `json:"price"`
	Sections    []*Section `json:"sections"`
}

// structureResponse is the structure read payload.
type structureResponse struct {
	Template *Template  `json:"template"`
	Sections []*Section `json:"sections"`
}

// submissionResponse is the submit/read payload: the submission plus its
// responses joined with field metadata.
type submissionResponse struct {
	Submission *Submission       `json:"submission"`
	Responses  []*ResponseDetail `json:"responses"`
}

func (h *Handler) CreateTemplate(c echo.Context) error {
	var req templateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	tpl := &Template{
		Name:        req.Name,
		Description: req.Description,
		SpecialtyID: req.SpecialtyID,
		Price:       req.Price,
	}
	tpl, err := h.svc.CreateTemplate(c.Request().Context(), tpl, req.Sections)
	if err != nil {
		return httpError(err)
	}
	_, forest, err := h.svc.GetStructure(c.Request().Context(), tpl.ID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, structureResponse{Template: tpl, Sections: forest})
}

func (h *Handler) GetTemplate(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	tpl, err := h.svc.GetTemplate(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, tpl)
}

func (h *Handler) ListTemplates(c echo.Context) error {
	p := pagination.FromContext(c)
	ctx := c.Request().Context()

	if sp := c.QueryParam("specialty_id"); sp != "" {
		specialtyID, err := strconv.ParseInt(sp, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid specialty_id")
		}
		tpls, total, err := h.svc.ListTemplatesBySpecialty(ctx, specialtyID, p.Limit, p.Offset)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(tpls, total, p.Limit, p.Offset))
	}

	tpls, total, err := h.svc.ListTemplates(ctx, p.Limit, p.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(tpls, total, p.Limit, p.Offset))
}

func (h *Handler) GetStructure(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	tpl, forest, err := h.svc.GetStructure(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, structureResponse{Template: tpl, Sections: forest})
}

func (h *Handler) UpdateTemplate(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req templateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	tpl := &Template{
		Name:        req.Name,
		Description: req.Description,
		SpecialtyID: req.SpecialtyID,
		Price:       req.Price,
	}
	tpl, err = h.svc.UpdateTemplate(c.Request().Context(), id, tpl, req.Sections)
	if err != nil {
		return httpError(err)
	}
	_, forest, err := h.svc.GetStructure(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, structureResponse{Template: tpl, Sections: forest})
}

func (h *Handler) DeleteTemplate(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteTemplate(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Submit(c echo.Context) error {
	var req SubmitRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	clinicianID := auth.ClinicianIDFromContext(ctx)
	if clinicianID == 0 {
		return echo.NewHTTPError(http.StatusForbidden, "caller is not a clinician")
	}

	sub, details, err := h.svc.Submit(ctx, clinicianID, req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, submissionResponse{Submission: sub, Responses: details})
}

func (h *Handler) GetSubmission(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	bypass := auth.HasAnyRole(auth.RolesFromContext(ctx), "admin", "registrar")
	clinicianID := auth.ClinicianIDFromContext(ctx)

	sub, details, err := h.svc.GetSubmission(ctx, id, clinicianID, bypass)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, submissionResponse{Submission: sub, Responses: details})
}

// ListSubmissions lists by exactly one of patient_id, visit_id, clinician_id.
func (h *Handler) ListSubmissions(c echo.Context) error {
	p := pagination.FromContext(c)
	ctx := c.Request().Context()

	parse := func(name string) (int64, bool, error) {
		raw := c.QueryParam(name)
		if raw == "" {
			return 0, false, nil
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0, false, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
		}
		return id, true, nil
	}

	if id, ok, err := parse("patient_id"); err != nil {
		return err
	} else if ok {
		subs, total, err := h.svc.ListSubmissionsByPatient(ctx, id, p.Limit, p.Offset)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(subs, total, p.Limit, p.Offset))
	}

	if id, ok, err := parse("visit_id"); err != nil {
		return err
	} else if ok {
		subs, total, err := h.svc.ListSubmissionsByVisit(ctx, id, p.Limit, p.Offset)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(subs, total, p.Limit, p.Offset))
	}

	if id, ok, err := parse("clinician_id"); err != nil {
		return err
	} else if ok {
		subs, total, err := h.svc.ListSubmissionsByClinician(ctx, id, p.Limit, p.Offset)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(subs, total, p.Limit, p.Offset))
	}

	return echo.NewHTTPError(http.StatusBadRequest, "one of patient_id, visit_id, clinician_id is required")
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// httpError maps service errors onto HTTP statuses: absent references are
// 404, the in-use guard is 409, access and shape violations are 422.
func httpError(err error) error {
	switch {
	case errors.Is(err, ErrTemplateNotFound),
		errors.Is(err, ErrSubmissionNotFound),
		errors.Is(err, ErrFieldNotFound),
		errors.Is(err, ErrVisitNotFound),
		errors.Is(err, ErrClinicianNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrTemplateInUse):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, ErrNotAssigned),
		errors.Is(err, ErrWrongPatient),
		errors.Is(err, ErrWrongSpecialty),
		errors.Is(err, ErrTemplateNameRequired),
		errors.Is(err, ErrSectionNameRequired),
		errors.Is(err, ErrFieldNameRequired),
		errors.Is(err, ErrNoAnswers):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
