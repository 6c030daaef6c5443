package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"renohub/internal/models"
	"renohub/internal/status"
)

type Service interface {
	CreateProject(ctx context.Context, customerId, title, description string) (models.Project, error)
	GetProject(ctx context.Context, projectId string) (models.Project, error)
	GetProjects(ctx context.Context, limit, offset int, customerId string) ([]models.Project, error)
	GetProjectBids(ctx context.Context, projectId string) ([]models.Bid, error)
	AdvanceProject(ctx context.Context, projectId string, target models.ProjectStatus) (models.Project, error)
	ContractorView(ctx context.Context, projectId, contractorId string) (status.ContractorView, error)

	ApplyForVisit(ctx context.Context, projectId, contractorId string) (models.SiteVisitApplication, error)
	CancelVisit(ctx context.Context, applicationId, contractorId string) error
	CompleteVisit(ctx context.Context, applicationId string) (models.SiteVisitApplication, error)

	SubmitBid(ctx context.Context, projectId, contractorId string, price float64, description string, documentRef *string) (models.Bid, error)
	WithdrawBid(ctx context.Context, bidId, contractorId string) error

	SelectBid(ctx context.Context, projectId, customerId, bidId string) (models.Project, error)
}

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

//// Projects

// GET /api/ping
func (c *Controller) Ping(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "ok")
}

// POST /api/projects/new
func (c *Controller) NewProject(w http.ResponseWriter, r *http.Request) {
	data, err := c.readBody(r.Body)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not read request body")
		return
	}

	req, err := ParseNewProjectReq(data)
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	project, err := c.service.CreateProject(r.Context(), req.CustomerId, req.Title, req.Description)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, project)
}

// GET /api/projects
func (c *Controller) GetProjects(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit, err := c.getQueryInt(query, "limit")
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, "invalid value of 'limit' query parameter: "+query.Get("limit"))
		return
	}

	offset, err := c.getQueryInt(query, "offset")
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, "invalid value of 'offset' query parameter: "+query.Get("offset"))
		return
	}

	customerId := query.Get("customer_id")
	if customerId != "" && uuid.Validate(customerId) != nil {
		c.errorResponse(w, http.StatusBadRequest, "invalid value of 'customer_id' query parameter: "+customerId)
		return
	}

	projects, err := c.service.GetProjects(r.Context(), limit, offset, customerId)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, projects)
}

// GET /api/projects/{projectId}
func (c *Controller) GetProject(w http.ResponseWriter, r *http.Request) {
	projectId := chi.URLParam(r, "projectId")
	if len(projectId) == 0 {
		c.errorResponse(w, http.StatusBadRequest, "empty projectId supplied")
		return
	}

	project, err := c.service.GetProject(r.Context(), projectId)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, project)
}

// PUT /api/projects/{projectId}/status
func (c *Controller) SetProjectStatus(w http.ResponseWriter, r *http.Request) {
	projectId := chi.URLParam(r, "projectId")
	if len(projectId) == 0 {
		c.errorResponse(w, http.StatusBadRequest, "empty projectId supplied")
		return
	}

	target := models.ProjectStatus(r.URL.Query().Get("status"))
	if !models.ValidProjectStatus(target) {
		c.errorResponse(w, http.StatusBadRequest, "empty or invalid status supplied")
		return
	}

	project, err := c.service.AdvanceProject(r.Context(), projectId, target)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, project)
}

// GET /api/projects/{projectId}/view
func (c *Controller) ContractorView(w http.ResponseWriter, r *http.Request) {
	projectId := chi.URLParam(r, "projectId")
	if len(projectId) == 0 {
		c.errorResponse(w, http.StatusBadRequest, "empty projectId supplied")
		return
	}

	contractorId := r.URL.Query().Get("contractor_id")
	if len(contractorId) == 0 {
		c.errorResponse(w, http.StatusBadRequest, "empty contractor_id supplied")
		return
	}

	view, err := c.service.ContractorView(r.Context(), projectId, contractorId)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, view)
}

// GET /api/projects/{projectId}/bids
func (c *Controller) ProjectBids(w http.ResponseWriter, r *http.Request) {
	projectId := chi.URLParam(r, "projectId")
	if len(projectId) == 0 {
		c.errorResponse(w, http.StatusBadRequest, "empty projectId supplied")
		return
	}

	bids, err := c.service.GetProjectBids(r.Context(), projectId)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, bids)
}

//// Site visits

// POST /api/projects/{projectId}/visits/new
func (c *Controller) NewVisit(w http.ResponseWriter, r *http.Request) {
	projectId := chi.URLParam(r, "projectId")
	if len(projectId) == 0 {
		c.errorResponse(w, http.StatusBadRequest, "empty projectId supplied")
		return
	}

	data, err := c.readBody(r.Body)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not read request body")
		return
	}

	req, err := ParseNewVisitReq(data)
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	visit, err := c.service.ApplyForVisit(r.Context(), projectId, req.ContractorId)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, visit)
}

// PUT /api/visits/{visitId}/cancel
func (c *Controller) CancelVisit(w http.ResponseWriter, r *http.Request) {
	visitId := chi.URLParam(r, "visitId")
	if len(visitId) == 0 {
		c.errorResponse(w, http.StatusBadRequest, "empty visitId supplied")
		return
	}

	contractorId := r.URL.Query().Get("contractor_id")
	if len(contractorId) == 0 {
		c.errorResponse(w, http.StatusBadRequest, "empty contractor_id supplied")
		return
	}

	err := c.service.CancelVisit(r.Context(), visitId, contractorId)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "ok")
}

// PUT /api/visits/{visitId}/complete
func (c *Controller) CompleteVisit(w http.ResponseWriter, r *http.Request) {
	visitId := chi.URLParam(r, "visitId")
	if len(visitId) == 0 {
		c.errorResponse(w, http.StatusBadRequest, "empty visitId supplied")
		return
	}

	visit, err := c.service.CompleteVisit(r.Context(), visitId)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, visit)
}

//// Bids

// POST /api/projects/{projectId}/bids/new
func (c *Controller) NewBid(w http.ResponseWriter, r *http.Request) {
	projectId := chi.URLParam(r, "projectId")
	if len(projectId) == 0 {
		c.errorResponse(w, http.StatusBadRequest, "empty projectId supplied")
		return
	}

	data, err := c.readBody(r.Body)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not read request body")
		return
	}

	req, err := ParseNewBidReq(data)
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	bid, err := c.service.SubmitBid(r.Context(), projectId, req.ContractorId, req.Price, req.Description, req.DocumentRef)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, bid)
}

// DELETE /api/bids/{bidId}
func (c *Controller) WithdrawBid(w http.ResponseWriter, r *http.Request) {
	bidId := chi.URLParam(r, "bidId")
	if len(bidId) == 0 {
		c.errorResponse(w, http.StatusBadRequest, "empty bidId supplied")
		return
	}

	contractorId := r.URL.Query().Get("contractor_id")
	if len(contractorId) == 0 {
		c.errorResponse(w, http.StatusBadRequest, "empty contractor_id supplied")
		return
	}

	err := c.service.WithdrawBid(r.Context(), bidId, contractorId)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "ok")
}

//// Selection

// PUT /api/projects/{projectId}/select/{bidId}
func (c *Controller) SelectBid(w http.ResponseWriter, r *http.Request) {
	projectId := chi.URLParam(r, "projectId")
	if len(projectId) == 0 {
		c.errorResponse(w, http.StatusBadRequest, "empty projectId supplied")
		return
	}

	bidId := chi.URLParam(r, "bidId")
	if len(bidId) == 0 {
		c.errorResponse(w, http.StatusBadRequest, "empty bidId supplied")
		return
	}

	customerId := r.URL.Query().Get("customer_id")
	if len(customerId) == 0 {
		c.errorResponse(w, http.StatusBadRequest, "empty customer_id supplied")
		return
	}

	project, err := c.service.SelectBid(r.Context(), projectId, customerId, bidId)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, project)
}

//// Service

type ErrorResponse struct {
	Reason string `json:"reason"`
}

func (c *Controller) getQueryInt(query url.Values, key string) (int, error) {
	strs, ok := query[key]
	if ok && len(strs) > 0 {
		return strconv.Atoi(strs[0])
	}
	return 0, nil
}

func (c *Controller) errorResponse(w http.ResponseWriter, status int, text string) {
	w.WriteHeader(status)

	data, err := json.Marshal(ErrorResponse{Reason: text})
	if err != nil {
		log.Printf("controller.Controller.errorResponse: %s", err)
		return
	}

	_, err = w.Write(data)
	if err != nil {
		log.Printf("controller.Controller.errorResponse: %s", err)
		return
	}
}

func (c *Controller) serviceErrorResponse(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidParty):
		c.errorResponse(w, http.StatusUnauthorized, "referenced customer or contractor does not exist")
	case errors.Is(err, models.ErrForbidden):
		c.errorResponse(w, http.StatusForbidden, "requester has no permission for requested action")
	case errors.Is(err, models.ErrNotEligible):
		c.errorResponse(w, http.StatusForbidden, "a site visit application is required before bidding on this project")
	case errors.Is(err, models.ErrNoProject):
		c.errorResponse(w, http.StatusNotFound, "requested project does not exist")
	case errors.Is(err, models.ErrNoApplication):
		c.errorResponse(w, http.StatusNotFound, "requested site visit application does not exist")
	case errors.Is(err, models.ErrNoBid):
		c.errorResponse(w, http.StatusNotFound, "requested bid does not exist or is no longer open for selection")
	case errors.Is(err, models.ErrInvalidState):
		c.errorResponse(w, http.StatusConflict, "operation is not allowed in the project's current status")
	case errors.Is(err, models.ErrDuplicateApplication):
		c.errorResponse(w, http.StatusConflict, "you have already applied for a site visit on this project")
	case errors.Is(err, models.ErrDuplicateBid):
		c.errorResponse(w, http.StatusConflict, "you already have a live bid on this project")
	case errors.Is(err, models.ErrAlreadySelected):
		c.errorResponse(w, http.StatusConflict, "a winning bid has already been selected for this project")
	case errors.Is(err, models.ErrInvalidPrice):
		c.errorResponse(w, http.StatusBadRequest, "bid price must be positive")
	default:
		log.Println("controller:", err)
		c.errorResponse(w, http.StatusInternalServerError, "internal server error: "+err.Error())
	}
}

func (c *Controller) marshalResponse(w http.ResponseWriter, data any) {
	d, err := json.Marshal(data)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not marshal response data")
		return
	}

	_, err = w.Write(d)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not write response data")
		return
	}
}

func (c *Controller) readBody(src io.ReadCloser) ([]byte, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	src.Close()
	return data, nil
}
