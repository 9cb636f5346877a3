package handler

import (
	"io/ioutil"

	"github.com/gin-gonic/gin"

	gradientv1 "gradient-sdk/api/v1"
	"gradient-sdk/mockapi"
	"gradient-sdk/mockapi/server"
	"gradient-sdk/repositories"
)

// Handler serves the experiments API from a store
type Handler struct {
	store mockapi.Interface
}

func NewHandler(store mockapi.Interface) *Handler {
	return &Handler{store: store}
}

// Ping: liveness of the mock service
func (h *Handler) Ping(c *gin.Context) {
	server.Success(c, "pong")
}

// matchesRoute: whether the decoded experiment has the topology served by route
func matchesRoute(e gradientv1.Experiment, route repositories.SubmitRoute) bool {
	switch e.(type) {
	case *gradientv1.SingleNodeExperiment:
		return route.Experiment == gradientv1.ExperimentTypeSingleNode
	case *gradientv1.MultiNodeExperiment:
		return route.Experiment == gradientv1.ExperimentTypeGRPCMultiNode
	case *gradientv1.MpiMultiNodeExperiment:
		return route.Experiment == gradientv1.ExperimentTypeMPIMultiNode
	}
	return false
}

// Submit: handler for one create or run endpoint
func (h *Handler) Submit(route repositories.SubmitRoute) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := ioutil.ReadAll(c.Request.Body)
		if err != nil {
			server.Failure(c, mockapi.InvalidParam, err)
			return
		}
		e, err := gradientv1.DecodeExperiment(body)
		if err != nil {
			server.Failure(c, mockapi.InvalidParam, err)
			return
		}
		if !matchesRoute(e, route) {
			server.Failure(c, mockapi.InvalidParam, "experiment type %v is not accepted by %s", e.GetExperimentType(), route.Path)
			return
		}
		if err := e.Validate(); err != nil {
			server.Failure(c, mockapi.InvalidParam, err)
			return
		}
		handle, err := h.store.Create(e, route.Mode)
		if err != nil {
			mockapi.HandleError(c, err)
			return
		}
		server.Success(c, server.HandleResponse{Handle: handle})
	}
}

func (h *Handler) setState(c *gin.Context, state gradientv1.ExperimentState) {
	var param ExperimentIDParam
	if err := c.ShouldBindUri(&param); err != nil {
		server.Failure(c, mockapi.InvalidParam, err)
		return
	}
	if err := h.store.SetState(param.ID, state); err != nil {
		mockapi.HandleError(c, err)
		return
	}
	server.NoContent(c)
}

func (h *Handler) Start(c *gin.Context) {
	h.setState(c, gradientv1.ExperimentStateRunning)
}

func (h *Handler) Stop(c *gin.Context) {
	h.setState(c, gradientv1.ExperimentStateStopped)
}

func (h *Handler) List(c *gin.Context) {
	var param ListParam
	if err := c.ShouldBindQuery(&param); err != nil {
		server.Failure(c, mockapi.InvalidParam, err)
		return
	}
	filter := gradientv1.ListFilter{
		ProjectIDs: param.ProjectIDs,
		Offset:     param.Offset,
		Limit:      param.Limit,
		Tags:       param.Tags,
	}
	experiments, total, err := h.store.List(filter)
	if err != nil {
		mockapi.HandleError(c, err)
		return
	}
	resp := server.ListResponse{ExperimentList: make([]interface{}, 0, len(experiments)), Total: total}
	for _, e := range experiments {
		resp.ExperimentList = append(resp.ExperimentList, e)
	}
	server.Success(c, resp)
}

func (h *Handler) Get(c *gin.Context) {
	var param ExperimentIDParam
	if err := c.ShouldBindUri(&param); err != nil {
		server.Failure(c, mockapi.InvalidParam, err)
		return
	}
	e, err := h.store.Get(param.ID)
	if err != nil {
		mockapi.HandleError(c, err)
		return
	}
	server.Success(c, server.DataResponse{Data: e})
}

func (h *Handler) Delete(c *gin.Context) {
	var param ExperimentIDParam
	if err := c.ShouldBindUri(&param); err != nil {
		server.Failure(c, mockapi.InvalidParam, err)
		return
	}
	if err := h.store.Delete(param.ID); err != nil {
		mockapi.HandleError(c, err)
		return
	}
	server.NoContent(c)
}

// Logs: log rows of one experiment, the stream ends with the EOF marker once stopped
func (h *Handler) Logs(c *gin.Context) {
	var param LogsParam
	if err := c.ShouldBindQuery(&param); err != nil {
		server.Failure(c, mockapi.InvalidParam, err)
		return
	}
	rows, err := h.store.Logs(param.ExperimentID, param.Line, param.Limit)
	if err != nil {
		mockapi.HandleError(c, err)
		return
	}
	server.Success(c, rows)
}
