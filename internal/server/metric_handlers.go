package server

import (
	"microblog/internal/models"
	"microblog/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListMetrics handles GET and POST /metrics
// @Summary List metrics
// @Tags metrics
// @Produce json
// @Success 200 {object} object{metrics=[]models.Metric}
// @Security BearerAuth
// @Router /metrics [get]
func (s *Server) ListMetrics(c *fiber.Ctx) error {
	metrics, err := s.metricService.ListMetrics(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"title":   "Metrics",
		"metrics": metrics,
	})
}

// AddMetricForm handles GET /metrics/add
// @Summary Metric form
// @Tags metrics
// @Produce json
// @Success 200 {object} object{form=string,fields=[]string}
// @Security BearerAuth
// @Router /metrics/add [get]
func (s *Server) AddMetricForm(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"title":  "Add Metrics",
		"action": "Add",
		"form":   "metric",
		"fields": service.MetricFormFields(),
	})
}

// AddMetric handles POST /metrics/add
// @Summary Create a metric
// @Description The current user is recorded as the creator
// @Tags metrics
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param request body service.MetricInput true "Metric fields"
// @Success 201 {object} object{flash=string,redirect=string,metric=models.Metric}
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /metrics/add [post]
func (s *Server) AddMetric(c *fiber.Ctx) error {
	var in service.MetricInput
	if err := c.BodyParser(&in); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	creatorID := currentUserID(c)
	metric, err := s.metricService.CreateMetric(c.UserContext(), in, &creatorID)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"flash":    "New metric added",
		"redirect": "/metrics",
		"metric":   metric,
	})
}

// EditMetricForm handles GET /metrics/edit/:id
// @Summary Current metric values
// @Tags metrics
// @Produce json
// @Param id path int true "Metric ID"
// @Success 200 {object} object{form=string,values=service.MetricInput}
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /metrics/edit/{id} [get]
func (s *Server) EditMetricForm(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	metric, err := s.metricService.GetMetric(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	values, err := service.MetricInputFrom(metric)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"title":  "Edit Metric",
		"action": "Edit",
		"form":   "metric",
		"fields": service.MetricFormFields(),
		"values": values,
		"metric": metric,
	})
}

// EditMetric handles POST /metrics/edit/:id
// @Summary Update a metric
// @Description Every field is overwritten; id and creator are kept
// @Tags metrics
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param id path int true "Metric ID"
// @Param request body service.MetricInput true "Metric fields"
// @Success 200 {object} object{flash=string,redirect=string,metric=models.Metric}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /metrics/edit/{id} [post]
func (s *Server) EditMetric(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var in service.MetricInput
	if err := c.BodyParser(&in); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	metric, err := s.metricService.UpdateMetric(c.UserContext(), id, in)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"flash":    "Your metric changes have been saved",
		"redirect": "/metrics",
		"metric":   metric,
	})
}

// DeleteMetric handles GET and POST /metrics/delete/:id
// @Summary Delete a metric
// @Tags metrics
// @Produce json
// @Param id path int true "Metric ID"
// @Success 200 {object} object{flash=string,redirect=string}
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /metrics/delete/{id} [post]
func (s *Server) DeleteMetric(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.metricService.DeleteMetric(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"flash":    "You have successfully deleted the metric.",
		"redirect": "/metrics",
	})
}
