package httpapi

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/chuvadata/precip-aggregation/internal/geo"
	"github.com/chuvadata/precip-aggregation/internal/precip"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app. Every endpoint
// returns plain tabular JSON; rendering is the consumer's job.
func RegisterRoutes(app *fiber.App, service *precip.Service, catalog *geo.Catalog) {
	v1 := app.Group("/api/v1")

	v1.Get("/precipitation/hourly", func(c *fiber.Ctx) error {
		var q hourlyQuery
		if err := bindQuery(c, &q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		outlook, err := service.HourlyOutlook(c.Context(), precip.OutlookRequest{
			City:         q.City,
			PastDays:     q.PastDays,
			ForecastDays: q.ForecastDays,
			Refresh:      q.Refresh,
		})
		if err != nil {
			return serviceError(err)
		}
		return c.JSON(outlook)
	})

	v1.Get("/precipitation/monthly", func(c *fiber.Ctx) error {
		var q monthlyQuery
		if err := bindQuery(c, &q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		summary, err := service.MonthlyTotals(c.Context(), precip.MonthlyRequest{
			City:    q.City,
			Months:  q.Months,
			Refresh: q.Refresh,
		})
		if err != nil {
			return serviceError(err)
		}
		return c.JSON(summary)
	})

	v1.Get("/precipitation/status", func(c *fiber.Ctx) error {
		var q statusQuery
		if err := bindQuery(c, &q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		outlook, err := service.HourlyOutlook(c.Context(), precip.OutlookRequest{City: q.City, ForecastDays: -1})
		if err != nil {
			return serviceError(err)
		}

		status := statusResponse{
			City:        outlook.City,
			Intensity:   outlook.Intensity,
			Precip24hMM: outlook.Precip24hMM,
			Source:      outlook.Source,
		}
		if outlook.Latest != nil {
			status.Time = &outlook.Latest.Time
			status.Value = outlook.Latest.Value
		}
		return c.JSON(status)
	})

	v1.Get("/precipitation/states", func(c *fiber.Ctx) error {
		var q statesQuery
		if err := bindQuery(c, &q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		summary, err := service.StateTotals(c.Context(), precip.StateTotalsRequest{
			Days:    q.Days,
			Refresh: q.Refresh,
		})
		if err != nil {
			return serviceError(err)
		}
		return c.JSON(summary)
	})

	v1.Get("/cities", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"cities":   catalog.Cities(),
			"capitals": catalog.Capitals(),
		})
	})
}

// statusResponse is the headline widget feed: the latest observed sample and
// its intensity label.
type statusResponse struct {
	City        string           `json:"city"`
	Time        *time.Time       `json:"time,omitempty"`
	Value       float64          `json:"value"`
	Intensity   precip.Intensity `json:"intensity"`
	Precip24hMM float64          `json:"precip24hMm"`
	Source      string           `json:"source"`
}

type hourlyQuery struct {
	City         string `query:"city" validate:"required"`
	PastDays     int    `query:"past_days" validate:"omitempty,min=1,max=14"`
	ForecastDays int    `query:"forecast_days" validate:"min=-1,max=2"`
	Refresh      bool   `query:"refresh"`
}

type monthlyQuery struct {
	City    string `query:"city" validate:"required"`
	Months  int    `query:"months" validate:"omitempty,min=1,max=24"`
	Refresh bool   `query:"refresh"`
}

type statusQuery struct {
	City string `query:"city" validate:"required"`
}

type statesQuery struct {
	Days    int  `query:"days" validate:"omitempty,min=3,max=14"`
	Refresh bool `query:"refresh"`
}

// bindQuery parses the query string into q and validates it. ForecastDays
// keeps the "not supplied" sentinel distinct from an explicit zero, which is
// a valid request for no forecast hours.
func bindQuery(c *fiber.Ctx, q any) error {
	if hq, ok := q.(*hourlyQuery); ok {
		hq.ForecastDays = -1
	}
	if err := c.QueryParser(q); err != nil {
		return err
	}
	return validate.Struct(q)
}

// serviceError maps service failures to HTTP statuses: unknown cities are
// the client's mistake, exhausted providers are an upstream outage.
func serviceError(err error) error {
	switch {
	case errors.Is(err, precip.ErrUnknownCity):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, precip.ErrUpstream):
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "failed to build precipitation data")
	}
}
