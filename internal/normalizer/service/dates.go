package service

import (
	"context"
	"time"

	apperrors "fieldnorm/pkg/errors"
	"fieldnorm/pkg/fieldx"
	"fieldnorm/pkg/model"
)

func (s *normalizerService) DateRange(ctx context.Context, req *model.DateRangeRequest) (*model.DateRangeResponse, error) {
	if err := s.validate(req, "Date range validation failed"); err != nil {
		return nil, err
	}

	start, err := time.Parse(time.DateOnly, req.Start)
	if err != nil {
		return nil, apperrors.InvalidInput("Invalid start date: " + req.Start)
	}
	end, err := time.Parse(time.DateOnly, req.End)
	if err != nil {
		return nil, apperrors.InvalidInput("Invalid end date: " + req.End)
	}
	if end.Sub(start) >= MaxDateRangeDays*24*time.Hour {
		return nil, apperrors.Validation("Date range too long", map[string]any{
			"max_days": MaxDateRangeDays,
		})
	}

	days := fieldx.DateRange(start, end)
	resp := &model.DateRangeResponse{Dates: make([]string, len(days)), Count: len(days)}
	for i, d := range days {
		resp.Dates[i] = d.Format(time.DateOnly)
	}
	return resp, nil
}

func (s *normalizerService) Month(ctx context.Context, req *model.MonthRequest) (*model.MonthResponse, error) {
	if err := s.validate(req, "Month request validation failed"); err != nil {
		return nil, err
	}

	d, err := time.Parse(time.DateOnly, req.Date)
	if err != nil {
		return nil, apperrors.InvalidInput("Invalid date: " + req.Date)
	}
	return &model.MonthResponse{
		FirstDay: fieldx.FirstDayOfMonth(d).Format(time.DateOnly),
		LastDay:  fieldx.LastDayOfMonth(d).Format(time.DateOnly),
		Days:     fieldx.DaysInMonth(d.Year(), int(d.Month())),
	}, nil
}
