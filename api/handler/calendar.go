package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/habitkit/backend/api/transport"
	"github.com/habitkit/backend/domain"
	"github.com/habitkit/backend/pkg/httpcontext"
	habitUC "github.com/habitkit/backend/usecase/habit"
)

type CalendarHandler struct {
	baseHandler
	uc *habitUC.UseCase
}

func NewCalendarHandler(uc *habitUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *CalendarHandler {
	return &CalendarHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Month grid of due/completed tasks
// @Tags calendar
// @Router /api/v1/calendar/{year}/{month} [get]
func (h *CalendarHandler) GetMonthView(ctx *fasthttp.RequestCtx) {
	year, okYear := pathInt(ctx, "year")
	month, okMonth := pathInt(ctx, "month")
	if !okYear || !okMonth || month < 1 || month > 12 {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "year and month must be numeric, month in 1..12", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	view, err := h.uc.MonthView(stdCtx, year, time.Month(month))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, view)
}

// @Summary Aggregate weekly streak
// @Tags streaks
// @Router /api/v1/streaks/weekly [get]
func (h *CalendarHandler) GetWeeklyStreak(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	streak, err := h.uc.WeeklyStreak(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]int{"weekly_streak": streak})
}

func pathInt(ctx *fasthttp.RequestCtx, name string) (int, bool) {
	raw, _ := ctx.UserValue(name).(string)
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return value, true
}
