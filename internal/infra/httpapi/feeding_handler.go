package httpapi

import (
	"context"
	"net/http"
	"time"

	"fishcare_notifier/internal/app"
	"fishcare_notifier/internal/domain/notification"

	"github.com/sirupsen/logrus"
)

// scanTimeout bounds one on-demand scan once it is detached from the request.
const scanTimeout = 2 * time.Minute

type FeedingHandler struct {
	reminders app.ReminderService
	logger    *logrus.Entry
}

func NewFeedingHandler(reminders app.ReminderService, logger *logrus.Entry) *FeedingHandler {
	return &FeedingHandler{reminders: reminders, logger: logger}
}

type checkScheduleResponse struct {
	Success bool `json:"success"`
	notification.ScanResult
}

type failureResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// CheckSchedule runs one scan. Individual SMS failures still answer 200 with
// the itemized errors; only a failed record fetch answers 500.
// A started scan runs to completion even if the client goes away.
func (h *FeedingHandler) CheckSchedule(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), scanTimeout)
	defer cancel()

	result, err := h.reminders.RunScanCycle(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Feeding schedule check error")
		writeJSON(w, http.StatusInternalServerError, failureResponse{
			Success: false,
			Message: "Error checking feeding schedule: " + err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, checkScheduleResponse{Success: true, ScanResult: *result})
}
