package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"podpulse/internal/delivery/http/controllers"
)

// Controllers bundles everything the router mounts.
type Controllers struct {
	Event      *controllers.EventController
	Attendance *controllers.AttendanceController
	Checklist  *controllers.ChecklistController
	Inbox      *controllers.InboxController
	Realtime   *controllers.RealtimeController
}

// NewRouter initializes the HTTP router with all application routes.
// requireAuth wraps every route that needs an authenticated caller.
func NewRouter(c Controllers, requireAuth func(http.HandlerFunc) http.HandlerFunc) *http.ServeMux {
	mux := http.NewServeMux()

	// Events
	mux.HandleFunc("POST /events", requireAuth(c.Event.CreateEvent))
	mux.HandleFunc("GET /events", requireAuth(c.Event.ListUpcoming))
	mux.HandleFunc("GET /events/{eventID}", requireAuth(c.Event.GetEvent))
	mux.HandleFunc("PATCH /events/{eventID}", requireAuth(c.Event.UpdateEvent))
	mux.HandleFunc("POST /events/{eventID}/cancel", requireAuth(c.Event.CancelEvent))

	// Attendance
	mux.HandleFunc("PUT /events/{eventID}/rsvp", requireAuth(c.Attendance.UpdateRSVP))
	mux.HandleFunc("PUT /events/{eventID}/arrival", requireAuth(c.Attendance.UpdateArrival))
	mux.HandleFunc("GET /events/{eventID}/attendance", requireAuth(c.Attendance.ListAttendance))

	// Checklist
	mux.HandleFunc("POST /events/{eventID}/checklist", requireAuth(c.Checklist.AddItem))
	mux.HandleFunc("GET /events/{eventID}/checklist", requireAuth(c.Checklist.ListItems))
	mux.HandleFunc("POST /events/{eventID}/checklist/{itemID}/cycle", requireAuth(c.Checklist.CycleItem))

	// Notifications
	mux.HandleFunc("GET /notifications", requireAuth(c.Inbox.ListNotifications))
	mux.HandleFunc("POST /notifications/{notificationID}/read", requireAuth(c.Inbox.MarkRead))
	mux.HandleFunc("POST /notifications/read-all", requireAuth(c.Inbox.MarkAllRead))

	// Realtime
	mux.HandleFunc("GET /realtime", requireAuth(c.Realtime.Stream))

	// Health
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
