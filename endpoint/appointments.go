package endpoint

import (
	"time"

	"github.com/ariebrainware/medibook/service"
	"github.com/ariebrainware/medibook/util"
	"github.com/gin-gonic/gin"
)

type CreateAppointmentRequest struct {
	PatientID uint      `json:"patient_id" binding:"required"`
	DoctorID  uint      `json:"doctor_id" binding:"required"`
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// CreateAppointment books a slot. Overlapping bookings of the same doctor answer 409.
func CreateAppointment(c *gin.Context) {
	svc, caller, ok := callerOrRespond(c)
	if !ok {
		return
	}
	var req CreateAppointmentRequest
	if !bindJSONOrRespond(c, &req) {
		return
	}
	a, err := svc.Scheduling.CreateAppointment(c.Request.Context(), caller, service.CreateAppointmentInput{
		PatientID: req.PatientID,
		DoctorID:  req.DoctorID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	})
	if err != nil {
		util.CallError(c, err)
		return
	}
	util.CallCreated(c, a)
}

// ListAppointments returns the caller's appointments, filtered by
// doctor_id, patient_id, status, from and to.
func ListAppointments(c *gin.Context) {
	svc, caller, ok := callerOrRespond(c)
	if !ok {
		return
	}
	opts, ok := parseListOptions(c)
	if !ok {
		return
	}
	q := service.AppointmentQuery{Status: c.Query("status"), ListOptions: opts}
	if q.DoctorID, ok = parseUintQuery(c, "doctor_id"); !ok {
		return
	}
	if q.PatientID, ok = parseUintQuery(c, "patient_id"); !ok {
		return
	}
	if q.From, ok = parseTimeQuery(c, "from"); !ok {
		return
	}
	if q.To, ok = parseTimeQuery(c, "to"); !ok {
		return
	}

	appointments, total, err := svc.Scheduling.ListAppointments(c.Request.Context(), caller, q)
	if err != nil {
		util.CallError(c, err)
		return
	}
	respondList(c, appointments, total)
}

func GetAppointment(c *gin.Context) {
	svc, caller, ok := callerOrRespond(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	a, err := svc.Scheduling.GetAppointment(c.Request.Context(), caller, id)
	if err != nil {
		util.CallError(c, err)
		return
	}
	util.CallSuccessOK(c, a)
}

func UpdateAppointmentStatus(c *gin.Context) {
	svc, caller, ok := callerOrRespond(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if !bindJSONOrRespond(c, &req) {
		return
	}
	a, err := svc.Scheduling.TransitionStatus(c.Request.Context(), caller, id, req.Status)
	if err != nil {
		util.CallError(c, err)
		return
	}
	util.CallSuccessOK(c, a)
}
