package endpoint

import (
	"github.com/ariebrainware/medibook/service"
	"github.com/ariebrainware/medibook/util"
	"github.com/gin-gonic/gin"
)

type CreateRecordRequest struct {
	PatientID     uint   `json:"patient_id" binding:"required"`
	AppointmentID uint   `json:"appointment_id" binding:"required"`
	Diagnosis     string `json:"diagnosis" binding:"required"`
	Prescription  string `json:"prescription" binding:"required"`
}

func CreateMedicalRecord(c *gin.Context) {
	svc, caller, ok := callerOrRespond(c)
	if !ok {
		return
	}
	var req CreateRecordRequest
	if !bindJSONOrRespond(c, &req) {
		return
	}
	rec, err := svc.Records.CreateRecord(c.Request.Context(), caller, service.CreateRecordInput{
		PatientID:     req.PatientID,
		AppointmentID: req.AppointmentID,
		Diagnosis:     req.Diagnosis,
		Prescription:  req.Prescription,
	})
	if err != nil {
		util.CallError(c, err)
		return
	}
	util.CallCreated(c, rec)
}

func ListMedicalRecords(c *gin.Context) {
	svc, caller, ok := callerOrRespond(c)
	if !ok {
		return
	}
	opts, ok := parseListOptions(c)
	if !ok {
		return
	}
	q := service.RecordQuery{ListOptions: opts}
	if q.PatientID, ok = parseUintQuery(c, "patient_id"); !ok {
		return
	}
	if q.DoctorID, ok = parseUintQuery(c, "doctor_id"); !ok {
		return
	}
	if q.AppointmentID, ok = parseUintQuery(c, "appointment_id"); !ok {
		return
	}

	records, total, err := svc.Records.ListRecords(c.Request.Context(), caller, q)
	if err != nil {
		util.CallError(c, err)
		return
	}
	respondList(c, records, total)
}

func GetMedicalRecord(c *gin.Context) {
	svc, caller, ok := callerOrRespond(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	rec, err := svc.Records.GetRecord(c.Request.Context(), caller, id)
	if err != nil {
		util.CallError(c, err)
		return
	}
	util.CallSuccessOK(c, rec)
}
