package endpoint

import (
	"github.com/ariebrainware/medibook/model"
	"github.com/ariebrainware/medibook/service"
	"github.com/ariebrainware/medibook/util"
	"github.com/gin-gonic/gin"
)

type CreatePatientRequest struct {
	// UserID defaults to the caller.
	UserID        uint    `json:"user_id"`
	Phone         string  `json:"phone" binding:"required,max=32"`
	InsuranceInfo *string `json:"insurance_info" binding:"omitempty,max=255"`
}

type UpdatePatientRequest struct {
	Name          *string `json:"name" binding:"omitempty,max=201"`
	Email         *string `json:"email" binding:"omitempty,email,max=191"`
	Phone         *string `json:"phone" binding:"omitempty,max=32"`
	InsuranceInfo *string `json:"insurance_info" binding:"omitempty,max=255"`
}

func CreatePatient(c *gin.Context) {
	svc, caller, ok := callerOrRespond(c)
	if !ok {
		return
	}
	var req CreatePatientRequest
	if !bindJSONOrRespond(c, &req) {
		return
	}
	p, err := svc.Profiles.CreatePatient(c.Request.Context(), caller, service.CreatePatientInput{
		UserID:        req.UserID,
		Phone:         req.Phone,
		InsuranceInfo: req.InsuranceInfo,
	})
	if err != nil {
		util.CallError(c, err)
		return
	}
	util.CallCreated(c, p.Out())
}

// ListPatients is open to doctors and admins.
func ListPatients(c *gin.Context) {
	svc, caller, ok := callerOrRespond(c)
	if !ok {
		return
	}
	opts, ok := parseListOptions(c)
	if !ok {
		return
	}
	patients, total, err := svc.Profiles.ListPatients(c.Request.Context(), caller, opts)
	if err != nil {
		util.CallError(c, err)
		return
	}
	out := make([]model.PatientOut, 0, len(patients))
	for _, p := range patients {
		out = append(out, p.Out())
	}
	respondList(c, out, total)
}

func GetPatient(c *gin.Context) {
	svc, caller, ok := callerOrRespond(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	p, err := svc.Profiles.GetPatient(c.Request.Context(), caller, id)
	if err != nil {
		util.CallError(c, err)
		return
	}
	util.CallSuccessOK(c, p.Out())
}

func UpdatePatient(c *gin.Context) {
	svc, caller, ok := callerOrRespond(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdatePatientRequest
	if !bindJSONOrRespond(c, &req) {
		return
	}
	p, err := svc.Profiles.UpdatePatient(c.Request.Context(), caller, id, service.UpdatePatientInput{
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		InsuranceInfo: req.InsuranceInfo,
	})
	if err != nil {
		util.CallError(c, err)
		return
	}
	util.CallSuccessOK(c, p.Out())
}

func DeletePatient(c *gin.Context) {
	svc, caller, ok := callerOrRespond(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := svc.Profiles.DeletePatient(c.Request.Context(), caller, id); err != nil {
		util.CallError(c, err)
		return
	}
	util.CallMessage(c, "patient deleted")
}
