package endpoint

import (
	"strings"

	"github.com/ariebrainware/medibook/model"
	"github.com/ariebrainware/medibook/repository"
	"github.com/ariebrainware/medibook/service"
	"github.com/ariebrainware/medibook/util"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type CreateDoctorRequest struct {
	// UserID defaults to the caller.
	UserID         uint            `json:"user_id"`
	Specialization string          `json:"specialization" binding:"required,max=100"`
	Contact        string          `json:"contact" binding:"required,max=100"`
	Experience     int             `json:"experience" binding:"gte=0"`
	Fee            decimal.Decimal `json:"fee"`
}

type UpdateDoctorRequest struct {
	Specialization *string          `json:"specialization" binding:"omitempty,max=100"`
	Contact        *string          `json:"contact" binding:"omitempty,max=100"`
	Experience     *int             `json:"experience" binding:"omitempty,gte=0"`
	Fee            *decimal.Decimal `json:"fee"`
}

func CreateDoctor(c *gin.Context) {
	svc, caller, ok := callerOrRespond(c)
	if !ok {
		return
	}
	var req CreateDoctorRequest
	if !bindJSONOrRespond(c, &req) {
		return
	}
	d, err := svc.Profiles.CreateDoctor(c.Request.Context(), caller, service.CreateDoctorInput{
		UserID:         req.UserID,
		Specialization: req.Specialization,
		Contact:        req.Contact,
		Experience:     req.Experience,
		Fee:            req.Fee,
	})
	if err != nil {
		util.CallError(c, err)
		return
	}
	util.CallCreated(c, d.Out())
}

// ListDoctors accepts ?specialization= and ?user_id= filters.
func ListDoctors(c *gin.Context) {
	svc, caller, ok := callerOrRespond(c)
	if !ok {
		return
	}
	opts, ok := parseListOptions(c)
	if !ok {
		return
	}
	userID, ok := parseUintQuery(c, "user_id")
	if !ok {
		return
	}
	doctors, total, err := svc.Profiles.ListDoctors(c.Request.Context(), caller, repository.DoctorFilter{
		Specialization: strings.TrimSpace(c.Query("specialization")),
		UserID:         userID,
		ListOptions:    opts,
	})
	if err != nil {
		util.CallError(c, err)
		return
	}
	out := make([]model.DoctorOut, 0, len(doctors))
	for _, d := range doctors {
		out = append(out, d.Out())
	}
	respondList(c, out, total)
}

func GetDoctor(c *gin.Context) {
	svc, caller, ok := callerOrRespond(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	d, err := svc.Profiles.GetDoctor(c.Request.Context(), caller, id)
	if err != nil {
		util.CallError(c, err)
		return
	}
	util.CallSuccessOK(c, d.Out())
}

func UpdateDoctor(c *gin.Context) {
	svc, caller, ok := callerOrRespond(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateDoctorRequest
	if !bindJSONOrRespond(c, &req) {
		return
	}
	d, err := svc.Profiles.UpdateDoctor(c.Request.Context(), caller, id, service.UpdateDoctorInput{
		Specialization: req.Specialization,
		Contact:        req.Contact,
		Experience:     req.Experience,
		Fee:            req.Fee,
	})
	if err != nil {
		util.CallError(c, err)
		return
	}
	util.CallSuccessOK(c, d.Out())
}

func DeleteDoctor(c *gin.Context) {
	svc, caller, ok := callerOrRespond(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := svc.Profiles.DeleteDoctor(c.Request.Context(), caller, id); err != nil {
		util.CallError(c, err)
		return
	}
	util.CallMessage(c, "doctor deleted")
}
