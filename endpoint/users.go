package endpoint

import (
	"github.com/ariebrainware/medibook/model"
	"github.com/ariebrainware/medibook/service"
	"github.com/ariebrainware/medibook/util"
	"github.com/gin-gonic/gin"
)

type UpdateUserRequest struct {
	FirstName      *string `json:"firstname" binding:"omitempty,max=100"`
	LastName       *string `json:"lastname" binding:"omitempty,max=100"`
	Email          *string `json:"email" binding:"omitempty,email,max=191"`
	ProfilePicture *string `json:"profile_picture" binding:"omitempty,url"`
	Password       *string `json:"password" binding:"omitempty,min=8,max=128"`
}

type SetDisabledRequest struct {
	Disabled *bool `json:"disabled" binding:"required"`
}

// ListUsers is admin only.
func ListUsers(c *gin.Context) {
	svc, caller, ok := callerOrRespond(c)
	if !ok {
		return
	}
	opts, ok := parseListOptions(c)
	if !ok {
		return
	}
	users, total, err := svc.Identity.ListUsers(c.Request.Context(), caller, opts)
	if err != nil {
		util.CallError(c, err)
		return
	}
	out := make([]model.UserOut, 0, len(users))
	for _, u := range users {
		out = append(out, u.Out())
	}
	respondList(c, out, total)
}

func GetUser(c *gin.Context) {
	svc, caller, ok := callerOrRespond(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	user, err := svc.Identity.GetUser(c.Request.Context(), caller, id)
	if err != nil {
		util.CallError(c, err)
		return
	}
	util.CallSuccessOK(c, user.Out())
}

// UpdateUser changes names, e-mail, picture or password of the owner's account.
func UpdateUser(c *gin.Context) {
	svc, caller, ok := callerOrRespond(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateUserRequest
	if !bindJSONOrRespond(c, &req) {
		return
	}

	user, passwordChanged, err := svc.Identity.UpdateUser(c.Request.Context(), caller, id, service.UpdateUserInput{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		ProfilePicture: req.ProfilePicture,
		Password:       req.Password,
	})
	if err != nil {
		util.CallError(c, err)
		return
	}
	if passwordChanged {
		util.LogPasswordChanged(user.ID, caller.ID)
	}
	util.CallSuccessOK(c, user.Out())
}

// SetUserDisabled enables or disables an account (admin only).
func SetUserDisabled(c *gin.Context) {
	svc, caller, ok := callerOrRespond(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req SetDisabledRequest
	if !bindJSONOrRespond(c, &req) {
		return
	}

	user, err := svc.Identity.SetDisabled(c.Request.Context(), caller, id, *req.Disabled)
	if err != nil {
		util.CallError(c, err)
		return
	}
	util.LogAccountDisabled(user.ID, caller.ID, user.Disabled)
	util.CallSuccessOK(c, user.Out())
}
