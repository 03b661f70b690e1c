package endpoint

import (
	"github.com/ariebrainware/medibook/middleware"
	"github.com/ariebrainware/medibook/model"
	"github.com/ariebrainware/medibook/service"
	"github.com/ariebrainware/medibook/util"
	"github.com/gin-gonic/gin"
)

var errInvalidRole = util.NewValidationError("invalid_role", "role must be one of Patient, Doctor, Admin")

type RegisterRequest struct {
	Username        string  `json:"username" binding:"omitempty,max=191"`
	Email           string  `json:"email" binding:"required,email,max=191"`
	Password        string  `json:"password" binding:"required,min=8,max=128"`
	ConfirmPassword string  `json:"confpassword" binding:"required"`
	FirstName       string  `json:"firstname" binding:"required,max=100"`
	LastName        string  `json:"lastname" binding:"omitempty,max=100"`
	Role            string  `json:"role"`
	ProfilePicture  *string `json:"profile_picture" binding:"omitempty,url"`
}

type LoginRequest struct {
	// Email also accepts a username.
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

// parseOptionalRole returns the zero Role for an empty string.
func parseOptionalRole(c *gin.Context, raw string) (model.Role, bool) {
	if raw == "" {
		return "", true
	}
	role, err := model.ParseRole(raw)
	if err != nil {
		util.CallError(c, errInvalidRole)
		return "", false
	}
	return role, true
}

// Register creates a Patient or Doctor account and answers 201 with the sanitized user.
func Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSONOrRespond(c, &req) {
		return
	}
	svc, ok := servicesOrRespond(c)
	if !ok {
		return
	}
	role, ok := parseOptionalRole(c, req.Role)
	if !ok {
		return
	}

	user, err := svc.Identity.Register(c.Request.Context(), service.RegisterInput{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Role:            role,
		ProfilePicture:  req.ProfilePicture,
	})
	if err != nil {
		util.CallError(c, err)
		return
	}

	ci := clientInfoOf(c)
	util.LogSignupSuccess(user.ID, user.Email, ci.IP, ci.Agent)
	util.CallCreated(c, user.Out())
}

// Login exchanges credentials for a bearer token.
func Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSONOrRespond(c, &req) {
		return
	}
	svc, ok := servicesOrRespond(c)
	if !ok {
		return
	}
	role, ok := parseOptionalRole(c, req.Role)
	if !ok {
		return
	}

	ci := clientInfoOf(c)
	token, user, err := svc.Identity.Login(c.Request.Context(), req.Email, req.Password, role)
	if err != nil {
		util.LogLoginFailure(req.Email, ci.IP, ci.Agent, util.AsAppError(err).Reason)
		util.CallError(c, err)
		return
	}

	util.LogLoginSuccess(user.ID, user.Email, ci.IP, ci.Agent)
	util.CallSuccessOK(c, token)
}

// Logout revokes the presented token.
func Logout(c *gin.Context) {
	svc, caller, ok := callerOrRespond(c)
	if !ok {
		return
	}
	claims, ok := middleware.GetClaims(c)
	if !ok {
		util.CallError(c, errNotAuthorized)
		return
	}
	if err := svc.Identity.Logout(c.Request.Context(), claims); err != nil {
		util.CallError(c, err)
		return
	}

	ci := clientInfoOf(c)
	util.LogLogout(caller.ID, ci.IP, ci.Agent)
	util.CallMessage(c, "logged out")
}

// Me returns the caller's own account.
func Me(c *gin.Context) {
	svc, caller, ok := callerOrRespond(c)
	if !ok {
		return
	}
	user, err := svc.Identity.GetUser(c.Request.Context(), caller, caller.ID)
	if err != nil {
		util.CallError(c, err)
		return
	}
	util.CallSuccessOK(c, user.Out())
}
