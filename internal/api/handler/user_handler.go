package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/casdu/portal-api/internal/core/ports"
)

// UserHandler is the administrative surface over the principal store.
// All routes sit behind the AdminRequired policy.
type UserHandler struct {
	userService ports.UserService
}

func NewUserHandler(userService ports.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

type updateUserRequest struct {
	DisplayName *string `json:"displayname,omitempty"`
	FirstName   *string `json:"firstname,omitempty"`
	LastName    *string `json:"lastname,omitempty"`
	Email       *string `json:"email,omitempty"`
	JobTitle    *string `json:"jobtitle,omitempty"`
	Role        *string `json:"role,omitempty"     validate:"omitempty,oneof=user admin"`
	Status      *string `json:"status,omitempty"   validate:"omitempty,oneof=active inactive"`
	IsAdmin     *bool   `json:"isadmin,omitempty"`
	Password    *string `json:"password,omitempty" validate:"omitempty,min=8"`
}

func (r *updateUserRequest) patch() ports.PrincipalPatch {
	return ports.PrincipalPatch{
		DisplayName:  r.DisplayName,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		Email:        r.Email,
		JobTitle:     r.JobTitle,
		Role:         r.Role,
		Status:       r.Status,
		IsAdmin:      r.IsAdmin,
		PasswordHash: r.Password, // plaintext here; the service hashes it
	}
}

// List returns all principals in their exported form.
//
// @Summary      List principals
// @Tags         users
// @Produce      json
// @Success      200  {array}  domain.SafePrincipal
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.userService.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// Get returns one principal by id.
//
// @Summary      Get a principal
// @Tags         users
// @Produce      json
// @Param        id   path      int  true  "Principal id"
// @Success      200  {object}  domain.SafePrincipal
// @Failure      404  {object}  map[string]string
// @Router       /users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	user, err := h.userService.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Update applies an administrative patch to a principal.
//
// @Summary      Update a principal
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id    path      int                true  "Principal id"
// @Param        body  body      updateUserRequest  true  "Fields to update"
// @Success      200   {object}  domain.SafePrincipal
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /users/{id} [patch]
func (h *UserHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.userService.Update(c.Request().Context(), id, req.patch())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Delete removes a principal. The delete is unconditional.
//
// @Summary      Delete a principal
// @Tags         users
// @Param        id  path  int  true  "Principal id"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.userService.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Profile lets the authenticated principal update their own personal-data
// fields; role, status and the admin flag are not reachable from here.
//
// @Summary      Update own profile
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      updateUserRequest  true  "Profile fields"
// @Success      200   {object}  domain.SafePrincipal
// @Failure      400   {object}  map[string]string
// @Router       /auth/profile [patch]
func (h *UserHandler) Profile(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	user, err := h.userService.UpdateProfile(c.Request().Context(), p.ID, req.patch())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}
