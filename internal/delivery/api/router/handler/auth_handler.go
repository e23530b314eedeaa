package handler

import (
	"net/http"

	"farmlink/internal/delivery/api/response"
	"farmlink/internal/domain/entity"
	domainerrors "farmlink/internal/domain/errors"
	"farmlink/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// AuthHandler handles signup, PIN login and logout inside a session.
type AuthHandler struct{}

// NewAuthHandler is the constructor for AuthHandler
func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

// LocationRequest is an optional coordinate pair.
type LocationRequest struct {
	Lat float64 `json:"lat" validate:"latitude"`
	Lon float64 `json:"lon" validate:"longitude"`
}

// SignUpRequest represents the request body for creating a user
type SignUpRequest struct {
	Name           string           `json:"name" validate:"required,min=2"`
	Phone          string           `json:"phone" validate:"required,numeric,len=10"`
	Address        string           `json:"address" validate:"required,min=5"`
	PIN            string           `json:"pin" validate:"required,numeric,len=4"`
	Role           string           `json:"role" validate:"required,oneof=farmer marketman"`
	Location       *LocationRequest `json:"location" validate:"omitempty"`
	ProfilePicture string           `json:"profilePicture"`
}

// PINLoginRequest represents the request body for PIN sign-in
type PINLoginRequest struct {
	Phone string `json:"phone" validate:"required,numeric,len=10"`
	PIN   string `json:"pin" validate:"required,numeric,len=4"`
}

// AuthResponse is the signed-in user and the dashboard path to land on.
type AuthResponse struct {
	User      *entity.User `json:"user"`
	Dashboard string       `json:"dashboard"`
}

// SignUp creates a user and signs the session in as them.
func (h *AuthHandler) SignUp(c echo.Context) error {
	m, err := marketplace(c)
	if err != nil {
		return err
	}

	var req SignUpRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	input := usecase.SignUpInput{
		Name:           req.Name,
		Phone:          req.Phone,
		Address:        req.Address,
		PIN:            req.PIN,
		Role:           entity.Role(req.Role),
		ProfilePicture: req.ProfilePicture,
	}
	if req.Location != nil {
		input.Location = &entity.Location{Lat: req.Location.Lat, Lon: req.Location.Lon}
	}

	out, err := m.SignUp(c.Request().Context(), input)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, AuthResponse{User: out.User, Dashboard: out.Dashboard})
}

// PINLogin signs the session in with phone and PIN.
func (h *AuthHandler) PINLogin(c echo.Context) error {
	m, err := marketplace(c)
	if err != nil {
		return err
	}

	var req PINLoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	out, err := m.SignInWithPIN(c.Request().Context(), req.Phone, req.PIN)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, AuthResponse{User: out.User, Dashboard: out.Dashboard})
}

// Logout signs the session out; cart and orders are kept.
func (h *AuthHandler) Logout(c echo.Context) error {
	m, err := marketplace(c)
	if err != nil {
		return err
	}

	if err := m.SignOut(c.Request().Context()); err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, messageResponse{Message: "Signed out"})
}

// Me returns the signed-in user.
func (h *AuthHandler) Me(c echo.Context) error {
	m, err := marketplace(c)
	if err != nil {
		return err
	}

	user := m.CurrentUser()
	if user == nil {
		return response.HandleAppError(c, errors.WithStack(domainerrors.ErrNotSignedIn))
	}

	return response.Success(c, http.StatusOK, user)
}
