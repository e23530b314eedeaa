package handler

import (
	"log/slog"
	"net/http"

	"farmlink/internal/delivery/api/response"
	deliverycontext "farmlink/internal/delivery/context"
	"farmlink/internal/domain/entity"
	domainerrors "farmlink/internal/domain/errors"
	"farmlink/internal/domain/service"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// FarmerHandlerParams holds dependencies for FarmerHandler, injected by Fx.
type FarmerHandlerParams struct {
	fx.In

	QRCodeService service.QRCodeService
	Logger        *slog.Logger
}

// FarmerHandler serves the farmer directory, follows and follow QR codes.
type FarmerHandler struct {
	qrCodeService service.QRCodeService
	logger        *slog.Logger
}

// NewFarmerHandler is the constructor for FarmerHandler
func NewFarmerHandler(params FarmerHandlerParams) *FarmerHandler {
	return &FarmerHandler{
		qrCodeService: params.QRCodeService,
		logger:        params.Logger,
	}
}

// FollowQRRequest carries the payload scanned from a farmer's QR code
type FollowQRRequest struct {
	QRData string `json:"qrData" validate:"required"`
}

// ListFarmers returns every farmer.
func (h *FarmerHandler) ListFarmers(c echo.Context) error {
	m, err := marketplace(c)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, m.Farmers())
}

// GetFarmer returns one farmer.
func (h *FarmerHandler) GetFarmer(c echo.Context) error {
	m, err := marketplace(c)
	if err != nil {
		return err
	}

	farmer, ok := m.FarmerByID(c.Param("id"))
	if !ok {
		return response.HandleAppError(c, errors.WithStack(domainerrors.ErrFarmerNotFound))
	}

	return response.Success(c, http.StatusOK, farmer)
}

// FarmerProducts returns a farmer's listings.
func (h *FarmerHandler) FarmerProducts(c echo.Context) error {
	m, err := marketplace(c)
	if err != nil {
		return err
	}

	id := c.Param("id")
	if _, ok := m.FarmerByID(id); !ok {
		return response.HandleAppError(c, errors.WithStack(domainerrors.ErrFarmerNotFound))
	}

	return response.Success(c, http.StatusOK, m.FarmerProducts(id))
}

// Follow makes the signed-in marketman follow a farmer and returns the farmer.
func (h *FarmerHandler) Follow(c echo.Context) error {
	m, err := marketplace(c)
	if err != nil {
		return err
	}

	id := c.Param("id")
	if err := m.FollowFarmer(c.Request().Context(), id); err != nil {
		return response.HandleAppError(c, err)
	}

	farmer, _ := m.FarmerByID(id)

	return response.Success(c, http.StatusOK, farmer)
}

// Unfollow removes a follow and returns the farmer.
func (h *FarmerHandler) Unfollow(c echo.Context) error {
	m, err := marketplace(c)
	if err != nil {
		return err
	}

	id := c.Param("id")
	if err := m.UnfollowFarmer(c.Request().Context(), id); err != nil {
		return response.HandleAppError(c, err)
	}

	farmer, ok := m.FarmerByID(id)
	if !ok {
		return response.Success(c, http.StatusOK, messageResponse{Message: "Unfollowed"})
	}

	return response.Success(c, http.StatusOK, farmer)
}

// Following lists the farmers the signed-in marketman follows.
func (h *FarmerHandler) Following(c echo.Context) error {
	m, err := marketplace(c)
	if err != nil {
		return err
	}

	farmers, err := m.FollowedFarmers()
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, farmers)
}

// MyQRCode renders the signed-in farmer's follow QR code as PNG.
func (h *FarmerHandler) MyQRCode(c echo.Context) error {
	m, err := marketplace(c)
	if err != nil {
		return err
	}

	user := m.CurrentUser()
	if user == nil {
		return response.HandleAppError(c, errors.WithStack(domainerrors.ErrNotSignedIn))
	}
	if user.Role != entity.RoleFarmer {
		return response.HandleAppError(c, errors.WithStack(domainerrors.ErrForbidden.WithDetails("requires the farmer role")))
	}

	png, err := h.qrCodeService.GenerateFollowQR(user.ID)
	if err != nil {
		return errors.Wrap(err, "failed to generate follow QR code")
	}

	return c.Blob(http.StatusOK, "image/png", png)
}

// FollowByQR follows the farmer encoded in a scanned QR payload.
func (h *FarmerHandler) FollowByQR(c echo.Context) error {
	m, err := marketplace(c)
	if err != nil {
		return err
	}

	var req FollowQRRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	farmerID, err := h.qrCodeService.ParseFollowQR(req.QRData)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	ctx := c.Request().Context()
	if err := m.FollowFarmer(ctx, farmerID); err != nil {
		return response.HandleAppError(c, err)
	}

	deliverycontext.GetLoggerOrDefault(ctx, h.logger).InfoContext(ctx, "Followed farmer by QR code",
		slog.String("farmer_id", farmerID),
	)

	farmer, _ := m.FarmerByID(farmerID)

	return response.Success(c, http.StatusOK, farmer)
}
