package handler

import (
    "context"      // provides context with cancellation for DB calls
    "database/sql" // sentinel errors from repositories
    "net/http"     // HTTP status codes and primitives
    "strings"      // string manipulation utilities
    "time"         // timeouts for DB calls and expiry math

    "github.com/labstack/echo/v4" // Echo framework for HTTP routing

    "github.com/finovai/finovai-backend/internal/config"     // app configuration
    "github.com/finovai/finovai-backend/internal/middleware" // bearer token extraction
    "github.com/finovai/finovai-backend/internal/model"      // domain records
    "github.com/finovai/finovai-backend/internal/repository" // DB repositories
    "github.com/finovai/finovai-backend/internal/utils"      // tokens, codes, phone normalization
    "github.com/finovai/finovai-backend/internal/whatsapp"   // out-of-band OTP delivery
)

// otpMaxAttempts is the failed-verification cap per code; reaching it
// forces the user to request a fresh one.
const otpMaxAttempts = 3

// otpRequestWindow is the minimum gap between codes for one phone.
const otpRequestWindow = 60 * time.Second

// AuthHandler bundles dependencies for the phone/OTP auth endpoints.
type AuthHandler struct {
	Cfg      config.Config
	Users    *repository.UserRepo
	Sessions *repository.SessionRepo
	OTPs     *repository.OTPRepo
	Sender   *whatsapp.Sender
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, s *repository.SessionRepo, o *repository.OTPRepo, w *whatsapp.Sender) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Sessions: s, OTPs: o, Sender: w}
}

// ----- DTOs -----

type sendOTPReq struct {
	Phone string `json:"phone"`
}
type verifyOTPReq struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

type userPart struct {
	ID          uint64  `json:"id"`
	Phone       string  `json:"phone"`
	DisplayName *string `json:"displayName"`
	CoupleID    *uint64 `json:"coupleId"`
}

func toUserPart(u model.User) userPart {
	return userPart{ID: u.ID, Phone: u.Phone, DisplayName: u.DisplayName, CoupleID: u.CoupleID}
}

// SendOTP: generate a 6-digit code for a phone and deliver it over
// WhatsApp.  At most one code per phone per minute; the code itself is
// stored hashed and expires after the configured TTL.
func (h *AuthHandler) SendOTP(c echo.Context) error {
	var req sendOTPReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	phone := utils.NormalizePhone(req.Phone)
	if !utils.ValidPhone(phone) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Numero de telefono invalido"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	now := time.Now().UTC()

	recent, err := h.OTPs.CountSince(ctx, phone, now.Add(-otpRequestWindow))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if recent >= 1 {
		return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "Espera un minuto antes de solicitar otro codigo"})
	}

	code, err := utils.NewOTPCode()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue code failed"})
	}
	hash, err := utils.HashOTPCode(code, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue code failed"})
	}

	ttl := time.Duration(h.Cfg.OTPTTLMin) * time.Minute
	if _, err := h.OTPs.Create(ctx, phone, hash, "login", now.Add(ttl), now); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save code failed"})
	}

	if err := h.Sender.SendOTP(ctx, phone, code); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error enviando codigo. Intenta de nuevo."})
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "expiresIn": int(ttl / time.Second)})
}

// VerifyOTP: check a submitted code against the newest active one for the
// phone, then find-or-create the user and issue an opaque session token.
// Order matters: the attempt cap is enforced before the code comparison,
// and a mismatch counts against the cap.
func (h *AuthHandler) VerifyOTP(c echo.Context) error {
	var req verifyOTPReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	phone := utils.NormalizePhone(req.Phone)
	code := strings.TrimSpace(req.Code)
	if phone == "" || code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Telefono y codigo son requeridos"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	now := time.Now().UTC()

	otp, err := h.OTPs.LatestActive(ctx, phone, now)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Codigo invalido o expirado"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if otp.Attempts >= otpMaxAttempts {
		return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "Demasiados intentos. Solicita un nuevo codigo."})
	}
	if !utils.VerifyOTPCode(otp.CodeHash, code) {
		_ = h.OTPs.IncrementAttempts(ctx, otp.ID)
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Codigo invalido o expirado"})
	}
	if err := h.OTPs.MarkVerified(ctx, otp.ID, now); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "verify failed"})
	}

	// Find or create the user for this phone.
	isNewUser := false
	user, err := h.Users.GetByPhone(ctx, phone)
	switch {
	case err == sql.ErrNoRows:
		isNewUser = true
		uid, err := h.Users.CreateVerified(ctx, phone, now)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
		}
		user = model.User{ID: uid, Phone: phone, PhoneVerified: true, CreatedAt: now, UpdatedAt: now}
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	default:
		_ = h.Users.MarkPhoneVerified(ctx, user.ID, now)
	}

	token, err := utils.NewSessionToken(h.Cfg.SessionTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue session failed"})
	}
	session := model.Session{UserID: user.ID, Token: token.Raw, ExpiresAt: token.Exp, CreatedAt: now, LastUsedAt: now}
	if err := h.Sessions.Create(ctx, session); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save session failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":   true,
		"token":     token.Raw,
		"user":      toUserPart(user),
		"isNewUser": isNewUser,
	})
}

// Me: return the authenticated user plus their partner when coupled.
func (h *AuthHandler) Me(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "No autorizado"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var partner *userPart
	if user.CoupleID != nil {
		p, err := h.Users.GetPartner(ctx, *user.CoupleID, user.ID)
		if err == nil {
			pp := toUserPart(p)
			partner = &pp
		} else if err != sql.ErrNoRows {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"user": toUserPart(user), "partner": partner})
}

// Logout: delete the presented session if any.  Always succeeds, so a
// client with an already-expired token can still "log out" cleanly.
func (h *AuthHandler) Logout(c echo.Context) error {
	if token := middleware.BearerToken(c); token != "" {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()
		_ = h.Sessions.Delete(ctx, token)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
