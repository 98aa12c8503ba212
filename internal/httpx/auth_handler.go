package httpx

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/ariefcatur/go-timestore/internal/shop"
	"github.com/ariefcatur/go-timestore/internal/timestore"
)

const (
	msgInvalidInput     = "Datos inválidos."
	msgPasswordMismatch = "Las contraseñas no coinciden."
)

type registerReq struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	// Confirm is optional; when sent it must equal Password.
	Confirm string `json:"confirmPassword" validate:"omitempty,eqfield=Password"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResp struct {
	timestore.Result
	User *shop.User `json:"user,omitempty"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := h.decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, timestore.Result{Message: invalidMessage(err)})
		return
	}
	ctx, cancel := timeout(r)
	defer cancel()
	_, err := h.Store.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil && statusFor(err) >= http.StatusInternalServerError {
		h.Log.WithError(err).Error("register")
	}
	code := http.StatusCreated
	if err != nil {
		code = statusFor(err)
	}
	writeJSON(w, code, timestore.ResultOf(err, timestore.MsgRegistered))
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := h.decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, timestore.Result{Message: msgInvalidInput})
		return
	}
	ctx, cancel := timeout(r)
	defer cancel()
	u, err := sessionFrom(r.Context()).Login(ctx, req.Email, req.Password)
	if err != nil {
		if statusFor(err) >= http.StatusInternalServerError {
			h.Log.WithError(err).Error("login")
		}
		writeJSON(w, statusFor(err), loginResp{Result: timestore.ResultOf(err, "")})
		return
	}
	writeJSON(w, http.StatusOK, loginResp{Result: timestore.ResultOf(nil, timestore.MsgLoggedIn), User: &u})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeout(r)
	defer cancel()
	if err := sessionFrom(r.Context()).Logout(ctx); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	u := sessionFrom(r.Context()).User()
	if u == nil {
		writeError(w, http.StatusUnauthorized, "not logged in")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func invalidMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Tag() == "eqfield" {
				return msgPasswordMismatch
			}
		}
	}
	return msgInvalidInput
}
