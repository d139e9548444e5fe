// Copyright (c) 2026 The SOSLAW Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/soslaw/soslaw-web/internal/apiclient"
	"github.com/soslaw/soslaw-web/internal/guard"
	"github.com/soslaw/soslaw-web/internal/i18n"
	"github.com/soslaw/soslaw-web/internal/middleware"
	"github.com/soslaw/soslaw-web/internal/model"
	"github.com/soslaw/soslaw-web/internal/render"
	"github.com/soslaw/soslaw-web/internal/session"
	"github.com/soslaw/soslaw-web/internal/validation"
)

// AuthHandler handles login, registration, email verification and password
// reset.
type AuthHandler struct {
	Deps
	sessions        *session.Manager
	loginProtection *middleware.LoginProtection
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(deps Deps, sessions *session.Manager, lp *middleware.LoginProtection) *AuthHandler {
	return &AuthHandler{Deps: deps, sessions: sessions, loginProtection: lp}
}

// homeFor is where a signed-in user lands after login.
func homeFor(user *model.UserProfile) string {
	switch {
	case user == nil:
		return "/"
	case user.IsStaff():
		return "/dashboard"
	default:
		return "/client"
	}
}

// LoginForm renders the login page. A signed-in user is sent home.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	st := session.FromContext(r.Context())
	s := st.Snapshot()
	if s.IsAuthenticated {
		http.Redirect(w, r, homeFor(s.User), http.StatusSeeOther)
		return
	}

	data := render.TemplateData{
		Title: "auth.login",
		Form:  url.Values{"next": {session.SafeNext(r.URL.Query().Get("next"))}},
	}
	h.render(w, r, "auth/login", data)

	// The error has been shown; a refresh starts clean.
	if s.Error != "" {
		h.sessions.ClearError(r.Context(), st)
	}
}

// LoginSubmit handles the login form submission.
func (h *AuthHandler) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	if !h.parseFormOrRedirect(w, r, "/login") {
		return
	}
	st := session.FromContext(r.Context())
	creds := model.Credentials{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}
	next := session.SafeNext(r.PostFormValue("next"))

	form := url.Values{"email": {creds.Email}, "next": {next}}
	data := render.TemplateData{Title: "auth.login", Form: form}
	if errs := checkForm(r, creds, nil); errs != nil {
		data.Errors = errs
		h.render(w, r, "auth/login", data)
		return
	}

	if h.loginProtection != nil {
		if locked, remaining := h.loginProtection.IsAccountLocked(creds.Email); locked {
			h.logger().WarnContext(r.Context(), "login attempt on locked account",
				"email", creds.Email, "ip", middleware.ClientIP(r), "remaining", remaining)
			data.Errors = map[string]string{"_": i18n.T(lang(r), "auth.locked", minutes(remaining))}
			h.render(w, r, "auth/login", data)
			return
		}
	}

	res := h.sessions.Login(r.Context(), w, st, creds)
	if !res.Success {
		if h.loginProtection != nil {
			if locked, d := h.loginProtection.RecordFailedAttempt(creds.Email); locked {
				h.logger().WarnContext(r.Context(), "account locked after failed logins",
					"email", creds.Email, "ip", middleware.ClientIP(r), "duration", d)
			}
		}
		data.Errors = resultErrors(res)
		h.render(w, r, "auth/login", data)
		h.sessions.ClearError(r.Context(), st)
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.RecordSuccessfulLogin(creds.Email)
	}
	h.logger().InfoContext(r.Context(), "user logged in", "user_id", res.User.ID, "role", res.User.Role)

	if next == "" {
		next = homeFor(res.User)
	}
	h.Renderer.SetFlash(r, i18n.T(lang(r), "auth.welcome", res.User.FullName), render.FlashSuccess)
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// RegisterForm renders the registration page.
func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	if s := session.FromContext(r.Context()).Snapshot(); s.IsAuthenticated {
		http.Redirect(w, r, homeFor(s.User), http.StatusSeeOther)
		return
	}
	h.render(w, r, "auth/register", render.TemplateData{Title: "auth.register"})
}

// RegisterSubmit creates an account and sends the user to verify their email.
func (h *AuthHandler) RegisterSubmit(w http.ResponseWriter, r *http.Request) {
	if !h.parseFormOrRedirect(w, r, "/register") {
		return
	}
	in := model.RegisterData{
		FullName: strings.TrimSpace(r.PostFormValue("fullName")),
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Phone:    strings.TrimSpace(r.PostFormValue("phone")),
		Password: r.PostFormValue("password"),
	}

	form := url.Values{"fullName": {in.FullName}, "email": {in.Email}, "phone": {in.Phone}}
	data := render.TemplateData{Title: "auth.register", Form: form}
	var extra map[string]string
	if r.PostFormValue("confirmPassword") != in.Password {
		extra = map[string]string{"confirmPassword": i18n.T(lang(r), "validation.match")}
	}
	if errs := checkForm(r, in, extra); errs != nil {
		data.Errors = errs
		h.render(w, r, "auth/register", data)
		return
	}

	st := session.FromContext(r.Context())
	res := h.sessions.Register(r.Context(), w, st, in)
	if !res.Success {
		data.Errors = resultErrors(res)
		h.render(w, r, "auth/register", data)
		h.sessions.ClearError(r.Context(), st)
		return
	}

	h.logger().InfoContext(r.Context(), "user registered", "user_id", res.User.ID)
	if err := h.Services.EmailVerification.Send(r.Context(), in.Email); err != nil {
		h.logger().WarnContext(r.Context(), "sending verification email", "error", err)
	}
	h.Queries.Invalidate(r.Context(), resUsers, resStats)
	h.flashSuccess(w, r, guard.VerifyEmailPath, "auth.registered")
}

// Logout ends the session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	st := session.FromContext(r.Context())
	if user := st.Snapshot().User; user != nil {
		h.logger().InfoContext(r.Context(), "user logged out", "user_id", user.ID)
	}
	h.sessions.Logout(r.Context(), w, st)
	h.flashSuccess(w, r, "/", "auth.logged_out")
}

// VerifyEmailData is shown on the verification page.
type VerifyEmailData struct {
	Email    string
	Verified bool
}

// VerifyEmail shows whether the signed-in user's email is verified.
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context()).Snapshot()
	if !s.IsAuthenticated {
		http.Redirect(w, r, "/login?next="+url.QueryEscape(guard.VerifyEmailPath), http.StatusSeeOther)
		return
	}

	data := VerifyEmailData{Email: s.User.Email, Verified: s.User.IsEmailVerified}
	if !data.Verified {
		status, err := h.Services.EmailVerification.Status(r.Context(), s.User.Email)
		switch {
		case errors.Is(err, apiclient.ErrUnauthorized):
			return
		case err != nil:
			h.logger().WarnContext(r.Context(), "checking verification status", "error", err)
		default:
			data.Verified = status.IsVerified
		}
	}

	h.render(w, r, "auth/verify_email", render.TemplateData{Title: "auth.verify_email", Data: data})
}

// ResendVerification sends the verification email again.
func (h *AuthHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context()).Snapshot()
	if !s.IsAuthenticated {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if err := h.Services.EmailVerification.Resend(r.Context(), s.User.Email); err != nil {
		h.mutationFailure(w, r, err, guard.VerifyEmailPath)
		return
	}
	h.flashSuccess(w, r, guard.VerifyEmailPath, "auth.verification_sent")
}

// ConfirmEmail consumes the token from the verification link.
func (h *AuthHandler) ConfirmEmail(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	s := session.FromContext(r.Context()).Snapshot()

	target := "/login"
	if s.IsAuthenticated {
		target = homeFor(s.User)
	}

	if err := h.Services.EmailVerification.Verify(r.Context(), token); err != nil {
		h.logger().InfoContext(r.Context(), "email verification failed", "error", err)
		h.flashError(w, r, guard.VerifyEmailPath, "auth.verification_invalid")
		return
	}
	h.Queries.Invalidate(r.Context(), resUsers, resStats)
	h.flashSuccess(w, r, target, "auth.email_verified")
}

// ForgotPasswordForm renders the forgot password page.
func (h *AuthHandler) ForgotPasswordForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "auth/forgot_password", render.TemplateData{Title: "auth.forgot_password"})
}

// ForgotPassword requests a reset link. The answer is the same whether the
// address exists or not.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	if !h.parseFormOrRedirect(w, r, "/forgot-password") {
		return
	}
	email := strings.TrimSpace(r.PostFormValue("email"))
	if msg := validationVar(r, email, "required,email"); msg != "" {
		h.render(w, r, "auth/forgot_password", render.TemplateData{
			Title:  "auth.forgot_password",
			Form:   r.PostForm,
			Errors: map[string]string{"email": msg},
		})
		return
	}

	if err := h.Services.PasswordReset.Send(r.Context(), email); err != nil && !apiclient.IsNotFound(err) {
		h.logger().WarnContext(r.Context(), "requesting password reset", "error", err)
	}
	h.flashSuccess(w, r, "/login", "auth.reset_sent")
}

// ResetPasswordForm checks the token and renders the new password form.
func (h *AuthHandler) ResetPasswordForm(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if err := h.Services.PasswordReset.Verify(r.Context(), token); err != nil {
		h.logger().InfoContext(r.Context(), "password reset token rejected", "error", err)
		h.flashError(w, r, "/forgot-password", "auth.reset_invalid")
		return
	}
	h.render(w, r, "auth/reset_password", render.TemplateData{Title: "auth.reset_password", Data: token})
}

// ResetPassword sets the new password.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if !h.parseFormOrRedirect(w, r, "/reset-password/"+url.PathEscape(token)) {
		return
	}
	password := r.PostFormValue("password")

	errs := map[string]string{}
	if msg := validationVar(r, password, "required,min=8"); msg != "" {
		errs["password"] = msg
	}
	if r.PostFormValue("confirmPassword") != password {
		errs["confirmPassword"] = i18n.T(lang(r), "validation.match")
	}
	if len(errs) > 0 {
		h.render(w, r, "auth/reset_password", render.TemplateData{Title: "auth.reset_password", Data: token, Errors: errs})
		return
	}

	if err := h.Services.PasswordReset.Reset(r.Context(), token, password); err != nil {
		if fields := h.mutationFailure(w, r, err, "/forgot-password"); fields != nil {
			h.render(w, r, "auth/reset_password", render.TemplateData{Title: "auth.reset_password", Data: token, Errors: fields})
		}
		return
	}
	h.flashSuccess(w, r, "/login", "auth.password_reset")
}

// resultErrors turns a failed session result into form errors. Without
// field errors the message goes under "_", the form-level slot.
func resultErrors(res session.Result) map[string]string {
	if len(res.FieldErrors) > 0 {
		return res.FieldErrors
	}
	return map[string]string{"_": res.Error}
}

// validationVar checks one value against a validator tag.
func validationVar(r *http.Request, value, tag string) string {
	return validation.Var(lang(r), value, tag)
}

// minutes rounds a lockout duration up to whole minutes.
func minutes(d time.Duration) int {
	return int((d + time.Minute - 1) / time.Minute)
}
