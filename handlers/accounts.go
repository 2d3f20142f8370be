package handlers

import (
	"net/http"
	"time"

	"github.com/nicolep999/moodie/internal/apperr"
	"github.com/nicolep999/moodie/services/accounts"
	"github.com/nicolep999/moodie/services/reviews"
	"github.com/nicolep999/moodie/services/watchlist"
)

// AccountHandler serves registration, login and profile management.
type AccountHandler struct {
	accounts  *accounts.Service
	reviews   *reviews.Service
	watchlist *watchlist.Service
}

func NewAccountHandler(acc *accounts.Service, rev *reviews.Service, wl *watchlist.Service) *AccountHandler {
	return &AccountHandler{accounts: acc, reviews: rev, watchlist: wl}
}

func setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     accounts.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(accounts.SessionTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     accounts.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Register creates an account and logs the new user straight in.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) error {
	var body struct {
		Username  string `json:"username"`
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	}
	if err := decodeBody(r, &body); err != nil {
		return err
	}

	user, err := h.accounts.Register(accounts.RegisterInput{
		Username:  body.Username,
		Email:     body.Email,
		Password:  body.Password,
		FirstName: body.FirstName,
		LastName:  body.LastName,
	})
	if err != nil {
		return err
	}

	_, token, err := h.accounts.Login(body.Username, body.Password)
	if err != nil {
		return err
	}
	setSessionCookie(w, token)
	writeJSON(w, http.StatusCreated, map[string]any{"user": user})
	return nil
}

// Login authenticates and issues the session cookie.
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) error {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &body); err != nil {
		return err
	}

	user, token, err := h.accounts.Login(body.Username, body.Password)
	if err != nil {
		return err
	}
	setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
	return nil
}

// Logout ends the session and clears the cookie.
func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := sessionToken(r); token != "" {
		h.accounts.Logout(token)
	}
	clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// Me returns the authenticated user.
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) error {
	user := currentUser(r)
	if user == nil {
		return apperr.ErrUnauthorized
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
	return nil
}

// Profile returns the viewer's profile, reviews and watchlist summary.
func (h *AccountHandler) Profile(w http.ResponseWriter, r *http.Request) error {
	user := currentUser(r)

	profile, err := h.accounts.GetProfile(user.ID)
	if err != nil {
		return err
	}
	userReviews, err := h.reviews.ListByUser(user.ID)
	if err != nil {
		return err
	}
	watchlistCount, err := h.watchlist.Count(user.ID)
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user":           user,
		"profile":        profile,
		"reviews":        userReviews,
		"watchlistCount": watchlistCount,
	})
	return nil
}

// UpdateProfile saves account and profile fields in one call.
func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) error {
	user := currentUser(r)

	var body struct {
		Email            string  `json:"email"`
		FirstName        string  `json:"firstName"`
		LastName         string  `json:"lastName"`
		Bio              string  `json:"bio"`
		Location         string  `json:"location"`
		BirthDate        string  `json:"birthDate"`
		FavoriteGenreIDs []int64 `json:"favoriteGenreIds"`
	}
	if err := decodeBody(r, &body); err != nil {
		return err
	}

	updated, err := h.accounts.UpdateAccount(user.ID, accounts.AccountUpdate{
		Email:     body.Email,
		FirstName: body.FirstName,
		LastName:  body.LastName,
	})
	if err != nil {
		return err
	}

	profileUpdate := accounts.ProfileUpdate{
		Bio:              body.Bio,
		Location:         body.Location,
		FavoriteGenreIDs: body.FavoriteGenreIDs,
	}
	if body.BirthDate != "" {
		birthDate, err := time.Parse("2006-01-02", body.BirthDate)
		if err != nil {
			return apperr.Validationf("birthDate", "birth date must be YYYY-MM-DD")
		}
		profileUpdate.BirthDate = &birthDate
	}

	profile, err := h.accounts.UpdateProfile(user.ID, profileUpdate)
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user":    updated,
		"profile": profile,
	})
	return nil
}

// ChangePassword swaps the password and keeps the session alive.
func (h *AccountHandler) ChangePassword(w http.ResponseWriter, r *http.Request) error {
	user := currentUser(r)

	var body struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if err := decodeBody(r, &body); err != nil {
		return err
	}
	if err := h.accounts.ChangePassword(user.ID, body.OldPassword, body.NewPassword); err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "password changed"})
	return nil
}

// DeleteAccount removes the viewer's account and everything attached to it.
func (h *AccountHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) error {
	user := currentUser(r)
	if err := h.accounts.DeleteAccount(user.ID); err != nil {
		return err
	}
	clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"status": "account deleted"})
	return nil
}
