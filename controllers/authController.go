package controllers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"sklep/cookies"
	"sklep/logger"
	"sklep/models"
	"sklep/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const userinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

func (c *Controller) RegisterForm(w http.ResponseWriter, r *http.Request) {
	utils.SendJSONResponse(w, http.StatusOK, map[string]string{
		"message": "register with username, password and name",
	})
}

// Register creates a local account. Registering an already-taken
// username is a silent no-op, so the redirect to login happens either
// way and exactly one record exists afterwards.
func (c *Controller) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		utils.HandleError(w, http.StatusBadRequest, "invalid form data")
		return
	}
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	displayName := strings.TrimSpace(r.FormValue("name"))

	if username == "" || password == "" || displayName == "" {
		utils.HandleError(w, http.StatusBadRequest, "make sure you fill all fields")
		return
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		logger.L().Error("hash password", zap.Error(err))
		utils.HandleError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	user := models.User{
		ID:          uuid.New(),
		Username:    username,
		DisplayName: displayName,
		Password:    &hashed,
		Role:        c.roleFor(username),
	}
	if err := c.store.CreateUser(r.Context(), user); err != nil {
		storeFailure(w, "create user", err)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (c *Controller) LoginForm(w http.ResponseWriter, r *http.Request) {
	utils.SendJSONResponse(w, http.StatusOK, map[string]string{
		"google": c.oauth.AuthCodeURL(""),
	})
}

// Login verifies a local password and sets the signed identity cookie.
// A returnUrl query parameter, when it is a safe local path, wins over
// the home redirect.
func (c *Controller) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		utils.HandleError(w, http.StatusBadRequest, "invalid form data")
		return
	}
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	user, err := c.store.FindUserByUsername(r.Context(), username)
	if err != nil {
		if isNotFound(err) {
			utils.HandleError(w, http.StatusUnauthorized, "wrong username or password")
			return
		}
		storeFailure(w, "find user", err)
		return
	}
	// OAuth-only accounts have no password to compare against.
	if user.Password == nil || utils.CheckPassword(*user.Password, password) != nil {
		utils.HandleError(w, http.StatusUnauthorized, "wrong username or password")
		return
	}

	if err := c.jar.Set(w, cookies.User, user.Username); err != nil {
		logger.L().Error("set user cookie", zap.Error(err))
		utils.HandleError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	http.Redirect(w, r, safeReturnURL(r.URL.Query().Get("returnUrl")), http.StatusSeeOther)
}

func (c *Controller) Logout(w http.ResponseWriter, r *http.Request) {
	c.jar.Clear(w, cookies.User)
	http.Redirect(w, r, "/", http.StatusFound)
}

// Callback is the OAuth redirect target: exchange the authorization
// code, fetch the profile, auto-provision a local record on first
// sight and sign the user in. Any upstream failure falls back to the
// login page.
func (c *Controller) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	token, err := c.oauth.Exchange(r.Context(), code)
	if err != nil {
		logger.L().Warn("oauth exchange failed", zap.Error(err))
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	client := c.oauth.Client(r.Context(), token)
	client.Timeout = 10 * time.Second
	resp, err := client.Get(userinfoURL)
	if err != nil || resp.StatusCode != http.StatusOK {
		if resp != nil {
			resp.Body.Close()
		}
		logger.L().Warn("oauth userinfo fetch failed", zap.Error(err))
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	defer resp.Body.Close()

	var profile struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil || profile.Email == "" {
		logger.L().Warn("oauth userinfo decode failed", zap.Error(err))
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	if _, err := c.store.FindUserByUsername(r.Context(), profile.Email); err != nil {
		if !isNotFound(err) {
			storeFailure(w, "find user", err)
			return
		}
		// First sight of this identity: provision without a password.
		user := models.User{
			ID:          uuid.New(),
			Username:    profile.Email,
			DisplayName: profile.Name,
			Role:        c.roleFor(profile.Email),
		}
		if err := c.store.CreateUser(r.Context(), user); err != nil {
			storeFailure(w, "create user", err)
			return
		}
	}

	if err := c.jar.Set(w, cookies.User, profile.Email); err != nil {
		logger.L().Error("set user cookie", zap.Error(err))
		utils.HandleError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// safeReturnURL only trusts local absolute paths; anything else falls
// back to the home page.
func safeReturnURL(raw string) string {
	if strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//") {
		return raw
	}
	return "/"
}
