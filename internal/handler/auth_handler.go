package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pastelog/internal/service"
)

// ShowHome 渲染首页的发布表单
func (a *API) ShowHome(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"title": "Publish",
	})
}

// ShowRegisterPage 渲染注册页面
func (a *API) ShowRegisterPage(c *gin.Context) {
	c.HTML(http.StatusOK, "register.html", gin.H{
		"title": "Register",
	})
}

// Register 处理用户注册：建账号、开会话、写 auth_id Cookie，
// 然后优先跳回 redirect_after_auth 指向的地址（认领流程的回程）。
func (a *API) Register(c *gin.Context) {
	name := strings.TrimSpace(c.PostForm("name"))
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")

	if name == "" || email == "" || password == "" {
		c.HTML(http.StatusBadRequest, "register.html", gin.H{
			"title": "Register",
			"error": "Name, email and password are required",
		})
		return
	}

	user, err := a.users.Register(name, email, password)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			c.HTML(http.StatusConflict, "register.html", gin.H{
				"title": "Register",
				"error": "This email is already registered",
			})
			return
		}
		c.Error(err)
		c.HTML(http.StatusInternalServerError, "register.html", gin.H{
			"title": "Register",
			"error": "Failed to create account",
		})
		return
	}

	a.startSession(c, user.ID)
}

// ShowLoginPage 渲染登录页面
func (a *API) ShowLoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{
		"title": "Login",
	})
}

// Login 处理用户登录请求
func (a *API) Login(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")

	user, err := a.users.Authenticate(email, password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.HTML(http.StatusUnauthorized, "login.html", gin.H{
				"title": "Login",
				"error": "Invalid email or password",
			})
			return
		}
		c.Error(err)
		c.HTML(http.StatusInternalServerError, "login.html", gin.H{
			"title": "Login",
			"error": "Failed to log in",
		})
		return
	}

	a.startSession(c, user.ID)
}

// Logout 处理用户登出
func (a *API) Logout(c *gin.Context) {
	if id, err := c.Cookie(authCookieName); err == nil && id != "" {
		if err := a.users.DeleteSession(id); err != nil {
			c.Error(err)
		}
	}
	c.SetCookie(authCookieName, "", -1, "/", "", false, true)
	c.Redirect(http.StatusFound, "/")
}

// startSession 开新会话并完成登录后的跳转。
func (a *API) startSession(c *gin.Context, userID uint) {
	session, err := a.users.CreateSession(userID)
	if err != nil {
		c.Error(err)
		c.HTML(http.StatusInternalServerError, "login.html", gin.H{
			"title": "Login",
			"error": "Failed to start session",
		})
		return
	}

	c.SetCookie(authCookieName, session.ID, sessionCookieMaxAge, "/", "", false, true)

	target := "/"
	if redirect, err := c.Cookie(redirectCookieName); err == nil && strings.HasPrefix(redirect, "/") {
		target = redirect
		c.SetCookie(redirectCookieName, "", -1, "/", "", false, true)
	}
	c.Redirect(http.StatusFound, target)
}
