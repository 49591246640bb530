package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	ldap "github.com/go-ldap/ldap/v3"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/ucentricid/uproject-management/dao/model"
	"github.com/ucentricid/uproject-management/internal/resputil"
	"github.com/ucentricid/uproject-management/internal/util"
	"github.com/ucentricid/uproject-management/pkg/config"
	"github.com/ucentricid/uproject-management/pkg/logutils"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewAuthMgr)
}

type AuthMgr struct {
	name     string
	db       *gorm.DB
	tokenMgr *util.TokenManager
}

func NewAuthMgr(conf RegisterConfig) Manager {
	return &AuthMgr{
		name:     "auth",
		db:       conf.DB,
		tokenMgr: util.GetTokenMgr(),
	}
}

func (mgr *AuthMgr) GetName() string { return mgr.name }

func (mgr *AuthMgr) RegisterPublic(g *gin.RouterGroup) {
	g.POST("/login", mgr.Login)
	g.POST("/refresh", mgr.RefreshToken)
}

func (mgr *AuthMgr) RegisterProtected(_ *gin.RouterGroup) {}

func (mgr *AuthMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type (
	LoginReq struct {
		Email      string `json:"email" binding:"required,email"`
		Password   string `json:"password" binding:"required"`
		AuthMethod string `json:"auth"` // [password, ldap], defaults to password
	}

	LoginResp struct {
		AccessToken  string      `json:"accessToken"`
		RefreshToken string      `json:"refreshToken"`
		Context      UserContext `json:"context"`
	}

	UserContext struct {
		UserID uint       `json:"userId"`
		Name   string     `json:"name"`
		Role   model.Role `json:"role"`
	}
)

const (
	AuthMethodPassword = "password"
	AuthMethodLDAP     = "ldap"
)

// Login godoc
//
//	@Summary		Authenticate a user
//	@Description	Check credentials and return access/refresh tokens for the user
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			data	body	LoginReq	true	"credentials"
//	@Router			/v1/auth/login [post]
func (mgr *AuthMgr) Login(c *gin.Context) {
	var req LoginReq
	if err := c.ShouldBind(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	l := logutils.Log.WithFields(logutils.Fields{
		"email": req.Email,
		"auth":  req.AuthMethod,
	})

	switch req.AuthMethod {
	case AuthMethodLDAP:
		if !config.GetConfig().LDAP.Enable {
			resputil.HTTPError(c, http.StatusBadRequest, "LDAP login is disabled", resputil.InvalidRequest)
			return
		}
		if err := mgr.ldapAuth(req.Email, req.Password); err != nil {
			l.Error("invalid credentials: ", err)
			resputil.HTTPError(c, http.StatusUnauthorized, "Invalid credentials", resputil.InvalidCredentials)
			return
		}
	case AuthMethodPassword, "":
		if err := mgr.passwordAuth(c, req.Email, req.Password); err != nil {
			l.Error("invalid credentials: ", err)
			resputil.HTTPError(c, http.StatusUnauthorized, "Invalid credentials", resputil.InvalidCredentials)
			return
		}
	default:
		l.Error("invalid auth method: ", req.AuthMethod)
		resputil.HTTPError(c, http.StatusBadRequest, "Invalid auth method", resputil.InvalidRequest)
		return
	}

	var user model.User
	if err := mgr.db.WithContext(c).Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			resputil.HTTPError(c, http.StatusUnauthorized, "Invalid credentials", resputil.InvalidCredentials)
			return
		}
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	jwtMessage := util.JWTMessage{
		UserID:   user.ID,
		Username: user.Name,
		Role:     user.Role,
	}
	accessToken, refreshToken, err := mgr.tokenMgr.CreateTokens(&jwtMessage)
	if err != nil {
		resputil.HTTPError(c, http.StatusInternalServerError, err.Error(), resputil.NotSpecified)
		return
	}

	resputil.Success(c, LoginResp{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Context: UserContext{
			UserID: user.ID,
			Name:   user.Name,
			Role:   user.Role,
		},
	})
}

func (mgr *AuthMgr) passwordAuth(c *gin.Context, email, password string) error {
	var user model.User
	if err := mgr.db.WithContext(c).Where("email = ?", email).First(&user).Error; err != nil {
		return fmt.Errorf("user not found")
	}

	p := user.Password
	if p == nil {
		return fmt.Errorf("user does not have a password")
	}

	if bcrypt.CompareHashAndPassword([]byte(*p), []byte(password)) != nil {
		return fmt.Errorf("wrong email or password")
	}
	return nil
}

func (mgr *AuthMgr) ldapAuth(email, password string) error {
	ldapConfig := config.GetConfig().LDAP

	l, err := ldap.DialURL(ldapConfig.Address)
	if err != nil {
		return err
	}
	defer l.Close()

	if err = l.Bind(ldapConfig.UserName, ldapConfig.Password); err != nil {
		return err
	}

	searchRequest := ldap.NewSearchRequest(
		ldapConfig.SearchDN,
		ldap.ScopeWholeSubtree, ldap.NeverDerefAliases, 0, 0, false,
		fmt.Sprintf("(mail=%s)", ldap.EscapeFilter(email)),
		[]string{"dn"},
		nil,
	)

	searchResult, err := l.Search(searchRequest)
	if err != nil {
		return err
	}

	if len(searchResult.Entries) != 1 {
		return fmt.Errorf("user not found or too many entries returned")
	}

	return l.Bind(searchResult.Entries[0].DN, password)
}

type (
	RefreshReq struct {
		RefreshToken string `json:"refreshToken" binding:"required"` // without the `Bearer ` prefix
	}

	RefreshResp struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
)

// RefreshToken godoc
//
//	@Summary		Refresh the token pair
//	@Description	Validate the refresh token and return a new token pair
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Router			/v1/auth/refresh [post]
func (mgr *AuthMgr) RefreshToken(c *gin.Context) {
	var req RefreshReq
	if err := c.ShouldBind(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	claims, err := mgr.tokenMgr.CheckToken(req.RefreshToken)
	if err != nil {
		resputil.HTTPError(c, http.StatusUnauthorized, "Invalid refresh token", resputil.TokenInvalid)
		return
	}

	accessToken, refreshToken, err := mgr.tokenMgr.CreateTokens(&claims)
	if err != nil {
		resputil.HTTPError(c, http.StatusInternalServerError, err.Error(), resputil.NotSpecified)
		return
	}

	resputil.Success(c, RefreshResp{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}
