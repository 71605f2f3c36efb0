package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dkeye/chatrelay/internal/domain"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type NickRequest struct {
	Name string `json:"name"`
}

type NickResponse struct {
	Username string `json:"username"`
}

type MembersResponse struct {
	Room    domain.RoomID `json:"room"`
	Members []string      `json:"members"`
}

func handleSetNick(c *gin.Context) {
	var req NickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid name"})
		return
	}
	name, err := domain.ValidateUsername(req.Name)
	if err != nil {
		msg := "invalid name"
		if errors.Is(err, domain.ErrUsernameTooLong) {
			msg = "name too long"
		} else if errors.Is(err, domain.ErrUsernameEmpty) {
			msg = "missing or invalid name"
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	session := sessions.Default(c)
	session.Set(nickKey, name)
	if err := session.Save(); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("save session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session unavailable"})
		return
	}
	log.Info().Str("module", "adapters.http").Str("client", c.GetString("client_token")).Str("name", name).Msg("nickname set")
	c.JSON(http.StatusOK, NickResponse{Username: name})
}

func handleWhoAmI(c *gin.Context) {
	name, _ := sessions.Default(c).Get(nickKey).(string)
	if name == "" {
		name = domain.DefaultUsername
	}
	c.JSON(http.StatusOK, NickResponse{Username: name})
}

func roomsHandler(roster Roster) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, roster.Rooms())
	}
}

func membersHandler(roster Roster) gin.HandlerFunc {
	return func(c *gin.Context) {
		room := domain.RoomID(strings.TrimSpace(c.Param("room"))).OrDefault()
		c.JSON(http.StatusOK, MembersResponse{Room: room, Members: roster.Members(room)})
	}
}
