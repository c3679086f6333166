// Package web provides API routes for the web server.
package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anurag-krmkr/Parrot/internal/infractions"
	"github.com/anurag-krmkr/Parrot/internal/moderation"
	"github.com/anurag-krmkr/Parrot/pkg/database"
	"github.com/anurag-krmkr/Parrot/pkg/discord"
)

// SetupAPIRoutes sets up the API routes
func SetupAPIRoutes(s *Server, service *moderation.Service, feed *LiveFeed) {
	s.GET("/health", healthHandler)

	api := s.Group("/api")
	{
		api.GET("/status", statusHandler(s))
		api.GET("/bot", botInfoHandler)
		api.GET("/guilds/:id/warnings", warningsHandler(service))
		api.GET("/guilds/:id/warnings/count", warningCountHandler(service))
		api.GET("/audit/live", feed.Handler)
	}
}

// healthHandler returns a simple health check response
func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "Parrot is running",
	})
}

// statusHandler returns the bot and database status
func statusHandler(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		db := database.Get()
		client := discord.Get()

		dbOnline := db != nil && db.Connected()

		botOnline := false
		guilds := 0
		if client != nil {
			botOnline = client.IsReady()
			guilds = client.GuildCount()
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"uptime": s.Uptime().String(),
			"database": gin.H{
				"isOnline": dbOnline,
			},
			"bot": gin.H{
				"isOnline": botOnline,
				"guilds":   guilds,
			},
		})
	}
}

// botInfoHandler returns information about the bot
func botInfoHandler(c *gin.Context) {
	client := discord.Get()

	if client == nil || !client.IsReady() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Bot Offline",
			"message": "The bot is not available right now.",
		})
		return
	}

	user := client.Session.State.User

	c.JSON(http.StatusOK, gin.H{
		"id":            user.ID,
		"username":      user.Username,
		"discriminator": user.Discriminator,
		"avatar":        user.Avatar,
		"guilds":        client.GuildCount(),
		"isReady":       client.IsReady(),
	})
}

// warningsHandler lists the warnings recorded in a guild, optionally
// filtered by target or moderator
func warningsHandler(service *moderation.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		guildID := c.Param("id")

		filter := infractions.Filter{
			TargetID:    c.Query("target"),
			ModeratorID: c.Query("moderator"),
		}

		records, err := service.QueryWarnings(c.Request.Context(), guildID, filter)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error":   "Store Unavailable",
				"message": "The warning store could not be reached.",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"guild":    guildID,
			"count":    len(records),
			"warnings": records,
		})
	}
}

// warningCountHandler returns how many warnings a member has in a guild
func warningCountHandler(service *moderation.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		guildID := c.Param("id")
		target := c.Query("target")

		if target == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Missing Parameter",
				"message": "The target query parameter is required.",
			})
			return
		}

		count, err := service.WarningCount(c.Request.Context(), guildID, target)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error":   "Store Unavailable",
				"message": "The warning store could not be reached.",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"guild":  guildID,
			"target": target,
			"count":  count,
		})
	}
}
