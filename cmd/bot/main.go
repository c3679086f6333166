// Package main is the entry point for the Parrot moderation bot.
// It initializes all systems and starts the Discord bot.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/anurag-krmkr/Parrot/internal/automod"
	"github.com/anurag-krmkr/Parrot/internal/commands/mod"
	"github.com/anurag-krmkr/Parrot/internal/events"
	"github.com/anurag-krmkr/Parrot/internal/guildconfig"
	"github.com/anurag-krmkr/Parrot/internal/infractions"
	"github.com/anurag-krmkr/Parrot/internal/moderation"
	"github.com/anurag-krmkr/Parrot/internal/platform"
	"github.com/anurag-krmkr/Parrot/pkg/config"
	"github.com/anurag-krmkr/Parrot/pkg/database"
	"github.com/anurag-krmkr/Parrot/pkg/discord"
	"github.com/anurag-krmkr/Parrot/pkg/errors"
	"github.com/anurag-krmkr/Parrot/pkg/logger"
	"github.com/anurag-krmkr/Parrot/pkg/mqtt"
	"github.com/anurag-krmkr/Parrot/pkg/web"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.Init(cfg.ErrorWebhook)
	defer log.Close()

	logger.System("Starting Parrot...", "Main")
	logger.Info(fmt.Sprintf("Working directory: %s", getCurrentDir()), "Main")

	// Initialize error handler
	var discordClient *discord.ExtendedClient
	errors.Init(cfg.ErrorWebhook, func() {
		if discordClient != nil {
			if err := discordClient.Stop(); err != nil {
				return
			}
		}
	})

	// Initialize database
	db, err := database.Init(cfg.MongoDBURL, cfg.DBName)
	if err != nil {
		logger.Error(fmt.Sprintf("Error connecting to database: %v", err), "Main")
		// Continue without database, it will attempt to reconnect
	}
	defer func() {
		if db != nil {
			if err := db.Disconnect(); err != nil {
				return
			}
		}
	}()

	// Initialize MQTT
	mqttClientID := "parrot"
	if !cfg.IsProd() {
		mqttClientID = "parrot_canary"
	}

	mqttClient := mqtt.Init(
		cfg.MQTTHost,
		cfg.MQTTPort,
		cfg.MQTTUser,
		cfg.MQTTPassword,
		mqttClientID,
	)
	defer mqttClient.Destroy()

	telemetry := mqtt.NewTelemetry(mqttClient)
	defer telemetry.Close()

	// Initialize Discord client
	discordClient, err = discord.Init(cfg.BotToken)
	if err != nil {
		logger.Critical(fmt.Sprintf("Error creating Discord client: %v", err), "Main")
		os.Exit(1)
	}

	// Wire the moderation pipeline
	store := database.NewMongoStore(db)
	configs := guildconfig.NewService(store, cfg.DefaultPrefix, cfg.ConfigCacheSize)
	ledger := infractions.NewLedger(store)

	liveFeed := web.NewLiveFeed()

	plat := platform.New(discordClient.Session)
	auditor := moderation.NewAuditor(
		platform.NewAuditLog(discordClient.Session),
		moderation.FanOutTelemetry(telemetry, liveFeed),
	)
	service := moderation.NewService(configs, ledger, moderation.NewExecutor(plat), auditor)
	filter := automod.NewFilter(configs, service, plat, platform.BotActorResolver(discordClient.Session))

	// Initialize web server
	webServer := web.Init(cfg.WebLogsWebhook)
	web.SetupAPIRoutes(webServer, service, liveFeed)
	webServer.StartAsync(cfg.Port)

	// Serve warning counts over MQTT request/response
	registerMqttHandlers(mqttClient, service)

	// Register commands and events
	mod.Register(discordClient, service, filter)
	events.RegisterAll(discordClient, configs, ledger, filter)

	// Start the bot
	if err := discordClient.Start(); err != nil {
		logger.Critical(fmt.Sprintf("Error starting Discord client: %v", err), "Main")
		os.Exit(1)
	}
	defer func() {
		if err := discordClient.Stop(); err != nil {
			return
		}
	}()

	logger.Success("Parrot started!", "Main")

	// Wait for interrupt signal
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	logger.System("Shutting down Parrot...", "Main")
}

// registerMqttHandlers exposes the warning ledger to other services over the
// broker's request/response channel
func registerMqttHandlers(mc *mqtt.MqttCommunicator, service *moderation.Service) {
	mc.On("moderation/warnings", func(payload map[string]interface{}) (interface{}, error) {
		guildID, _ := payload["guild"].(string)
		targetID, _ := payload["target"].(string)
		if guildID == "" || targetID == "" {
			return nil, fmt.Errorf("guild and target are required")
		}

		count, err := service.WarningCount(context.Background(), guildID, targetID)
		if err != nil {
			return nil, err
		}

		return map[string]interface{}{
			"guild":  guildID,
			"target": targetID,
			"count":  count,
		}, nil
	})
}

// getCurrentDir returns the current working directory
func getCurrentDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return "unknown"
	}
	return dir
}
