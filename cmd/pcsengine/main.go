package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/pcsengine/internal/clock"
	"github.com/smallbiznis/pcsengine/internal/config"
	"github.com/smallbiznis/pcsengine/internal/entitlement"
	"github.com/smallbiznis/pcsengine/internal/migration"
	"github.com/smallbiznis/pcsengine/internal/observability"
	"github.com/smallbiznis/pcsengine/internal/rate"
	"github.com/smallbiznis/pcsengine/internal/ratelimit"
	"github.com/smallbiznis/pcsengine/internal/server"
	"github.com/smallbiznis/pcsengine/internal/snapshot"
	"github.com/smallbiznis/pcsengine/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		// Functional Domains
		rate.Module,
		snapshot.Module,
		entitlement.Module,
		migration.Module,

		ratelimit.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
