package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/glowclinic/refillhub/internal/app/api/server"
	"github.com/glowclinic/refillhub/internal/app/service/patienttag"
	"github.com/glowclinic/refillhub/internal/app/service/refillqueue"
	"github.com/glowclinic/refillhub/internal/app/service/subscription"
	"github.com/glowclinic/refillhub/internal/platform/billing"
	"github.com/glowclinic/refillhub/internal/platform/db"
	"github.com/glowclinic/refillhub/internal/platform/pharmacy"
	"github.com/glowclinic/refillhub/pkg/config"
	"github.com/glowclinic/refillhub/pkg/logger"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	server.Module,
	billing.Module,
	pharmacy.Module,
	patienttag.Module,
	subscription.Module,
	refillqueue.Module,
)
