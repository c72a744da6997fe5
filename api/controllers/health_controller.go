package controllers

import (
	"net/http"
	"time"

	ttlworker "github.com/FloatTech/ttl"
	"github.com/gin-gonic/gin"

	"github.com/moyoez/moneylens-go/orchestrator"
	"github.com/moyoez/moneylens-go/tool"
	"github.com/moyoez/moneylens-go/types"
)

const (
	HealthCacheTTL = 10 * time.Second
	healthCacheKey = "health"
)

type HealthController struct {
	orch  *orchestrator.Orchestrator
	cache *ttlworker.Cache[string, *types.HealthResponse]
}

func NewHealthController(orch *orchestrator.Orchestrator) *HealthController {
	return &HealthController{
		orch:  orch,
		cache: ttlworker.NewCache[string, *types.HealthResponse](HealthCacheTTL),
	}
}

// HandleHealth reports whether the MoneyLens API is up. Healthy answers are cached briefly.
// GET /api/self/v1/health
func (ctrl *HealthController) HandleHealth(c *gin.Context) {
	if cached := ctrl.cache.Get(healthCacheKey); cached != nil {
		c.JSON(http.StatusOK, gin.H{"health": cached, "cached": true})
		return
	}
	health, err := ctrl.orch.Health(c.Request.Context())
	if err != nil {
		tool.DefaultLogger.Warnf("[Health] MoneyLens API unreachable: %v", err)
		c.JSON(http.StatusBadGateway, tool.FastReturnError(orchestrator.UserMessage(err, "MoneyLens API is unreachable")))
		return
	}
	ctrl.cache.Set(healthCacheKey, health)
	c.JSON(http.StatusOK, gin.H{"health": health, "cached": false})
}
