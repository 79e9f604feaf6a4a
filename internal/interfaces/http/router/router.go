package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/firecash/backend/internal/infrastructure/auth"
	"github.com/firecash/backend/internal/infrastructure/logger"
	"github.com/firecash/backend/internal/interfaces/http/handler"
	"github.com/firecash/backend/internal/interfaces/http/middleware"
)

// Dependencies holds everything the router needs
type Dependencies struct {
	Logger       *zap.Logger
	Validator    *auth.TokenValidator
	System       *handler.SystemHandler
	Accounts     *handler.AccountHandler
	Transactions *handler.TransactionHandler
	Groups       *handler.GroupHandler
	Obligations  *handler.ObligationHandler
	// Scheduler is nil when the embedded scheduler is disabled; the ops
	// endpoints are simply not registered then.
	Scheduler *handler.SchedulerHandler
}

// New builds the gin engine with all routes and middleware
func New(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(logger.RequestID())
	r.Use(logger.GinMiddleware(deps.Logger))
	r.Use(logger.Recovery(deps.Logger))

	r.GET("/health", deps.System.Health)
	r.GET("/ready", deps.System.Ready)

	api := r.Group("/api/v1")
	api.Use(middleware.JWTAuth(deps.Validator))
	{
		accounts := api.Group("/accounts")
		{
			accounts.POST("", deps.Accounts.Create)
			accounts.GET("", deps.Accounts.List)
			accounts.GET("/:id", deps.Accounts.Get)
			accounts.PUT("/:id", deps.Accounts.Update)
			accounts.DELETE("/:id", deps.Accounts.Delete)
			accounts.GET("/:id/transactions", deps.Transactions.ListByAccount)
			accounts.GET("/:id/obligations", deps.Obligations.ListByAccount)
		}

		transactions := api.Group("/transactions")
		{
			transactions.POST("", deps.Transactions.Create)
			transactions.PUT("/:id", deps.Transactions.Update)
			transactions.DELETE("/:id", deps.Transactions.Delete)
		}

		obligations := api.Group("/obligations")
		{
			obligations.POST("", deps.Obligations.Create)
			obligations.PUT("/:id", deps.Obligations.Update)
			obligations.POST("/:id/skip", deps.Obligations.Skip)
			obligations.DELETE("/:id", deps.Obligations.Delete)
		}

		groups := api.Group("/groups")
		{
			groups.POST("", deps.Groups.Create)
			groups.GET("", deps.Groups.List)
			groups.GET("/:id", deps.Groups.Get)
			groups.PUT("/:id", deps.Groups.Update)
			groups.DELETE("/:id", deps.Groups.Delete)
			groups.GET("/:id/members", deps.Groups.ListMembers)
			groups.POST("/:id/members", deps.Groups.AddMember)
			groups.PUT("/:id/members/:userId", deps.Groups.UpdateMember)
			groups.DELETE("/:id/members/:userId", deps.Groups.RemoveMember)
		}

		if deps.Scheduler != nil {
			ops := api.Group("/scheduler")
			{
				ops.GET("/status", deps.Scheduler.Status)
				ops.POST("/run", deps.Scheduler.Trigger)
			}
		}
	}

	return r
}
