package main

import (
	"swift-dispatch/internal/auth"
	"swift-dispatch/internal/middleware"
)

func (a *AppContext) setupRoutes() {
	r := a.Router

	// ── Global Middleware (outermost → innermost) ──
	r.Use(middleware.Logger())                 // 1. Request logging
	r.Use(middleware.Recovery())               // 2. Panic recovery
	r.Use(middleware.RateLimit(a.RateLimiter)) // 3. Per-IP rate limiting
	r.Use(middleware.Auth(a.JWTService))       // 4. JWT auth (skips /auth/token, /health)

	// ── Health (no auth) ──
	r.GET("/health", a.healthCheck)

	// ── Auth ──
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/token", a.AuthHandler.GenerateToken)
	}

	// ── Dispatcher Routes (roles: dispatcher, admin) ──
	dispatcherGroup := r.Group("")
	dispatcherGroup.Use(middleware.RoleGuard(auth.RoleDispatcher, auth.RoleAdmin))
	{
		// Read-only endpoints
		dispatcherGroup.GET("/deliveries", a.DeliveryHandler.List)
		dispatcherGroup.GET("/deliveries/:id", a.DeliveryHandler.Get)
		dispatcherGroup.GET("/deliveries/:id/candidates", a.DispatchHandler.Candidates)
		dispatcherGroup.GET("/drivers", a.DriverHandler.List)
		dispatcherGroup.GET("/drivers/:id", a.DriverHandler.Get)
		dispatcherGroup.GET("/drivers/:id/location", a.DriverHandler.GetLocation)
		dispatcherGroup.GET("/drivers/:id/performance", a.PerformanceHandler.DriverPerformance)
		dispatcherGroup.GET("/performance/fleet", a.PerformanceHandler.FleetEfficiency)
		dispatcherGroup.GET("/performance/comparison", a.PerformanceHandler.Comparison)

		// Mutations get the mutation pool and idempotency replay
		mutations := dispatcherGroup.Group("")
		mutations.Use(middleware.Bulkhead(a.Config.Bulkhead.MutationPool))
		mutations.Use(middleware.Idempotency(a.IdempotencyStore))
		{
			mutations.POST("/deliveries", a.DeliveryHandler.Book)
			mutations.PATCH("/deliveries/:id", a.DeliveryHandler.Update)
			mutations.DELETE("/deliveries/:id", a.DeliveryHandler.Delete)
			mutations.POST("/deliveries/:id/assign", a.DispatchHandler.Assign)
			mutations.POST("/dispatch/assign-all", a.DispatchHandler.AssignAll)
			mutations.PATCH("/deliveries/:id/cancel", a.DispatchHandler.Cancel)

			mutations.POST("/drivers", a.DriverHandler.Register)
			mutations.PATCH("/drivers/:id", a.DriverHandler.Update)
			mutations.DELETE("/drivers/:id", a.DriverHandler.Delete)
		}
	}

	// ── Field Routes (roles: driver, dispatcher, admin) ──
	// Drivers progress their own deliveries and toggle availability; the
	// dispatcher can do both on their behalf.
	fieldGroup := r.Group("")
	fieldGroup.Use(middleware.RoleGuard(auth.RoleDriver, auth.RoleDispatcher, auth.RoleAdmin))
	{
		// Heartbeat gets its own bulkhead pool (high concurrency)
		heartbeat := fieldGroup.Group("")
		heartbeat.Use(middleware.Bulkhead(a.Config.Bulkhead.HeartbeatPool))
		{
			heartbeat.POST("/drivers/:id/heartbeat", a.DriverHandler.Heartbeat)
		}

		mutations := fieldGroup.Group("")
		mutations.Use(middleware.Bulkhead(a.Config.Bulkhead.MutationPool))
		mutations.Use(middleware.Idempotency(a.IdempotencyStore))
		{
			mutations.PATCH("/deliveries/:id/advance", a.DispatchHandler.Advance)
			mutations.PATCH("/drivers/:id/status", a.DriverHandler.SetStatus)
		}
	}

	// ── Admin Routes (role: admin) ──
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.RoleGuard(auth.RoleAdmin))
	adminGroup.Use(middleware.Bulkhead(a.Config.Bulkhead.AdminPool))
	{
		adminGroup.PATCH("/deliveries/:id/status", a.DispatchHandler.ForceStatus)
	}
}
